package login

import (
	"accordee/client/internal/api"
	"accordee/client/internal/auth"
	"accordee/client/internal/cmdutil"
	"accordee/client/internal/config"
	"context"
	"fmt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"net/url"
	"time"
)

func NewLoginCmd(cfg config.Config) *cobra.Command {
	var host, login, password string
	var signup bool

	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in to an accordee server",
		Long:    "Log in with your username or email. The session token is kept in the system keyring. Use --signup to create the account first.",
		Example: "accordee login --host https://accordee.dev --login alice@example.com",
		Run: func(cmd *cobra.Command, args []string) {
			if host == "" {
				host = cfg.Host
			}

			var err error
			if host, err = cmdutil.Ask("Server", host, false); err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if _, err := url.ParseRequestURI(host); err != nil {
				cmdutil.PrintE(fmt.Sprintf("%s is not a valid url", host))
				return
			}
			if login, err = cmdutil.Ask("Username or email", login, false); err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if password, err = cmdutil.Ask("Password", password, true); err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Logging in...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			svc := api.NewService(api.NewClient(api.Config{Host: host}))
			var resp api.AuthResponse
			if signup {
				resp, err = svc.Signup(ctx, api.SignupParams{Email: login, Password: password})
			} else {
				resp, err = svc.Login(ctx, api.LoginParams{Login: login, Password: password})
			}
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			if err := config.SaveConfig(config.Config{Host: host, Username: resp.Username}); err != nil {
				cmdutil.Print(fmt.Sprintf("Failed to save config: %s", color.RedString(err.Error())))
				return
			}
			if err := auth.Save(resp.Token); err != nil {
				cmdutil.Print(fmt.Sprintf("Failed to save session: %s", color.RedString(err.Error())))
				return
			}

			cmdutil.PrintS(fmt.Sprintf("Logged in as %s", resp.Username))
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "", "accordee server url")
	cmd.Flags().StringVarP(&login, "login", "l", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, prompted for when omitted")
	cmd.Flags().BoolVar(&signup, "signup", false, "create the account before logging in")
	return cmd
}
