package issue

import (
	"accordee/client/internal/api"
	"accordee/client/internal/cmdutil"
	"context"
	"fmt"
	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"time"
)

func NewIssueTokenCmd(svc api.Service) *cobra.Command {
	mValidator := validator.New(validator.WithRequiredStructEnabled())
	var token string

	cmd := &cobra.Command{
		Use:     "issue <dashboard-id> <domain>",
		Short:   "Issue a verification token for a custom domain",
		Long:    "Attach a custom domain to a dashboard and print the TXT record to publish. Issuing again replaces the previous token and resets verification.",
		Example: "accordee domains issue 12 portfolio.example.com",
		Args:    cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := cmdutil.ParseID(args[0])
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			domain := args[1]
			if err := mValidator.Var(domain, "fqdn"); err != nil {
				cmdutil.PrintE(fmt.Sprintf("%s is not a fully qualified domain name", domain))
				return
			}

			cmdutil.StartLoading("Working...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			status, err := svc.IssueToken(ctx, id, api.IssueTokenParams{CustomDomain: domain, VerificationToken: token})
			cmdutil.StopLoading()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.PrintS("Verification token issued")
			cmdutil.Print(fmt.Sprintf("Add a TXT record to %s with the value:\n\n  %s\n",
				color.CyanString(*status.CustomDomain), color.YellowString(*status.TXTRecord)))
			cmdutil.Print(fmt.Sprintf("then run 'accordee domains verify %d'", id))
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "use this token instead of a generated one")
	return cmd
}
