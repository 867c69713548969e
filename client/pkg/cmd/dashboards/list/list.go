package list

import (
	"accordee/client/internal/api"
	"accordee/client/internal/cmdutil"
	"accordee/client/internal/config"
	"context"
	"fmt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"time"
)

func NewListDashboardsCmd(svc api.Service, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list [username]",
		Short:   "List dashboards",
		Long:    "List the dashboards of a user, yours when no username is given",
		Example: "accordee dashboards list alice",
		Run: func(cmd *cobra.Command, args []string) {
			username := cfg.Username
			if len(args) > 0 {
				username = args[0]
			}
			if username == "" {
				cmdutil.PrintE("please log in or name a user")
				return
			}

			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			dashboards, err := svc.ListDashboards(ctx, username)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"ID", "URL", "Title", "Layout", "Time Created"})
			for _, next := range dashboards {
				tw.AppendRow(table.Row{
					fmt.Sprint(next.ID),
					next.URL,
					next.Title,
					next.Layout,
					next.CreatedAt.Format("02-01-2006"),
				})
				tw.AppendSeparator()
			}
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
		},
	}
}
