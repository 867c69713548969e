package status

import (
	"accordee/client/internal/api"
	"accordee/client/internal/cmdutil"
	"context"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"time"
)

func NewStatusCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "status <dashboard-id>",
		Short: "Show the custom domain status of a dashboard",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := cmdutil.ParseID(args[0])
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			status, err := svc.Status(ctx, id)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.AppendRows([]table.Row{
				{"Domain", lo.FromPtr(status.CustomDomain)},
				{"TXT record", lo.FromPtr(status.TXTRecord)},
				{"State", status.State},
				{"Verified", status.IsVerified},
				{"Routed", status.IsProvisioned},
			})
			if status.VerifiedAt != nil {
				tw.AppendRow(table.Row{"Verified at", status.VerifiedAt.Format(time.RFC1123)})
			}
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
		},
	}
}
