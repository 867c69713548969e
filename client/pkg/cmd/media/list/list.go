package list

import (
	"accordee/client/internal/api"
	"accordee/client/internal/cmdutil"
	"context"
	"fmt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"time"
)

func NewListMediaCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your uploaded media",
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			media, err := svc.ListMedia(ctx)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"ID", "Key", "Type", "Size", "URL"})
			for _, next := range media {
				tw.AppendRow(table.Row{fmt.Sprint(next.ID), next.Key, next.ContentType, next.Size, next.URL})
			}
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
		},
	}
}
