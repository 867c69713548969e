package dashboards

import (
	"accordee/client/internal/api"
	"accordee/client/internal/config"
	"accordee/client/pkg/cmd/dashboards/list"
	"github.com/spf13/cobra"
)

func NewDashboardsCmd(svc api.Service, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboards <command>",
		Aliases: []string{"d"},
		Short:   "View accordee dashboards",
	}

	cmd.AddCommand(list.NewListDashboardsCmd(svc, cfg))
	return cmd
}
