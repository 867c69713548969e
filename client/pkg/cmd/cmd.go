package cmd

import (
	"accordee/client/internal/api"
	"accordee/client/internal/auth"
	"accordee/client/internal/config"
	"accordee/client/pkg/cmd/dashboards"
	"accordee/client/pkg/cmd/domains"
	"accordee/client/pkg/cmd/login"
	"accordee/client/pkg/cmd/media"
	"github.com/spf13/cobra"
)

func New() (*cobra.Command, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	token, err := auth.Get()
	if err != nil {
		return nil, err
	}

	svc := api.NewService(api.NewClient(api.Config{Host: cfg.Host, Token: token}))
	cmd := &cobra.Command{
		Use:   "accordee",
		Short: "accordee - publish dashboards on your own domain",
	}

	cmd.AddCommand(login.NewLoginCmd(cfg))
	cmd.AddCommand(dashboards.NewDashboardsCmd(svc, cfg))
	cmd.AddCommand(domains.NewDomainsCmd(svc))
	cmd.AddCommand(media.NewMediaCmd(svc))
	return cmd, nil
}
