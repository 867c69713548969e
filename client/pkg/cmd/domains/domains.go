package domains

import (
	"accordee/client/internal/api"
	"accordee/client/pkg/cmd/domains/issue"
	"accordee/client/pkg/cmd/domains/status"
	"accordee/client/pkg/cmd/domains/verify"
	"github.com/spf13/cobra"
)

func NewDomainsCmd(svc api.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains <command>",
		Short: "Manage dashboard custom domains",
		Long:  "Issue verification tokens, verify and inspect dashboard custom domains",
	}

	cmd.AddCommand(issue.NewIssueTokenCmd(svc))
	cmd.AddCommand(verify.NewVerifyCmd(svc))
	cmd.AddCommand(status.NewStatusCmd(svc))
	return cmd
}
