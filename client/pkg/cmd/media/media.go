package media

import (
	"accordee/client/internal/api"
	"accordee/client/pkg/cmd/media/list"
	"accordee/client/pkg/cmd/media/upload"
	"github.com/spf13/cobra"
)

func NewMediaCmd(svc api.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media <command>",
		Short: "Upload and list dashboard media",
	}

	cmd.AddCommand(upload.NewUploadCmd(svc))
	cmd.AddCommand(list.NewListMediaCmd(svc))
	return cmd
}
