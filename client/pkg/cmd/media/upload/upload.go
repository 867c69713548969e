package upload

import (
	"accordee/client/internal/api"
	"accordee/client/internal/cmdutil"
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"path/filepath"
	"time"
)

func NewUploadCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "upload <file>",
		Short:   "Upload an image or file for use in dashboards",
		Example: "accordee media upload ./logo.png",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			f, err := os.Open(args[0])
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			defer func() {
				_ = f.Close()
			}()

			cmdutil.StartLoading("Uploading...")
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			media, err := svc.UploadMedia(ctx, filepath.Base(args[0]), f)
			cmdutil.StopLoading()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.PrintS(fmt.Sprintf("Uploaded %s", media.Key))
			cmdutil.Print(media.URL)
		},
	}
}
