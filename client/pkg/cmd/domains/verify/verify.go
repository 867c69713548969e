package verify

import (
	"accordee/client/internal/api"
	"accordee/client/internal/cmdutil"
	"context"
	"encoding/json"
	"fmt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"time"
)

type progress struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func NewVerifyCmd(svc api.Service) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:     "verify <dashboard-id>",
		Short:   "Verify a dashboard custom domain",
		Long:    "Look up the TXT records of the dashboard's custom domain and, once the token is found, register the domain with the reverse proxy",
		Example: "accordee domains verify 12 --watch",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := cmdutil.ParseID(args[0])
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			ctx, timeout := context.WithTimeout(ctx, 2*time.Minute)
			defer timeout()

			var events <-chan api.Event
			if watch {
				if events, err = svc.WatchVerification(ctx, id); err != nil {
					cmdutil.PrintE(err.Error())
					return
				}
			} else {
				cmdutil.StartLoading("Verifying...")
			}

			result, err := svc.Verify(ctx, id)
			cmdutil.StopLoading()
			if events != nil {
				// failures rejected before any lookup publish nothing
				drainCtx, drain := context.WithTimeout(ctx, 3*time.Second)
				printEvents(drainCtx, events)
				drain()
			}

			if err != nil {
				cmdutil.PrintE(err.Error())
				if result.IsVerified && !result.IsProvisioned {
					cmdutil.Print("The domain is verified but not yet routed, run verify again to retry.")
				}
				return
			}
			cmdutil.PrintS(fmt.Sprintf("Domain verified (%s)", result.State))
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print verification progress as it happens")
	return cmd
}

func printEvents(ctx context.Context, events <-chan api.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			p := progress{}
			if len(ev.Data) > 0 {
				_ = json.Unmarshal(ev.Data, &p)
			}
			if p.Stage == "" {
				cmdutil.Print(color.HiBlackString("state: %s", ev.Message))
			} else {
				cmdutil.Print(fmt.Sprintf("%s %s", color.CyanString("[%s]", p.Stage), ev.Message))
			}

			if ev.Type == api.Complete {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
