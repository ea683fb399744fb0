package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/auth"
	"github.com/elousi1010/quanlyveso-sub000/session"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session alive and print every change",
	Long: `Keep the session alive, refreshing the access token before it expires,
and print the session each time it changes. Stops on Ctrl-C or when the
session ends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			return runWatch(ctx, cmd.OutOrStdout(), a, a.cfg.GetKeepAliveInterval())
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, w io.Writer, a *app, interval time.Duration) int {
	if !a.store.IsAuthenticated() {
		return printFailure(w, "Watch", fmt.Errorf("not logged in"))
	}
	window := a.cfg.GetRefreshWindow()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan session.State, 16)
	unsubscribe := a.store.Subscribe(func(st session.State) {
		select {
		case changes <- st:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- auth.KeepAlive(ctx, a.service, interval, window) }()

	printSession(w, viewOf(a.store, window))
	for {
		select {
		case st := <-changes:
			if st.IsLoading {
				continue
			}
			printSession(w, viewOf(a.store, window))
			if !st.IsAuthenticated {
				cancel()
				<-done
				return 1
			}
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return printFailure(w, "Watch", err)
			}
			return 0
		}
	}
}
