package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var remote bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Long:  `Show the stored session. Exits with status 1 when not logged in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			return runStatus(cmd.OutOrStdout(), a)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged in user",
	Long: `Print the logged in user. With --remote the profile is fetched from
the server, refreshing the access token first if it is about to expire.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			return runWhoami(ctx, cmd.OutOrStdout(), a, remote)
		})
	},
}

func init() {
	whoamiCmd.Flags().BoolVar(&remote, "remote", false, "Fetch the profile from the server")
	rootCmd.AddCommand(statusCmd, whoamiCmd)
}

func runStatus(w io.Writer, a *app) int {
	v := viewOf(a.store, a.cfg.GetRefreshWindow())
	printSession(w, v)
	if !v.Authenticated {
		return 1
	}
	return 0
}

func runWhoami(ctx context.Context, w io.Writer, a *app, fromServer bool) int {
	if !a.store.IsAuthenticated() {
		return printFailure(w, "Whoami", fmt.Errorf("not logged in"))
	}
	if !fromServer {
		user := a.store.User()
		if IsJSONOutput() {
			writeJSONOut(w, user)
		} else {
			fmt.Fprintf(w, "%s (%s) role=%s\n", user.Name, user.PhoneNumber, user.Role)
		}
		return 0
	}

	profile, err := a.Profile(ctx)
	if err != nil {
		return printFailure(w, "Whoami", err)
	}
	if IsJSONOutput() {
		writeJSONOut(w, profile)
	} else {
		fmt.Fprintf(w, "%s (%s) role=%s id=%s\n", profile.Name, profile.PhoneNumber, profile.Role, profile.ID)
	}
	return 0
}
