package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	phoneNumber string
	password    string
	name        string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a phone number and password",
	Long: `Log in and keep the session for later commands. When --password is
omitted the password is read from the first line of standard input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			pw, err := resolvePassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return printFailure(cmd.OutOrStdout(), "Login", err)
			}
			return runLogin(ctx, cmd.OutOrStdout(), a, phoneNumber, pw)
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new agent account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			pw, err := resolvePassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return printFailure(cmd.OutOrStdout(), "Signup", err)
			}
			return runSignup(ctx, cmd.OutOrStdout(), a, name, phoneNumber, pw)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new token pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			return runRefresh(ctx, cmd.OutOrStdout(), a)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session locally and on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) int {
			return runLogout(ctx, cmd.OutOrStdout(), a)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&phoneNumber, "phone", "p", "", "Phone number")
		c.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
		_ = c.MarkFlagRequired("phone")
	}
	signupCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	_ = signupCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(loginCmd, signupCmd, refreshCmd, logoutCmd)
}

// exitError carries a non-zero exit code back through cobra
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// ExitCode returns the process exit code for an error returned by Execute,
// and whether the command already reported the failure itself
func ExitCode(err error) (code int, reported bool) {
	if code, ok := err.(exitError); ok {
		return int(code), true
	}
	return 1, false
}

// withApp builds the app for one command, runs fn under a signal-aware
// context, and turns a non-zero exit code into an error for cobra
func withApp(cmd *cobra.Command, fn func(context.Context, *app) int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if code := fn(ctx, a); code != 0 {
		return exitError(code)
	}
	return nil
}

func resolvePassword(in io.Reader, prompt io.Writer) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

func runLogin(ctx context.Context, w io.Writer, a *app, phone, pw string) int {
	if err := a.service.Login(ctx, phone, pw); err != nil {
		return printFailure(w, "Login", err)
	}
	printSession(w, viewOf(a.store, a.cfg.GetRefreshWindow()))
	return 0
}

func runSignup(ctx context.Context, w io.Writer, a *app, displayName, phone, pw string) int {
	if err := a.service.Signup(ctx, displayName, phone, pw); err != nil {
		return printFailure(w, "Signup", err)
	}
	printSession(w, viewOf(a.store, a.cfg.GetRefreshWindow()))
	return 0
}

func runRefresh(ctx context.Context, w io.Writer, a *app) int {
	if err := a.service.Refresh(ctx); err != nil {
		return printFailure(w, "Refresh", err)
	}
	printSession(w, viewOf(a.store, a.cfg.GetRefreshWindow()))
	return 0
}

func runLogout(ctx context.Context, w io.Writer, a *app) int {
	if err := a.service.Logout(ctx); err != nil {
		return printFailure(w, "Logout", err)
	}
	if IsJSONOutput() {
		writeJSONOut(w, map[string]bool{"authenticated": false})
	} else {
		fmt.Fprintln(w, "Logged out")
	}
	return 0
}
