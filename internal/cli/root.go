// Package cli implements the quanlyveso command line client: it keeps a
// dashboard session on disk (or in Redis) and drives the auth flows.
package cli

import (
	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	stateStore string
	stateFile  string
	envFile    string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "quanlyveso",
	Short: "Session client for the Quan Ly Ve So dashboard",
	Long: `quanlyveso logs in to the Quan Ly Ve So auth service and keeps the
session (access token, refresh token and identity) between runs.

Environment Variables:
  QLVS_API_URL         Auth service URL (default: http://localhost:8080)
  QLVS_STATE_STORE     Where the session is kept: file or redis (default: file)
  QLVS_STATE_FILE      Session file for the file store
  REDIS_ADDR           Redis address for the redis store (default: localhost:6379)
  QLVS_REFRESH_WINDOW  Refresh when the access token expires within this window (default: 2m)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Auth service URL (overrides QLVS_API_URL)")
	rootCmd.PersistentFlags().StringVar(&stateStore, "state-store", "", "Session store: file or redis (overrides QLVS_STATE_STORE)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", "", "Session file path (overrides QLVS_STATE_FILE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file to load")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// settings resolves every option from flag, env, or default (in priority order)
type settings struct {
	config.Config
}

func (s settings) GetAPIBaseURL() string {
	if apiURL != "" {
		return apiURL
	}
	return s.Config.GetAPIBaseURL()
}

func (s settings) GetStateStore() string {
	if stateStore != "" {
		return stateStore
	}
	return s.Config.GetStateStore()
}

func (s settings) GetStateFile() string {
	if stateFile != "" {
		return stateFile
	}
	return s.Config.GetStateFile()
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
