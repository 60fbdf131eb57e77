// Package cmd holds the portalctl command tree. portalctl is a terminal
// stand-in for a portal frontend: it logs in, keeps the session on disk the
// way a browser keeps localStorage, and calls the credentialed read
// endpoints.
package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagProfile string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Bank portal session client",
	Long: `portalctl exercises the shared portal session stack from a terminal:
login and logout against the backend, inspect the persisted session, and
fetch accounts or customers with the bearer credential attached.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "path to config.yaml (default ~/.config/portalctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(customersCmd)
}

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
