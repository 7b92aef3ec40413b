// Package cli implements the pressed command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the --config flag, shared by all subcommands.
	configPath string

	// Version is injected during build.
	Version = "dev"
	// Commit is injected during build.
	Commit = "none"
	// BuildDate is injected during build.
	BuildDate = "unknown"
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "pressed",
	Short: "pressed runs the juice shop back office",
	Long: `pressed is the back office server for the Pressed storefront: email
templates, discounts, subscriptions, referrals, wholesale inquiries and the
product catalog.

Configuration can be provided via a YAML or JSON file (--config) and
PRESSED_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (YAML or JSON)")
}
