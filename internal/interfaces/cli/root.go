// Package cli is the apnacart command line: the HTTP server plus the
// operator commands that manage the catalog database.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "apnacart",
		Short:        "ApnaCart vegetable storefront",
		Long:         "ApnaCart serves the vegetable catalog and weight-limited carts, and manages the catalog database.",
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./config.yaml, ./configs/config.yaml or /etc/apnacart/config.yaml)")

	cmd.AddCommand(
		serveCmd(&configFile),
		migrateCmd(&configFile),
		seedCmd(&configFile),
		linkImagesCmd(&configFile),
		dbCheckCmd(&configFile),
	)
	return cmd
}
