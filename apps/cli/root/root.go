package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the rentals CLI. Subcommands (slug, bootstrap, auth) are attached here.
var rootCmd = &cobra.Command{
	Use:           "rentals",
	Short:         "Palmyra Rentals CLI",
	Long:          "Utilities for Palmyra Rentals: slug tooling, database bootstrap and dev tokens.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
