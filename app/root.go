// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adminforge",
	Short: "AdminForge is a declarative administration-panel runtime",
	Long: `AdminForge exposes registered application resources through a uniform,
permission-checked JSON surface for listing, search, CRUD, and bulk actions.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
