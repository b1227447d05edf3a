package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tacklebox",
	Short: "Personal fishing-gear catalog with bulk-paste import",
	Long: `tacklebox catalogs rods, reels, combos, and lures as owned or wishlist
items. Gear is added one record per line (pipe, tab, or comma delimited),
previewed with per-line validation, and committed as one atomic batch.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config YAML")
	rootCmd.AddCommand(serveCmd, importCmd, previewCmd, versionCmd)
}
