// Package cli implements the stocklog command tree and the stockd daemon.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stocklog",
	Short: "Track inventory items and their purchase history",
	Long: `stocklog records inventory items and their purchases (date, quantity,
unit price, supplier) in a local JSON document, with optional sync to a
SQLite store. Purchase histories can be imported from and exported to
CSV and JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("file", "", "Path to document file (overrides STOCKLOG_DOC_PATH)")
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides STOCKLOG_DB_PATH)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format: table, json, yaml, tsv")
}
