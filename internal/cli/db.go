package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database administration",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDBMigrate,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE:  runDBStatus,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	_, pending, err := database.MigrationStatus()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
		return nil
	}

	if err := database.Migrate(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", len(pending))
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	applied, pending, err := database.MigrationStatus()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n", database.Path())
	for _, name := range applied {
		fmt.Fprintf(out, "  applied  %s\n", name)
	}
	for _, name := range pending {
		fmt.Fprintf(out, "  pending  %s\n", name)
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "Up to date")
	}
	return nil
}
