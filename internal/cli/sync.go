package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the local document into the database",
	Long: `Pushes every item in the local document into the database. Items are
matched by name (case-insensitive) and purchases already present remotely
are skipped, so repeated syncs do not duplicate history. Items that fail
are reported individually; the rest of the batch still goes through.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	doc, err := openDocument(cfg).Load()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	result := sync.Push(st, doc)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Synced %d/%d items (%d created, %d purchases pushed)\n",
		result.Succeeded, result.Items, result.ItemsCreated, result.PurchasesPushed)
	for _, itemErr := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "  failed %q: %v\n", itemErr.Name, itemErr.Err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d items failed to sync", result.Failed, result.Items)
	}
	return nil
}
