package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/domain"
)

var renameCmd = &cobra.Command{
	Use:   "rename <item> <new-name>",
	Short: "Rename an item",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var renameRemote bool

func init() {
	rootCmd.AddCommand(renameCmd)
	renameCmd.Flags().BoolVar(&renameRemote, "remote", false, "Rename in the database instead of the document")
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name, err := domain.NormalizeName(args[1])
	if err != nil {
		return err
	}

	if renameRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		item, err := resolveRemoteItem(st, args[0])
		if err != nil {
			return err
		}
		if err := st.Items.Rename(item.ID, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", item.Name, name)
		return nil
	}

	var oldName string
	if _, err := openDocument(cfg).Mutate(func(doc *domain.Document) error {
		item, err := resolveLocalItem(doc, args[0])
		if err != nil {
			return err
		}
		if existing := doc.FindItem(name); existing != nil && existing.ID != item.ID {
			return fmt.Errorf("item %q already exists", existing.Name)
		}
		oldName = item.Name
		item.Name = name
		item.UpdatedAt = time.Now().UTC()
		return nil
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", oldName, name)
	return nil
}
