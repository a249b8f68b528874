package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/domain"
)

var rmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove items or purchases",
}

var rmItemCmd = &cobra.Command{
	Use:   "item <item>",
	Short: "Remove an item and all of its purchases",
	Args:  cobra.ExactArgs(1),
	RunE:  runRmItem,
}

var rmPurchaseCmd = &cobra.Command{
	Use:   "purchase <purchase-id>",
	Short: "Remove a single purchase",
	Args:  cobra.ExactArgs(1),
	RunE:  runRmPurchase,
}

var rmRemote bool

func init() {
	rootCmd.AddCommand(rmCmd)
	rmCmd.AddCommand(rmItemCmd)
	rmCmd.AddCommand(rmPurchaseCmd)
	rmCmd.PersistentFlags().BoolVar(&rmRemote, "remote", false, "Remove from the database instead of the document")
}

func runRmItem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if rmRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		item, err := resolveRemoteItem(st, args[0])
		if err != nil {
			return err
		}
		if err := st.Items.Delete(item.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s and %d purchases\n", item.Name, len(item.Purchases))
		return nil
	}

	var removed *domain.Item
	if _, err := openDocument(cfg).Mutate(func(doc *domain.Document) error {
		item, err := resolveLocalItem(doc, args[0])
		if err != nil {
			return err
		}
		removed = &domain.Item{Name: item.Name, Purchases: item.Purchases}
		if !doc.RemoveItem(item.ID) {
			return fmt.Errorf("item %q: %w", args[0], domain.ErrNotFound)
		}
		return nil
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s and %d purchases\n", removed.Name, len(removed.Purchases))
	return nil
}

func runRmPurchase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if rmRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := st.Purchases.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed purchase %s\n", args[0])
		return nil
	}

	if _, err := openDocument(cfg).Mutate(func(doc *domain.Document) error {
		if !doc.RemovePurchase(args[0]) {
			return fmt.Errorf("purchase %q: %w", args[0], domain.ErrNotFound)
		}
		return nil
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed purchase %s\n", args[0])
	return nil
}
