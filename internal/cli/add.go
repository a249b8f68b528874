package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/merge"
	"github.com/kmorrow/stocklog/internal/stats"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Record a purchase for an item",
	Long: `Records a purchase under the named item. If an item with the same name
already exists (matched case-insensitively), the purchase is appended to
its history; otherwise a new item is created.

Examples:
  stocklog add Widget --qty 10 --price 25.50
  stocklog add "Steel Bolt" --qty 100 --price 0.10 --date 2024-01-15 --supplier Acme`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var (
	addQty      string
	addPrice    string
	addDate     string
	addSupplier string
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addQty, "qty", "q", "", "Quantity purchased")
	addCmd.Flags().StringVarP(&addPrice, "price", "p", "", "Unit price")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Purchase date (YYYY-MM-DD, defaults to today)")
	addCmd.Flags().StringVarP(&addSupplier, "supplier", "s", "", "Supplier name")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Validate before touching the document: a bad date must not leave
	// partial state behind.
	date := time.Now().UTC()
	if addDate != "" {
		date, err = domain.ParseDate(addDate)
		if err != nil {
			return err
		}
	}

	row := merge.Row{
		Name:      args[0],
		Date:      date,
		Qty:       domain.ParseAmount(addQty),
		UnitPrice: domain.ParseAmount(addPrice),
		Supplier:  addSupplier,
	}

	var item *domain.Item
	if _, err := openDocument(cfg).Mutate(func(doc *domain.Document) error {
		merged, err := merge.Apply(doc, row)
		if err != nil {
			return err
		}
		item = merged
		return nil
	}); err != nil {
		return err
	}

	s := stats.Compute(item.Purchases)
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded purchase for %s (%d purchases, total spent %s)\n",
		item.Name, s.PurchaseCount, s.TotalSpent)
	return nil
}
