package cli

import (
	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/render"
	"github.com/kmorrow/stocklog/internal/stats"
)

var showCmd = &cobra.Command{
	Use:   "show <item>",
	Short: "Show an item's purchase history and stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showRemote bool

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRemote, "remote", false, "Read the item from the database instead of the document")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	var item *domain.Item
	if showRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		item, err = resolveRemoteItem(st, args[0])
		if err != nil {
			return err
		}
	} else {
		doc, err := openDocument(cfg).Load()
		if err != nil {
			return err
		}
		item, err = resolveLocalItem(doc, args[0])
		if err != nil {
			return err
		}
	}

	switch r.Format() {
	case render.FormatJSON:
		return r.RenderJSON(itemView{Item: *item, Stats: stats.Compute(item.Purchases)})
	case render.FormatYAML:
		return r.RenderYAML(itemView{Item: *item, Stats: stats.Compute(item.Purchases)})
	default:
		return renderPurchases(r, item)
	}
}

// renderPurchases prints one row per purchase, newest first, followed by
// the derived summary.
func renderPurchases(r *render.Renderer, item *domain.Item) error {
	headers := []string{"ID", "DATE", "QTY", "UNIT PRICE", "TOTAL", "SUPPLIER"}

	sorted := stats.SortByDateDesc(item.Purchases)
	rows := make([][]string, 0, len(sorted))
	for i := range sorted {
		p := &sorted[i]
		supplier := p.Supplier
		if supplier == "" {
			supplier = "-"
		}
		rows = append(rows, []string{
			shortID(p.ID),
			p.Date.UTC().Format("2006-01-02"),
			p.Qty.String(),
			p.UnitPrice.String(),
			p.Total().String(),
			supplier,
		})
	}
	if err := r.RenderRows(headers, rows); err != nil {
		return err
	}

	s := stats.Compute(item.Purchases)
	r.Printf("\n%s: %d purchases, total spent %s, average price %s",
		item.Name, s.PurchaseCount, s.TotalSpent, s.AveragePrice)
	if s.PriceChange != nil {
		r.Printf(", price change %s", s.PriceChange)
	}
	r.Printf("\n")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
