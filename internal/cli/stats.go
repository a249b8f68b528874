package cli

import (
	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/render"
	"github.com/kmorrow/stocklog/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats <item>",
	Short: "Show derived purchase statistics for an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var statsRemote bool

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsRemote, "remote", false, "Read from the database instead of the document")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	var name string
	var summary stats.Summary
	if statsRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		item, err := resolveRemoteItem(st, args[0])
		if err != nil {
			return err
		}
		name = item.Name
		summary = stats.Compute(item.Purchases)
	} else {
		doc, err := openDocument(cfg).Load()
		if err != nil {
			return err
		}
		item, err := resolveLocalItem(doc, args[0])
		if err != nil {
			return err
		}
		name = item.Name
		summary = stats.Compute(item.Purchases)
	}

	switch r.Format() {
	case render.FormatJSON:
		return r.RenderJSON(summary)
	case render.FormatYAML:
		return r.RenderYAML(summary)
	default:
		return renderStats(r, name, summary)
	}
}

func renderStats(r *render.Renderer, name string, s stats.Summary) error {
	headers := []string{"FIELD", "VALUE"}
	rows := [][]string{
		{"Item", name},
		{"Purchases", itoa(s.PurchaseCount)},
		{"Total spent", s.TotalSpent.String()},
		{"Average price", s.AveragePrice.String()},
	}
	if s.Last != nil {
		rows = append(rows,
			[]string{"Last date", s.Last.Date.UTC().Format("2006-01-02")},
			[]string{"Last price", s.Last.UnitPrice.String()})
	}
	if s.Previous != nil {
		rows = append(rows, []string{"Previous price", s.Previous.UnitPrice.String()})
	}
	if s.PriceChange != nil {
		rows = append(rows, []string{"Price change", s.PriceChange.String()})
	}
	return r.RenderRows(headers, rows)
}
