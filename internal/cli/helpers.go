package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/config"
	"github.com/kmorrow/stocklog/internal/db"
	"github.com/kmorrow/stocklog/internal/document"
	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/render"
	"github.com/kmorrow/stocklog/internal/stats"
	"github.com/kmorrow/stocklog/internal/store"
)

// loadConfig loads configuration and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if file := cmd.Flag("file").Value.String(); file != "" {
		cfg.DocumentPath = file
	}
	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if output := cmd.Flag("output").Value.String(); output != "" {
		cfg.Output = output
	}

	return cfg, nil
}

// openDocument returns the local document container.
func openDocument(cfg *config.Config) *document.File {
	return document.New(cfg.DocumentPath)
}

// openStore opens the database, applies pending migrations, and wraps it
// in a store. The caller must call the returned close function.
func openStore(cfg *config.Config) (*store.Store, func(), error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store.New(database), func() { database.Close() }, nil
}

// newRenderer builds a renderer for the configured output format.
func newRenderer(cmd *cobra.Command, cfg *config.Config) (*render.Renderer, error) {
	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format}), nil
}

// resolveLocalItem finds an item in the document by ID or name.
func resolveLocalItem(doc *domain.Document, ref string) (*domain.Item, error) {
	if item := doc.FindItemByID(ref); item != nil {
		return item, nil
	}
	if item := doc.FindItem(ref); item != nil {
		return item, nil
	}
	return nil, fmt.Errorf("item %q: %w", ref, domain.ErrNotFound)
}

// resolveRemoteItem finds an item in the store by ID or name and loads
// its purchases.
func resolveRemoteItem(st *store.Store, ref string) (*domain.Item, error) {
	item, err := st.Items.GetWithPurchases(ref)
	if err == nil {
		return item, nil
	}
	byName, nameErr := st.Items.GetByName(ref)
	if nameErr != nil {
		return nil, fmt.Errorf("item %q: %w", ref, domain.ErrNotFound)
	}
	return st.Items.GetWithPurchases(byName.ID)
}

// itemView is the JSON/YAML projection of an item with its derived stats.
type itemView struct {
	domain.Item
	Stats stats.Summary `json:"stats"`
}

func buildItemViews(items []domain.Item) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView{Item: item, Stats: stats.Compute(item.Purchases)})
	}
	return views
}

// itemTableRows formats items plus derived stats for table/tsv output.
func itemTableRows(items []domain.Item) ([]string, [][]string) {
	headers := []string{"NAME", "PURCHASES", "LAST DATE", "UNIT PRICE", "CHANGE", "TOTAL SPENT"}

	rows := make([][]string, 0, len(items))
	for i := range items {
		s := stats.Compute(items[i].Purchases)

		lastDate, lastPrice, change := "-", "-", "-"
		if s.Last != nil {
			lastDate = s.Last.Date.UTC().Format("2006-01-02")
			lastPrice = s.Last.UnitPrice.String()
		}
		if s.PriceChange != nil {
			change = s.PriceChange.String()
		}

		rows = append(rows, []string{
			items[i].Name,
			fmt.Sprintf("%d", s.PurchaseCount),
			lastDate,
			lastPrice,
			change,
			s.TotalSpent.String(),
		})
	}
	return headers, rows
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

// renderItems writes items in the configured format.
func renderItems(r *render.Renderer, items []domain.Item) error {
	switch r.Format() {
	case render.FormatJSON:
		return r.RenderJSON(buildItemViews(items))
	case render.FormatYAML:
		return r.RenderYAML(buildItemViews(items))
	default:
		headers, rows := itemTableRows(items)
		return r.RenderRows(headers, rows)
	}
}
