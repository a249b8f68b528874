package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/codec"
	"github.com/kmorrow/stocklog/internal/domain"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show differences between the document and the database",
	Long: `Renders both the local document and the database contents as canonical
CSV (items ordered by name, purchases by date) and prints a unified diff.
No output means the two sides hold the same purchase history.`,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	local, err := openDocument(cfg).Load()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	remote, err := st.ExportDocument()
	if err != nil {
		return err
	}

	localCSV, err := canonicalCSV(local)
	if err != nil {
		return err
	}
	remoteCSV, err := canonicalCSV(remote)
	if err != nil {
		return err
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(localCSV),
		B:        difflib.SplitLines(remoteCSV),
		FromFile: "document",
		ToFile:   "database",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to compute diff: %w", err)
	}

	if text == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Document and database are in sync")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

// canonicalCSV renders a document as CSV with a stable ordering so the
// diff only shows real content differences, never ID or ordering noise.
func canonicalCSV(doc *domain.Document) (string, error) {
	sorted := domain.Document{Items: make([]domain.Item, len(doc.Items))}
	copy(sorted.Items, doc.Items)

	sort.SliceStable(sorted.Items, func(i, j int) bool {
		return strings.ToLower(sorted.Items[i].Name) < strings.ToLower(sorted.Items[j].Name)
	})
	for i := range sorted.Items {
		purchases := make([]domain.Purchase, len(sorted.Items[i].Purchases))
		copy(purchases, sorted.Items[i].Purchases)
		sort.SliceStable(purchases, func(a, b int) bool {
			return purchases[a].Date.Before(purchases[b].Date)
		})
		sorted.Items[i].Purchases = purchases
	}

	data, err := codec.ExportCSV(&sorted)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
