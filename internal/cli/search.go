package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search <substring>",
	Short: "Find items by name substring",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var searchRemote bool

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchRemote, "remote", false, "Search the database instead of the document")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	var items []domain.Item
	if searchRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		matched, err := st.Items.Search(args[0])
		if err != nil {
			return err
		}
		for i := range matched {
			full, err := st.Items.GetWithPurchases(matched[i].ID)
			if err != nil {
				return err
			}
			matched[i] = *full
		}
		items = matched
	} else {
		doc, err := openDocument(cfg).Load()
		if err != nil {
			return err
		}
		needle := strings.ToLower(args[0])
		for _, item := range doc.Items {
			if strings.Contains(strings.ToLower(item.Name), needle) {
				items = append(items, item)
			}
		}
	}

	return renderItems(r, items)
}
