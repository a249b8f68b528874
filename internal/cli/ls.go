package cli

import (
	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/domain"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List items with purchase summaries",
	RunE:    runLs,
}

var lsRemote bool

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVar(&lsRemote, "remote", false, "List items from the database instead of the document")
}

func runLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	var items []domain.Item
	if lsRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		listed, err := st.Items.List()
		if err != nil {
			return err
		}
		for i := range listed {
			full, err := st.Items.GetWithPurchases(listed[i].ID)
			if err != nil {
				return err
			}
			listed[i] = *full
		}
		items = listed
	} else {
		doc, err := openDocument(cfg).Load()
		if err != nil {
			return err
		}
		items = doc.Items
	}

	return renderItems(r, items)
}
