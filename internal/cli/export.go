package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/codec"
	"github.com/kmorrow/stocklog/internal/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export purchase history to a CSV or JSON file",
	Long: `Exports the document to the given path. The format is taken from the
--format flag or, when absent, from the file extension (defaulting to
JSON). CSV export is lossy: it carries one row per purchase and drops
item and purchase IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportFormat string
	exportRemote bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: csv or json (default: from extension)")
	exportCmd.Flags().BoolVar(&exportRemote, "remote", false, "Export from the database instead of the document")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var doc *domain.Document
	if exportRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		doc, err = st.ExportDocument()
		if err != nil {
			return err
		}
	} else {
		doc, err = openDocument(cfg).Load()
		if err != nil {
			return err
		}
	}

	format, err := exportFileFormat(args[0])
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case codec.FormatCSV:
		data, err = codec.ExportCSV(doc)
	default:
		data, err = codec.ExportJSON(doc)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}

	purchases := 0
	for i := range doc.Items {
		purchases += len(doc.Items[i].Purchases)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items (%d purchases) to %s\n", len(doc.Items), purchases, args[0])
	return nil
}

func exportFileFormat(path string) (codec.Format, error) {
	switch exportFormat {
	case "":
		if format, err := codec.DetectPath(path, nil); err == nil {
			return format, nil
		}
		return codec.FormatJSON, nil
	case "csv":
		return codec.FormatCSV, nil
	case "json":
		return codec.FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format %q: %w", exportFormat, domain.ErrUnsupportedFormat)
	}
}
