package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmorrow/stocklog/internal/codec"
	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/merge"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import purchase history from a CSV or JSON file",
	Long: `Imports purchase history into the local document. The format is detected
from the file extension, falling back to the content.

CSV imports merge into the existing document: rows join existing items by
name (case-insensitive) and rows with a blank name are skipped. JSON
imports replace the document wholesale.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importFormat string

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: csv or json (default: auto-detect)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	format, err := importFileFormat(args[0], data)
	if err != nil {
		return err
	}

	file := openDocument(cfg)
	switch format {
	case codec.FormatCSV:
		rows, err := codec.ImportCSV(data, time.Now().UTC())
		if err != nil {
			return err
		}
		var result *merge.Result
		if _, err := file.Mutate(func(doc *domain.Document) error {
			result, err = merge.ApplyBatch(doc, rows)
			return err
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d purchases (%d new items, %d rows skipped)\n",
			result.PurchasesAdded, result.ItemsCreated, result.RowsSkipped)
	case codec.FormatJSON:
		doc, err := codec.ImportJSON(data)
		if err != nil {
			return err
		}
		if err := file.Save(doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Replaced document with %d items\n", len(doc.Items))
	default:
		return domain.ErrUnsupportedFormat
	}
	return nil
}

func importFileFormat(path string, data []byte) (codec.Format, error) {
	switch importFormat {
	case "":
		return codec.DetectPath(path, data)
	case "csv":
		return codec.FormatCSV, nil
	case "json":
		return codec.FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format %q: %w", importFormat, domain.ErrUnsupportedFormat)
	}
}
