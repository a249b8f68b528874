// Package codec maps the in-memory document to and from CSV and JSON text.
// The two formats have deliberately different import semantics: CSV merges
// into the target document, JSON replaces it wholesale.
package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/merge"
)

// csvHeader is the literal export column order. Import does not depend on
// it; columns are located by substring match.
const csvHeader = "Item Name,Purchase Date,Quantity,Unit Price,Supplier,Total"

const csvDateLayout = "2006-01-02"

// ExportCSV renders one row per (item, purchase) pair. Name and supplier
// are quote-wrapped with internal quotes doubled; numeric and date fields
// are bare. Total is computed at export time.
func ExportCSV(doc *domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(csvHeader)
	buf.WriteByte('\n')

	for i := range doc.Items {
		item := &doc.Items[i]
		for _, p := range item.Purchases {
			fmt.Fprintf(&buf, "%s,%s,%s,%s,%s,%s\n",
				quoteField(item.Name),
				p.Date.UTC().Format(csvDateLayout),
				p.Qty.String(),
				p.UnitPrice.String(),
				quoteField(p.Supplier),
				p.Total().String(),
			)
		}
	}

	return buf.Bytes(), nil
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// columnIndexes holds the resolved column position per category, -1 when
// the file has no such column.
type columnIndexes struct {
	name     int
	date     int
	qty      int
	price    int
	supplier int
}

// locateColumns matches header text case-insensitively by substring, first
// match wins per category. Only the item name column is mandatory.
func locateColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{name: -1, date: -1, qty: -1, price: -1, supplier: -1}

	find := func(substrings ...string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, sub := range substrings {
				if strings.Contains(h, sub) {
					return i
				}
			}
		}
		return -1
	}

	cols.name = find("item")
	cols.date = find("date")
	cols.qty = find("qty", "quantity")
	cols.price = find("unit", "price")
	cols.supplier = find("supplier")

	if cols.name == -1 {
		return cols, fmt.Errorf("%w: no item name column in CSV header", domain.ErrInvalidStructure)
	}
	return cols, nil
}

// ImportCSV parses CSV text into merge rows. Rows with a blank name are
// skipped silently; absent or blank cells default to (now, zero quantity,
// zero price, empty supplier). The caller merges the rows into a document
// via merge.ApplyBatch.
func ImportCSV(data []byte, now time.Time) ([]merge.Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []merge.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		name := cell(record, cols.name)
		if strings.TrimSpace(name) == "" {
			continue
		}

		date := now.UTC()
		if raw := cell(record, cols.date); strings.TrimSpace(raw) != "" {
			if parsed, err := domain.ParseDate(raw); err == nil {
				date = parsed
			}
		}

		rows = append(rows, merge.Row{
			Name:      name,
			Date:      date,
			Qty:       domain.ParseAmount(cell(record, cols.qty)),
			UnitPrice: domain.ParseAmount(cell(record, cols.price)),
			Supplier:  strings.TrimSpace(cell(record, cols.supplier)),
		})
	}

	return rows, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
