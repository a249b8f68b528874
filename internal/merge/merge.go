// Package merge attaches incoming purchases to a document, matching items
// by name. This is the one path through which items and purchases are
// created locally: manual entry, CSV import, and remote pull all funnel
// through it.
package merge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kmorrow/stocklog/internal/domain"
)

// Row is one incoming (name, purchase-fields) pair. Quantity and price are
// coerced to non-negative values on apply; they are never rejected.
type Row struct {
	Name      string
	Date      time.Time
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
	Supplier  string
}

// Result reports what a batch merge changed.
type Result struct {
	ItemsCreated   int
	PurchasesAdded int
	RowsSkipped    int
}

// Apply merges a single row into the document. If an item with the same
// name exists (case-insensitive, trimmed) the purchase is appended to it;
// otherwise a new item is created holding just this purchase. Existing
// purchases are never touched. Returns the affected item.
func Apply(doc *domain.Document, row Row) (*domain.Item, error) {
	name, err := domain.NormalizeName(row.Name)
	if err != nil {
		return nil, fmt.Errorf("cannot merge purchase: %w", err)
	}

	now := time.Now().UTC()
	item := doc.FindItem(name)
	if item == nil {
		doc.Items = append(doc.Items, domain.Item{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		})
		item = &doc.Items[len(doc.Items)-1]
	}

	date := row.Date
	if date.IsZero() {
		date = now
	}

	item.Purchases = append(item.Purchases, domain.Purchase{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		Date:      date.UTC(),
		Qty:       domain.CoerceAmount(row.Qty),
		UnitPrice: domain.CoerceAmount(row.UnitPrice),
		Supplier:  row.Supplier,
		CreatedAt: now,
	})
	item.UpdatedAt = now

	return item, nil
}

// ApplyBatch merges rows in order. Rows sharing a name (case-insensitive)
// land on a single item, so importing N rows for one name yields one item
// with N purchases. Rows with a blank name are skipped silently, matching
// the CSV import contract.
func ApplyBatch(doc *domain.Document, rows []Row) (*Result, error) {
	result := &Result{}

	for _, row := range rows {
		if _, err := domain.NormalizeName(row.Name); err != nil {
			result.RowsSkipped++
			continue
		}

		existed := doc.FindItem(row.Name) != nil
		if _, err := Apply(doc, row); err != nil {
			return result, err
		}

		result.PurchasesAdded++
		if !existed {
			result.ItemsCreated++
		}
	}

	return result, nil
}
