// Package stats computes derived purchase statistics for an item.
// All functions are pure: they sort copies and never mutate their input.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kmorrow/stocklog/internal/domain"
)

// Summary holds the derived values for one item's purchase history.
// Last/Previous/PriceChange are nil when there are too few purchases to
// derive them; nil is meaningful (no comparison possible), not zero.
type Summary struct {
	Last          *domain.Purchase `json:"last,omitempty"`
	Previous      *domain.Purchase `json:"previous,omitempty"`
	PriceChange   *decimal.Decimal `json:"price_change,omitempty"`
	TotalSpent    decimal.Decimal  `json:"total_spent"`
	AveragePrice  decimal.Decimal  `json:"average_price"`
	PurchaseCount int              `json:"purchase_count"`
}

// SortByDateDesc returns a copy of the purchases ordered by date descending.
// Ties keep their original (append) order.
func SortByDateDesc(purchases []domain.Purchase) []domain.Purchase {
	sorted := make([]domain.Purchase, len(purchases))
	copy(sorted, purchases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// Compute derives the summary for a purchase list. The input order does not
// matter; purchases are sorted internally. Calling it twice on an unchanged
// list yields identical results.
func Compute(purchases []domain.Purchase) Summary {
	sorted := SortByDateDesc(purchases)

	summary := Summary{
		TotalSpent:    decimal.Zero,
		AveragePrice:  decimal.Zero,
		PurchaseCount: len(sorted),
	}

	for i := range sorted {
		summary.TotalSpent = summary.TotalSpent.Add(sorted[i].Total())
	}

	if len(sorted) > 0 {
		last := sorted[0]
		summary.Last = &last
		summary.AveragePrice = summary.TotalSpent.Div(decimal.NewFromInt(int64(len(sorted))))
	}
	if len(sorted) > 1 {
		previous := sorted[1]
		summary.Previous = &previous
		change := summary.Last.UnitPrice.Sub(previous.UnitPrice)
		summary.PriceChange = &change
	}

	return summary
}
