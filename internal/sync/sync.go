// Package sync pushes the local document into the relational store. The
// push is sequential and partial-failure tolerant: an item that fails is
// recorded and skipped, the rest of the batch continues. There is no
// batch-level transaction.
package sync

import (
	"fmt"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/store"
)

// Result accumulates the outcome of one push.
type Result struct {
	Items           int
	ItemsCreated    int
	PurchasesPushed int
	Succeeded       int
	Failed          int
	Errors          []ItemError
}

// ItemError records a failure for a specific item.
type ItemError struct {
	Name string
	Err  error
}

// Push walks the document item by item: lookup-or-create by name, then
// append every purchase the store does not already hold (matched on date,
// quantity, price, and supplier, so repeated pushes do not duplicate
// history). A failed remote write is reported and left unretried.
func Push(st *store.Store, doc *domain.Document) *Result {
	result := &Result{Items: len(doc.Items)}

	for i := range doc.Items {
		item := &doc.Items[i]
		if err := pushItem(st, item, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ItemError{Name: item.Name, Err: err})
			continue
		}
		result.Succeeded++
	}

	return result
}

func pushItem(st *store.Store, item *domain.Item, result *Result) error {
	remote, created, err := st.Items.CreateByName(item.Name)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	if created {
		result.ItemsCreated++
	}

	for _, p := range item.Purchases {
		exists, err := st.Purchases.Exists(remote.ID, p)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if _, err := st.Purchases.Add(remote.ID, store.PurchaseParams{
			Date:      p.Date,
			Qty:       p.Qty,
			UnitPrice: p.UnitPrice,
			Supplier:  p.Supplier,
		}); err != nil {
			return fmt.Errorf("failed to push purchase: %w", err)
		}
		result.PurchasesPushed++
	}

	return nil
}
