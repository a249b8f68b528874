// Package domain defines the core types shared by the document, codec,
// merge, and store layers.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a distinct inventory article tracked by name. Names are unique
// case-insensitively within a document or store. An Item owns its purchases
// exclusively; deleting an Item deletes them all.
type Item struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	Purchases []Purchase `json:"purchases"`
}

// Purchase is one recorded acquisition event. It belongs to exactly one Item
// for its lifetime and is never reparented.
type Purchase struct {
	ID        string          `json:"id" db:"id"`
	ItemID    string          `json:"item_id" db:"item_id"`
	Date      time.Time       `json:"date" db:"date"`
	Qty       decimal.Decimal `json:"qty" db:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Supplier  string          `json:"supplier,omitempty" db:"supplier"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Total returns qty * unit price for this purchase.
func (p Purchase) Total() decimal.Decimal {
	return p.Qty.Mul(p.UnitPrice)
}

// Document is the complete in-memory collection of items at a point in time.
type Document struct {
	Items []Item `json:"items"`
}

// FindItem returns the item whose name matches case-insensitively (after
// trimming), or nil if there is none.
func (d *Document) FindItem(name string) *Item {
	name = strings.TrimSpace(name)
	for i := range d.Items {
		if strings.EqualFold(d.Items[i].Name, name) {
			return &d.Items[i]
		}
	}
	return nil
}

// FindItemByID returns the item with the given ID, or nil.
func (d *Document) FindItemByID(id string) *Item {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}

// RemoveItem deletes the item with the given ID and, with it, all of its
// purchases. Returns true if an item was removed.
func (d *Document) RemoveItem(id string) bool {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return true
		}
	}
	return false
}

// RemovePurchase deletes a single purchase by ID, leaving its item and
// sibling purchases untouched. Returns true if a purchase was removed.
func (d *Document) RemovePurchase(id string) bool {
	for i := range d.Items {
		purchases := d.Items[i].Purchases
		for j := range purchases {
			if purchases[j].ID == id {
				d.Items[i].Purchases = append(purchases[:j], purchases[j+1:]...)
				return true
			}
		}
	}
	return false
}
