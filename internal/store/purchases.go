package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/events"
)

// PurchaseStore handles purchase persistence operations.
type PurchaseStore struct {
	store *Store
}

// PurchaseParams contains the fields for appending a purchase to an item.
type PurchaseParams struct {
	Date      time.Time
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
	Supplier  string
}

const purchaseColumns = "id, item_id, date, qty, unit_price, IFNULL(supplier, ''), created_at"

func scanPurchase(row interface{ Scan(dest ...interface{}) error }) (*domain.Purchase, error) {
	var p domain.Purchase
	var date, qty, unitPrice, createdAt string

	if err := row.Scan(&p.ID, &p.ItemID, &date, &qty, &unitPrice, &p.Supplier, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if p.Qty, err = scanAmount(qty); err != nil {
		return nil, err
	}
	if p.UnitPrice, err = scanAmount(unitPrice); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Add appends a purchase to an item. Quantity and price are coerced to
// non-negative values; a zero date defaults to now. The owning item's
// updated_at is refreshed in the same transaction.
func (ps *PurchaseStore) Add(itemID string, params PurchaseParams) (*domain.Purchase, error) {
	if _, err := ps.store.Items.Get(itemID); err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var purchase *domain.Purchase
	err := ps.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		id := uuid.NewString()

		var supplier interface{}
		if params.Supplier != "" {
			supplier = params.Supplier
		}

		if _, err := tx.Exec(`
			INSERT INTO purchases (id, item_id, date, qty, unit_price, supplier)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			id, itemID, formatTime(date),
			domain.CoerceAmount(params.Qty).String(),
			domain.CoerceAmount(params.UnitPrice).String(),
			supplier,
		); err != nil {
			return fmt.Errorf("failed to add purchase: %w", err)
		}

		if _, err := tx.Exec(
			"UPDATE items SET updated_at = ? WHERE id = ?", formatTime(time.Now()), itemID,
		); err != nil {
			return fmt.Errorf("failed to touch item: %w", err)
		}

		created, err := scanPurchase(tx.QueryRow("SELECT "+purchaseColumns+" FROM purchases WHERE id = ?", id))
		if err != nil {
			return fmt.Errorf("failed to read created purchase: %w", err)
		}
		purchase = created

		return ew.LogPurchaseAdded(tx, id, itemID)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// Get returns a purchase by ID.
func (ps *PurchaseStore) Get(id string) (*domain.Purchase, error) {
	p, err := scanPurchase(ps.store.db.QueryRow("SELECT "+purchaseColumns+" FROM purchases WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

// Delete removes a single purchase. Its item and sibling purchases are
// untouched.
func (ps *PurchaseStore) Delete(id string) error {
	return ps.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec("DELETE FROM purchases WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete purchase: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("purchase %s: %w", id, domain.ErrNotFound)
		}
		return ew.LogPurchaseDeleted(tx, id)
	})
}

// Exists reports whether the item already has a purchase with the same
// date, quantity, price, and supplier. Used by sync to keep repeated pushes
// from duplicating history.
func (ps *PurchaseStore) Exists(itemID string, p domain.Purchase) (bool, error) {
	var count int
	err := ps.store.db.QueryRow(`
		SELECT COUNT(*) FROM purchases
		WHERE item_id = ? AND date = ? AND qty = ? AND unit_price = ? AND IFNULL(supplier, '') = ?
	`,
		itemID, formatTime(p.Date),
		domain.CoerceAmount(p.Qty).String(),
		domain.CoerceAmount(p.UnitPrice).String(),
		p.Supplier,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

// listForItem returns an item's purchases in display order: date
// descending, ties in insertion order.
func (ps *PurchaseStore) listForItem(itemID string) ([]domain.Purchase, error) {
	rows, err := ps.store.db.Query(
		"SELECT "+purchaseColumns+" FROM purchases WHERE item_id = ? ORDER BY date DESC, rowid ASC",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	purchases := []domain.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}
	return purchases, nil
}
