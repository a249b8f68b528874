package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/events"
	"github.com/kmorrow/stocklog/internal/stats"
)

// ItemStore handles item persistence operations.
type ItemStore struct {
	store *Store
}

const itemColumns = "id, name, created_at, updated_at"

func scanItem(row interface{ Scan(dest ...interface{}) error }) (*domain.Item, error) {
	var item domain.Item
	var createdAt, updatedAt string

	if err := row.Scan(&item.ID, &item.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateByName looks up an item by name (case-insensitive, trimmed) and
// creates it when missing. The match policy deliberately mirrors the local
// merge so repeated syncs land on the same row. Returns the item and
// whether it was created.
func (is *ItemStore) CreateByName(name string) (*domain.Item, bool, error) {
	normalized, err := domain.NormalizeName(name)
	if err != nil {
		return nil, false, err
	}

	existing, err := is.GetByName(normalized)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	var item *domain.Item
	err = is.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		id := uuid.NewString()
		if _, err := tx.Exec(
			"INSERT INTO items (id, name) VALUES (?, ?)", id, normalized,
		); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		created, err := scanItem(tx.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", id))
		if err != nil {
			return fmt.Errorf("failed to read created item: %w", err)
		}
		item = created

		return ew.LogItemCreated(tx, id, normalized)
	})
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Get returns an item by ID without its purchases.
func (is *ItemStore) Get(id string) (*domain.Item, error) {
	item, err := scanItem(is.store.db.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetByName returns an item by case-insensitive name match. Unlike Get it
// surfaces sql.ErrNoRows directly so CreateByName can branch on it.
func (is *ItemStore) GetByName(name string) (*domain.Item, error) {
	return scanItem(is.store.db.QueryRow(
		"SELECT "+itemColumns+" FROM items WHERE name = ? COLLATE NOCASE", name,
	))
}

// GetWithPurchases returns an item with its purchases ordered by date
// descending; same-date purchases keep insertion order.
func (is *ItemStore) GetWithPurchases(id string) (*domain.Item, error) {
	item, err := is.Get(id)
	if err != nil {
		return nil, err
	}

	purchases, err := is.store.Purchases.listForItem(id)
	if err != nil {
		return nil, err
	}
	item.Purchases = purchases
	return item, nil
}

// List returns all items, oldest first, without purchases.
func (is *ItemStore) List() ([]domain.Item, error) {
	return is.queryItems("SELECT " + itemColumns + " FROM items ORDER BY created_at, rowid")
}

// Search returns items whose name contains the substring, case-insensitive.
func (is *ItemStore) Search(substr string) ([]domain.Item, error) {
	return is.queryItems(
		"SELECT "+itemColumns+" FROM items WHERE name LIKE '%' || ? || '%' ORDER BY name COLLATE NOCASE",
		substr,
	)
}

func (is *ItemStore) queryItems(query string, args ...interface{}) ([]domain.Item, error) {
	rows, err := is.store.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// Stats computes the derived statistics for an item's purchase history.
func (is *ItemStore) Stats(id string) (*stats.Summary, error) {
	item, err := is.GetWithPurchases(id)
	if err != nil {
		return nil, err
	}
	summary := stats.Compute(item.Purchases)
	return &summary, nil
}

// Rename updates an item's display name. The schema trigger refreshes
// updated_at.
func (is *ItemStore) Rename(id, name string) error {
	normalized, err := domain.NormalizeName(name)
	if err != nil {
		return err
	}

	return is.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec("UPDATE items SET name = ? WHERE id = ?", normalized, id)
		if err != nil {
			return fmt.Errorf("failed to rename item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return ew.LogItemRenamed(tx, id, normalized)
	})
}

// Delete removes an item; the foreign key cascade removes its purchases.
// Irreversible.
func (is *ItemStore) Delete(id string) error {
	return is.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var purchases int
		if err := tx.QueryRow("SELECT COUNT(*) FROM purchases WHERE item_id = ?", id).Scan(&purchases); err != nil {
			return fmt.Errorf("failed to count purchases: %w", err)
		}

		res, err := tx.Exec("DELETE FROM items WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}

		return ew.LogItemDeleted(tx, id, purchases)
	})
}

// scanAmount parses a stored NUMERIC column into a decimal.
func scanAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return d, nil
}
