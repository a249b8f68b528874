// Package store provides the persistence layer over the relational
// database: item and purchase CRUD with event logging handled inside the
// same transaction as each mutation.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kmorrow/stocklog/internal/db"
	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/events"
)

// Store is the root store that provides access to domain-specific stores.
type Store struct {
	db *db.DB

	Items     *ItemStore
	Purchases *PurchaseStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Items = &ItemStore{store: s}
	s.Purchases = &PurchaseStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// withTx executes fn within a transaction. If fn returns nil, the
// transaction is committed; otherwise it is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return err
	}

	return tx.Commit()
}

// Wipe removes all items and, through the cascade, all purchases.
func (s *Store) Wipe() error {
	return s.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		if _, err := tx.Exec("DELETE FROM items"); err != nil {
			return fmt.Errorf("failed to wipe items: %w", err)
		}
		return ew.LogEvent(tx, &events.Event{
			ResourceType: "store",
			EventType:    "store.wiped",
		})
	})
}

// ExportDocument reads the whole store into an in-memory document, items in
// creation order with purchases ordered date descending.
func (s *Store) ExportDocument() (*domain.Document, error) {
	items, err := s.Items.List()
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{Items: make([]domain.Item, 0, len(items))}
	for _, item := range items {
		full, err := s.Items.GetWithPurchases(item.ID)
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, *full)
	}
	return doc, nil
}

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
