// Package events writes audit rows to the event log alongside store
// mutations, inside the same transaction.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Event is one row in the event log.
type Event struct {
	ResourceType string
	ResourceID   string
	EventType    string
	Payload      map[string]interface{}
}

// Writer handles writing events to the event log.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogEvent writes an event, using tx when provided.
func (w *Writer) LogEvent(tx *sql.Tx, event *Event) error {
	var payload interface{}
	if len(event.Payload) > 0 {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
		payload = string(data)
	}

	query := `
		INSERT INTO event_log (resource_type, resource_id, event_type, payload)
		VALUES (?, ?, ?, ?)
	`
	executor := w.getExecutor(tx)
	if _, err := executor.Exec(query, event.ResourceType, event.ResourceID, event.EventType, payload); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// LogItemCreated logs an item creation event.
func (w *Writer) LogItemCreated(tx *sql.Tx, itemID, name string) error {
	return w.LogEvent(tx, &Event{
		ResourceType: "item",
		ResourceID:   itemID,
		EventType:    "item.created",
		Payload:      map[string]interface{}{"name": name},
	})
}

// LogItemDeleted logs an item deletion (and its purchase cascade).
func (w *Writer) LogItemDeleted(tx *sql.Tx, itemID string, purchases int) error {
	return w.LogEvent(tx, &Event{
		ResourceType: "item",
		ResourceID:   itemID,
		EventType:    "item.deleted",
		Payload:      map[string]interface{}{"purchases_cascaded": purchases},
	})
}

// LogItemRenamed logs an item rename.
func (w *Writer) LogItemRenamed(tx *sql.Tx, itemID, name string) error {
	return w.LogEvent(tx, &Event{
		ResourceType: "item",
		ResourceID:   itemID,
		EventType:    "item.renamed",
		Payload:      map[string]interface{}{"name": name},
	})
}

// LogPurchaseAdded logs a purchase append.
func (w *Writer) LogPurchaseAdded(tx *sql.Tx, purchaseID, itemID string) error {
	return w.LogEvent(tx, &Event{
		ResourceType: "purchase",
		ResourceID:   purchaseID,
		EventType:    "purchase.added",
		Payload:      map[string]interface{}{"item_id": itemID},
	})
}

// LogPurchaseDeleted logs a purchase deletion.
func (w *Writer) LogPurchaseDeleted(tx *sql.Tx, purchaseID string) error {
	return w.LogEvent(tx, &Event{
		ResourceType: "purchase",
		ResourceID:   purchaseID,
		EventType:    "purchase.deleted",
	})
}

// getExecutor returns the appropriate executor (tx or db).
func (w *Writer) getExecutor(tx *sql.Tx) interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}
