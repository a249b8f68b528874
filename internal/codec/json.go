package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kmorrow/stocklog/internal/domain"
)

// ExportJSON serializes the full document, all items with nested purchases.
func ExportJSON(doc *domain.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// ImportJSON parses a document shaped as {"items": [...]} or a bare array
// of items. Any other shape is rejected with domain.ErrInvalidStructure.
// The result replaces the target document; JSON import never merges.
func ImportJSON(data []byte) (*domain.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidStructure)
	}

	if trimmed[0] == '[' {
		var items []domain.Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidStructure, err)
		}
		if items == nil {
			items = []domain.Item{}
		}
		return &domain.Document{Items: items}, nil
	}

	var wrapper struct {
		Items *[]domain.Item `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidStructure, err)
	}
	if wrapper.Items == nil {
		return nil, fmt.Errorf("%w: expected {\"items\": [...]} or a bare array", domain.ErrInvalidStructure)
	}
	return &domain.Document{Items: *wrapper.Items}, nil
}
