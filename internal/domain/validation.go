package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors surfaced across the CLI, codec, and store layers.
var (
	ErrEmptyName         = errors.New("item name is empty")
	ErrInvalidStructure  = errors.New("invalid structure")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNotFound          = errors.New("not found")
)

// NormalizeName trims surrounding whitespace and rejects empty names.
// The trimmed spelling is preserved; only matching is case-insensitive.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	return trimmed, nil
}

// SameName reports whether two names denote the same item: equal after
// trimming, ignoring case.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CoerceAmount normalizes a quantity or unit price to a non-negative value.
// Negative input becomes zero rather than an error; this mirrors the
// silent zero-coercion the import path is required to apply.
func CoerceAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseAmount parses a quantity or unit price from text. Blank, unparsable,
// or negative input yields zero, never an error.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return CoerceAmount(d)
}

// dateLayouts are the accepted purchase date formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDate parses a purchase date in RFC3339 or date-only form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
}
