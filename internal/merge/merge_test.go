package merge

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/stats"
)

func row(name, date, qty, price string) Row {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return Row{
		Name:      name,
		Date:      d,
		Qty:       decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestApplyCreatesItem(t *testing.T) {
	doc := &domain.Document{}

	item, err := Apply(doc, row("Widget", "2024-01-01", "10", "25.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Name != "Widget" {
		t.Errorf("expected name Widget, got %q", item.Name)
	}
	if item.ID == "" {
		t.Error("expected a fresh item ID")
	}
	if len(item.Purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(item.Purchases))
	}
	if item.Purchases[0].ItemID != item.ID {
		t.Error("purchase not linked to its item")
	}
}

func TestApplyCaseInsensitiveMatch(t *testing.T) {
	doc := &domain.Document{}

	if _, err := Apply(doc, row("Widget", "2024-01-01", "10", "25.5")); err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(doc, row("widget", "2024-01-02", "5", "27")); err != nil {
		t.Fatal(err)
	}

	if len(doc.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(doc.Items))
	}
	item := doc.Items[0]
	if item.Name != "Widget" {
		t.Errorf("first spelling should win, got %q", item.Name)
	}
	if len(item.Purchases) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(item.Purchases))
	}

	// Worked example: totals and price change over the merged history.
	s := stats.Compute(item.Purchases)
	if s.TotalSpent.String() != "390" {
		t.Errorf("expected total 390, got %s", s.TotalSpent)
	}
	if s.PriceChange == nil || s.PriceChange.String() != "1.5" {
		t.Errorf("expected price change 1.5, got %v", s.PriceChange)
	}
}

func TestApplyWhitespaceName(t *testing.T) {
	doc := &domain.Document{}

	if _, err := Apply(doc, row("  Widget ", "2024-01-01", "1", "1")); err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(doc, row("WIDGET", "2024-01-02", "1", "1")); err != nil {
		t.Fatal(err)
	}

	if len(doc.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(doc.Items))
	}
}

func TestApplyEmptyNameRejected(t *testing.T) {
	doc := &domain.Document{}

	if _, err := Apply(doc, row(" ", "2024-01-01", "1", "1")); err == nil {
		t.Fatal("expected error for whitespace-only name")
	}
	if len(doc.Items) != 0 {
		t.Error("no item should be created on rejection")
	}
}

func TestApplyCoercesNegativeAmounts(t *testing.T) {
	doc := &domain.Document{}

	item, err := Apply(doc, Row{
		Name:      "Widget",
		Qty:       decimal.NewFromInt(-5),
		UnitPrice: decimal.NewFromInt(-2),
	})
	if err != nil {
		t.Fatal(err)
	}
	p := item.Purchases[0]
	if !p.Qty.IsZero() || !p.UnitPrice.IsZero() {
		t.Errorf("negative amounts not coerced to zero: qty=%s price=%s", p.Qty, p.UnitPrice)
	}
}

func TestApplyLeavesExistingPurchasesAlone(t *testing.T) {
	doc := &domain.Document{}
	if _, err := Apply(doc, row("Widget", "2024-01-01", "10", "25.5")); err != nil {
		t.Fatal(err)
	}
	before := doc.Items[0].Purchases[0].ID

	if _, err := Apply(doc, row("widget", "2024-01-02", "5", "27")); err != nil {
		t.Fatal(err)
	}

	if doc.Items[0].Purchases[0].ID != before {
		t.Error("existing purchase was disturbed by merge")
	}
	if doc.Items[0].ID == "" {
		t.Error("item identity lost")
	}
}

func TestApplyBatchGroupsByName(t *testing.T) {
	doc := &domain.Document{}

	result, err := ApplyBatch(doc, []Row{
		row("Widget", "2024-01-01", "1", "10"),
		row("Gadget", "2024-01-01", "2", "20"),
		row("WIDGET", "2024-01-02", "3", "11"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.ItemsCreated != 2 {
		t.Errorf("expected 2 items created, got %d", result.ItemsCreated)
	}
	if result.PurchasesAdded != 3 {
		t.Errorf("expected 3 purchases added, got %d", result.PurchasesAdded)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(doc.Items))
	}

	widget := doc.FindItem("widget")
	if widget == nil || len(widget.Purchases) != 2 {
		t.Fatal("expected widget with 2 purchases in row order")
	}
	if !widget.Purchases[0].Date.Before(widget.Purchases[1].Date) {
		t.Error("purchases not appended in row order")
	}
}

func TestApplyBatchSkipsBlankNames(t *testing.T) {
	doc := &domain.Document{}

	result, err := ApplyBatch(doc, []Row{
		row("Widget", "2024-01-01", "1", "10"),
		{Name: "   "},
		row("Widget", "2024-01-02", "1", "10"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.RowsSkipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", result.RowsSkipped)
	}
	if result.PurchasesAdded != 2 {
		t.Errorf("expected 2 purchases, got %d", result.PurchasesAdded)
	}
	if len(doc.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(doc.Items))
	}
}

func TestApplyBatchIntoExistingDocument(t *testing.T) {
	doc := &domain.Document{}
	if _, err := Apply(doc, row("Widget", "2024-01-01", "10", "25.5")); err != nil {
		t.Fatal(err)
	}
	existingID := doc.Items[0].ID

	result, err := ApplyBatch(doc, []Row{
		row("widget", "2024-01-02", "5", "27"),
		row("Bolt", "2024-01-03", "100", "0.1"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.ItemsCreated != 1 {
		t.Errorf("expected only Bolt created, got %d", result.ItemsCreated)
	}
	widget := doc.FindItem("Widget")
	if widget.ID != existingID {
		t.Error("existing item identity changed")
	}
	if len(widget.Purchases) != 2 {
		t.Errorf("expected purchases appended, got %d", len(widget.Purchases))
	}
}
