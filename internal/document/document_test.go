package document

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/merge"
)

func tempFile(t *testing.T) *File {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "document.json"))
}

func TestLoadMissingFile(t *testing.T) {
	f := tempFile(t)

	doc, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Items) != 0 {
		t.Errorf("expected empty document, got %d items", len(doc.Items))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	f := tempFile(t)

	doc := &domain.Document{}
	if _, err := merge.Apply(doc, merge.Row{Name: "Widget"}); err != nil {
		t.Fatal(err)
	}
	if err := f.Save(doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Name != "Widget" {
		t.Errorf("round trip lost data: %+v", loaded.Items)
	}
	if loaded.Items[0].ID != doc.Items[0].ID {
		t.Error("item identity changed across save/load")
	}
}

func TestMutateSavesOnSuccess(t *testing.T) {
	f := tempFile(t)

	if _, err := f.Mutate(func(doc *domain.Document) error {
		_, err := merge.Apply(doc, merge.Row{Name: "Widget"})
		return err
	}); err != nil {
		t.Fatalf("mutate failed: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Items) != 1 {
		t.Errorf("mutation not persisted, got %d items", len(loaded.Items))
	}
}

func TestMutateDoesNotSaveOnError(t *testing.T) {
	f := tempFile(t)
	if _, err := f.Mutate(func(doc *domain.Document) error {
		_, err := merge.Apply(doc, merge.Row{Name: "Widget"})
		return err
	}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	if _, err := f.Mutate(func(doc *domain.Document) error {
		doc.Items = nil
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Items) != 1 {
		t.Error("failed mutation must leave prior state intact")
	}
}

func TestClear(t *testing.T) {
	f := tempFile(t)
	if _, err := f.Mutate(func(doc *domain.Document) error {
		_, err := merge.Apply(doc, merge.Row{Name: "Widget"})
		return err
	}); err != nil {
		t.Fatal(err)
	}

	if err := f.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Items) != 0 {
		t.Errorf("expected cleared document, got %d items", len(loaded.Items))
	}
}
