package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmorrow/stocklog/internal/document"
	"github.com/kmorrow/stocklog/internal/domain"
)

// setupTestEnv points the document and database at a temp directory.
func setupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("STOCKLOG_DOC_PATH", filepath.Join(tmpDir, "document.json"))
	t.Setenv("STOCKLOG_DB_PATH", filepath.Join(tmpDir, "stocklog.db"))
	return tmpDir
}

// runCommand executes the root command with fresh flag state.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	addQty, addPrice, addDate, addSupplier = "", "", "", ""
	importFormat, exportFormat = "", ""
	lsRemote, showRemote, rmRemote, renameRemote = false, false, false, false
	searchRemote, statsRemote, exportRemote, clearRemote = false, false, false, false
	clearYes = false
	for _, name := range []string{"file", "db", "output"} {
		if err := rootCmd.PersistentFlags().Set(name, ""); err != nil {
			t.Fatalf("Failed to reset flag %s: %v", name, err)
		}
	}

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func loadTestDocument(t *testing.T) *domain.Document {
	t.Helper()
	doc, err := document.New(os.Getenv("STOCKLOG_DOC_PATH")).Load()
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	return doc
}

func TestAddCommand(t *testing.T) {
	setupTestEnv(t)

	out, err := runCommand(t, "add", "Widget", "--qty", "10", "--price", "25.50", "--date", "2024-01-01")
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "Widget") {
		t.Errorf("Expected output to mention Widget, got %q", out)
	}

	out, err = runCommand(t, "add", "widget", "--qty", "5", "--price", "27", "--date", "2024-02-01", "--supplier", "Acme")
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "2 purchases") {
		t.Errorf("Expected second add to report 2 purchases, got %q", out)
	}

	doc := loadTestDocument(t)
	if len(doc.Items) != 1 {
		t.Fatalf("Expected 1 item after case-insensitive add, got %d", len(doc.Items))
	}
	if doc.Items[0].Name != "Widget" {
		t.Errorf("Expected first spelling to win, got %q", doc.Items[0].Name)
	}
	if len(doc.Items[0].Purchases) != 2 {
		t.Errorf("Expected 2 purchases, got %d", len(doc.Items[0].Purchases))
	}
}

func TestAddCommand_InvalidDate(t *testing.T) {
	setupTestEnv(t)

	if _, err := runCommand(t, "add", "Widget", "--qty", "1", "--price", "1", "--date", "not-a-date"); err == nil {
		t.Fatal("Expected error for invalid date")
	}
	if doc := loadTestDocument(t); len(doc.Items) != 0 {
		t.Errorf("Expected document untouched after failed add, got %d items", len(doc.Items))
	}
}

func TestLsCommand_JSON(t *testing.T) {
	setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "10", "--price", "25.50", "--date", "2024-01-01"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	out, err := runCommand(t, "ls", "-o", "json")
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	var views []struct {
		Name  string `json:"name"`
		Stats struct {
			PurchaseCount int    `json:"purchase_count"`
			TotalSpent    string `json:"total_spent"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("Failed to parse ls output: %v\nOutput: %s", err, out)
	}
	if len(views) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(views))
	}
	if views[0].Stats.TotalSpent != "255" {
		t.Errorf("Expected total spent 255, got %s", views[0].Stats.TotalSpent)
	}
}

func TestRenameAndRmCommands(t *testing.T) {
	setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "1", "--price", "2"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	if out, err := runCommand(t, "rename", "widget", "Gadget"); err != nil {
		t.Fatalf("Rename failed: %v\nOutput: %s", err, out)
	}
	doc := loadTestDocument(t)
	if doc.Items[0].Name != "Gadget" {
		t.Errorf("Expected renamed item Gadget, got %q", doc.Items[0].Name)
	}

	if out, err := runCommand(t, "rm", "item", "Gadget"); err != nil {
		t.Fatalf("Rm failed: %v\nOutput: %s", err, out)
	}
	if doc := loadTestDocument(t); len(doc.Items) != 0 {
		t.Errorf("Expected empty document after rm, got %d items", len(doc.Items))
	}

	if _, err := runCommand(t, "rm", "item", "Gadget"); err == nil {
		t.Error("Expected error removing a missing item")
	}
}

func TestImportCSVCommand_Merges(t *testing.T) {
	tmpDir := setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "1", "--price", "2", "--date", "2024-01-01"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	csvPath := filepath.Join(tmpDir, "import.csv")
	csvData := "Item Name,Purchase Date,Quantity,Unit Price,Supplier,Total\n" +
		"widget,2024-02-01,5,3,Acme,15\n" +
		"Bolt,2024-02-02,100,0.10,,10\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	out, err := runCommand(t, "import", csvPath)
	if err != nil {
		t.Fatalf("Import failed: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "2 purchases") || !strings.Contains(out, "1 new items") {
		t.Errorf("Unexpected import summary: %q", out)
	}

	doc := loadTestDocument(t)
	if len(doc.Items) != 2 {
		t.Fatalf("Expected 2 items after merge, got %d", len(doc.Items))
	}
	widget := doc.FindItem("Widget")
	if widget == nil || len(widget.Purchases) != 2 {
		t.Fatalf("Expected widget with 2 merged purchases, got %+v", widget)
	}
}

func TestImportJSONCommand_Replaces(t *testing.T) {
	tmpDir := setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "1", "--price", "2"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	jsonPath := filepath.Join(tmpDir, "import.json")
	jsonData := `{"items":[{"id":"i1","name":"Bolt","purchases":[]}]}`
	if err := os.WriteFile(jsonPath, []byte(jsonData), 0644); err != nil {
		t.Fatalf("Failed to write JSON: %v", err)
	}

	if out, err := runCommand(t, "import", jsonPath); err != nil {
		t.Fatalf("Import failed: %v\nOutput: %s", err, out)
	}

	doc := loadTestDocument(t)
	if len(doc.Items) != 1 || doc.Items[0].Name != "Bolt" {
		t.Errorf("Expected document replaced by JSON import, got %+v", doc.Items)
	}
}

func TestImportCommand_BadStructure(t *testing.T) {
	tmpDir := setupTestEnv(t)

	jsonPath := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(jsonPath, []byte(`{"foo":1}`), 0644); err != nil {
		t.Fatalf("Failed to write JSON: %v", err)
	}

	if _, err := runCommand(t, "import", jsonPath); err == nil {
		t.Fatal("Expected error for JSON without items")
	}
}

func TestExportCommand_CSV(t *testing.T) {
	tmpDir := setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "10", "--price", "25.50", "--date", "2024-01-01", "--supplier", "Acme"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	csvPath := filepath.Join(tmpDir, "export.csv")
	if out, err := runCommand(t, "export", csvPath); err != nil {
		t.Fatalf("Export failed: %v\nOutput: %s", err, out)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "Item Name,Purchase Date,Quantity,Unit Price,Supplier,Total" {
		t.Errorf("Unexpected CSV header: %q", lines[0])
	}
	if len(lines) != 2 || !strings.Contains(lines[1], `"Widget"`) {
		t.Errorf("Unexpected CSV body: %q", lines)
	}
}

func TestSyncAndDiffCommands(t *testing.T) {
	setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "10", "--price", "25.50", "--date", "2024-01-01"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	out, err := runCommand(t, "sync")
	if err != nil {
		t.Fatalf("Sync failed: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "Synced 1/1 items") {
		t.Errorf("Unexpected sync summary: %q", out)
	}

	out, err = runCommand(t, "diff")
	if err != nil {
		t.Fatalf("Diff failed: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "in sync") {
		t.Errorf("Expected in-sync message after sync, got %q", out)
	}

	// A second sync must not duplicate history.
	if out, err := runCommand(t, "sync"); err != nil {
		t.Fatalf("Second sync failed: %v\nOutput: %s", err, out)
	}
	out, err = runCommand(t, "ls", "--remote", "-o", "json")
	if err != nil {
		t.Fatalf("Remote ls failed: %v\nOutput: %s", err, out)
	}
	var views []struct {
		Purchases []json.RawMessage `json:"purchases"`
	}
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("Failed to parse remote ls output: %v\nOutput: %s", err, out)
	}
	if len(views) != 1 || len(views[0].Purchases) != 1 {
		t.Errorf("Expected 1 remote item with 1 purchase, got %+v", views)
	}

	// A local-only purchase shows up in the diff.
	if out, err := runCommand(t, "add", "Widget", "--qty", "5", "--price", "27", "--date", "2024-02-01"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}
	out, err = runCommand(t, "diff")
	if err != nil {
		t.Fatalf("Diff failed: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "2024-02-01") || !strings.Contains(out, "+") {
		t.Errorf("Expected diff to surface the new purchase, got %q", out)
	}
}

func TestStatsCommand(t *testing.T) {
	setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "10", "--price", "25.50", "--date", "2024-01-01"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}
	if out, err := runCommand(t, "add", "Widget", "--qty", "5", "--price", "27", "--date", "2024-02-01"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	out, err := runCommand(t, "stats", "Widget", "-o", "json")
	if err != nil {
		t.Fatalf("Stats failed: %v\nOutput: %s", err, out)
	}

	var summary struct {
		PurchaseCount int    `json:"purchase_count"`
		TotalSpent    string `json:"total_spent"`
		AveragePrice  string `json:"average_price"`
		PriceChange   string `json:"price_change"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("Failed to parse stats output: %v\nOutput: %s", err, out)
	}
	if summary.PurchaseCount != 2 {
		t.Errorf("Expected 2 purchases, got %d", summary.PurchaseCount)
	}
	if summary.TotalSpent != "390" {
		t.Errorf("Expected total spent 390, got %s", summary.TotalSpent)
	}
	if summary.PriceChange != "1.5" {
		t.Errorf("Expected price change 1.5, got %s", summary.PriceChange)
	}
}

func TestSearchCommand(t *testing.T) {
	setupTestEnv(t)

	for _, name := range []string{"Steel Bolt", "Steel Nut", "Widget"} {
		if out, err := runCommand(t, "add", name, "--qty", "1", "--price", "1"); err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, out)
		}
	}

	out, err := runCommand(t, "search", "steel", "-o", "json")
	if err != nil {
		t.Fatalf("Search failed: %v\nOutput: %s", err, out)
	}

	var views []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("Failed to parse search output: %v\nOutput: %s", err, out)
	}
	if len(views) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(views))
	}
}

func TestClearCommand(t *testing.T) {
	setupTestEnv(t)

	if out, err := runCommand(t, "add", "Widget", "--qty", "1", "--price", "2"); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, out)
	}

	if out, err := runCommand(t, "clear", "--yes"); err != nil {
		t.Fatalf("Clear failed: %v\nOutput: %s", err, out)
	}
	if doc := loadTestDocument(t); len(doc.Items) != 0 {
		t.Errorf("Expected empty document after clear, got %d items", len(doc.Items))
	}
}
