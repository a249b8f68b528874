package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STOCKLOG_DOC_PATH", "")
	t.Setenv("STOCKLOG_DB_PATH", "")
	t.Setenv("STOCKLOG_OUTPUT", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("expected default output table, got %q", cfg.Output)
	}
	if cfg.DocumentPath == "" || cfg.DBPath == "" {
		t.Error("expected default paths to be set")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STOCKLOG_DOC_PATH", "/tmp/doc.json")
	t.Setenv("STOCKLOG_DB_PATH", "/tmp/stock.db")
	t.Setenv("STOCKLOG_OUTPUT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DocumentPath != "/tmp/doc.json" {
		t.Errorf("document path override ignored: %q", cfg.DocumentPath)
	}
	if cfg.DBPath != "/tmp/stock.db" {
		t.Errorf("db path override ignored: %q", cfg.DBPath)
	}
	if cfg.Output != "json" {
		t.Errorf("output override ignored: %q", cfg.Output)
	}
}

func TestLoadDBPathFromFile(t *testing.T) {
	dir := t.TempDir()
	pathFile := filepath.Join(dir, "dbpath")
	if err := os.WriteFile(pathFile, []byte("/tmp/from-file.db"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STOCKLOG_DB_PATH", "")
	t.Setenv("STOCKLOG_DB_PATH_FILE", pathFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "/tmp/from-file.db" {
		t.Errorf("expected db path from file, got %q", cfg.DBPath)
	}
}
