// Package config loads configuration from the environment, a .env.local
// file, and an optional YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	DocumentPath string `yaml:"document_path"`
	DBPath       string `yaml:"db_path"`
	Output       string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/stocklog/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		Output: "table",
	}

	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional; ignore a missing file.
	_ = loadYAMLConfig(cfg)

	if docPath := os.Getenv("STOCKLOG_DOC_PATH"); docPath != "" {
		cfg.DocumentPath = docPath
	}
	if dbPath := getEnvOrFile("STOCKLOG_DB_PATH", "STOCKLOG_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if output := os.Getenv("STOCKLOG_OUTPUT"); output != "" {
		cfg.Output = output
	}

	if cfg.DocumentPath == "" || cfg.DBPath == "" {
		dataDir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		if cfg.DocumentPath == "" {
			cfg.DocumentPath = filepath.Join(dataDir, "document.json")
		}
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(dataDir, "stocklog.db")
		}
	}

	return cfg, nil
}

// defaultDataDir prefers a project-local .stocklog directory when one
// exists, falling back to the user-global data directory.
func defaultDataDir() (string, error) {
	if info, err := os.Stat(".stocklog"); err == nil && info.IsDir() {
		return ".stocklog", nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "stocklog"), nil
}

// loadYAMLConfig loads configuration from ~/.config/stocklog/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "stocklog", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set.
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
