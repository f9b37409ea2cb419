package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Portfolio.RiskFreeRate != 0.02 {
		t.Errorf("expected default risk free rate 0.02, got %v", cfg.Portfolio.RiskFreeRate)
	}
	if cfg.Portfolio.Frequency != 252 {
		t.Errorf("expected default frequency 252, got %d", cfg.Portfolio.Frequency)
	}
	if cfg.Portfolio.Views["AAPL"] != 0.10 {
		t.Errorf("expected default AAPL view, got %v", cfg.Portfolio.Views)
	}
	if cfg.FMP.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.FMP.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
	if err := cfg.ValidateFMP(); err == nil && os.Getenv("FMP_API_KEY") == "" {
		t.Error("expected missing api key to fail FMP validation")
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	yml := `
output_dir: reports
fmp:
  api_key: from-file
  timeout: 5s
fundamentals:
  symbols: [MSFT, GOOG]
  from_year: 2018
  to_year: 2022
portfolio:
  risk_free_rate: 0.03
  views:
    MSFT: 0.12
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FMP_API_KEY", "from-env")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FMP.APIKey != "from-env" {
		t.Errorf("expected env to override api key, got %q", cfg.FMP.APIKey)
	}
	if cfg.FMP.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.FMP.Timeout)
	}
	if cfg.OutputDir != "reports" {
		t.Errorf("expected output dir from file, got %q", cfg.OutputDir)
	}
	if len(cfg.Fundamentals.Symbols) != 2 || cfg.Fundamentals.Symbols[0] != "MSFT" {
		t.Errorf("unexpected symbols %v", cfg.Fundamentals.Symbols)
	}
	if cfg.Portfolio.Views["MSFT"] != 0.12 || len(cfg.Portfolio.Views) != 1 {
		t.Errorf("expected configured views to replace the default, got %v", cfg.Portfolio.Views)
	}
	if cfg.Database.SQLitePath != "/tmp/x.db" {
		t.Errorf("expected sqlite path from env, got %q", cfg.Database.SQLitePath)
	}
}

func TestLoad_ExplicitZerosAreKept(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	yml := `
fmp:
  retries: 0
portfolio:
  risk_free_rate: 0
  frequency: 52
database:
  sqlite_path: ""
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Portfolio.RiskFreeRate != 0 {
		t.Errorf("expected risk free rate 0, got %v", cfg.Portfolio.RiskFreeRate)
	}
	if cfg.FMP.Retries != 0 {
		t.Errorf("expected retries 0, got %d", cfg.FMP.Retries)
	}
	if cfg.Database.SQLitePath != "" && os.Getenv("SQLITE_PATH") == "" {
		t.Errorf("expected sqlite to be disabled, got %q", cfg.Database.SQLitePath)
	}
	if cfg.Portfolio.Frequency != 52 {
		t.Errorf("expected frequency 52, got %d", cfg.Portfolio.Frequency)
	}
	// untouched settings keep their defaults
	if cfg.Portfolio.Tau != 0.05 || cfg.FMP.Timeout != 30*time.Second {
		t.Errorf("expected defaults for unset fields, got tau %v timeout %v", cfg.Portfolio.Tau, cfg.FMP.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidate_YearRange(t *testing.T) {
	cfg := Default()
	cfg.Fundamentals.FromYear = 2023
	cfg.Fundamentals.ToYear = 2020
	if err := cfg.Validate(); err == nil {
		t.Error("expected inverted year range to fail validation")
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateTelegram(); err == nil {
		t.Error("expected missing bot token to fail")
	}
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "42"
	if err := cfg.ValidateTelegram(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
