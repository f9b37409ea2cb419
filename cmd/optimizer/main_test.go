package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/config"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/dataset"
	"github.com/google/subcommands"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		_, err := newLogger(tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error %v, got %v", tt.level, tt.wantErr, err)
		}
	}
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestFundamentalsCmd_Offline(t *testing.T) {
	dir := t.TempDir()
	cfg = &config.Config{OutputDir: dir}
	cfg.Database.SQLitePath = filepath.Join(dir, "history.db")

	if status := execute(t, &fundamentalsCmd{}, "-offline", "-q", "-xlsx", "msft"); status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	for _, name := range []string{"report.html", "msft_fundamentals.xlsx"} {
		if _, err := os.Stat(filepath.Join(dir, "fundamentals", "MSFT", name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	if status := execute(t, &historyCmd{}, "msft"); status != subcommands.ExitSuccess {
		t.Errorf("expected history to succeed, got %v", status)
	}
	if status := execute(t, &historyCmd{}); status != subcommands.ExitUsageError {
		t.Errorf("expected usage error without a symbol, got %v", status)
	}
}

func TestFundamentalsCmd_RequiresAPIKey(t *testing.T) {
	cfg = &config.Config{OutputDir: t.TempDir()}
	if status := execute(t, &fundamentalsCmd{}, "-q", "AAPL"); status != subcommands.ExitUsageError {
		t.Errorf("expected usage error without an API key, got %v", status)
	}
}

func TestPricesCmd_Offline(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "prices.csv")
	cfg = &config.Config{OutputDir: dir}

	if status := execute(t, &pricesCmd{}, "-offline", "-o", out, "AAPL", "MSFT"); status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	table, err := dataset.LoadPrices(out)
	if err != nil {
		t.Fatalf("load prices: %v", err)
	}
	if len(table.Tickers) != 2 || table.Rows() == 0 {
		t.Errorf("unexpected table %v with %d rows", table.Tickers, table.Rows())
	}

	if status := execute(t, &portfolioCmd{}, "-prices", out, "-q"); status != subcommands.ExitSuccess {
		t.Errorf("expected portfolio to succeed, got %v", status)
	}
}
