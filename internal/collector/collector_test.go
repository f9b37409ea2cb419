package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
)

type failingPrices struct {
	MockFetcher
	fail map[string]bool
}

func (f *failingPrices) FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.OHLCV, error) {
	if f.fail[symbol] {
		return nil, errors.New("boom")
	}
	return f.MockFetcher.FetchDailyBars(ctx, symbol, rng)
}

func TestCollectFundamentals_Mock(t *testing.T) {
	c := NewCollector(&MockFetcher{}, nil)
	f, err := c.CollectFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.CompanyName != "AAPL Mock Corp" {
		t.Errorf("expected mock company name, got %q", f.CompanyName)
	}
	if len(f.Income) != 5 || len(f.CashFlow) != 5 || len(f.Balance) != 5 {
		t.Errorf("expected 5 rows per statement, got %d/%d/%d", len(f.Income), len(f.CashFlow), len(f.Balance))
	}
	if f.Currency != "USD" {
		t.Errorf("expected USD, got %q", f.Currency)
	}
}

func TestCollectFundamentals_ProfileOptional(t *testing.T) {
	c := NewCollector(&MockFetcher{ProfileErr: errors.New("no profile")}, nil)
	f, err := c.CollectFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected missing profile to be tolerated, got %v", err)
	}
	if f.DisplayName() != "AAPL" {
		t.Errorf("expected symbol as display name, got %q", f.DisplayName())
	}
}

func TestCollectFundamentals_NoStatements(t *testing.T) {
	c := NewCollector(&MockFetcher{Income: []model.IncomeStatement{}}, nil)
	_, err := c.CollectFundamentals(context.Background(), "AAPL")
	if !errors.Is(err, ErrNoStatements) {
		t.Errorf("expected ErrNoStatements, got %v", err)
	}
}

func TestCollectPrices_SkipsFailures(t *testing.T) {
	src := &failingPrices{fail: map[string]bool{"BAD": true}}
	c := NewCollector(nil, src)

	table, err := c.CollectPrices(context.Background(), []string{"AAPL", "BAD", "MSFT"}, "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Tickers) != 2 || table.Tickers[0] != "AAPL" || table.Tickers[1] != "MSFT" {
		t.Errorf("expected [AAPL MSFT], got %v", table.Tickers)
	}
	if table.Rows() != 300 {
		t.Errorf("expected 300 rows, got %d", table.Rows())
	}
}

func TestCollectPrices_AllFail(t *testing.T) {
	c := NewCollector(nil, &MockFetcher{Err: errors.New("down")})
	if _, err := c.CollectPrices(context.Background(), []string{"AAPL"}, "1y"); err == nil {
		t.Error("expected error when every ticker fails")
	}
}
