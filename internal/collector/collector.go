package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"go.uber.org/zap"
)

// ErrNoStatements is returned when the data source has no statements for a symbol.
var ErrNoStatements = errors.New("no statements returned")

// Collector orchestrates data fetching for the report pipelines.
type Collector struct {
	Statements StatementFetcher
	Prices     PriceFetcher
}

// NewCollector creates a new Collector.
func NewCollector(statements StatementFetcher, prices PriceFetcher) *Collector {
	return &Collector{Statements: statements, Prices: prices}
}

// CollectFundamentals fetches every statement for symbol. Statements are
// required; the company profile and market cap history are best effort.
func (c *Collector) CollectFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	if c.Statements == nil {
		return nil, errors.New("no statement source configured")
	}
	f := &model.Fundamentals{Symbol: symbol, FetchedAt: time.Now()}

	var err error
	if f.Income, err = c.Statements.IncomeStatements(ctx, symbol); err != nil {
		return nil, fmt.Errorf("fetch income statement: %w", err)
	}
	if len(f.Income) == 0 {
		return nil, fmt.Errorf("income statement for %s: %w", symbol, ErrNoStatements)
	}
	if f.CashFlow, err = c.Statements.CashFlowStatements(ctx, symbol); err != nil {
		return nil, fmt.Errorf("fetch cash flow statement: %w", err)
	}
	if f.Balance, err = c.Statements.BalanceSheets(ctx, symbol); err != nil {
		return nil, fmt.Errorf("fetch balance sheet: %w", err)
	}

	if f.MarketCaps, err = c.Statements.MarketCaps(ctx, symbol); err != nil {
		zap.S().Warnf("market cap history for %s unavailable: %v, free cash flow yield will be empty", symbol, err)
	}
	if f.CompanyName, err = c.Statements.CompanyName(ctx, symbol); err != nil {
		zap.S().Warnf("company profile for %s unavailable: %v, using symbol", symbol, err)
	}

	f.Currency = f.Income[len(f.Income)-1].Currency
	if f.Currency == "" {
		f.Currency = "USD"
	}
	return f, nil
}

// CollectPrices fetches daily bars for every ticker and aligns them into a
// table. A ticker that fails is skipped with a warning.
func (c *Collector) CollectPrices(ctx context.Context, tickers []string, rng string) (*model.PriceTable, error) {
	if c.Prices == nil {
		return nil, errors.New("no price source configured")
	}
	var series []model.PriceSeries
	for _, t := range tickers {
		bars, err := c.Prices.FetchDailyBars(ctx, t, rng)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.S().Warnf("prices for %s failed: %v, skipping", t, err)
			continue
		}
		if len(bars) == 0 {
			zap.S().Warnf("no prices for %s, skipping", t)
			continue
		}
		series = append(series, model.PriceSeries{Symbol: t, Bars: bars, FetchedAt: time.Now()})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no prices fetched from %s", c.Prices.Name())
	}
	return model.MergeSeries(series), nil
}
