package collector

import (
	"context"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
)

// StatementFetcher fetches annual financial statements for a symbol.
// Every method returns rows sorted ascending by date.
type StatementFetcher interface {
	IncomeStatements(ctx context.Context, symbol string) ([]model.IncomeStatement, error)
	CashFlowStatements(ctx context.Context, symbol string) ([]model.CashFlowStatement, error)
	BalanceSheets(ctx context.Context, symbol string) ([]model.BalanceSheet, error)
	MarketCaps(ctx context.Context, symbol string) ([]model.MarketCap, error)
	CompanyName(ctx context.Context, symbol string) (string, error)
	Name() string
}

// PriceFetcher fetches daily bars for a symbol over a range such as "1y" or "5y".
type PriceFetcher interface {
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.OHLCV, error)
	Name() string
}
