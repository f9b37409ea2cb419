package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeStatement is one annual income statement row.
type IncomeStatement struct {
	Date            time.Time
	Currency        string
	Revenue         decimal.Decimal
	GrossProfit     decimal.Decimal
	OperatingIncome decimal.Decimal
	NetIncome       decimal.Decimal
}

// CashFlowStatement is one annual cash flow statement row.
type CashFlowStatement struct {
	Date               time.Time
	Currency           string
	OperatingCashFlow  decimal.Decimal // netCashProvidedByOperatingActivities
	CapitalExpenditure decimal.Decimal // reported as a negative amount
	DividendsPaid      decimal.Decimal
}

// BalanceSheet is one annual balance sheet row.
type BalanceSheet struct {
	Date                    time.Time
	Currency                string
	CashAndEquivalents      decimal.Decimal
	TotalCurrentAssets      decimal.Decimal
	TotalCurrentLiabilities decimal.Decimal
	TotalAssets             decimal.Decimal
	TotalDebt               decimal.Decimal
	TotalStockholdersEquity decimal.Decimal
}

// MarketCap is a market capitalisation observation.
type MarketCap struct {
	Date  time.Time
	Value decimal.Decimal
}

// Fundamentals bundles every statement fetched for a symbol.
// Each slice is sorted ascending by date.
type Fundamentals struct {
	Symbol      string
	CompanyName string
	Currency    string
	Income      []IncomeStatement
	CashFlow    []CashFlowStatement
	Balance     []BalanceSheet
	MarketCaps  []MarketCap
	FetchedAt   time.Time
}

// DisplayName returns the company name when known, the symbol otherwise.
func (f *Fundamentals) DisplayName() string {
	if f.CompanyName != "" {
		return f.CompanyName
	}
	return f.Symbol
}
