package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ratio identifies a derived fundamentals figure.
type Ratio string

const (
	RatioOperatingCashFlowMargin Ratio = "operating_cash_flow_margin"
	RatioFreeCashFlow            Ratio = "free_cash_flow"
	RatioFreeCashFlowYield       Ratio = "free_cash_flow_yield"
	RatioCurrentRatio            Ratio = "current_ratio"
	RatioDebtToEquity            Ratio = "debt_equity_ratio"
	RatioReturnOnAssets          Ratio = "return_on_assets"
	RatioReturnOnEquity          Ratio = "return_on_equity"
)

// CashFlowRow is a cash flow statement row with its derived figures.
type CashFlowRow struct {
	Date                    time.Time
	OperatingCashFlow       decimal.Decimal
	CapitalExpenditure      decimal.Decimal
	Revenue                 decimal.NullDecimal
	MarketCap               decimal.NullDecimal
	OperatingCashFlowMargin decimal.NullDecimal
	FreeCashFlow            decimal.Decimal
	FreeCashFlowYield       decimal.NullDecimal
}

// CashFlowAnalysis holds one derived row per cash flow statement.
type CashFlowAnalysis struct {
	Rows []CashFlowRow
}

// Latest returns the most recent row.
func (a CashFlowAnalysis) Latest() (CashFlowRow, bool) {
	if len(a.Rows) == 0 {
		return CashFlowRow{}, false
	}
	return a.Rows[len(a.Rows)-1], true
}

// CompanyRow is a balance sheet row joined with the income statement of the
// same date, plus the derived ratios.
type CompanyRow struct {
	Date                    time.Time
	TotalCurrentAssets      decimal.Decimal
	TotalCurrentLiabilities decimal.Decimal
	TotalAssets             decimal.Decimal
	TotalDebt               decimal.Decimal
	TotalStockholdersEquity decimal.Decimal
	Revenue                 decimal.Decimal
	NetIncome               decimal.Decimal
	CurrentRatio            decimal.NullDecimal
	DebtToEquity            decimal.NullDecimal
	ReturnOnAssets          decimal.NullDecimal
	ReturnOnEquity          decimal.NullDecimal
}

// CompanyAnalysis holds one derived row per matched statement date.
type CompanyAnalysis struct {
	Rows []CompanyRow
}

// Latest returns the most recent row.
func (a CompanyAnalysis) Latest() (CompanyRow, bool) {
	if len(a.Rows) == 0 {
		return CompanyRow{}, false
	}
	return a.Rows[len(a.Rows)-1], true
}

// LatestRatios is the headline figure set of a fundamentals run.
type LatestRatios struct {
	AsOf                    time.Time
	OperatingCashFlowMargin decimal.NullDecimal
	FreeCashFlow            decimal.NullDecimal
	FreeCashFlowYield       decimal.NullDecimal
	CurrentRatio            decimal.NullDecimal
	DebtToEquity            decimal.NullDecimal
	ReturnOnAssets          decimal.NullDecimal
	ReturnOnEquity          decimal.NullDecimal
}

// FundamentalsReport is the outcome of a fundamentals run.
type FundamentalsReport struct {
	RunID        string
	Fundamentals *Fundamentals
	CashFlow     CashFlowAnalysis
	Company      CompanyAnalysis
	Latest       LatestRatios
	HTMLPath     string
	XLSXPath     string
	GeneratedAt  time.Time
}
