package calculator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/shopspring/decimal"
)

// ErrNoData is returned when a calculation receives no input rows.
var ErrNoData = errors.New("no data")

// YearRange bounds the calendar years of market cap observations used for
// the free cash flow yield. A zero bound is open.
type YearRange struct {
	From int
	To   int
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	if r.From != 0 && year < r.From {
		return false
	}
	if r.To != 0 && year > r.To {
		return false
	}
	return true
}

// Divide returns num/den, or an invalid value when den is zero.
func Divide(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: num.Div(den), Valid: true}
}

// FreeCashFlow subtracts capital expenditure from operating cash flow.
// Capex is treated as a magnitude regardless of the sign it is reported with.
func FreeCashFlow(operating, capex decimal.Decimal) decimal.Decimal {
	return operating.Sub(capex.Abs())
}

// YearEndMarketCaps keeps the last observation of every calendar year in r.
func YearEndMarketCaps(caps []model.MarketCap, r YearRange) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	last := make(map[int]time.Time)
	for _, c := range caps {
		y := c.Date.Year()
		if !r.Contains(y) {
			continue
		}
		if seen, ok := last[y]; ok && c.Date.Before(seen) {
			continue
		}
		last[y] = c.Date
		out[y] = c.Value
	}
	return out
}

// AnalyzeCashFlow derives the operating cash flow margin, free cash flow and
// free cash flow yield for every cash flow statement. Revenue is matched by
// statement date, market cap by the statement's calendar year.
func AnalyzeCashFlow(cash []model.CashFlowStatement, income []model.IncomeStatement, caps []model.MarketCap, years YearRange) (model.CashFlowAnalysis, error) {
	if len(cash) == 0 {
		return model.CashFlowAnalysis{}, fmt.Errorf("cash flow statement: %w", ErrNoData)
	}

	revenue := make(map[string]decimal.Decimal, len(income))
	for _, inc := range income {
		revenue[dateKey(inc.Date)] = inc.Revenue
	}
	yearEnd := YearEndMarketCaps(caps, years)

	sorted := append([]model.CashFlowStatement(nil), cash...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	rows := make([]model.CashFlowRow, 0, len(sorted))
	for _, c := range sorted {
		row := model.CashFlowRow{
			Date:               c.Date,
			OperatingCashFlow:  c.OperatingCashFlow,
			CapitalExpenditure: c.CapitalExpenditure,
			FreeCashFlow:       FreeCashFlow(c.OperatingCashFlow, c.CapitalExpenditure),
		}
		if rev, ok := revenue[dateKey(c.Date)]; ok {
			row.Revenue = decimal.NullDecimal{Decimal: rev, Valid: true}
			row.OperatingCashFlowMargin = Divide(c.OperatingCashFlow, rev)
		}
		if mc, ok := yearEnd[c.Date.Year()]; ok {
			row.MarketCap = decimal.NullDecimal{Decimal: mc, Valid: true}
			row.FreeCashFlowYield = Divide(row.FreeCashFlow, mc)
		}
		rows = append(rows, row)
	}
	return model.CashFlowAnalysis{Rows: rows}, nil
}

// AnalyzeCompany joins balance sheets and income statements on date and
// derives liquidity, leverage and return ratios. Dates present in only one of
// the inputs are dropped.
func AnalyzeCompany(balance []model.BalanceSheet, income []model.IncomeStatement) (model.CompanyAnalysis, error) {
	if len(balance) == 0 {
		return model.CompanyAnalysis{}, fmt.Errorf("balance sheet: %w", ErrNoData)
	}
	if len(income) == 0 {
		return model.CompanyAnalysis{}, fmt.Errorf("income statement: %w", ErrNoData)
	}

	byDate := make(map[string]model.IncomeStatement, len(income))
	for _, inc := range income {
		byDate[dateKey(inc.Date)] = inc
	}

	sorted := append([]model.BalanceSheet(nil), balance...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var rows []model.CompanyRow
	for _, b := range sorted {
		inc, ok := byDate[dateKey(b.Date)]
		if !ok {
			continue
		}
		rows = append(rows, model.CompanyRow{
			Date:                    b.Date,
			TotalCurrentAssets:      b.TotalCurrentAssets,
			TotalCurrentLiabilities: b.TotalCurrentLiabilities,
			TotalAssets:             b.TotalAssets,
			TotalDebt:               b.TotalDebt,
			TotalStockholdersEquity: b.TotalStockholdersEquity,
			Revenue:                 inc.Revenue,
			NetIncome:               inc.NetIncome,
			CurrentRatio:            Divide(b.TotalCurrentAssets, b.TotalCurrentLiabilities),
			DebtToEquity:            Divide(b.TotalDebt, b.TotalStockholdersEquity),
			ReturnOnAssets:          Divide(inc.NetIncome, b.TotalAssets),
			ReturnOnEquity:          Divide(inc.NetIncome, b.TotalStockholdersEquity),
		})
	}
	if len(rows) == 0 {
		return model.CompanyAnalysis{}, fmt.Errorf("no statement dates in common: %w", ErrNoData)
	}
	return model.CompanyAnalysis{Rows: rows}, nil
}

// Latest collects the most recent value of every ratio.
func Latest(cf model.CashFlowAnalysis, co model.CompanyAnalysis) model.LatestRatios {
	var out model.LatestRatios
	if row, ok := cf.Latest(); ok {
		out.AsOf = row.Date
		out.OperatingCashFlowMargin = row.OperatingCashFlowMargin
		out.FreeCashFlow = decimal.NullDecimal{Decimal: row.FreeCashFlow, Valid: true}
		out.FreeCashFlowYield = row.FreeCashFlowYield
	}
	if row, ok := co.Latest(); ok {
		if row.Date.After(out.AsOf) {
			out.AsOf = row.Date
		}
		out.CurrentRatio = row.CurrentRatio
		out.DebtToEquity = row.DebtToEquity
		out.ReturnOnAssets = row.ReturnOnAssets
		out.ReturnOnEquity = row.ReturnOnEquity
	}
	return out
}

// Value returns the latest value of ratio r.
func Value(l model.LatestRatios, r model.Ratio) decimal.NullDecimal {
	switch r {
	case model.RatioOperatingCashFlowMargin:
		return l.OperatingCashFlowMargin
	case model.RatioFreeCashFlow:
		return l.FreeCashFlow
	case model.RatioFreeCashFlowYield:
		return l.FreeCashFlowYield
	case model.RatioCurrentRatio:
		return l.CurrentRatio
	case model.RatioDebtToEquity:
		return l.DebtToEquity
	case model.RatioReturnOnAssets:
		return l.ReturnOnAssets
	case model.RatioReturnOnEquity:
		return l.ReturnOnEquity
	}
	return decimal.NullDecimal{}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }
