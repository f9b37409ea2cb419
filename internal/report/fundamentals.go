package report

import (
	"errors"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/shopspring/decimal"
)

type ratioItem struct {
	Label       string
	Value       string
	Explanation string
	Missing     bool
}

type ratioSection struct {
	Title  string
	Ratios []ratioItem
	Table  table
}

type fundamentalsPage struct {
	Name        string
	Symbol      string
	Currency    string
	AsOf        string
	GeneratedAt string
	Sections    []ratioSection
}

// WriteFundamentalsHTML renders r to dir/report.html and returns its path.
func WriteFundamentalsHTML(dir string, r *model.FundamentalsReport) (string, error) {
	if r == nil || r.Fundamentals == nil {
		return "", errors.New("empty fundamentals report")
	}
	f := r.Fundamentals
	page := fundamentalsPage{
		Name:        f.DisplayName(),
		Symbol:      f.Symbol,
		Currency:    f.Currency,
		AsOf:        r.Latest.AsOf.Format("2006-01-02"),
		GeneratedAt: stamp(r.GeneratedAt),
		Sections: []ratioSection{
			{
				Title:  "Cash Flow Analysis",
				Ratios: ratioItems(r.Latest, calculator.CashFlowRatios, f.Currency),
				Table:  cashFlowTable(r.CashFlow),
			},
			{
				Title:  "Company Analysis",
				Ratios: ratioItems(r.Latest, calculator.CompanyRatios, f.Currency),
				Table:  companyTable(r.Company),
			},
		},
	}
	return render(dir, FundamentalsFile, "fundamentals.html.tmpl", page)
}

func ratioItems(latest model.LatestRatios, ratios []model.Ratio, currency string) []ratioItem {
	items := make([]ratioItem, len(ratios))
	for i, r := range ratios {
		v := calculator.Value(latest, r)
		items[i] = ratioItem{
			Label:       calculator.Label(r),
			Value:       FormatRatio(r, v, currency),
			Explanation: calculator.Explanation(r),
			Missing:     !v.Valid,
		}
	}
	return items
}

// FormatRatio formats the value of r: free cash flow as money, yields and
// returns as percentages, the rest as plain ratios.
func FormatRatio(r model.Ratio, v decimal.NullDecimal, currency string) string {
	if !v.Valid {
		return na
	}
	switch r {
	case model.RatioFreeCashFlow:
		return Money(v.Decimal, currency)
	case model.RatioOperatingCashFlowMargin, model.RatioFreeCashFlowYield,
		model.RatioReturnOnAssets, model.RatioReturnOnEquity:
		return Percent(v.Decimal.InexactFloat64())
	default:
		return Ratio(v)
	}
}

func cashFlowTable(a model.CashFlowAnalysis) table {
	t := table{Headers: []string{
		"Date", "Operating Cash Flow", "Capital Expenditure", "Revenue", "Market Cap",
		"Operating Cash Flow Margin", "Free Cash Flow", "Free Cash Flow Yield",
	}}
	for _, row := range a.Rows {
		t.Rows = append(t.Rows, []string{
			row.Date.Format("2006-01-02"),
			Number(row.OperatingCashFlow),
			Number(row.CapitalExpenditure),
			NullNumber(row.Revenue),
			NullNumber(row.MarketCap),
			Ratio(row.OperatingCashFlowMargin),
			Number(row.FreeCashFlow),
			Ratio(row.FreeCashFlowYield),
		})
	}
	return t
}

func companyTable(a model.CompanyAnalysis) table {
	t := table{Headers: []string{
		"Date", "Total Current Assets", "Total Current Liabilities", "Total Assets",
		"Total Debt", "Stockholders Equity", "Revenue", "Net Income",
		"Current Ratio", "Debt to Equity", "Return on Assets", "Return on Equity",
	}}
	for _, row := range a.Rows {
		t.Rows = append(t.Rows, []string{
			row.Date.Format("2006-01-02"),
			Number(row.TotalCurrentAssets),
			Number(row.TotalCurrentLiabilities),
			Number(row.TotalAssets),
			Number(row.TotalDebt),
			Number(row.TotalStockholdersEquity),
			Number(row.Revenue),
			Number(row.NetIncome),
			Ratio(row.CurrentRatio),
			Ratio(row.DebtToEquity),
			Ratio(row.ReturnOnAssets),
			Ratio(row.ReturnOnEquity),
		})
	}
	return t
}
