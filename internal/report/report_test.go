package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func fundamentalsFixture(t *testing.T, name string) *model.FundamentalsReport {
	t.Helper()
	date := time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)
	f := &model.Fundamentals{
		Symbol:      "AAPL",
		CompanyName: name,
		Currency:    "USD",
		Income:      []model.IncomeStatement{{Date: date, Revenue: d(1000), NetIncome: d(250)}},
		CashFlow:    []model.CashFlowStatement{{Date: date, OperatingCashFlow: d(300), CapitalExpenditure: d(-100)}},
		Balance: []model.BalanceSheet{{
			Date: date, TotalCurrentAssets: d(150), TotalCurrentLiabilities: d(100),
			TotalAssets: d(2000), TotalDebt: d(500), TotalStockholdersEquity: d(0),
		}},
		MarketCaps: []model.MarketCap{{Date: time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), Value: d(10000)}},
	}
	cf, err := calculator.AnalyzeCashFlow(f.CashFlow, f.Income, f.MarketCaps, calculator.YearRange{})
	if err != nil {
		t.Fatalf("analyze cash flow: %v", err)
	}
	co, err := calculator.AnalyzeCompany(f.Balance, f.Income)
	if err != nil {
		t.Fatalf("analyze company: %v", err)
	}
	return &model.FundamentalsReport{
		Fundamentals: f,
		CashFlow:     cf,
		Company:      co,
		Latest:       calculator.Latest(cf, co),
		GeneratedAt:  time.Now(),
	}
}

func portfolioFixture(t *testing.T, dir string) *model.PortfolioReport {
	t.Helper()
	tickers := []string{"AAPL", "MSFT"}
	w := model.NewWeights(tickers, []float64{0.7, 0.3})
	csvPath := filepath.Join(dir, "data", "mvo_weights.csv")
	if err := WriteWeightsCSV(csvPath, w); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return &model.PortfolioReport{
		Tickers:      tickers,
		Covariance:   [][]float64{{0.04, 0.01}, {0.01, 0.09}},
		RiskFreeRate: 0.02,
		Assets: []model.AssetStats{
			{Ticker: "AAPL", LastPrice: 190.5, AnnualReturn: 0.2, AnnualVolatility: 0.2},
			{Ticker: "MSFT", LastPrice: 370.1, AnnualReturn: 0.15, AnnualVolatility: 0.3},
		},
		Models: []model.ModelResult{{
			Kind:        model.ModelMeanVariance,
			Weights:     w,
			Fixed:       w,
			Performance: model.Performance{ExpectedReturn: 0.185, Volatility: 0.19, Sharpe: 0.87},
			CSVPath:     csvPath,
			PiePath:     filepath.Join(dir, "plots", "mvo_weights.png"),
		}},
		FrontierPath: filepath.Join(dir, "plots", "efficient_frontier.png"),
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"money", Money(d(1234567), "USD"), "$1,234,567.00"},
		{"percent", Percent(0.1234), "12.34%"},
		{"ratio", Ratio(decimal.NewNullDecimal(decimal.RequireFromString("1.23456"))), "1.2346"},
		{"missing ratio", Ratio(decimal.NullDecimal{}), "N/A"},
		{"number", Number(d(96995000000)), "96,995,000,000"},
		{"free cash flow", FormatRatio(model.RatioFreeCashFlow, decimal.NewNullDecimal(d(200)), "USD"), "$200.00"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, tt.got)
		}
	}
}

func TestWeightsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bl_weights.csv")
	w := model.NewWeights([]string{"AAPL", "KO"}, []float64{1.2, -0.2})
	if err := WriteWeightsCSV(path, w); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), "Ticker,Weight\n") {
		t.Errorf("expected Ticker,Weight header, got %q", string(raw))
	}
	got, err := ReadWeightsCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[1].Ticker != "KO" || got[1].Weight != -0.2 {
		t.Errorf("unexpected weights %+v", got)
	}
}

func TestWriteFundamentalsHTML(t *testing.T) {
	dir := t.TempDir()
	r := fundamentalsFixture(t, "Apple <Inc>")

	path, err := WriteFundamentalsHTML(dir, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != FundamentalsFile {
		t.Errorf("expected %s, got %s", FundamentalsFile, path)
	}
	raw, _ := os.ReadFile(path)
	html := string(raw)
	for _, want := range []string{
		"<h1>Analysis Report for AAPL</h1>",
		`<p class="meta">Apple &lt;Inc&gt; &middot;`,
		"<h2>Operating Cash Flow Margin:</h2>",
		"<h2>Return on Equity:</h2>",
		`class="table-data"`,
		"30.00%",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
	if strings.Contains(html, "<Inc>") {
		t.Error("expected company name to be escaped")
	}
	// zero equity leaves debt to equity unavailable
	if !strings.Contains(html, "ratio-value na") {
		t.Error("expected a missing ratio to be marked")
	}
	if _, err := os.Stat(filepath.Join(dir, StyleFile)); err != nil {
		t.Errorf("expected stylesheet next to report: %v", err)
	}
}

func TestWritePortfolioHTML(t *testing.T) {
	dir := t.TempDir()
	r := portfolioFixture(t, dir)

	path, err := WritePortfolioHTML(dir, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := os.ReadFile(path)
	html := string(raw)
	for _, want := range []string{
		`<h1 class="section-title">Mean Variance Optimization</h1>`,
		`<img src="plots/mvo_weights.png" class="img-plot">`,
		`<img src="plots/efficient_frontier.png" class="img-plot">`,
		"<strong>Mean Variance Optimization</strong>",
		"<td>0.7000</td>",
		"background-color: #",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected results page to contain %q", want)
		}
	}
	if strings.Contains(html, "HRP Dendrogram") {
		t.Error("expected no dendrogram section without a dendrogram plot")
	}
}

func TestWritePortfolioXLSX(t *testing.T) {
	dir := t.TempDir()
	r := portfolioFixture(t, dir)
	path := filepath.Join(dir, "portfolio.xlsx")

	if err := WritePortfolioXLSX(path, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Summary", "mvo", "Covariance"}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("expected sheet %d to be %s, got %s", i, want[i], sheets[i])
		}
	}
	rows, err := f.GetRows("mvo")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "AAPL" {
		t.Errorf("unexpected mvo rows %v", rows)
	}
}

func TestWriteFundamentalsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundamentals.xlsx")
	if err := WriteFundamentalsXLSX(path, fundamentalsFixture(t, "Apple Inc.")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 8 {
		t.Errorf("expected header plus 7 ratios, got %d rows", len(rows))
	}
}

func TestMarkdownSummaries(t *testing.T) {
	md := FundamentalsMarkdown(fundamentalsFixture(t, "Apple Inc."))
	if !strings.Contains(md, "# Apple Inc. (AAPL)") || !strings.Contains(md, "| Debt to Equity Ratio | N/A |") {
		t.Errorf("unexpected fundamentals markdown:\n%s", md)
	}

	pm := PortfolioMarkdown(portfolioFixture(t, t.TempDir()))
	if !strings.Contains(pm, "## Mean Variance Optimization") || !strings.Contains(pm, "| AAPL | 70.00% |") {
		t.Errorf("unexpected portfolio markdown:\n%s", pm)
	}

	out, err := Terminal(pm)
	if err != nil {
		t.Fatalf("terminal render: %v", err)
	}
	if !strings.Contains(out, "AAPL") {
		t.Error("expected rendered output to mention AAPL")
	}
}

func TestShade(t *testing.T) {
	if got := shade(0); got != "#ffffff" {
		t.Errorf("expected white for zero correlation, got %s", got)
	}
	if shade(1) == shade(-1) {
		t.Error("expected positive and negative correlation to differ")
	}
}
