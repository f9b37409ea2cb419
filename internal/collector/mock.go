package collector

import (
	"context"
	"math"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/shopspring/decimal"
)

// MockFetcher returns controllable fixed data for development and testing.
// It implements both StatementFetcher and PriceFetcher.
type MockFetcher struct {
	Company    string
	Income     []model.IncomeStatement
	CashFlow   []model.CashFlowStatement
	Balance    []model.BalanceSheet
	Caps       []model.MarketCap
	DailyBars  map[string][]model.OHLCV
	BasePrice  float64
	Err        error
	ProfileErr error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) IncomeStatements(_ context.Context, _ string) ([]model.IncomeStatement, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Income != nil {
		return m.Income, nil
	}
	return generateMockIncome(), nil
}

func (m *MockFetcher) CashFlowStatements(_ context.Context, _ string) ([]model.CashFlowStatement, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.CashFlow != nil {
		return m.CashFlow, nil
	}
	return generateMockCashFlow(), nil
}

func (m *MockFetcher) BalanceSheets(_ context.Context, _ string) ([]model.BalanceSheet, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Balance != nil {
		return m.Balance, nil
	}
	return generateMockBalance(), nil
}

func (m *MockFetcher) MarketCaps(_ context.Context, _ string) ([]model.MarketCap, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Caps != nil {
		return m.Caps, nil
	}
	var caps []model.MarketCap
	for y := 2019; y <= 2023; y++ {
		caps = append(caps, model.MarketCap{
			Date:  time.Date(y, 12, 29, 0, 0, 0, 0, time.UTC),
			Value: decimal.NewFromInt(int64(y-2017) * 500_000_000_000),
		})
	}
	return caps, nil
}

func (m *MockFetcher) CompanyName(_ context.Context, symbol string) (string, error) {
	if m.ProfileErr != nil {
		return "", m.ProfileErr
	}
	if m.Company != "" {
		return m.Company, nil
	}
	return symbol + " Mock Corp", nil
}

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol, _ string) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.DailyBars[symbol]; ok {
		return bars, nil
	}
	base := m.BasePrice
	if base == 0 {
		base = 100
	}
	var seed int
	for _, r := range symbol {
		seed += int(r)
	}
	return generateMockBars(base, 300, seed), nil
}

func fiscalYearEnds() []time.Time {
	var out []time.Time
	for y := 2019; y <= 2023; y++ {
		out = append(out, time.Date(y, 9, 30, 0, 0, 0, 0, time.UTC))
	}
	return out
}

func generateMockIncome() []model.IncomeStatement {
	var out []model.IncomeStatement
	for i, d := range fiscalYearEnds() {
		rev := int64(260+i*20) * 1_000_000_000
		out = append(out, model.IncomeStatement{
			Date:            d,
			Currency:        "USD",
			Revenue:         decimal.NewFromInt(rev),
			GrossProfit:     decimal.NewFromInt(rev * 4 / 10),
			OperatingIncome: decimal.NewFromInt(rev * 3 / 10),
			NetIncome:       decimal.NewFromInt(rev * 25 / 100),
		})
	}
	return out
}

func generateMockCashFlow() []model.CashFlowStatement {
	var out []model.CashFlowStatement
	for i, d := range fiscalYearEnds() {
		out = append(out, model.CashFlowStatement{
			Date:               d,
			Currency:           "USD",
			OperatingCashFlow:  decimal.NewFromInt(int64(70+i*5) * 1_000_000_000),
			CapitalExpenditure: decimal.NewFromInt(-int64(10+i) * 1_000_000_000),
			DividendsPaid:      decimal.NewFromInt(-14_000_000_000),
		})
	}
	return out
}

func generateMockBalance() []model.BalanceSheet {
	var out []model.BalanceSheet
	for i, d := range fiscalYearEnds() {
		out = append(out, model.BalanceSheet{
			Date:                    d,
			Currency:                "USD",
			CashAndEquivalents:      decimal.NewFromInt(30_000_000_000),
			TotalCurrentAssets:      decimal.NewFromInt(int64(140+i*5) * 1_000_000_000),
			TotalCurrentLiabilities: decimal.NewFromInt(int64(120+i*10) * 1_000_000_000),
			TotalAssets:             decimal.NewFromInt(int64(340+i*10) * 1_000_000_000),
			TotalDebt:               decimal.NewFromInt(110_000_000_000),
			TotalStockholdersEquity: decimal.NewFromInt(int64(90-i*5) * 1_000_000_000),
		})
	}
	return out
}

func generateMockBars(basePrice float64, count, seed int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	drift := 0.0002 * float64(seed%7+1)
	for i := 0; i < count; i++ {
		wave := 0.02 * math.Sin(float64(i*(seed%5+1))/9)
		p := basePrice * (1 + drift*float64(i) + wave)
		bars[i] = model.OHLCV{
			Time:     start.AddDate(0, 0, i),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		}
	}
	return bars
}
