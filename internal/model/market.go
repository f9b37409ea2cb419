package model

import (
	"math"
	"sort"
	"time"
)

// OHLCV represents a single daily bar. AdjClose is the split/dividend
// adjusted close, falling back to Close when the source has none.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PriceSeries holds the bars fetched for one ticker.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// PriceTable is a date-indexed table of prices, one column per ticker.
// Prices[i][j] is the price of Tickers[j] on Dates[i]; missing values are NaN.
type PriceTable struct {
	Dates   []time.Time
	Tickers []string
	Prices  [][]float64
}

// Rows returns the number of dated rows.
func (t *PriceTable) Rows() int { return len(t.Dates) }

// Column returns a copy of the price column for the ticker at index j.
func (t *PriceTable) Column(j int) []float64 {
	col := make([]float64, len(t.Prices))
	for i, row := range t.Prices {
		col[i] = row[j]
	}
	return col
}

// TickerIndex returns the column index of ticker, or -1.
func (t *PriceTable) TickerIndex(ticker string) int {
	for j, tk := range t.Tickers {
		if tk == ticker {
			return j
		}
	}
	return -1
}

// MergeSeries aligns several series on the union of their dates.
// A ticker without a bar on a given date gets NaN.
func MergeSeries(series []PriceSeries) *PriceTable {
	byDay := make(map[string]int)
	var dates []time.Time
	for _, s := range series {
		for _, b := range s.Bars {
			d := day(b.Time)
			key := d.Format("2006-01-02")
			if _, ok := byDay[key]; !ok {
				byDay[key] = -1
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, d := range dates {
		byDay[d.Format("2006-01-02")] = i
	}

	table := &PriceTable{Dates: dates, Prices: make([][]float64, len(dates))}
	for i := range table.Prices {
		row := make([]float64, len(series))
		for j := range row {
			row[j] = math.NaN()
		}
		table.Prices[i] = row
	}
	for j, s := range series {
		table.Tickers = append(table.Tickers, s.Symbol)
		for _, b := range s.Bars {
			i := byDay[day(b.Time).Format("2006-01-02")]
			price := b.AdjClose
			if price == 0 {
				price = b.Close
			}
			table.Prices[i][j] = price
		}
	}
	return table
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
