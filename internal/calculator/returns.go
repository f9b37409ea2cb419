package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"gonum.org/v1/gonum/stat"
)

// TradingDays is the default number of return periods per year.
const TradingDays = 252

// ErrNotEnoughData is returned when a series is too short for a statistic.
var ErrNotEnoughData = errors.New("not enough data")

// ForwardFill replaces missing prices with the last known price of the same
// column. Leading gaps stay NaN.
func ForwardFill(prices [][]float64) [][]float64 {
	out := make([][]float64, len(prices))
	for i, row := range prices {
		out[i] = append([]float64(nil), row...)
		if i == 0 {
			continue
		}
		for j, v := range out[i] {
			if math.IsNaN(v) {
				out[i][j] = out[i-1][j]
			}
		}
	}
	return out
}

// PctChange computes simple period returns on forward-filled prices.
// Rows in which every return is missing are dropped.
func PctChange(t *model.PriceTable) [][]float64 {
	filled := ForwardFill(t.Prices)
	var out [][]float64
	for i := 1; i < len(filled); i++ {
		row := make([]float64, len(t.Tickers))
		allMissing := true
		for j := range row {
			prev, cur := filled[i-1][j], filled[i][j]
			if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
				row[j] = math.NaN()
				continue
			}
			row[j] = cur/prev - 1
			allMissing = false
		}
		if !allMissing {
			out = append(out, row)
		}
	}
	return out
}

// CompleteReturns returns only the return rows without any missing value.
func CompleteReturns(t *model.PriceTable) [][]float64 {
	var out [][]float64
	for _, row := range PctChange(t) {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, row)
		}
	}
	return out
}

// MeanHistoricalReturn annualises the compounded mean return of every ticker:
// prod(1+r)^(frequency/n) - 1 over the ticker's non-missing returns.
func MeanHistoricalReturn(t *model.PriceTable, frequency int) ([]float64, error) {
	if t.Rows() < 2 {
		return nil, fmt.Errorf("mean historical return: %w", ErrNotEnoughData)
	}
	returns := PctChange(t)
	mu := make([]float64, len(t.Tickers))
	for j, ticker := range t.Tickers {
		growth, n := 1.0, 0
		for _, row := range returns {
			if math.IsNaN(row[j]) {
				continue
			}
			growth *= 1 + row[j]
			n++
		}
		if n == 0 {
			return nil, fmt.Errorf("mean historical return for %s: %w", ticker, ErrNotEnoughData)
		}
		mu[j] = math.Pow(growth, float64(frequency)/float64(n)) - 1
	}
	return mu, nil
}

// SampleCov estimates the annualised sample covariance of returns using
// pairwise complete observations.
func SampleCov(t *model.PriceTable, frequency int) ([][]float64, error) {
	if t.Rows() < 3 {
		return nil, fmt.Errorf("sample covariance: %w", ErrNotEnoughData)
	}
	returns := PctChange(t)
	n := len(t.Tickers)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := paired(returns, i, j)
			if len(x) < 2 {
				return nil, fmt.Errorf("sample covariance of %s/%s: %w", t.Tickers[i], t.Tickers[j], ErrNotEnoughData)
			}
			c := stat.Covariance(x, y, nil) * float64(frequency)
			cov[i][j], cov[j][i] = c, c
		}
	}
	return cov, nil
}

// CovToCorr converts a covariance matrix into a correlation matrix.
func CovToCorr(cov [][]float64) [][]float64 {
	n := len(cov)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		for j := range corr[i] {
			d := math.Sqrt(cov[i][i] * cov[j][j])
			if d == 0 {
				continue
			}
			corr[i][j] = cov[i][j] / d
		}
	}
	return corr
}

func paired(returns [][]float64, i, j int) (x, y []float64) {
	for _, row := range returns {
		if math.IsNaN(row[i]) || math.IsNaN(row[j]) {
			continue
		}
		x = append(x, row[i])
		y = append(y, row[j])
	}
	return x, y
}
