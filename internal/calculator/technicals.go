package calculator

import (
	"errors"
	"math"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateRSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 prices.
func CalculateRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period+1 {
		return 0, errors.New("not enough data for RSI calculation")
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

// Calculate52WeekRange returns the high and low of the most recent 252 prices.
func Calculate52WeekRange(prices []float64) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	start := len(prices) - TradingDays
	if start < 0 {
		start = 0
	}
	high, low = math.Inf(-1), math.Inf(1)
	for _, p := range prices[start:] {
		high = math.Max(high, p)
		low = math.Min(low, p)
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where current sits within [low, high], in [0, 1].
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Max(0, math.Min(1, pos)), nil
}

// AssetOverview summarises the recent price action of every ticker in t.
// Statistics without enough history are NaN.
func AssetOverview(t *model.PriceTable, mu []float64, cov [][]float64) []model.AssetStats {
	out := make([]model.AssetStats, len(t.Tickers))
	for j, ticker := range t.Tickers {
		prices := dropNaN(t.Column(j))
		st := model.AssetStats{
			Ticker:      ticker,
			LastPrice:   math.NaN(),
			SMA200:      math.NaN(),
			RSI14:       math.NaN(),
			High52w:     math.NaN(),
			Low52w:      math.NaN(),
			Position52w: math.NaN(),
		}
		if j < len(mu) {
			st.AnnualReturn = mu[j]
		}
		if j < len(cov) {
			st.AnnualVolatility = math.Sqrt(cov[j][j])
		}
		if len(prices) > 0 {
			st.LastPrice = prices[len(prices)-1]
		}
		if v, err := CalculateSMA(prices, 200); err == nil {
			st.SMA200 = v
		}
		if v, err := CalculateRSI(prices, 14); err == nil {
			st.RSI14 = v
		}
		if h, l, err := Calculate52WeekRange(prices); err == nil {
			st.High52w, st.Low52w = h, l
			if pos, err := Calculate52WeekPosition(st.LastPrice, h, l); err == nil {
				st.Position52w = pos
			}
		}
		out[j] = st
	}
	return out
}

func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
