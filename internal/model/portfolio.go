package model

import "time"

// Allocation is one row of a weight table.
type Allocation struct {
	Ticker string  `csv:"Ticker"`
	Weight float64 `csv:"Weight"`
}

// Weights is an ordered ticker to fraction mapping.
type Weights []Allocation

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var s float64
	for _, a := range w {
		s += a.Weight
	}
	return s
}

// Get returns the weight of ticker.
func (w Weights) Get(ticker string) (float64, bool) {
	for _, a := range w {
		if a.Ticker == ticker {
			return a.Weight, true
		}
	}
	return 0, false
}

// Values returns the weights in ticker order.
func (w Weights) Values() []float64 {
	out := make([]float64, len(w))
	for i, a := range w {
		out[i] = a.Weight
	}
	return out
}

// NewWeights pairs tickers with values.
func NewWeights(tickers []string, values []float64) Weights {
	w := make(Weights, len(tickers))
	for i, t := range tickers {
		w[i] = Allocation{Ticker: t, Weight: values[i]}
	}
	return w
}

// ModelKind names an optimisation model.
type ModelKind string

const (
	ModelMeanVariance   ModelKind = "mvo"
	ModelHRP            ModelKind = "hrp"
	ModelBlackLitterman ModelKind = "bl"
	ModelCLA            ModelKind = "cla"
)

// Title returns the human readable model name.
func (k ModelKind) Title() string {
	switch k {
	case ModelMeanVariance:
		return "Mean Variance Optimization"
	case ModelHRP:
		return "Hierarchical Risk Parity"
	case ModelBlackLitterman:
		return "Black-Litterman"
	case ModelCLA:
		return "Critical Line Algorithm"
	default:
		return string(k)
	}
}

// Performance summarises a portfolio's annualised statistics.
type Performance struct {
	ExpectedReturn float64
	Volatility     float64
	Sharpe         float64
}

// ModelResult is the output of one optimisation model.
type ModelResult struct {
	Kind        ModelKind
	Weights     Weights // raw optimiser output, may contain negatives
	Fixed       Weights // negatives zeroed and renormalised
	Performance Performance
	CSVPath     string
	PiePath     string
	BarPath     string
}

// FrontierPoint is one portfolio on the efficient frontier.
type FrontierPoint struct {
	Return     float64
	Volatility float64
}

// AssetStats describes the price history of one ticker.
type AssetStats struct {
	Ticker           string
	LastPrice        float64
	SMA200           float64
	RSI14            float64
	High52w          float64
	Low52w           float64
	Position52w      float64
	AnnualReturn     float64
	AnnualVolatility float64
}

// PortfolioReport is the outcome of a portfolio run.
type PortfolioReport struct {
	RunID           string
	Tickers         []string
	Assets          []AssetStats
	ExpectedReturns []float64
	Covariance      [][]float64
	Models          []ModelResult
	Frontier        []FrontierPoint
	RiskFreeRate    float64
	FrontierPath    string
	DendrogramPath  string
	HTMLPath        string
	XLSXPath        string
	GeneratedAt     time.Time
}

// Model returns the result for kind.
func (r *PortfolioReport) Model(kind ModelKind) (ModelResult, bool) {
	for _, m := range r.Models {
		if m.Kind == kind {
			return m, true
		}
	}
	return ModelResult{}, false
}
