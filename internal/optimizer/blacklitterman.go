package optimizer

import (
	"fmt"
	"sort"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"gonum.org/v1/gonum/floats"
)

// BlackLittermanOptions configures the Black-Litterman model.
type BlackLittermanOptions struct {
	Tau          float64            // uncertainty of the prior, default 0.05
	RiskAversion float64            // delta, default 1
	RiskFreeRate float64            // added to a market-implied prior
	MarketCaps   map[string]float64 // optional; enables the market-implied prior
}

// BlackLittermanResult holds the prior, the posterior and the implied weights.
type BlackLittermanResult struct {
	Prior     []float64
	Posterior []float64
	Weights   model.Weights
}

// BlackLitterman blends absolute views (ticker to expected return) with a
// prior. Without market caps the prior is zero for every asset. The
// uncertainty of each view is proportional to the variance of the view
// portfolio: Ω = diag(τPΣPᵀ). Weights are (δΣ)⁻¹ μ_post scaled to sum to 1
// and may be negative.
func BlackLitterman(tickers []string, cov [][]float64, views map[string]float64, opts BlackLittermanOptions) (*BlackLittermanResult, error) {
	if err := checkInputs(tickers, nil, cov); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNoViews
	}
	if opts.Tau <= 0 {
		opts.Tau = 0.05
	}
	if opts.RiskAversion <= 0 {
		opts.RiskAversion = 1
	}
	n := len(tickers)

	index := make(map[string]int, n)
	for i, t := range tickers {
		index[t] = i
	}
	viewTickers := make([]string, 0, len(views))
	for t := range views {
		if _, ok := index[t]; !ok {
			return nil, fmt.Errorf("view on %s: ticker not in universe", t)
		}
		viewTickers = append(viewTickers, t)
	}
	sort.Strings(viewTickers)

	prior, err := marketPrior(tickers, cov, opts)
	if err != nil {
		return nil, err
	}

	// each view selects one asset, so PΣPᵀ and ΣPᵀ reduce to entries of Σ
	k := len(viewTickers)
	sel := make([]int, k)
	q := make([]float64, k)
	for v, t := range viewTickers {
		sel[v] = index[t]
		q[v] = views[t]
	}
	a := reduce(cov, sel, sel)
	for v := range a {
		for u := range a[v] {
			a[v][u] *= opts.Tau
		}
		a[v][v] *= 2 // + Ω
	}
	b := make([]float64, k)
	for v, i := range sel {
		b[v] = q[v] - prior[i]
	}
	x, err := solve(a, b)
	if err != nil {
		return nil, fmt.Errorf("black-litterman posterior: %w", err)
	}

	post := append([]float64(nil), prior...)
	for i := 0; i < n; i++ {
		for v, j := range sel {
			post[i] += opts.Tau * cov[i][j] * x[v]
		}
	}

	scaled := make([][]float64, n)
	for i := range cov {
		scaled[i] = make([]float64, n)
		for j := range cov[i] {
			scaled[i][j] = opts.RiskAversion * cov[i][j]
		}
	}
	raw, err := solve(scaled, post)
	if err != nil {
		return nil, fmt.Errorf("black-litterman weights: %w", err)
	}
	sum := floats.Sum(raw)
	if sum == 0 {
		return nil, fmt.Errorf("black-litterman weights sum to zero")
	}
	floats.Scale(1/sum, raw)

	return &BlackLittermanResult{
		Prior:     prior,
		Posterior: post,
		Weights:   model.NewWeights(tickers, raw),
	}, nil
}

// marketPrior returns δΣw_mkt + rf when market caps are configured, zeros otherwise.
func marketPrior(tickers []string, cov [][]float64, opts BlackLittermanOptions) ([]float64, error) {
	n := len(tickers)
	if len(opts.MarketCaps) == 0 {
		return make([]float64, n), nil
	}
	caps := make([]float64, n)
	for i, t := range tickers {
		c, ok := opts.MarketCaps[t]
		if !ok || c <= 0 {
			return nil, fmt.Errorf("market cap for %s is missing", t)
		}
		caps[i] = c
	}
	floats.Scale(1/floats.Sum(caps), caps)
	prior := mulVec(cov, caps)
	for i := range prior {
		prior[i] = opts.RiskAversion*prior[i] + opts.RiskFreeRate
	}
	return prior, nil
}
