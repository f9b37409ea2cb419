// Package optimizer implements long-only portfolio construction: mean-variance
// (max Sharpe, min volatility), hierarchical risk parity, Black-Litterman and
// the critical line algorithm.
package optimizer

import (
	"errors"
	"math"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoAssets               = errors.New("no assets")
	ErrNoPositiveExcessReturn = errors.New("no asset has an expected return above the risk-free rate")
	ErrNoViews                = errors.New("no views provided")
	ErrNotConverged           = errors.New("optimizer did not converge")
	ErrNotEnoughObservations  = errors.New("not enough return observations")
)

// Performance computes the expected return, volatility and Sharpe ratio of w.
func Performance(w model.Weights, mu []float64, cov [][]float64, rf float64) model.Performance {
	v := w.Values()
	ret := floats.Dot(v, mu)
	vol := math.Sqrt(math.Max(quad(cov, v), 0))
	p := model.Performance{ExpectedReturn: ret, Volatility: vol}
	if vol > 0 {
		p.Sharpe = (ret - rf) / vol
	}
	return p
}
