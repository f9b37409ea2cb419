package optimizer

import (
	"fmt"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"gonum.org/v1/gonum/floats"
)

// tolerance on the sign of weights and multipliers
const feasTol = 1e-12

// EfficientFrontier solves long-only mean-variance problems with weights in
// [0, 1] summing to 1.
type EfficientFrontier struct {
	Tickers []string
	Mu      []float64
	Cov     [][]float64
}

// NewEfficientFrontier validates the inputs.
func NewEfficientFrontier(tickers []string, mu []float64, cov [][]float64) (*EfficientFrontier, error) {
	if err := checkInputs(tickers, mu, cov); err != nil {
		return nil, err
	}
	return &EfficientFrontier{Tickers: tickers, Mu: mu, Cov: cov}, nil
}

// MaxSharpe returns the tangency portfolio for risk-free rate rf.
//
// The ratio (mu-rf)'w / sqrt(w'Σw) is maximised through the equivalent convex
// problem min y'Σy s.t. (mu-rf)'y = 1, y >= 0, then w = y / sum(y).
func (ef *EfficientFrontier) MaxSharpe(rf float64) (model.Weights, error) {
	excess := make([]float64, len(ef.Mu))
	for i, m := range ef.Mu {
		excess[i] = m - rf
	}
	if floats.Max(excess) <= 0 {
		return nil, ErrNoPositiveExcessReturn
	}
	y, err := minVarianceOnHyperplane(ef.Cov, excess)
	if err != nil {
		return nil, fmt.Errorf("max sharpe: %w", err)
	}
	return ef.toWeights(y), nil
}

// MinVolatility returns the long-only global minimum variance portfolio.
func (ef *EfficientFrontier) MinVolatility() (model.Weights, error) {
	y, err := minVarianceOnHyperplane(ef.Cov, ones(len(ef.Tickers)))
	if err != nil {
		return nil, fmt.Errorf("min volatility: %w", err)
	}
	return ef.toWeights(y), nil
}

func (ef *EfficientFrontier) toWeights(y []float64) model.Weights {
	sum := floats.Sum(y)
	w := make([]float64, len(y))
	for i, v := range y {
		w[i] = v / sum
	}
	return model.NewWeights(ef.Tickers, w)
}

// minVarianceOnHyperplane solves min ½y'Σy s.t. a'y = 1, y >= 0 with a primal
// active-set method. At least one a_i must be positive.
func minVarianceOnHyperplane(cov [][]float64, a []float64) ([]float64, error) {
	n := len(a)
	k := floats.MaxIdx(a)
	if a[k] <= 0 {
		return nil, ErrNoPositiveExcessReturn
	}
	y := make([]float64, n)
	y[k] = 1 / a[k]
	free := make([]bool, n)
	free[k] = true

	for iter := 0; iter < 50*n+50; iter++ {
		var idx []int
		for i, f := range free {
			if f {
				idx = append(idx, i)
			}
		}
		aF := pick(a, idx)
		z, err := solve(reduce(cov, idx, idx), aF)
		if err != nil {
			return nil, err
		}
		denom := floats.Dot(aF, z)
		if denom <= 0 {
			return nil, fmt.Errorf("degenerate covariance on %d assets: %w", len(idx), ErrNotConverged)
		}

		// blocking step towards the subspace optimum
		alpha, block := 1.0, -1
		for p, i := range idx {
			target := z[p] / denom
			if target < -feasTol {
				if step := y[i] / (y[i] - target); step < alpha {
					alpha, block = step, i
				}
			}
		}
		for p, i := range idx {
			y[i] += alpha * (z[p]/denom - y[i])
		}
		if block >= 0 {
			y[block] = 0
			free[block] = false
			continue
		}
		for _, i := range idx {
			if y[i] < 0 {
				y[i] = 0
			}
		}

		lambda := 1 / denom
		grad := mulVec(cov, y)
		enter, worst := -1, -feasTol
		for i := range a {
			if free[i] {
				continue
			}
			if g := grad[i] - lambda*a[i]; g < worst {
				enter, worst = i, g
			}
		}
		if enter < 0 {
			return y, nil
		}
		free[enter] = true
	}
	return nil, ErrNotConverged
}
