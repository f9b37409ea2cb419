package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"gonum.org/v1/gonum/floats"
)

// CLA traces the long-only efficient frontier with the critical line
// algorithm. Each turning point is a corner portfolio where an asset enters
// or leaves the free set.
type CLA struct {
	Tickers []string
	mean    []float64
	cov     [][]float64
	lB, uB  []float64

	w      [][]float64 // turning points
	lambda []float64   // NaN where undefined
	free   [][]int
	solved bool
}

// NewCLA validates the inputs. Weights are bounded to [0, 1].
func NewCLA(tickers []string, mu []float64, cov [][]float64) (*CLA, error) {
	if err := checkInputs(tickers, mu, cov); err != nil {
		return nil, err
	}
	n := len(tickers)
	mean := append([]float64(nil), mu...)
	if floats.Max(mean) == floats.Min(mean) {
		// identical returns leave the free set undefined
		mean[n-1] += 1e-5
	}
	lB := make([]float64, n)
	return &CLA{Tickers: tickers, mean: mean, cov: cov, lB: lB, uB: ones(n)}, nil
}

// TurningPoints returns a copy of the corner portfolios, highest return first.
func (c *CLA) TurningPoints() ([]model.Weights, error) {
	if err := c.solve(); err != nil {
		return nil, err
	}
	out := make([]model.Weights, len(c.w))
	for i, w := range c.w {
		out[i] = model.NewWeights(c.Tickers, w)
	}
	return out, nil
}

// MaxSharpe returns the portfolio with the highest return to volatility ratio
// on the frontier. The risk-free rate is taken to be zero.
func (c *CLA) MaxSharpe() (model.Weights, error) {
	if err := c.solve(); err != nil {
		return nil, err
	}
	if len(c.w) == 1 {
		return model.NewWeights(c.Tickers, c.w[0]), nil
	}
	best, bestSR := []float64(nil), math.Inf(-1)
	for i := 0; i+1 < len(c.w); i++ {
		w0, w1 := c.w[i], c.w[i+1]
		a, sr := goldenSection(func(x float64) float64 { return c.sharpe(blend(w0, w1, x)) }, 0, 1)
		if sr > bestSR {
			best, bestSR = blend(w0, w1, a), sr
		}
	}
	return model.NewWeights(c.Tickers, best), nil
}

// MinVolatility returns the turning point with the lowest variance.
func (c *CLA) MinVolatility() (model.Weights, error) {
	if err := c.solve(); err != nil {
		return nil, err
	}
	best, bestVar := 0, math.Inf(1)
	for i, w := range c.w {
		if v := quad(c.cov, w); v < bestVar {
			best, bestVar = i, v
		}
	}
	return model.NewWeights(c.Tickers, c.w[best]), nil
}

// Frontier interpolates roughly points portfolios between the turning points.
func (c *CLA) Frontier(points int) ([]model.FrontierPoint, error) {
	if err := c.solve(); err != nil {
		return nil, err
	}
	if len(c.w) == 1 {
		w := c.w[0]
		return []model.FrontierPoint{{Return: floats.Dot(w, c.mean), Volatility: math.Sqrt(quad(c.cov, w))}}, nil
	}
	per := points / len(c.w)
	if per < 2 {
		per = 2
	}
	var out []model.FrontierPoint
	for i := 0; i+1 < len(c.w); i++ {
		steps := per - 1 // the end point belongs to the next segment
		if i == len(c.w)-2 {
			steps = per
		}
		for s := 0; s < steps; s++ {
			x := float64(s) / float64(per-1)
			w := blend(c.w[i+1], c.w[i], x)
			out = append(out, model.FrontierPoint{
				Return:     floats.Dot(w, c.mean),
				Volatility: math.Sqrt(math.Max(quad(c.cov, w), 0)),
			})
		}
	}
	return out, nil
}

func (c *CLA) sharpe(w []float64) float64 {
	return floats.Dot(w, c.mean) / math.Sqrt(quad(c.cov, w))
}

// blend returns a*w0 + (1-a)*w1.
func blend(w0, w1 []float64, a float64) []float64 {
	out := make([]float64, len(w0))
	for i := range out {
		out[i] = a*w0[i] + (1-a)*w1[i]
	}
	return out
}

func (c *CLA) initAlgo() ([]int, []float64) {
	n := len(c.mean)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return c.mean[order[a]] < c.mean[order[b]] })

	w := append([]float64(nil), c.lB...)
	i := n
	for floats.Sum(w) < 1 && i > 0 {
		i--
		w[order[i]] = c.uB[order[i]]
	}
	w[order[i]] += 1 - floats.Sum(w)
	return []int{order[i]}, w
}

func (c *CLA) bounded(free []int) []int {
	in := make(map[int]bool, len(free))
	for _, f := range free {
		in[f] = true
	}
	var b []int
	for i := range c.mean {
		if !in[i] {
			b = append(b, i)
		}
	}
	return b
}

// system holds the reduced matrices for a free set.
type system struct {
	covFInv [][]float64
	covFB   [][]float64 // nil when every asset is free
	meanF   []float64
	wB      []float64 // nil when every asset is free
}

// matrices builds the reduced system for free, with the bounded assets held
// at their weights in w.
func (c *CLA) matrices(free []int, w []float64) (system, error) {
	inv, err := inverse(reduce(c.cov, free, free))
	if err != nil {
		return system{}, err
	}
	s := system{covFInv: inv, meanF: pick(c.mean, free)}
	if b := c.bounded(free); len(b) > 0 {
		s.covFB = reduce(c.cov, free, b)
		s.wB = pick(w, b)
	}
	return s, nil
}

// computeLambda returns the lambda at which free asset i (index into the free
// set) hits a bound. bounds holds [lower, upper] when the asset may leave the
// free set in either direction, or the single current weight otherwise.
func (c *CLA) computeLambda(s system, i int, bounds []float64) (float64, float64, bool) {
	onesF := ones(len(s.meanF))
	c1 := floats.Dot(onesF, mulVec(s.covFInv, onesF))
	c2 := mulVec(s.covFInv, s.meanF)
	c3 := floats.Dot(onesF, c2)
	c4 := mulVec(s.covFInv, onesF)
	den := -c1*c2[i] + c3*c4[i]
	if den == 0 {
		return 0, 0, false
	}
	bi := bounds[0]
	if len(bounds) == 2 && den > 0 {
		bi = bounds[1]
	}
	if s.wB == nil {
		return (c4[i] - c1*bi) / den, bi, true
	}
	l1 := floats.Sum(s.wB)
	l3 := mulVec(s.covFInv, mulVec(s.covFB, s.wB))
	l2 := floats.Sum(l3)
	return ((1-l1+l2)*c4[i] - c1*(bi+l3[i])) / den, bi, true
}

// computeW returns the free weights at the current lambda.
func (c *CLA) computeW(s system, lambda float64) []float64 {
	onesF := ones(len(s.meanF))
	g1 := floats.Dot(onesF, mulVec(s.covFInv, s.meanF))
	g2 := floats.Dot(onesF, mulVec(s.covFInv, onesF))
	w1 := make([]float64, len(onesF))
	var g float64
	if s.wB == nil {
		g = -lambda*g1/g2 + 1/g2
	} else {
		g3 := floats.Sum(s.wB)
		w1 = mulVec(s.covFInv, mulVec(s.covFB, s.wB))
		g4 := floats.Sum(w1)
		g = -lambda*g1/g2 + (1-g3+g4)/g2
	}
	w2 := mulVec(s.covFInv, onesF)
	w3 := mulVec(s.covFInv, s.meanF)
	out := make([]float64, len(onesF))
	for i := range out {
		out[i] = -w1[i] + g*w2[i] + lambda*w3[i]
	}
	return out
}

func infNaN(x float64) float64 {
	if math.IsNaN(x) {
		return math.Inf(-1)
	}
	return x
}

func (c *CLA) solve() error {
	if c.solved {
		return nil
	}
	free, w := c.initAlgo()
	c.w = [][]float64{append([]float64(nil), w...)}
	c.lambda = []float64{math.NaN()}
	c.free = [][]int{append([]int(nil), free...)}

	for iter := 0; ; iter++ {
		if iter > 10*len(c.mean)+10 {
			return fmt.Errorf("cla: %w", ErrNotConverged)
		}
		last := c.lambda[len(c.lambda)-1]

		// case a: a free weight moves to its bound
		lIn, iIn, biIn := math.NaN(), -1, 0.0
		if len(free) > 1 {
			s, err := c.matrices(free, w)
			if err != nil {
				return fmt.Errorf("cla: %w", err)
			}
			for j, i := range free {
				l, bi, ok := c.computeLambda(s, j, []float64{c.lB[i], c.uB[i]})
				if ok && l > infNaN(lIn) {
					lIn, iIn, biIn = l, i, bi
				}
			}
		}

		// case b: a bounded weight becomes free
		lOut, iOut := math.NaN(), -1
		if len(free) < len(c.mean) {
			for _, i := range c.bounded(free) {
				cand := append(append([]int(nil), free...), i)
				s, err := c.matrices(cand, w)
				if err != nil {
					return fmt.Errorf("cla: %w", err)
				}
				l, _, ok := c.computeLambda(s, len(cand)-1, []float64{c.w[len(c.w)-1][i]})
				if ok && (math.IsNaN(last) || l < last) && l > infNaN(lOut) {
					lOut, iOut = l, i
				}
			}
		}

		var lambda float64
		minVariance := (math.IsNaN(lIn) || lIn < 0) && (math.IsNaN(lOut) || lOut < 0)
		switch {
		case minVariance:
			lambda = 0
		case infNaN(lIn) > infNaN(lOut):
			lambda = lIn
			free = remove(free, iIn)
			w[iIn] = biIn
		default:
			lambda = lOut
			free = append(free, iOut)
		}
		c.lambda = append(c.lambda, lambda)

		// the leaving asset already sits on its bound in w
		s, err := c.matrices(free, w)
		if err != nil {
			return fmt.Errorf("cla: %w", err)
		}
		if minVariance {
			s.meanF = make([]float64, len(s.meanF))
		}
		wF := c.computeW(s, lambda)
		for j, i := range free {
			w[i] = wF[j]
		}
		c.w = append(c.w, append([]float64(nil), w...))
		c.free = append(c.free, append([]int(nil), free...))
		if lambda == 0 {
			break
		}
	}

	c.purgeNumErr(1e-9)
	c.purgeExcess()
	c.solved = true
	return nil
}

func remove(xs []int, x int) []int {
	out := make([]int, 0, len(xs))
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

func (c *CLA) drop(i int) {
	c.w = append(c.w[:i], c.w[i+1:]...)
	c.lambda = append(c.lambda[:i], c.lambda[i+1:]...)
	c.free = append(c.free[:i], c.free[i+1:]...)
}

// purgeNumErr removes turning points that violate the budget or the bounds.
func (c *CLA) purgeNumErr(tol float64) {
	for i := 0; i < len(c.w); {
		bad := math.Abs(floats.Sum(c.w[i])-1) > tol
		for j, v := range c.w[i] {
			if v-c.lB[j] < -tol || v-c.uB[j] > tol {
				bad = true
				break
			}
		}
		if bad {
			c.drop(i)
			continue
		}
		i++
	}
}

// purgeExcess removes turning points dominated by a later point with a higher
// return. The first point is always kept.
func (c *CLA) purgeExcess() {
	i, repeat := 0, false
	for {
		if !repeat {
			i++
		}
		if i >= len(c.w)-1 {
			return
		}
		mu := floats.Dot(c.w[i], c.mean)
		repeat = false
		for j := i + 1; j < len(c.w); j++ {
			if mu < floats.Dot(c.w[j], c.mean) {
				c.drop(i)
				repeat = true
				break
			}
		}
	}
}

// goldenSection maximises f on [a, b].
func goldenSection(f func(float64) float64, a, b float64) (float64, float64) {
	const tol = 1e-9
	const r = 0.618033989
	const cc = 1 - r
	iters := int(math.Ceil(-2.078087 * math.Log(tol/math.Abs(b-a))))
	x1, x2 := r*a+cc*b, cc*a+r*b
	f1, f2 := -f(x1), -f(x2)
	for k := 0; k < iters; k++ {
		if f1 > f2 {
			a = x1
			x1, f1 = x2, f2
			x2 = cc*a + r*b
			f2 = -f(x2)
		} else {
			b = x2
			x2, f2 = x1, f1
			x1 = r*a + cc*b
			f1 = -f(x1)
		}
	}
	if f1 < f2 {
		return x1, -f1
	}
	return x2, -f2
}
