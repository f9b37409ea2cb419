package optimizer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
)

var (
	twoTickers = []string{"A", "B"}
	twoMu      = []float64{0.1, 0.2}
	twoCov     = [][]float64{{0.04, 0}, {0, 0.09}}

	fourTickers = []string{"AAPL", "MSFT", "KO", "XOM"}
	fourMu      = []float64{0.12, 0.10, 0.07, 0.02}
	fourCov     = [][]float64{
		{0.0400, 0.0060, 0.0020, 0.0010},
		{0.0060, 0.0225, 0.0030, 0.0020},
		{0.0020, 0.0030, 0.0100, 0.0015},
		{0.0010, 0.0020, 0.0015, 0.0900},
	}
)

func expectWeights(t *testing.T, name string, got model.Weights, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d weights, got %d", name, len(want), len(got))
	}
	for i, a := range got {
		if math.Abs(a.Weight-want[i]) > tol {
			t.Errorf("%s: %s expected %.4f, got %.4f", name, a.Ticker, want[i], a.Weight)
		}
	}
	if math.Abs(got.Sum()-1) > 1e-9 {
		t.Errorf("%s: expected weights to sum to 1, got %.12f", name, got.Sum())
	}
}

func TestMaxSharpe_UncorrelatedTangency(t *testing.T) {
	ef, err := NewEfficientFrontier(twoTickers, twoMu, twoCov)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := ef.MaxSharpe(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Σ⁻¹μ = (2.5, 2.2222), normalised
	expectWeights(t, "max sharpe", w, []float64{2.5 / 4.7222222, 2.2222222 / 4.7222222}, 1e-6)
}

func TestMaxSharpe_ExcludesAssetsBelowRiskFree(t *testing.T) {
	ef, _ := NewEfficientFrontier(twoTickers, []float64{0.01, 0.2}, twoCov)
	w, err := ef.MaxSharpe(0.02)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectWeights(t, "max sharpe", w, []float64{0, 1}, 1e-9)
}

func TestMaxSharpe_NoPositiveExcessReturn(t *testing.T) {
	ef, _ := NewEfficientFrontier(twoTickers, []float64{0.01, 0.015}, twoCov)
	if _, err := ef.MaxSharpe(0.02); !errors.Is(err, ErrNoPositiveExcessReturn) {
		t.Errorf("expected ErrNoPositiveExcessReturn, got %v", err)
	}
}

func TestMinVolatility_Uncorrelated(t *testing.T) {
	ef, _ := NewEfficientFrontier(twoTickers, twoMu, twoCov)
	w, err := ef.MinVolatility()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectWeights(t, "min volatility", w, []float64{0.09 / 0.13, 0.04 / 0.13}, 1e-9)
}

func TestCLA_MatchesEfficientFrontier(t *testing.T) {
	ef, err := NewEfficientFrontier(fourTickers, fourMu, fourCov)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cla, err := NewCLA(fourTickers, fourMu, fourCov)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	efSharpe, err := ef.MaxSharpe(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claSharpe, err := cla.MaxSharpe()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectWeights(t, "cla max sharpe", claSharpe, efSharpe.Values(), 1e-4)

	efMin, _ := ef.MinVolatility()
	claMin, err := cla.MinVolatility()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectWeights(t, "cla min volatility", claMin, efMin.Values(), 1e-6)

	for _, a := range claSharpe {
		if a.Weight < -1e-9 || a.Weight > 1+1e-9 {
			t.Errorf("weight of %s out of bounds: %.6f", a.Ticker, a.Weight)
		}
	}
}

// randomProblem returns n assets with positive returns and a well
// conditioned covariance matrix.
func randomProblem(rng *rand.Rand, n int) ([]string, []float64, [][]float64) {
	tickers := make([]string, n)
	mu := make([]float64, n)
	a := make([][]float64, n)
	for i := range a {
		tickers[i] = fmt.Sprintf("T%d", i)
		mu[i] = 0.02 + 0.25*rng.Float64()
		a[i] = make([]float64, n)
		for k := range a[i] {
			a[i][k] = 0.15 * rng.NormFloat64()
		}
	}
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
		for j := range cov[i] {
			for k := 0; k < n; k++ {
				cov[i][j] += a[i][k] * a[j][k] / float64(n)
			}
		}
		cov[i][i] += 0.005 + 0.02*rng.Float64()
	}
	return tickers, mu, cov
}

func TestCLA_MaxSharpeWhenAssetsLeaveFreeSet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	leaves := 0
	for trial := 0; trial < 150; trial++ {
		tickers, mu, cov := randomProblem(rng, 2+trial%8)
		ef, err := NewEfficientFrontier(tickers, mu, cov)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		want, err := ef.MaxSharpe(0)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		cla, _ := NewCLA(tickers, mu, cov)
		got, err := cla.MaxSharpe()
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}

		wantSR := Performance(want, mu, cov, 0).Sharpe
		gotSR := Performance(got, mu, cov, 0).Sharpe
		if math.Abs(gotSR-wantSR) > 1e-4 {
			t.Errorf("trial %d (%d assets): expected sharpe %.6f, got %.6f", trial, len(tickers), wantSR, gotSR)
		}
		for i, w := range cla.w {
			if math.Abs(sum(w)-1) > 1e-9 {
				t.Errorf("trial %d: turning point %d sums to %.9f", trial, i, sum(w))
			}
		}
		for i := 1; i < len(cla.free); i++ {
			if len(cla.free[i]) < len(cla.free[i-1]) {
				leaves++
			}
		}
	}
	if leaves == 0 {
		t.Error("expected some trials where an asset leaves the free set")
	}
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestCLA_TurningPointsAndFrontier(t *testing.T) {
	cla, _ := NewCLA(twoTickers, twoMu, twoCov)
	tps, err := cla.TurningPoints()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tps) < 2 {
		t.Fatalf("expected at least 2 turning points, got %d", len(tps))
	}
	expectWeights(t, "first turning point", tps[0], []float64{0, 1}, 1e-9)
	expectWeights(t, "last turning point", tps[len(tps)-1], []float64{0.09 / 0.13, 0.04 / 0.13}, 1e-9)

	pts, err := cla.Frontier(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) == 0 {
		t.Fatal("expected frontier points")
	}
	if math.Abs(pts[0].Return-0.2) > 1e-9 || math.Abs(pts[0].Volatility-0.3) > 1e-9 {
		t.Errorf("expected frontier to start at the max return asset, got %+v", pts[0])
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Return > pts[i-1].Return+1e-12 {
			t.Fatalf("expected non-increasing returns along the frontier at %d", i)
		}
	}
}

func TestCLA_EqualReturns(t *testing.T) {
	cla, err := NewCLA(twoTickers, []float64{0.1, 0.1}, twoCov)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cla.MaxSharpe(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHRP_TwoAssetsInverseVariance(t *testing.T) {
	returns := [][]float64{
		{0.01, 0.02},
		{-0.01, -0.02},
		{0.02, 0.04},
		{-0.02, -0.04},
	}
	res, err := HRP(twoTickers, returns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectWeights(t, "hrp", res.Weights, []float64{0.8, 0.2}, 1e-9)
	if len(res.Linkage) != 1 {
		t.Errorf("expected one merge, got %d", len(res.Linkage))
	}
}

func TestHRP_NotEnoughObservations(t *testing.T) {
	if _, err := HRP(twoTickers, [][]float64{{0.1, 0.2}}); !errors.Is(err, ErrNotEnoughObservations) {
		t.Errorf("expected ErrNotEnoughObservations, got %v", err)
	}
}

func TestSingleLinkageAndQuasiDiag(t *testing.T) {
	dist := [][]float64{
		{0, 0.1, 0.5},
		{0.1, 0, 0.4},
		{0.5, 0.4, 0},
	}
	link := SingleLinkage(dist)
	want := []Merge{
		{Left: 0, Right: 1, Distance: 0.1, Size: 2},
		{Left: 2, Right: 3, Distance: 0.4, Size: 3},
	}
	for i, m := range want {
		if link[i] != m {
			t.Errorf("merge %d: expected %+v, got %+v", i, m, link[i])
		}
	}
	order := QuasiDiag(link, 3)
	if len(order) != 3 || order[0] != 2 || order[1] != 0 || order[2] != 1 {
		t.Errorf("expected order [2 0 1], got %v", order)
	}
}

func TestBlackLitterman_SingleViewNoPrior(t *testing.T) {
	views := map[string]float64{"AAPL": 0.10}
	res, err := BlackLitterman(fourTickers, fourCov, views, BlackLittermanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// with a zero prior the posterior is proportional to Σ's AAPL column,
	// so the implied portfolio holds AAPL only
	expectWeights(t, "black-litterman", res.Weights, []float64{1, 0, 0, 0}, 1e-9)
	for i := range fourTickers {
		want := fourCov[i][0] * 0.10 / (2 * fourCov[0][0])
		if math.Abs(res.Posterior[i]-want) > 1e-12 {
			t.Errorf("posterior %d: expected %.6f, got %.6f", i, want, res.Posterior[i])
		}
	}
}

func TestBlackLitterman_MarketPrior(t *testing.T) {
	caps := map[string]float64{"AAPL": 3, "MSFT": 3, "KO": 2, "XOM": 2}
	res, err := BlackLitterman(fourTickers, fourCov, map[string]float64{"KO": 0.2}, BlackLittermanOptions{MarketCaps: caps, RiskFreeRate: 0.02})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Weights.Sum()-1) > 1e-9 {
		t.Errorf("expected weights to sum to 1, got %.6f", res.Weights.Sum())
	}
	if res.Prior[0] <= 0.02 {
		t.Errorf("expected market implied prior above rf, got %.6f", res.Prior[0])
	}
	if res.Posterior[2] <= res.Prior[2] {
		t.Errorf("expected bullish view to raise KO's return, prior %.4f posterior %.4f", res.Prior[2], res.Posterior[2])
	}
}

func TestBlackLitterman_InvalidViews(t *testing.T) {
	if _, err := BlackLitterman(fourTickers, fourCov, nil, BlackLittermanOptions{}); !errors.Is(err, ErrNoViews) {
		t.Errorf("expected ErrNoViews, got %v", err)
	}
	if _, err := BlackLitterman(fourTickers, fourCov, map[string]float64{"TSLA": 0.1}, BlackLittermanOptions{}); err == nil {
		t.Error("expected error for a view outside the universe")
	}
}

func TestPerformance(t *testing.T) {
	w := model.NewWeights(twoTickers, []float64{0.5, 0.5})
	p := Performance(w, twoMu, twoCov, 0.02)
	if math.Abs(p.ExpectedReturn-0.15) > 1e-12 {
		t.Errorf("expected return 0.15, got %.6f", p.ExpectedReturn)
	}
	vol := math.Sqrt(0.0325)
	if math.Abs(p.Volatility-vol) > 1e-12 {
		t.Errorf("expected volatility %.6f, got %.6f", vol, p.Volatility)
	}
	if math.Abs(p.Sharpe-0.13/vol) > 1e-9 {
		t.Errorf("expected sharpe %.6f, got %.6f", 0.13/vol, p.Sharpe)
	}
}

func TestNewEfficientFrontier_DimensionMismatch(t *testing.T) {
	if _, err := NewEfficientFrontier(twoTickers, []float64{0.1}, twoCov); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
	if _, err := NewEfficientFrontier(nil, nil, nil); !errors.Is(err, ErrNoAssets) {
		t.Errorf("expected ErrNoAssets, got %v", err)
	}
}
