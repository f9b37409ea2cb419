package chart

import (
	"fmt"
	"math"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/optimizer"
	"github.com/wcharczuk/go-chart/v2"
)

// Dendrogram draws the hierarchical clustering behind an HRP allocation.
// Leaves are laid out in order; each merge is drawn as a bracket at its
// linkage distance.
func Dendrogram(path string, tickers []string, linkage []optimizer.Merge, order []int) error {
	n := len(tickers)
	if n < 2 || len(linkage) != n-1 || len(order) != n {
		return fmt.Errorf("dendrogram: %w", ErrEmpty)
	}

	x := make([]float64, 2*n-1)
	h := make([]float64, 2*n-1)
	ticks := make([]chart.Tick, n)
	for pos, leaf := range order {
		x[leaf] = float64(pos)
		ticks[pos] = chart.Tick{Value: float64(pos), Label: tickers[leaf]}
	}

	top := 0.0
	series := make([]chart.Series, 0, len(linkage))
	for i, m := range linkage {
		id := n + i
		x[id] = (x[m.Left] + x[m.Right]) / 2
		h[id] = m.Distance
		top = math.Max(top, m.Distance)
		series = append(series, chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: color(1), StrokeWidth: 2},
			XValues: []float64{x[m.Left], x[m.Left], x[m.Right], x[m.Right]},
			YValues: []float64{h[m.Left], m.Distance, m.Distance, h[m.Right]},
		})
	}
	if top == 0 {
		top = 1
	}

	return save(path, chart.Chart{
		Title:  "HRP Dendrogram",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Distance",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Series: series,
	})
}
