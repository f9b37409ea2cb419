// Package chart renders the PNG plots embedded in the portfolio report.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 800
	height = 500
)

// ErrEmpty is returned when there is nothing to plot.
var ErrEmpty = errors.New("nothing to plot")

var palette = []drawing.Color{
	drawing.ColorFromHex("003f5c"),
	drawing.ColorFromHex("2f4b7c"),
	drawing.ColorFromHex("665191"),
	drawing.ColorFromHex("a05195"),
	drawing.ColorFromHex("d45087"),
	drawing.ColorFromHex("f95d6a"),
	drawing.ColorFromHex("ff7c43"),
	drawing.ColorFromHex("ffa600"),
}

func color(i int) drawing.Color { return palette[i%len(palette)] }

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// save renders c as PNG to path, creating the parent directory.
func save(path string, c renderer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Pie draws the allocation as a pie chart. Zero weights are left out.
func Pie(path, title string, w model.Weights) error {
	var values []chart.Value
	for _, a := range w {
		if a.Weight <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: a.Weight,
			Label: fmt.Sprintf("%s %.1f%%", a.Ticker, a.Weight*100),
			Style: chart.Style{FillColor: color(len(values)), StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return fmt.Errorf("pie %s: %w", title, ErrEmpty)
	}
	return save(path, chart.PieChart{
		Title:  title,
		Width:  width,
		Height: width,
		Values: values,
	})
}

// WeightBars draws the raw optimiser weights, negative ones below the axis.
func WeightBars(path, title string, w model.Weights) error {
	if len(w) == 0 {
		return fmt.Errorf("bars %s: %w", title, ErrEmpty)
	}
	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, len(w))
	for i, a := range w {
		lo = math.Min(lo, a.Weight)
		hi = math.Max(hi, a.Weight)
		bars[i] = chart.Value{
			Value: a.Weight,
			Label: a.Ticker,
			Style: chart.Style{FillColor: color(i), StrokeColor: color(i)},
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	return save(path, chart.BarChart{
		Title:        title,
		Width:        width,
		Height:       height,
		BarWidth:     barWidth(len(w)),
		Background:   chart.Style{Padding: chart.Box{Top: 40}},
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
			ValueFormatter: chart.PercentValueFormatter,
		},
		Bars: bars,
	})
}

func barWidth(n int) int {
	bw := (width - 100) / (n * 2)
	if bw > 60 {
		return 60
	}
	if bw < 5 {
		return 5
	}
	return bw
}

// Marker is a named portfolio highlighted on the frontier plot.
type Marker struct {
	Label       string
	Performance model.Performance
}

// Frontier draws the efficient frontier curve with the individual assets and
// the highlighted portfolios.
func Frontier(path string, curve []model.FrontierPoint, assets []model.AssetStats, markers []Marker) error {
	if len(curve) == 0 && len(assets) == 0 {
		return fmt.Errorf("frontier: %w", ErrEmpty)
	}
	var series []chart.Series
	var xs, ys []float64

	if len(curve) > 0 {
		line := chart.ContinuousSeries{
			Name:  "Efficient frontier",
			Style: chart.Style{StrokeColor: color(1), StrokeWidth: 2},
		}
		for _, p := range curve {
			line.XValues = append(line.XValues, p.Volatility)
			line.YValues = append(line.YValues, p.Return)
		}
		series = append(series, line)
		xs = append(xs, line.XValues...)
		ys = append(ys, line.YValues...)
	}

	if len(assets) > 0 {
		scatter := chart.ContinuousSeries{
			Name:  "Assets",
			Style: chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5, DotColor: color(4)},
		}
		labels := chart.AnnotationSeries{Name: "Tickers"}
		for _, a := range assets {
			if math.IsNaN(a.AnnualVolatility) || math.IsNaN(a.AnnualReturn) {
				continue
			}
			scatter.XValues = append(scatter.XValues, a.AnnualVolatility)
			scatter.YValues = append(scatter.YValues, a.AnnualReturn)
			labels.Annotations = append(labels.Annotations, chart.Value2{
				XValue: a.AnnualVolatility, YValue: a.AnnualReturn, Label: a.Ticker,
			})
		}
		if len(scatter.XValues) > 0 {
			series = append(series, scatter, labels)
			xs = append(xs, scatter.XValues...)
			ys = append(ys, scatter.YValues...)
		}
	}

	for i, m := range markers {
		c := color(6 + i)
		series = append(series, chart.ContinuousSeries{
			Name:    m.Label,
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 9, DotColor: c},
			XValues: []float64{m.Performance.Volatility},
			YValues: []float64{m.Performance.ExpectedReturn},
		})
		xs = append(xs, m.Performance.Volatility)
		ys = append(ys, m.Performance.ExpectedReturn)
	}
	if len(xs) == 0 {
		return fmt.Errorf("frontier: %w", ErrEmpty)
	}

	graph := chart.Chart{
		Title:  "Efficient Frontier",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Volatility",
			Range:          padded(xs),
			ValueFormatter: chart.PercentValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Expected return",
			Range:          padded(ys),
			ValueFormatter: chart.PercentValueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return save(path, graph)
}

func padded(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 0.01)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
