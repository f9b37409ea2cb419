package report

import (
	"errors"
	"fmt"
	"html/template"
	"math"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"go.uber.org/zap"
)

type modelSection struct {
	Title       string
	Description template.HTML
	Return      string
	Volatility  string
	Sharpe      string
	Pie         string
	Bar         string
	Table       table
}

type heatCell struct {
	Value string
	Color string
}

type heatRow struct {
	Ticker string
	Cells  []heatCell
}

type portfolioPage struct {
	Tickers     []string
	RiskFree    string
	GeneratedAt string
	Assets      table
	Frontier    string
	Dendrogram  string
	Heatmap     []heatRow
	Sections    []modelSection
}

// WritePortfolioHTML renders r to dir/results.html and returns its path.
// Each model's weight table is read back from its CSV so the page shows
// exactly what was written.
func WritePortfolioHTML(dir string, r *model.PortfolioReport) (string, error) {
	if r == nil || len(r.Models) == 0 {
		return "", errors.New("empty portfolio report")
	}
	page := portfolioPage{
		Tickers:     r.Tickers,
		RiskFree:    Percent(r.RiskFreeRate),
		GeneratedAt: stamp(r.GeneratedAt),
		Assets:      assetTable(r.Assets),
		Frontier:    relative(dir, r.FrontierPath),
		Dendrogram:  relative(dir, r.DendrogramPath),
		Heatmap:     heatmap(r.Tickers, r.Covariance),
	}
	for _, m := range r.Models {
		sec := modelSection{
			Title:       m.Kind.Title(),
			Description: Description(m.Kind),
			Return:      Percent(m.Performance.ExpectedReturn),
			Volatility:  Percent(m.Performance.Volatility),
			Sharpe:      Float(m.Performance.Sharpe, 3),
			Pie:         relative(dir, m.PiePath),
			Bar:         relative(dir, m.BarPath),
		}
		weights := m.Weights
		if m.CSVPath != "" {
			w, err := ReadWeightsCSV(m.CSVPath)
			if err != nil {
				zap.S().Warnf("weights of %s: %v, using in-memory table", m.Kind, err)
			} else {
				weights = w
			}
		}
		sec.Table = weightTable(weights)
		page.Sections = append(page.Sections, sec)
	}
	return render(dir, PortfolioFile, "portfolio.html.tmpl", page)
}

func weightTable(w model.Weights) table {
	t := table{Headers: []string{"Ticker", "Weight"}}
	for _, a := range w {
		t.Rows = append(t.Rows, []string{a.Ticker, fmt.Sprintf("%.4f", a.Weight)})
	}
	return t
}

func assetTable(assets []model.AssetStats) table {
	t := table{Headers: []string{
		"Ticker", "Last Price", "SMA 200", "RSI 14", "52w High", "52w Low",
		"52w Position", "Annual Return", "Annual Volatility",
	}}
	for _, a := range assets {
		t.Rows = append(t.Rows, []string{
			a.Ticker,
			Float(a.LastPrice, 2),
			Float(a.SMA200, 2),
			Float(a.RSI14, 1),
			Float(a.High52w, 2),
			Float(a.Low52w, 2),
			Percent(a.Position52w),
			Percent(a.AnnualReturn),
			Percent(a.AnnualVolatility),
		})
	}
	return t
}

func heatmap(tickers []string, cov [][]float64) []heatRow {
	if len(cov) != len(tickers) {
		return nil
	}
	corr := calculator.CovToCorr(cov)
	rows := make([]heatRow, len(tickers))
	for i, t := range tickers {
		rows[i] = heatRow{Ticker: t, Cells: make([]heatCell, len(tickers))}
		for j := range tickers {
			rows[i].Cells[j] = heatCell{Value: Float(cov[i][j], 4), Color: shade(corr[i][j])}
		}
	}
	return rows
}

// shade maps a correlation in [-1, 1] to a hex colour, blue for negative,
// white for zero and orange for positive.
func shade(rho float64) string {
	if math.IsNaN(rho) {
		return "#eeeeee"
	}
	rho = math.Max(-1, math.Min(1, rho))
	mix := func(to [3]float64, a float64) string {
		r := 255 + (to[0]-255)*a
		g := 255 + (to[1]-255)*a
		b := 255 + (to[2]-255)*a
		return fmt.Sprintf("#%02x%02x%02x", int(r), int(g), int(b))
	}
	if rho < 0 {
		return mix([3]float64{47, 75, 124}, -rho*0.8)
	}
	return mix([3]float64{255, 124, 67}, rho*0.8)
}
