package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/chart"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/dataset"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/optimizer"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/report"
	"go.uber.org/zap"
)

// ErrAllModelsFailed is returned when no optimisation model produced weights.
var ErrAllModelsFailed = errors.New("every optimisation model failed")

const frontierPoints = 100

// PortfolioOptions configures the optimisation models.
type PortfolioOptions struct {
	PricesFile   string
	RiskFreeRate float64
	Frequency    int
	Views        map[string]float64
	Tau          float64
	RiskAversion float64
	MarketCaps   map[string]float64
	Workbook     bool
}

// Portfolio produces the portfolio optimisation report.
type Portfolio struct {
	Options   PortfolioOptions
	Recorder  recorder.Recorder
	OutputDir string

	// runs share OutputDir/portfolio, so they are serialised
	runMu sync.Mutex
}

// Run loads the price table, estimates returns and covariance, runs every
// model and writes weights, plots and the report under OutputDir/portfolio.
// A failing model is logged and left out; the run fails only if all fail.
func (p *Portfolio) Run(ctx context.Context, trigger model.TriggerType) (*model.PortfolioReport, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	opts := p.Options
	if opts.Frequency <= 0 {
		opts.Frequency = calculator.TradingDays
	}
	zap.S().Infof("running portfolio optimisation on %s (%s)", opts.PricesFile, trigger)

	table, err := dataset.LoadPrices(opts.PricesFile)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	mu, err := calculator.MeanHistoricalReturn(table, opts.Frequency)
	if err != nil {
		return nil, fmt.Errorf("expected returns: %w", err)
	}
	cov, err := calculator.SampleCov(table, opts.Frequency)
	if err != nil {
		return nil, fmt.Errorf("sample covariance: %w", err)
	}

	dir := filepath.Join(p.OutputDir, "portfolio")
	r := &model.PortfolioReport{
		RunID:           recorder.NewRunID(),
		Tickers:         table.Tickers,
		Assets:          calculator.AssetOverview(table, mu, cov),
		ExpectedReturns: mu,
		Covariance:      cov,
		RiskFreeRate:    opts.RiskFreeRate,
		GeneratedAt:     time.Now(),
	}
	m := &models{tickers: table.Tickers, mu: mu, cov: cov, opts: opts, table: table}

	for _, kind := range []model.ModelKind{
		model.ModelMeanVariance, model.ModelHRP, model.ModelBlackLitterman, model.ModelCLA,
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w, err := m.run(kind)
		if err != nil {
			zap.S().Errorf("%s: %v, skipping", kind.Title(), err)
			continue
		}
		res, err := p.finish(dir, kind, w, mu, cov, opts.RiskFreeRate)
		if err != nil {
			zap.S().Errorf("%s: %v, skipping", kind.Title(), err)
			continue
		}
		r.Models = append(r.Models, res)
	}
	if len(r.Models) == 0 {
		return nil, ErrAllModelsFailed
	}

	p.plotFrontier(dir, r, m)
	if m.hrp != nil && len(m.hrp.Linkage) > 0 {
		path := filepath.Join(dir, "plots", "hrp_dendrogram.png")
		if err := chart.Dendrogram(path, r.Tickers, m.hrp.Linkage, m.hrp.Order); err != nil {
			zap.S().Warnf("dendrogram: %v", err)
		} else {
			r.DendrogramPath = path
		}
	}

	if r.HTMLPath, err = report.WritePortfolioHTML(dir, r); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if opts.Workbook {
		path := filepath.Join(dir, "portfolio.xlsx")
		if err := report.WritePortfolioXLSX(path, r); err != nil {
			zap.S().Warnf("portfolio workbook: %v", err)
		} else {
			r.XLSXPath = path
		}
	}

	if p.Recorder != nil {
		if err := p.Recorder.RecordPortfolio(&recorder.PortfolioRun{
			RunID:        r.RunID,
			Trigger:      trigger,
			Tickers:      r.Tickers,
			RiskFreeRate: r.RiskFreeRate,
			Models:       r.Models,
		}); err != nil {
			zap.S().Errorf("record portfolio: %v", err)
		}
	}

	zap.S().Infof("portfolio report with %d models written to %s", len(r.Models), r.HTMLPath)
	return r, nil
}

// finish fixes the weights for charting and writes the CSV and plots of one model.
func (p *Portfolio) finish(dir string, kind model.ModelKind, w model.Weights, mu []float64, cov [][]float64, rf float64) (model.ModelResult, error) {
	res := model.ModelResult{
		Kind:        kind,
		Weights:     w,
		Performance: optimizer.Performance(w, mu, cov, rf),
	}
	fixed, err := calculator.FixNegativeWeights(w)
	if err != nil {
		return res, fmt.Errorf("fix weights: %w", err)
	}
	res.Fixed = fixed

	res.CSVPath = filepath.Join(dir, "data", string(kind)+"_weights.csv")
	if err := report.WriteWeightsCSV(res.CSVPath, w); err != nil {
		return res, err
	}

	title := kind.Title() + " Weights"
	pie := filepath.Join(dir, "plots", string(kind)+"_weights.png")
	if err := chart.Pie(pie, title, fixed); err != nil {
		zap.S().Warnf("%s pie chart: %v", kind, err)
	} else {
		res.PiePath = pie
	}
	bar := filepath.Join(dir, "plots", string(kind)+"_bars.png")
	if err := chart.WeightBars(bar, title, w); err != nil {
		zap.S().Warnf("%s bar chart: %v", kind, err)
	} else {
		res.BarPath = bar
	}

	zap.S().Infof("%s weights: %v", kind.Title(), w)
	return res, nil
}

func (p *Portfolio) plotFrontier(dir string, r *model.PortfolioReport, m *models) {
	if m.cla != nil {
		curve, err := m.cla.Frontier(frontierPoints)
		if err != nil {
			zap.S().Warnf("efficient frontier: %v", err)
		}
		r.Frontier = curve
	}

	var markers []chart.Marker
	if res, ok := r.Model(model.ModelMeanVariance); ok {
		markers = append(markers, chart.Marker{Label: "Max Sharpe", Performance: res.Performance})
	}
	if ef, err := optimizer.NewEfficientFrontier(m.tickers, m.mu, m.cov); err == nil {
		if w, err := ef.MinVolatility(); err == nil {
			markers = append(markers, chart.Marker{
				Label:       "Min volatility",
				Performance: optimizer.Performance(w, m.mu, m.cov, r.RiskFreeRate),
			})
		}
	}

	path := filepath.Join(dir, "plots", "efficient_frontier.png")
	if err := chart.Frontier(path, r.Frontier, r.Assets, markers); err != nil {
		zap.S().Warnf("efficient frontier plot: %v", err)
		return
	}
	r.FrontierPath = path
}

// models runs the individual optimisers and keeps the intermediate results
// the plots need.
type models struct {
	tickers []string
	mu      []float64
	cov     [][]float64
	opts    PortfolioOptions
	table   *model.PriceTable

	hrp *optimizer.HRPResult
	cla *optimizer.CLA
}

func (m *models) run(kind model.ModelKind) (model.Weights, error) {
	switch kind {
	case model.ModelMeanVariance:
		ef, err := optimizer.NewEfficientFrontier(m.tickers, m.mu, m.cov)
		if err != nil {
			return nil, err
		}
		return ef.MaxSharpe(m.opts.RiskFreeRate)

	case model.ModelHRP:
		res, err := optimizer.HRP(m.tickers, calculator.CompleteReturns(m.table))
		if err != nil {
			return nil, err
		}
		m.hrp = res
		return res.Weights, nil

	case model.ModelBlackLitterman:
		res, err := optimizer.BlackLitterman(m.tickers, m.cov, m.opts.Views, optimizer.BlackLittermanOptions{
			Tau:          m.opts.Tau,
			RiskAversion: m.opts.RiskAversion,
			RiskFreeRate: m.opts.RiskFreeRate,
			MarketCaps:   m.opts.MarketCaps,
		})
		if err != nil {
			return nil, err
		}
		return res.Weights, nil

	case model.ModelCLA:
		cla, err := optimizer.NewCLA(m.tickers, m.mu, m.cov)
		if err != nil {
			return nil, err
		}
		m.cla = cla
		return cla.MaxSharpe()
	}
	return nil, fmt.Errorf("unknown model %q", kind)
}
