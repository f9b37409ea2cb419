// Package pipeline wires collection, analysis, rendering and recording into
// the fundamentals and portfolio runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/collector"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/report"
	"go.uber.org/zap"
)

var (
	// ErrEmptySymbol is returned when a run is requested without a symbol.
	ErrEmptySymbol = errors.New("empty symbol")
	// ErrInvalidSymbol is returned for symbols that are not plain tickers.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// symbolPattern accepts tickers such as AAPL, BRK.B, BRK-B, ^GSPC or EURUSD=X.
// The symbol is used as a directory name, so path separators never match.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=]{0,14}$`)

// Fundamentals produces the stock fundamentals report for a symbol.
type Fundamentals struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	OutputDir string
	Years     calculator.YearRange
	Workbook  bool
}

// Run fetches the statements of symbol, derives the ratios, writes the HTML
// report (and workbook if enabled) under OutputDir/fundamentals/SYMBOL and
// records the headline ratios.
func (p *Fundamentals) Run(ctx context.Context, symbol string, trigger model.TriggerType) (*model.FundamentalsReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if !symbolPattern.MatchString(symbol) {
		return nil, fmt.Errorf("%q: %w", symbol, ErrInvalidSymbol)
	}
	zap.S().Infof("running fundamentals for %s (%s)", symbol, trigger)

	f, err := p.Collector.CollectFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}

	cf, err := calculator.AnalyzeCashFlow(f.CashFlow, f.Income, f.MarketCaps, p.Years)
	if err != nil {
		return nil, fmt.Errorf("cash flow analysis: %w", err)
	}
	co, err := calculator.AnalyzeCompany(f.Balance, f.Income)
	if err != nil {
		return nil, fmt.Errorf("company analysis: %w", err)
	}

	r := &model.FundamentalsReport{
		RunID:        recorder.NewRunID(),
		Fundamentals: f,
		CashFlow:     cf,
		Company:      co,
		Latest:       calculator.Latest(cf, co),
		GeneratedAt:  time.Now(),
	}

	dir := filepath.Join(p.OutputDir, "fundamentals", symbol)
	if r.HTMLPath, err = report.WriteFundamentalsHTML(dir, r); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if p.Workbook {
		path := filepath.Join(dir, strings.ToLower(symbol)+"_fundamentals.xlsx")
		if err := report.WriteFundamentalsXLSX(path, r); err != nil {
			zap.S().Warnf("fundamentals workbook for %s: %v", symbol, err)
		} else {
			r.XLSXPath = path
		}
	}

	if p.Recorder != nil {
		if err := p.Recorder.RecordFundamentals(&recorder.FundamentalsSnapshot{
			RunID:       r.RunID,
			Trigger:     trigger,
			Symbol:      symbol,
			CompanyName: f.CompanyName,
			Latest:      r.Latest,
			RecordedAt:  r.GeneratedAt,
		}); err != nil {
			zap.S().Errorf("record fundamentals: %v", err)
		}
	}

	zap.S().Infof("fundamentals report for %s written to %s", symbol, r.HTMLPath)
	return r, nil
}
