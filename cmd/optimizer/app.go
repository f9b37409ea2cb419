package main

import (
	"fmt"
	"os"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/collector"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/config"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/pipeline"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/report"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the console logger used by every command.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(lvl),
	), zap.AddCaller()), nil
}

// openRecorder opens the SQLite history, falling back to a no-op recorder.
func openRecorder(c *config.Config) recorder.Recorder {
	if c.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath)
	if err != nil {
		zap.S().Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newStatementFetcher returns the FMP client, or the mock source when offline.
func newStatementFetcher(c *config.Config, offline bool) (collector.StatementFetcher, error) {
	if offline {
		return &collector.MockFetcher{}, nil
	}
	if err := c.ValidateFMP(); err != nil {
		return nil, err
	}
	return collector.NewFMPClient(c.FMP.BaseURL, c.FMP.APIKey, c.Proxy, c.FMP.Timeout, c.FMP.Retries), nil
}

func fundamentalsPipeline(c *config.Config, statements collector.StatementFetcher, rec recorder.Recorder) *pipeline.Fundamentals {
	zap.S().Infof("statement source: %s", statements.Name())
	return &pipeline.Fundamentals{
		Collector: collector.NewCollector(statements, nil),
		Recorder:  rec,
		OutputDir: c.OutputDir,
		Years:     calculator.YearRange{From: c.Fundamentals.FromYear, To: c.Fundamentals.ToYear},
		Workbook:  c.Fundamentals.Workbook,
	}
}

func portfolioPipeline(c *config.Config, rec recorder.Recorder) *pipeline.Portfolio {
	return &pipeline.Portfolio{
		Options: pipeline.PortfolioOptions{
			PricesFile:   c.Portfolio.PricesFile,
			RiskFreeRate: c.Portfolio.RiskFreeRate,
			Frequency:    c.Portfolio.Frequency,
			Views:        c.Portfolio.Views,
			Tau:          c.Portfolio.Tau,
			RiskAversion: c.Portfolio.RiskAversion,
			MarketCaps:   c.Portfolio.MarketCaps,
			Workbook:     c.Portfolio.Workbook,
		},
		Recorder:  rec,
		OutputDir: c.OutputDir,
	}
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	out, err := report.Terminal(md)
	if err != nil {
		zap.S().Warnf("render markdown: %v", err)
		out = md
	}
	fmt.Print(out)
}

func allRatios() []model.Ratio {
	return append(append([]model.Ratio{}, calculator.CashFlowRatios...), calculator.CompanyRatios...)
}
