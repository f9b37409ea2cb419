package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/report"
	"github.com/google/subcommands"
)

type portfolioCmd struct {
	prices   string
	rf       float64
	workbook bool
	quiet    bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "run the portfolio optimisation report" }
func (*portfolioCmd) Usage() string {
	return `optimizer portfolio [-prices <file>] [-rf <rate>] [-xlsx] [-q]

  Loads the price CSV, runs mean-variance, hierarchical risk parity,
  Black-Litterman and the critical line algorithm and writes weight CSVs,
  plots and an HTML report.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prices, "prices", "", "price CSV (defaults to portfolio.prices_file)")
	f.Float64Var(&c.rf, "rf", -1, "annual risk-free rate (defaults to portfolio.risk_free_rate)")
	f.BoolVar(&c.workbook, "xlsx", false, "also write an XLSX workbook")
	f.BoolVar(&c.quiet, "q", false, "do not print the summary")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rec := openRecorder(cfg)
	defer rec.Close()

	p := portfolioPipeline(cfg, rec)
	if c.prices != "" {
		p.Options.PricesFile = c.prices
	}
	if c.rf >= 0 {
		p.Options.RiskFreeRate = c.rf
	}
	p.Options.Workbook = p.Options.Workbook || c.workbook

	r, err := p.Run(ctx, model.TriggerManual)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.quiet {
		printMarkdown(report.PortfolioMarkdown(r))
	}
	fmt.Printf("Report written to %s\n", r.HTMLPath)
	if r.XLSXPath != "" {
		fmt.Printf("Workbook written to %s\n", r.XLSXPath)
	}
	return subcommands.ExitSuccess
}
