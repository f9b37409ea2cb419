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

type fundamentalsCmd struct {
	offline  bool
	workbook bool
	quiet    bool
}

func (*fundamentalsCmd) Name() string     { return "fundamentals" }
func (*fundamentalsCmd) Synopsis() string { return "generate the fundamentals report of one or more symbols" }
func (*fundamentalsCmd) Usage() string {
	return `optimizer fundamentals [-offline] [-xlsx] [-q] [SYMBOL...]

  Fetches the financial statements of each symbol, derives the cash flow and
  company ratios and writes an HTML report per symbol. Without arguments the
  symbols of the configuration are used.
`
}

func (c *fundamentalsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "use generated statements instead of the remote API")
	f.BoolVar(&c.workbook, "xlsx", false, "also write an XLSX workbook")
	f.BoolVar(&c.quiet, "q", false, "do not print the summary")
}

func (c *fundamentalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := f.Args()
	if len(symbols) == 0 {
		symbols = cfg.Fundamentals.Symbols
	}

	statements, err := newStatementFetcher(cfg, c.offline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	rec := openRecorder(cfg)
	defer rec.Close()

	p := fundamentalsPipeline(cfg, statements, rec)
	p.Workbook = p.Workbook || c.workbook

	status := subcommands.ExitSuccess
	for _, symbol := range symbols {
		r, err := p.Run(ctx, symbol, model.TriggerManual)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", symbol, err)
			status = subcommands.ExitFailure
			continue
		}
		if !c.quiet {
			printMarkdown(report.FundamentalsMarkdown(r))
		}
		fmt.Printf("Report written to %s\n", r.HTMLPath)
		if r.XLSXPath != "" {
			fmt.Printf("Workbook written to %s\n", r.XLSXPath)
		}
	}
	return status
}
