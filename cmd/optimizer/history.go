package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/report"
	"github.com/google/subcommands"
)

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recorded fundamentals snapshots of a symbol" }
func (*historyCmd) Usage() string {
	return `optimizer history [-n 10] SYMBOL

  Prints the headline ratios recorded for SYMBOL, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "number of snapshots")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.limit <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	symbol := strings.ToUpper(f.Arg(0))

	rec := openRecorder(cfg)
	defer rec.Close()
	snaps, err := rec.RecentFundamentals(symbol, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(snaps) == 0 {
		fmt.Printf("No history for %s\n", symbol)
		return subcommands.ExitSuccess
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# History for %s\n\n", symbol)
	b.WriteString("| Recorded | Fiscal year | Trigger |")
	for _, r := range allRatios() {
		fmt.Fprintf(&b, " %s |", calculator.Label(r))
	}
	b.WriteString("\n|---|---|---|")
	for range allRatios() {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, s := range snaps {
		fmt.Fprintf(&b, "| %s | %s | %s |", s.RecordedAt.Format("2006-01-02 15:04"), s.Latest.AsOf.Format("2006-01-02"), s.Trigger)
		for _, r := range allRatios() {
			fmt.Fprintf(&b, " %s |", report.FormatRatio(r, calculator.Value(s.Latest, r), ""))
		}
		b.WriteString("\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
