package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/collector"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/dataset"
	"github.com/google/subcommands"
)

type pricesCmd struct {
	rng     string
	out     string
	offline bool
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "download daily closes into the price CSV" }
func (*pricesCmd) Usage() string {
	return `optimizer prices [-range 5y] [-o <file>] [-offline] [TICKER...]

  Downloads adjusted daily closes for each ticker and writes them as a wide
  CSV with a date column and one column per ticker. Without arguments the
  tickers of the configuration are used.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rng, "range", "", "history range such as 1y, 5y or max (defaults to portfolio.history_range)")
	f.StringVar(&c.out, "o", "", "output file (defaults to portfolio.prices_file)")
	f.BoolVar(&c.offline, "offline", false, "generate prices instead of downloading them")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers := f.Args()
	if len(tickers) == 0 {
		tickers = cfg.Portfolio.Tickers
	}
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no tickers given and portfolio.tickers is empty")
		return subcommands.ExitUsageError
	}
	rng := c.rng
	if rng == "" {
		rng = cfg.Portfolio.HistoryRange
	}
	out := c.out
	if out == "" {
		out = cfg.Portfolio.PricesFile
	}

	var prices collector.PriceFetcher = collector.NewYahooFetcher(cfg.Proxy)
	if c.offline {
		prices = &collector.MockFetcher{}
	}
	col := collector.NewCollector(nil, prices)

	table, err := col.CollectPrices(ctx, tickers, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := dataset.WritePrices(out, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %d rows for %d tickers to %s\n", table.Rows(), len(table.Tickers), out)
	return subcommands.ExitSuccess
}
