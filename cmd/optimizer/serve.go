package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr    string
	offline bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the reports and run them over HTTP" }
func (*serveCmd) Usage() string {
	return `optimizer serve [-addr :8080] [-offline]

  Serves the output directory under /reports and exposes
  POST /api/fundamentals/:symbol, POST /api/portfolio and
  GET /api/fundamentals/:symbol/history.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (defaults to server.addr)")
	f.BoolVar(&c.offline, "offline", false, "use generated statements instead of the remote API")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	addr := c.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	statements, err := newStatementFetcher(cfg, c.offline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	rec := openRecorder(cfg)
	defer rec.Close()

	h := &server.Handler{
		Fundamentals: fundamentalsPipeline(cfg, statements, rec),
		Portfolio:    portfolioPipeline(cfg, rec),
		Recorder:     rec,
		OutputDir:    cfg.OutputDir,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.Serve(ctx, server.NewRouter(h), addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
