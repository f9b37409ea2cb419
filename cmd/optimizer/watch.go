package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/notifier"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/scheduler"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type watchCmd struct {
	offline  bool
	runNow   bool
	noNotify bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "run the reports on a schedule and answer Telegram commands" }
func (*watchCmd) Usage() string {
	return `optimizer watch [-offline] [-now] [-no-telegram]

  Runs the fundamentals report of every configured symbol and the portfolio
  report on their cron schedules, sends the summaries to Telegram and answers
  /fundamentals, /portfolio, /history and /help until interrupted.
  RUN_ON_START=true has the same effect as -now.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "use generated statements instead of the remote API")
	f.BoolVar(&c.runNow, "now", false, "run every report once at start")
	f.BoolVar(&c.noNotify, "no-telegram", false, "do not send notifications or poll for commands")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	statements, err := newStatementFetcher(cfg, c.offline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	tn := notifier.NewTelegramNotifier("", "", cfg.Proxy)
	if !c.noNotify {
		if err := cfg.ValidateTelegram(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (use -no-telegram to run without it)\n", err)
			return subcommands.ExitUsageError
		}
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	rec := openRecorder(cfg)
	defer rec.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.NewScheduler(ctx,
		fundamentalsPipeline(cfg, statements, rec),
		portfolioPipeline(cfg, rec),
		tn, rec, cfg.Fundamentals.Symbols)
	if err := sched.RegisterAll(cfg.Schedule.FundamentalsCron, cfg.Schedule.PortfolioCron); err != nil {
		fmt.Fprintf(os.Stderr, "Error: register cron tasks: %v\n", err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		zap.S().Info("Telegram polling started")
	}

	if c.runNow || os.Getenv("RUN_ON_START") == "true" {
		zap.S().Info("running every report now")
		go sched.RunAllNow()
	}

	zap.S().Infof("watching %v, press Ctrl+C to stop", cfg.Fundamentals.Symbols)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zap.S().Info("shutdown signal received, stopping...")
	return subcommands.ExitSuccess
}
