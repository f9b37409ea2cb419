package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/notifier"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/pipeline"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const historyLimit = 5

// Scheduler manages all cron tasks and answers bot commands.
type Scheduler struct {
	Cron         *cron.Cron
	Fundamentals *pipeline.Fundamentals
	Portfolio    *pipeline.Portfolio
	Notifier     *notifier.TelegramNotifier
	Recorder     recorder.Recorder
	Symbols      []string
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, fp *pipeline.Fundamentals, pp *pipeline.Portfolio, tn *notifier.TelegramNotifier, rec recorder.Recorder, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Fundamentals: fp,
		Portfolio:    pp,
		Notifier:     tn,
		Recorder:     rec,
		Symbols:      symbols,
		Ctx:          ctx,
	}
}

// RegisterAll registers the fundamentals and portfolio tasks.
func (s *Scheduler) RegisterAll(fundamentalsCron, portfolioCron string) error {
	if _, err := s.Cron.AddFunc(fundamentalsCron, s.fundamentalsTask); err != nil {
		return fmt.Errorf("register fundamentals task: %w", err)
	}
	if _, err := s.Cron.AddFunc(portfolioCron, s.portfolioTask); err != nil {
		return fmt.Errorf("register portfolio task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.S().Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zap.S().Info("scheduler stopped")
}

// RunAllNow executes every task immediately (for RUN_ON_START).
func (s *Scheduler) RunAllNow() {
	s.fundamentalsTask()
	s.portfolioTask()
}

func (s *Scheduler) fundamentalsTask() {
	zap.S().Infof("running fundamentals task for %v", s.Symbols)
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		s.runFundamentals(sym, model.TriggerScheduled, true)
	}
}

func (s *Scheduler) portfolioTask() {
	zap.S().Info("running portfolio task")
	s.runPortfolio(model.TriggerScheduled, true)
}

// runFundamentals runs the pipeline for symbol and returns the message
// describing the outcome. With notify set the message is also sent.
func (s *Scheduler) runFundamentals(symbol string, trigger model.TriggerType, notify bool) string {
	r, err := s.Fundamentals.Run(s.Ctx, symbol, trigger)
	var msg string
	if err != nil {
		zap.S().Errorf("fundamentals %s: %v", symbol, err)
		msg = notifier.FormatError("fundamentals "+symbol, err)
	} else {
		msg = notifier.FormatFundamentals(r)
	}
	if notify {
		s.trySend(msg)
	}
	return msg
}

func (s *Scheduler) runPortfolio(trigger model.TriggerType, notify bool) string {
	r, err := s.Portfolio.Run(s.Ctx, trigger)
	var msg string
	if err != nil {
		zap.S().Errorf("portfolio: %v", err)
		msg = notifier.FormatError("portfolio", err)
	} else {
		msg = notifier.FormatPortfolio(r)
	}
	if notify {
		s.trySend(msg)
	}
	return msg
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// commands in groups arrive as /cmd@BotName
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch cmd {
	case "/fundamentals":
		if arg == "" {
			return "Usage: /fundamentals SYMBOL"
		}
		return s.runFundamentals(arg, model.TriggerTelegram, false)
	case "/portfolio":
		return s.runPortfolio(model.TriggerTelegram, false)
	case "/history":
		if arg == "" {
			return "Usage: /history SYMBOL"
		}
		snaps, err := s.Recorder.RecentFundamentals(arg, historyLimit)
		if err != nil {
			return notifier.FormatError("history "+arg, err)
		}
		return notifier.FormatHistory(arg, snaps)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		zap.S().Errorf("send notification: %v", err)
	}
}
