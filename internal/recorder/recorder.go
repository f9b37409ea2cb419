package recorder

import (
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/google/uuid"
)

// FundamentalsSnapshot holds the headline ratios of one fundamentals run.
type FundamentalsSnapshot struct {
	RunID       string
	Trigger     model.TriggerType
	Symbol      string
	CompanyName string
	Latest      model.LatestRatios
	RecordedAt  time.Time
}

// PortfolioRun holds the outcome of one portfolio run.
type PortfolioRun struct {
	RunID        string
	Trigger      model.TriggerType
	Tickers      []string
	RiskFreeRate float64
	Models       []model.ModelResult
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordFundamentals(snap *FundamentalsSnapshot) error
	RecordPortfolio(run *PortfolioRun) error
	// RecentFundamentals returns up to limit snapshots for symbol, newest first.
	RecentFundamentals(symbol string, limit int) ([]FundamentalsSnapshot, error)
	Close() error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }
