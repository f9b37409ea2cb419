package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/pipeline"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var allRatios = append(append([]model.Ratio{}, calculator.CashFlowRatios...), calculator.CompanyRatios...)

// Handler serves the report endpoints.
type Handler struct {
	Fundamentals *pipeline.Fundamentals
	Portfolio    *pipeline.Portfolio
	Recorder     recorder.Recorder
	OutputDir    string
}

// RunResponse is the JSON response of the run endpoints.
type RunResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	RunID   string            `json:"run_id,omitempty"`
	Report  string            `json:"report,omitempty"`
	Ratios  map[string]string `json:"ratios,omitempty"`
	Models  []ModelSummary    `json:"models,omitempty"`
	Elapsed string            `json:"elapsed,omitempty"`
}

// ModelSummary describes one model of a portfolio run.
type ModelSummary struct {
	Model          string             `json:"model"`
	ExpectedReturn float64            `json:"expected_return"`
	Volatility     float64            `json:"volatility"`
	Sharpe         float64            `json:"sharpe"`
	Weights        map[string]float64 `json:"weights"`
}

// HistoryItem is one recorded fundamentals snapshot.
type HistoryItem struct {
	RunID      string             `json:"run_id"`
	Trigger    string             `json:"trigger"`
	RecordedAt time.Time          `json:"recorded_at"`
	AsOf       string             `json:"as_of"`
	Ratios     map[string]*string `json:"ratios"`
}

// Health returns application health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// RunFundamentals handles POST /api/fundamentals/:symbol.
func (h *Handler) RunFundamentals(c echo.Context) error {
	start := time.Now()
	symbol := strings.ToUpper(c.Param("symbol"))

	r, err := h.Fundamentals.Run(c.Request().Context(), symbol, model.TriggerHTTP)
	if err != nil {
		zap.S().Errorf("fundamentals %s: %v", symbol, err)
		status := http.StatusBadGateway
		if errors.Is(err, pipeline.ErrEmptySymbol) || errors.Is(err, pipeline.ErrInvalidSymbol) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, RunResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to run fundamentals for %s: %v", symbol, err),
		})
	}

	ratios := make(map[string]string)
	for _, ratio := range allRatios {
		if v := calculator.Value(r.Latest, ratio); v.Valid {
			ratios[string(ratio)] = v.Decimal.String()
		}
	}
	return c.JSON(http.StatusOK, RunResponse{
		Success: true,
		Message: fmt.Sprintf("Fundamentals report for %s", r.Fundamentals.DisplayName()),
		RunID:   r.RunID,
		Report:  h.reportURL(r.HTMLPath),
		Ratios:  ratios,
		Elapsed: time.Since(start).String(),
	})
}

// RunPortfolio handles POST /api/portfolio.
func (h *Handler) RunPortfolio(c echo.Context) error {
	start := time.Now()
	r, err := h.Portfolio.Run(c.Request().Context(), model.TriggerHTTP)
	if err != nil {
		zap.S().Errorf("portfolio: %v", err)
		return c.JSON(http.StatusInternalServerError, RunResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to run portfolio optimisation: %v", err),
		})
	}

	resp := RunResponse{
		Success: true,
		Message: fmt.Sprintf("Portfolio report with %d models", len(r.Models)),
		RunID:   r.RunID,
		Report:  h.reportURL(r.HTMLPath),
		Elapsed: time.Since(start).String(),
	}
	for _, m := range r.Models {
		weights := make(map[string]float64, len(m.Weights))
		for _, a := range m.Weights {
			weights[a.Ticker] = a.Weight
		}
		resp.Models = append(resp.Models, ModelSummary{
			Model:          string(m.Kind),
			ExpectedReturn: m.Performance.ExpectedReturn,
			Volatility:     m.Performance.Volatility,
			Sharpe:         m.Performance.Sharpe,
			Weights:        weights,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// History handles GET /api/fundamentals/:symbol/history.
// Query params:
// - limit: number of snapshots, default 10
func (h *Handler) History(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	snaps, err := h.Recorder.RecentFundamentals(symbol, limit)
	if err != nil {
		zap.S().Errorf("history %s: %v", symbol, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read history")
	}

	items := make([]HistoryItem, 0, len(snaps))
	for _, s := range snaps {
		ratios := make(map[string]*string)
		for _, ratio := range allRatios {
			var p *string
			if v := calculator.Value(s.Latest, ratio); v.Valid {
				str := v.Decimal.String()
				p = &str
			}
			ratios[string(ratio)] = p
		}
		items = append(items, HistoryItem{
			RunID:      s.RunID,
			Trigger:    string(s.Trigger),
			RecordedAt: s.RecordedAt,
			AsOf:       s.Latest.AsOf.Format("2006-01-02"),
			Ratios:     ratios,
		})
	}
	return c.JSON(http.StatusOK, items)
}

// reportURL maps a file under the output directory to its URL.
func (h *Handler) reportURL(path string) string {
	rel, err := filepath.Rel(h.OutputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return ReportsPrefix + "/" + filepath.ToSlash(rel)
}
