package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/collector"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/dataset"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/pipeline"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/recorder"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T, pricesFile string) *Handler {
	t.Helper()
	dir := t.TempDir()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })

	out := filepath.Join(dir, "output")
	return &Handler{
		Fundamentals: &pipeline.Fundamentals{
			Collector: collector.NewCollector(&collector.MockFetcher{Company: "Apple Inc."}, nil),
			Recorder:  rec,
			OutputDir: out,
		},
		Portfolio: &pipeline.Portfolio{
			Options:   pipeline.PortfolioOptions{PricesFile: pricesFile},
			Recorder:  rec,
			OutputDir: out,
		},
		Recorder:  rec,
		OutputDir: out,
	}
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, "")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRunFundamentals(t *testing.T) {
	h := newTestHandler(t, "")
	e := NewRouter(h)

	rec := serve(e, http.MethodPost, "/api/fundamentals/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.RunID == "" {
		t.Errorf("expected a successful run, got %+v", resp)
	}
	if resp.Report != "/reports/fundamentals/AAPL/report.html" {
		t.Errorf("unexpected report url %s", resp.Report)
	}
	if _, ok := resp.Ratios[string(model.RatioCurrentRatio)]; !ok {
		t.Errorf("expected current ratio in %v", resp.Ratios)
	}

	// the report is reachable through the static route
	page := serve(e, http.MethodGet, resp.Report)
	if page.Code != http.StatusOK {
		t.Fatalf("expected report to be served, got %d", page.Code)
	}
	if !strings.Contains(page.Body.String(), "Analysis Report for") {
		t.Error("expected the fundamentals report body")
	}
}

func TestRunFundamentals_FetchError(t *testing.T) {
	h := newTestHandler(t, "")
	h.Fundamentals.Collector = collector.NewCollector(&collector.MockFetcher{Err: os.ErrDeadlineExceeded}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("symbol")
	c.SetParamValues("aapl")

	if err := h.RunFundamentals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRunFundamentals_InvalidSymbol(t *testing.T) {
	h := newTestHandler(t, "")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("symbol")
	c.SetParamValues("../../etc")

	if err := h.RunFundamentals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	h := newTestHandler(t, "")
	e := NewRouter(h)

	for i := 0; i < 3; i++ {
		if rec := serve(e, http.MethodPost, "/api/fundamentals/AAPL"); rec.Code != http.StatusOK {
			t.Fatalf("run %d: expected status 200, got %d", i, rec.Code)
		}
	}

	rec := serve(e, http.MethodGet, "/api/fundamentals/aapl/history?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var items []HistoryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Trigger != string(model.TriggerHTTP) {
		t.Errorf("expected HTTP trigger, got %s", items[0].Trigger)
	}
	if items[0].AsOf != "2023-09-30" {
		t.Errorf("expected as of 2023-09-30, got %s", items[0].AsOf)
	}

	tests := []struct {
		query string
		code  int
	}{
		{"limit=0", http.StatusBadRequest},
		{"limit=abc", http.StatusBadRequest},
		{"", http.StatusOK},
	}
	for _, tt := range tests {
		rec := serve(e, http.MethodGet, "/api/fundamentals/AAPL/history?"+tt.query)
		if rec.Code != tt.code {
			t.Errorf("%q: expected status %d, got %d", tt.query, tt.code, rec.Code)
		}
	}
}

func TestRunPortfolio(t *testing.T) {
	prices := filepath.Join(t.TempDir(), "stock_prices.csv")
	table := &model.PriceTable{Tickers: []string{"AAPL", "MSFT", "KO"}}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		row := make([]float64, len(table.Tickers))
		for j := range row {
			x := float64(i)
			k := float64(j + 1)
			row[j] = (100 + 10*k) * math.Exp(0.001*k*x) * (1 + 0.02*math.Sin(x*k*0.7))
		}
		table.Dates = append(table.Dates, start.AddDate(0, 0, i))
		table.Prices = append(table.Prices, row)
	}
	if err := dataset.WritePrices(prices, table); err != nil {
		t.Fatalf("write prices: %v", err)
	}

	h := newTestHandler(t, prices)
	rec := serve(NewRouter(h), http.MethodPost, "/api/portfolio")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Models) == 0 {
		t.Fatal("expected at least one model")
	}
	if resp.Report != "/reports/portfolio/results.html" {
		t.Errorf("unexpected report url %s", resp.Report)
	}
	for _, m := range resp.Models {
		if len(m.Weights) != 3 {
			t.Errorf("%s: expected 3 weights, got %d", m.Model, len(m.Weights))
		}
	}
}

func TestRunPortfolio_MissingPrices(t *testing.T) {
	h := newTestHandler(t, filepath.Join(t.TempDir(), "missing.csv"))
	rec := serve(NewRouter(h), http.MethodPost, "/api/portfolio")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}
