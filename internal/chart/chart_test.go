package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/optimizer"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("expected PNG data in %s", path)
	}
}

func TestPie(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "pie.png")
	w := model.NewWeights([]string{"AAPL", "MSFT", "KO"}, []float64{0.6, 0.4, 0})
	if err := Pie(path, "Mean Variance Optimization", w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPNG(t, path)
}

func TestPie_AllZero(t *testing.T) {
	w := model.NewWeights([]string{"AAPL"}, []float64{0})
	err := Pie(filepath.Join(t.TempDir(), "pie.png"), "empty", w)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestWeightBars_WithNegatives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.png")
	w := model.NewWeights([]string{"AAPL", "MSFT", "KO"}, []float64{0.9, 0.3, -0.2})
	if err := WeightBars(path, "Black-Litterman", w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPNG(t, path)
}

func TestFrontier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frontier.png")
	curve := []model.FrontierPoint{
		{Return: 0.08, Volatility: 0.15},
		{Return: 0.10, Volatility: 0.16},
		{Return: 0.12, Volatility: 0.19},
	}
	assets := []model.AssetStats{
		{Ticker: "AAPL", AnnualReturn: 0.12, AnnualVolatility: 0.19},
		{Ticker: "KO", AnnualReturn: 0.08, AnnualVolatility: 0.15},
	}
	markers := []Marker{{Label: "Max Sharpe", Performance: model.Performance{ExpectedReturn: 0.11, Volatility: 0.17}}}
	if err := Frontier(path, curve, assets, markers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPNG(t, path)
}

func TestDendrogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dendrogram.png")
	link := []optimizer.Merge{
		{Left: 0, Right: 1, Distance: 0.2, Size: 2},
		{Left: 2, Right: 3, Distance: 0.5, Size: 3},
	}
	if err := Dendrogram(path, []string{"AAPL", "MSFT", "KO"}, link, []int{2, 0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPNG(t, path)
}

func TestDendrogram_BadLinkage(t *testing.T) {
	err := Dendrogram(filepath.Join(t.TempDir(), "d.png"), []string{"A", "B"}, nil, []int{0, 1})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}
