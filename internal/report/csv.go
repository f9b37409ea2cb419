package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/gocarina/gocsv"
)

// WriteWeightsCSV writes w with a Ticker,Weight header.
func WriteWeightsCSV(path string, w model.Weights) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	rows := []model.Allocation(w)
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadWeightsCSV reads a weight table written by WriteWeightsCSV.
func ReadWeightsCSV(path string) (model.Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []model.Allocation
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return model.Weights(rows), nil
}
