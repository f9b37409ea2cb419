package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/calculator"
	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const defaultSheet = "Sheet1"

// WriteFundamentalsXLSX writes the cash flow and company analysis tables of r
// to a workbook at path.
func WriteFundamentalsXLSX(path string, r *model.FundamentalsReport) error {
	if r == nil || r.Fundamentals == nil {
		return errors.New("empty fundamentals report")
	}
	f := excelize.NewFile()
	defer closeWorkbook(f)

	if err := addSheet(f, "Cash Flow", cashFlowTable(r.CashFlow)); err != nil {
		return err
	}
	if err := addSheet(f, "Company", companyTable(r.Company)); err != nil {
		return err
	}
	summary := table{Headers: []string{"Ratio", "Latest"}}
	for _, ratios := range [][]model.Ratio{calculator.CashFlowRatios, calculator.CompanyRatios} {
		for _, item := range ratioItems(r.Latest, ratios, r.Fundamentals.Currency) {
			summary.Rows = append(summary.Rows, []string{item.Label, item.Value})
		}
	}
	if err := addSheet(f, "Summary", summary); err != nil {
		return err
	}
	return saveWorkbook(f, path)
}

// WritePortfolioXLSX writes one sheet per model plus a summary sheet.
func WritePortfolioXLSX(path string, r *model.PortfolioReport) error {
	f := excelize.NewFile()
	defer closeWorkbook(f)

	summary := table{Headers: []string{"Model", "Expected Return", "Volatility", "Sharpe"}}
	for _, m := range r.Models {
		summary.Rows = append(summary.Rows, []string{
			m.Kind.Title(),
			Percent(m.Performance.ExpectedReturn),
			Percent(m.Performance.Volatility),
			Float(m.Performance.Sharpe, 3),
		})
	}
	if err := addSheet(f, "Summary", summary); err != nil {
		return err
	}

	for _, m := range r.Models {
		sheet := string(m.Kind)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Ticker", "Weight", "Fixed Weight"}); err != nil {
			return err
		}
		for i, a := range m.Weights {
			fixed, _ := m.Fixed.Get(a.Ticker)
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &[]interface{}{a.Ticker, a.Weight, fixed}); err != nil {
				return err
			}
		}
		if err := boldHeader(f, sheet); err != nil {
			return err
		}
	}

	if len(r.Covariance) == len(r.Tickers) && len(r.Tickers) > 0 {
		cov := table{Headers: append([]string{""}, r.Tickers...)}
		for i, t := range r.Tickers {
			row := []string{t}
			for _, v := range r.Covariance[i] {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			cov.Rows = append(cov.Rows, row)
		}
		if err := addSheet(f, "Covariance", cov); err != nil {
			return err
		}
	}
	return saveWorkbook(f, path)
}

func addSheet(f *excelize.File, name string, t table) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return err
		}
	}
	if len(t.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, "A", last, 18); err != nil {
			return err
		}
	}
	return boldHeader(f, name)
}

func boldHeader(f *excelize.File, sheet string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return err
	}
	return f.SetRowStyle(sheet, 1, 1, style)
}

func saveWorkbook(f *excelize.File, path string) error {
	if err := f.DeleteSheet(defaultSheet); err != nil {
		zap.S().Warnf("delete default sheet: %v", err)
	}
	f.SetActiveSheet(0)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func closeWorkbook(f *excelize.File) {
	if err := f.Close(); err != nil {
		zap.S().Errorf("close workbook: %v", err)
	}
}
