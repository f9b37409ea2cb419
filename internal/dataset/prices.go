// Package dataset reads and writes the wide price CSV: a date column followed
// by one price column per ticker.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
)

// ErrNoDateColumn is returned when the header has no "date" column.
var ErrNoDateColumn = errors.New(`price csv has no "date" column`)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// LoadPrices reads a price table from path.
func LoadPrices(path string) (*model.PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()
	t, err := ReadPrices(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadPrices parses a price table. Blank, "NaN" and "null" cells are
// missing values. Rows are returned sorted ascending by date.
func ReadPrices(r io.Reader) (*model.PriceTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateCol := -1
	var tickers []string
	var cols []int
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, "date") {
			dateCol = i
			continue
		}
		tickers = append(tickers, h)
		cols = append(cols, i)
	}
	if dateCol < 0 {
		return nil, ErrNoDateColumn
	}
	if len(tickers) == 0 {
		return nil, errors.New("price csv has no ticker columns")
	}

	type row struct {
		date   time.Time
		prices []float64
	}
	var rows []row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		prices := make([]float64, len(cols))
		for j, c := range cols {
			v, err := parsePrice(rec[c])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, tickers[j], err)
			}
			prices[j] = v
		}
		rows = append(rows, row{date: d, prices: prices})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	t := &model.PriceTable{Tickers: tickers}
	for _, r := range rows {
		t.Dates = append(t.Dates, r.date)
		t.Prices = append(t.Prices, r.prices)
	}
	return t, nil
}

// WritePrices writes t to path, creating parent directories.
func WritePrices(path string, t *model.PriceTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create prices: %w", err)
	}
	if err := EncodePrices(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodePrices writes t as CSV. Missing values are written as empty cells.
func EncodePrices(w io.Writer, t *model.PriceTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"date"}, t.Tickers...)); err != nil {
		return err
	}
	for i, d := range t.Dates {
		rec := make([]string, 0, len(t.Tickers)+1)
		rec = append(rec, d.Format("2006-01-02"))
		for _, p := range t.Prices[i] {
			if math.IsNaN(p) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(p, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "na":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
