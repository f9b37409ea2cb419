package calculator

import (
	"math"
	"testing"
)

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4.5 {
		t.Errorf("expected 4.5, got %.3f", got)
	}
	if _, err := CalculateSMA([]float64{1}, 2); err == nil {
		t.Error("expected error for short series")
	}
}

func TestCalculateRSI_Extremes(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6}
	if got, _ := CalculateRSI(up, 3); got != 100 {
		t.Errorf("expected 100 for a rising series, got %.3f", got)
	}
	flatDown := []float64{6, 5, 4, 3, 2, 1}
	if got, _ := CalculateRSI(flatDown, 3); got != 0 {
		t.Errorf("expected 0 for a falling series, got %.3f", got)
	}
}

func TestCalculate52WeekPosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := Calculate52WeekPosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("position(%v,%v,%v): expected %.2f, got %.2f", tt.current, tt.high, tt.low, tt.want, got)
		}
	}
}

func TestAssetOverview_ShortHistory(t *testing.T) {
	nan := math.NaN()
	tb := table([]string{"A"}, []float64{nan}, []float64{10}, []float64{12})
	stats := AssetOverview(tb, []float64{0.1}, [][]float64{{0.04}})
	st := stats[0]
	if st.LastPrice != 12 || st.High52w != 12 || st.Low52w != 10 {
		t.Errorf("unexpected price stats %+v", st)
	}
	if !math.IsNaN(st.SMA200) || !math.IsNaN(st.RSI14) {
		t.Errorf("expected NaN for statistics without enough history, got %+v", st)
	}
	if math.Abs(st.AnnualVolatility-0.2) > 1e-12 {
		t.Errorf("expected volatility 0.2, got %.4f", st.AnnualVolatility)
	}
}
