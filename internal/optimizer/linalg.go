package optimizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func dense(a [][]float64) *mat.Dense {
	n, m := len(a), len(a[0])
	data := make([]float64, 0, n*m)
	for _, row := range a {
		data = append(data, row...)
	}
	return mat.NewDense(n, m, data)
}

func toSlices(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// usable reports whether err from a gonum solve still left a usable result.
func usable(err error) bool {
	if err == nil {
		return true
	}
	var cond mat.Condition
	return errors.As(err, &cond) && !math.IsInf(float64(cond), 1)
}

func inverse(a [][]float64) ([][]float64, error) {
	var inv mat.Dense
	if err := inv.Inverse(dense(a)); !usable(err) {
		return nil, fmt.Errorf("invert %dx%d matrix: %w", len(a), len(a), err)
	}
	return toSlices(&inv), nil
}

func solve(a [][]float64, b []float64) ([]float64, error) {
	var x mat.VecDense
	if err := x.SolveVec(dense(a), mat.NewVecDense(len(b), append([]float64(nil), b...))); !usable(err) {
		return nil, fmt.Errorf("solve %dx%d system: %w", len(a), len(a), err)
	}
	return x.RawVector().Data, nil
}

func mulVec(a [][]float64, v []float64) []float64 {
	out := make([]float64, len(a))
	for i, row := range a {
		out[i] = floats.Dot(row, v)
	}
	return out
}

func quad(a [][]float64, v []float64) float64 {
	return floats.Dot(v, mulVec(a, v))
}

// reduce extracts the rows and columns listed in rows and cols.
func reduce(a [][]float64, rows, cols []int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(cols))
		for j, c := range cols {
			out[i][j] = a[r][c]
		}
	}
	return out
}

func pick(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func checkInputs(tickers []string, mu []float64, cov [][]float64) error {
	n := len(tickers)
	if n == 0 {
		return ErrNoAssets
	}
	if mu != nil && len(mu) != n {
		return fmt.Errorf("expected returns have %d entries for %d tickers", len(mu), n)
	}
	if len(cov) != n {
		return fmt.Errorf("covariance has %d rows for %d tickers", len(cov), n)
	}
	for i, row := range cov {
		if len(row) != n {
			return fmt.Errorf("covariance row %d has %d columns, want %d", i, len(row), n)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("covariance row %d is not finite", i)
			}
		}
	}
	return nil
}
