package optimizer

import (
	"fmt"
	"math"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Merge is one step of an agglomerative clustering. Leaves are numbered
// 0..n-1 and the cluster created by step i is numbered n+i.
type Merge struct {
	Left     int
	Right    int
	Distance float64
	Size     int
}

// HRPResult holds the allocation and the clustering it was derived from.
type HRPResult struct {
	Weights model.Weights
	Linkage []Merge
	Order   []int // leaf order after quasi-diagonalisation
}

// HRP allocates by hierarchical risk parity over the given period returns
// (rows are observations, columns follow tickers).
func HRP(tickers []string, returns [][]float64) (*HRPResult, error) {
	n := len(tickers)
	if n == 0 {
		return nil, ErrNoAssets
	}
	if len(returns) < 2 {
		return nil, fmt.Errorf("hrp: %w", ErrNotEnoughObservations)
	}
	if n == 1 {
		return &HRPResult{Weights: model.NewWeights(tickers, []float64{1}), Order: []int{0}}, nil
	}

	x := dense(returns)
	var covSym, corrSym mat.SymDense
	stat.CovarianceMatrix(&covSym, x, nil)
	stat.CorrelationMatrix(&corrSym, x, nil)
	cov := toSlices(&covSym)
	corr := toSlices(&corrSym)

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i == j {
				continue
			}
			v := (1 - corr[i][j]) / 2
			if math.IsNaN(v) {
				return nil, fmt.Errorf("hrp: correlation of %s/%s is undefined", tickers[i], tickers[j])
			}
			dist[i][j] = math.Sqrt(math.Max(0, math.Min(1, v)))
		}
	}

	link := SingleLinkage(dist)
	order := QuasiDiag(link, n)
	w := recursiveBisection(cov, order)
	return &HRPResult{
		Weights: model.NewWeights(tickers, w),
		Linkage: link,
		Order:   order,
	}, nil
}

// SingleLinkage clusters n points given their pairwise distances, always
// merging the two closest clusters. Cluster distance is the minimum distance
// between members.
func SingleLinkage(dist [][]float64) []Merge {
	n := len(dist)
	d := make([][]float64, n)
	for i := range d {
		d[i] = append([]float64(nil), dist[i]...)
	}
	ids := make([]int, n)
	sizes := make([]int, n)
	active := make([]bool, n)
	for i := range ids {
		ids[i], sizes[i], active[i] = i, 1, true
	}

	link := make([]Merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && d[i][j] < best {
					bi, bj, best = i, j, d[i][j]
				}
			}
		}
		left, right := ids[bi], ids[bj]
		if left > right {
			left, right = right, left
		}
		link = append(link, Merge{Left: left, Right: right, Distance: best, Size: sizes[bi] + sizes[bj]})

		// slot bi now holds the merged cluster
		for k := 0; k < n; k++ {
			if active[k] && k != bi && k != bj {
				m := math.Min(d[bi][k], d[bj][k])
				d[bi][k], d[k][bi] = m, m
			}
		}
		active[bj] = false
		ids[bi] = n + step
		sizes[bi] += sizes[bj]
	}
	return link
}

// QuasiDiag returns the leaves of the linkage tree in left-to-right order.
func QuasiDiag(link []Merge, n int) []int {
	if len(link) == 0 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}
	var order []int
	var walk func(id int)
	walk = func(id int) {
		if id < n {
			order = append(order, id)
			return
		}
		m := link[id-n]
		walk(m.Left)
		walk(m.Right)
	}
	walk(n + len(link) - 1)
	return order
}

// recursiveBisection splits the ordered assets in halves and allocates
// between the halves in inverse proportion to their variance.
func recursiveBisection(cov [][]float64, order []int) []float64 {
	w := make([]float64, len(cov))
	for _, i := range order {
		w[i] = 1
	}
	clusters := [][]int{order}
	for len(clusters) > 0 {
		var next [][]int
		for _, c := range clusters {
			if len(c) > 1 {
				half := len(c) / 2
				next = append(next, c[:half], c[half:])
			}
		}
		for i := 0; i+1 < len(next); i += 2 {
			v1 := clusterVariance(cov, next[i])
			v2 := clusterVariance(cov, next[i+1])
			alpha := 1 - v1/(v1+v2)
			for _, a := range next[i] {
				w[a] *= alpha
			}
			for _, a := range next[i+1] {
				w[a] *= 1 - alpha
			}
		}
		clusters = next
	}
	return w
}

// clusterVariance is the variance of the inverse-variance portfolio of items.
func clusterVariance(cov [][]float64, items []int) float64 {
	sub := reduce(cov, items, items)
	ivp := make([]float64, len(items))
	var total float64
	for i := range items {
		ivp[i] = 1 / sub[i][i]
		total += ivp[i]
	}
	for i := range ivp {
		ivp[i] /= total
	}
	return quad(sub, ivp)
}
