package calculator

import (
	"errors"
	"fmt"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
)

// ErrZeroSum is returned when weights cannot be normalised.
var ErrZeroSum = errors.New("weights sum to zero")

// Normalize scales weights so they sum to 1.
func Normalize(w model.Weights) (model.Weights, error) {
	sum := w.Sum()
	if sum == 0 {
		return nil, ErrZeroSum
	}
	out := make(model.Weights, len(w))
	for i, a := range w {
		out[i] = model.Allocation{Ticker: a.Ticker, Weight: a.Weight / sum}
	}
	return out, nil
}

// FixNegativeWeights zeroes negative weights and renormalises the remaining
// ones to sum to 1. The input is left untouched.
func FixNegativeWeights(w model.Weights) (model.Weights, error) {
	fixed := make(model.Weights, len(w))
	for i, a := range w {
		if a.Weight < 0 {
			a.Weight = 0
		}
		fixed[i] = a
	}
	out, err := Normalize(fixed)
	if err != nil {
		return nil, fmt.Errorf("no positive weight left after removing negatives: %w", err)
	}
	return out, nil
}
