package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

var (
	ErrUnknownCategory = errors.New("unknown stat category")
	ErrInvalidWeight   = errors.New("invalid stat weight")
)

const defaultWeight = 1.0

// Weights scales the contribution of each category. Missing categories weigh 1.0.
type Weights map[statline.Category]float64

func DefaultWeights() Weights {
	out := make(Weights, len(statline.AllCategories()))
	for _, c := range statline.AllCategories() {
		out[c] = defaultWeight
	}
	return out
}

// NewWeights validates a stat-name keyed weight table and fills unspecified categories with 1.0.
func NewWeights(raw map[string]float64) (Weights, error) {
	out := DefaultWeights()
	for key, value := range raw {
		c, ok := statline.ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidWeight, key, value)
		}
		out[c] = value
	}
	return out, nil
}

func (w Weights) Weight(c statline.Category) float64 {
	if v, ok := w[c]; ok {
		return v
	}
	return defaultWeight
}

// Contribution is one evaluated row of a breakdown.
// Actual is nil when the actual line did not report the stat.
type Contribution struct {
	Category     statline.Category
	Expected     float64
	Actual       *float64
	Weight       float64
	Contribution float64
}

// Result is the total score plus the rows it was summed from, in category order.
type Result struct {
	Total float64
	Rows  []Contribution
}

func (r Result) ExpectedMap() map[string]float64 {
	out := make(map[string]float64, len(r.Rows))
	for _, row := range r.Rows {
		out[string(row.Category)] = row.Expected
	}
	return out
}

func (r Result) ActualMap() map[string]float64 {
	out := make(map[string]float64, len(r.Rows))
	for _, row := range r.Rows {
		if row.Actual != nil {
			out[string(row.Category)] = *row.Actual
		}
	}
	return out
}

func (r Result) ContributionMap() map[string]float64 {
	out := make(map[string]float64, len(r.Rows))
	for _, row := range r.Rows {
		out[string(row.Category)] = row.Contribution
	}
	return out
}
