package scoring

import "github.com/riskibarqy/daily-pick/internal/domain/statline"

// Score compares an actual line with the expected line.
//
// Only categories present in expected are evaluated. A category the actual
// line does not report contributes 0. Each contribution is
// (actual - expected) * weight at full precision and the total is their sum.
// Rounding is left to presentation.
func Score(expected, actual statline.Line, weights Weights) Result {
	rows := make([]Contribution, 0, len(statline.AllCategories()))
	var total float64
	for _, c := range expected.Categories() {
		exp, _ := expected.Get(c)
		row := Contribution{
			Category: c,
			Expected: exp,
			Weight:   weights.Weight(c),
		}
		if act, ok := actual.Get(c); ok {
			row.Actual = &act
			row.Contribution = (act - exp) * row.Weight
		}
		total += row.Contribution
		rows = append(rows, row)
	}

	return Result{
		Total: total,
		Rows:  rows,
	}
}
