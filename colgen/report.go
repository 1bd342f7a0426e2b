package colgen

import (
	"fmt"
	"strings"
)

// Report renders the result as a human-readable cutting plan: the
// objective, then every pattern the optimum actually uses with its roll
// count and consumed width.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %d iterations: %.4f rolls\n", r.Status, r.Iterations, r.Objective)
	for j, v := range r.Values {
		if v <= 1e-9 {
			continue
		}
		fmt.Fprintf(&b, "  %8.4f x pattern %v (width %g/%g)\n",
			v, r.Columns[j], r.Columns[j].width(r.Instance), r.Instance.RollWidth)
	}
	if r.IntegerValues != nil {
		fmt.Fprintf(&b, "integer plan: %.0f rolls\n", r.IntegerObjective)
		for j, v := range r.IntegerValues {
			if v <= 1e-9 {
				continue
			}
			fmt.Fprintf(&b, "  %8.0f x pattern %v\n", v, r.Columns[j])
		}
	}
	return b.String()
}

func (c Column) width(in Instance) float64 {
	var w float64
	for i, n := range c {
		w += n * in.Widths[i]
	}
	return w
}
