package solver

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"q.log/colgen/model"
	"q.log/colgen/simplex"
)

// intTol decides when a relaxation value counts as integral.
const intTol = 1e-6

// bound is one branching constraint: x[v] <= rhs or x[v] >= rhs.
type bound struct {
	v     int
	upper bool
	rhs   float64
}

// node is one open subproblem: the root relaxation plus every bound
// accumulated on the path from the root.
type node struct {
	bounds []bound
}

// branchAndBound explores LP relaxations of st, branching on fractional
// integer variables until the incumbent is provably optimal. The queue
// is processed first-in first-out; nodes whose relaxation cannot beat
// the incumbent are pruned.
func branchAndBound(ctx context.Context, st *model.Standard, ints []int, maxNodes int) (*Solution, error) {
	bestObj := math.Inf(1)
	var bestX []float64

	queue := []node{{}}
	visited := 0
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "solver: branch and bound interrupted")
		}
		visited++
		if visited > maxNodes {
			return nil, errors.Errorf("solver: branch and bound exceeded %d nodes", maxNodes)
		}

		var nd node
		nd, queue = queue[0], queue[1:]

		sol, err := simplex.Solve(extend(st, nd.bounds))
		switch err {
		case nil:
		case simplex.ErrInfeasible:
			continue
		case simplex.ErrUnbounded:
			// bounds only shrink the region, so this is the root
			return &Solution{Status: Unbounded}, nil
		default:
			return nil, errors.Wrap(err, "solver: relaxation")
		}
		if sol.Obj >= bestObj-1e-9 {
			continue
		}

		branchVar, frac := mostFractional(sol.X, ints)
		if branchVar < 0 {
			bestObj = sol.Obj
			bestX = sol.X[:st.NumOrig()]
			continue
		}

		down := append(append([]bound(nil), nd.bounds...),
			bound{v: branchVar, upper: true, rhs: math.Floor(frac)})
		up := append(append([]bound(nil), nd.bounds...),
			bound{v: branchVar, upper: false, rhs: math.Ceil(frac)})
		queue = append(queue, node{bounds: down}, node{bounds: up})
	}

	if bestX == nil {
		return &Solution{Status: Infeasible}, nil
	}
	x := st.Primal(bestX)
	for _, j := range ints {
		x[j] = math.Round(x[j])
	}
	return &Solution{
		Status: Optimal,
		X:      x,
		Obj:    st.Objective(bestObj),
	}, nil
}

// mostFractional picks the integer variable farthest from an integer
// value, or -1 when the point is integral within tolerance.
func mostFractional(x []float64, ints []int) (int, float64) {
	best := -1
	bestDist := intTol
	bestVal := 0.0
	for _, j := range ints {
		f := x[j] - math.Floor(x[j])
		dist := math.Min(f, 1-f)
		if dist > bestDist {
			best = j
			bestDist = dist
			bestVal = x[j]
		}
	}
	return best, bestVal
}

// extend appends one row and one slack column per branching bound to
// the root standard form: x[v] + s = rhs for an upper bound, and
// x[v] - s = rhs for a lower bound.
func extend(st *model.Standard, bounds []bound) *simplex.Problem {
	if len(bounds) == 0 {
		return &simplex.Problem{C: st.C, A: st.A, B: st.B}
	}
	rows0, cols0 := st.A.Dims()
	rows := rows0 + len(bounds)
	cols := cols0 + len(bounds)

	a := mat.NewDense(rows, cols, nil)
	a.Slice(0, rows0, 0, cols0).(*mat.Dense).Copy(st.A)
	c := make([]float64, cols)
	copy(c, st.C)
	b := make([]float64, rows)
	copy(b, st.B)

	for k, bd := range bounds {
		i := rows0 + k
		a.Set(i, bd.v, 1)
		if bd.upper {
			a.Set(i, cols0+k, 1)
		} else {
			a.Set(i, cols0+k, -1)
		}
		b[i] = bd.rhs
	}
	return &simplex.Problem{C: c, A: a, B: b}
}
