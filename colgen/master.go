package colgen

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"q.log/colgen/model"
	"q.log/colgen/solver"
)

// master is the restricted master problem: minimize the number of rolls
// over the columns generated so far, one equality row per piece type.
// It is seeded with the identity patterns (one piece of one type per
// roll), which are always feasible, and grows one column per pricing
// round without rebuilding the model.
type master struct {
	inst    Instance
	slv     solver.Solver
	timeout time.Duration

	mdl  *model.Model
	rows []int
	cols []Column

	// outcome of the latest solve; duals is nil while stale
	obj   float64
	x     []float64
	duals []float64
}

func newMaster(in Instance, slv solver.Solver, timeout time.Duration) *master {
	ma := &master{
		inst:    in,
		slv:     slv,
		timeout: timeout,
		mdl:     model.New(model.Minimize),
		rows:    make([]int, len(in.Widths)),
	}
	for i := range ma.rows {
		ma.rows[i] = ma.mdl.AddConstraint(fmt.Sprintf("demand_%d", i), model.Eq, in.Demands[i])
	}
	for i := range ma.rows {
		col := make(Column, len(ma.rows))
		col[i] = 1
		ma.addColumn(col)
	}
	return ma
}

// addColumn appends one pattern variable, touching only the rows the
// pattern uses.
func (ma *master) addColumn(a Column) {
	j := ma.mdl.AddVariable(model.Variable{
		Name:  fmt.Sprintf("x%d", len(ma.cols)),
		Upper: model.Inf(),
		Obj:   1,
	})
	for i, v := range a {
		if v != 0 {
			ma.mdl.SetCoef(ma.rows[i], j, v)
		}
	}
	ma.cols = append(ma.cols, append(Column(nil), a...))
}

func (ma *master) columns() []Column {
	out := make([]Column, len(ma.cols))
	for j, c := range ma.cols {
		out[j] = append(Column(nil), c...)
	}
	return out
}

func (ma *master) solve(ctx context.Context) error {
	ma.duals = nil
	cctx, cancel := withTimeout(ctx, ma.timeout)
	defer cancel()
	sol, err := ma.slv.Solve(cctx, ma.mdl)
	if err != nil {
		return classify(err, "master solve")
	}
	switch sol.Status {
	case solver.Optimal:
	case solver.Infeasible:
		return errors.Wrap(ErrInfeasible, "master solve")
	default:
		return errors.Wrapf(ErrSolver, "master solve ended %v", sol.Status)
	}
	if len(sol.Duals) != len(ma.rows) {
		return errors.Wrapf(ErrSolver, "master solve returned %d duals for %d rows", len(sol.Duals), len(ma.rows))
	}
	ma.obj = sol.Obj
	ma.x = sol.X
	ma.duals = append([]float64(nil), sol.Duals...)
	return nil
}

// solveInteger re-solves the current master with integral pattern
// counts. The restriction to generated columns makes this a heuristic
// bound, not the integer optimum.
func (ma *master) solveInteger(ctx context.Context) (*solver.Solution, error) {
	for j := range ma.cols {
		ma.mdl.SetInteger(j, true)
	}
	defer func() {
		for j := range ma.cols {
			ma.mdl.SetInteger(j, false)
		}
	}()
	cctx, cancel := withTimeout(ctx, ma.timeout)
	defer cancel()
	sol, err := ma.slv.Solve(cctx, ma.mdl)
	if err != nil {
		return nil, classify(err, "integer finish")
	}
	return sol, nil
}
