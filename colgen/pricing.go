package colgen

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"q.log/colgen/model"
	"q.log/colgen/solver"
)

// pricing is the column oracle. Given dual prices p from the master it
// solves the bounded integer knapsack
//
//	maximize   sum p[i]*a[i]
//	subject to sum Widths[i]*a[i] <= RollWidth,  a integer, a >= 0
//
// whose optimum v gives the minimal reduced cost 1-v over all cutting
// patterns. A fresh model is built per call; the knapsack stays small
// (one variable per piece type) no matter how large the master grows.
type pricing struct {
	inst    Instance
	slv     solver.Solver
	timeout time.Duration
}

func newPricing(in Instance, slv solver.Solver, timeout time.Duration) *pricing {
	return &pricing{inst: in, slv: slv, timeout: timeout}
}

// solve returns the best pattern for the given duals and its reduced
// cost. The returned column is feasible by construction but improves
// the master only when the reduced cost is negative.
func (pr *pricing) solve(ctx context.Context, duals []float64) (Column, float64, error) {
	m := len(pr.inst.Widths)
	mdl := model.New(model.Maximize)
	knap := mdl.AddConstraint("capacity", model.Le, pr.inst.RollWidth)
	for i := 0; i < m; i++ {
		j := mdl.AddVariable(model.Variable{
			Name:    fmt.Sprintf("a%d", i),
			Upper:   math.Floor(pr.inst.RollWidth / pr.inst.Widths[i]),
			Integer: true,
			Obj:     duals[i],
		})
		mdl.SetCoef(knap, j, pr.inst.Widths[i])
	}

	cctx, cancel := withTimeout(ctx, pr.timeout)
	defer cancel()
	sol, err := pr.slv.Solve(cctx, mdl)
	if err != nil {
		return nil, 0, classify(err, "pricing solve")
	}
	// the empty pattern is always feasible and every variable is
	// bounded, so anything but an optimum is an engine defect
	if sol.Status != solver.Optimal {
		return nil, 0, errors.Wrapf(ErrSolver, "pricing solve ended %v", sol.Status)
	}

	col := make(Column, m)
	for i := 0; i < m; i++ {
		col[i] = math.Max(0, math.Round(sol.X[i]))
	}
	return col, 1 - sol.Obj, nil
}
