// Package solver turns model descriptions into solutions. The Solver
// interface is the single seam between the optimization models in this
// repository and whatever engine actually solves them; Exact is the
// built-in pure-Go implementation.
package solver

import (
	"context"

	"github.com/pkg/errors"

	"q.log/colgen/model"
	"q.log/colgen/simplex"
)

// Status classifies the outcome of a solve.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	}
	return "unknown"
}

// Solution is the outcome of solving a model. X holds one value per
// model variable and Duals one value per model constraint; Duals is nil
// unless the model is a pure LP.
type Solution struct {
	Status Status
	X      []float64
	Obj    float64
	Duals  []float64
}

// Solver solves a model to global optimality or reports why it cannot.
// Infeasible and unbounded models are statuses, not errors; an error
// means the engine itself failed.
type Solver interface {
	Solve(ctx context.Context, m *model.Model) (*Solution, error)
}

// Exact solves models with the in-process simplex engine. Pure LPs are
// solved directly; models with integer variables go through
// branch-and-bound over LP relaxations, solved to global optimality.
type Exact struct {
	// MaxNodes bounds the branch-and-bound tree. Zero means the
	// default limit.
	MaxNodes int
}

var _ Solver = Exact{}

const defaultMaxNodes = 200000

func (e Exact) Solve(ctx context.Context, m *model.Model) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "solver")
	}
	st, err := m.Standard()
	if err != nil {
		return nil, errors.Wrap(err, "solver")
	}
	ints := m.IntVariables()
	if len(ints) == 0 {
		return solveLP(st)
	}
	maxNodes := e.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}
	return branchAndBound(ctx, st, ints, maxNodes)
}

func solveLP(st *model.Standard) (*Solution, error) {
	sol, err := simplex.Solve(&simplex.Problem{C: st.C, A: st.A, B: st.B})
	switch err {
	case nil:
	case simplex.ErrInfeasible:
		return &Solution{Status: Infeasible}, nil
	case simplex.ErrUnbounded:
		return &Solution{Status: Unbounded}, nil
	default:
		return nil, errors.Wrap(err, "solver: lp")
	}
	return &Solution{
		Status: Optimal,
		X:      st.Primal(sol.X),
		Obj:    st.Objective(sol.Obj),
		Duals:  st.Duals(sol.Duals),
	}, nil
}
