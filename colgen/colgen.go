// Package colgen implements column generation for linear programs whose
// variable set is too large to enumerate, illustrated by the cutting
// stock problem. A restricted master problem is kept over a small
// working set of columns; dual prices from each master solve
// parameterize an integer pricing subproblem that searches the full
// pattern universe for a column with negative reduced cost. The loop
// stops when no such column exists, at which point LP duality proves
// the restricted optimum optimal for the unabridged problem.
package colgen

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"q.log/colgen/solver"
)

// Taxonomy causes. Every failure returned by Solve wraps exactly one of
// these; use errors.Cause to classify.
var (
	// ErrConfig marks malformed instance data, caught before any
	// solve attempt.
	ErrConfig = errors.New("colgen: invalid instance")
	// ErrInfeasible marks a restricted master with no feasible
	// solution. A correctly initialized master is always feasible,
	// so this indicates a broken invariant, not bad luck.
	ErrInfeasible = errors.New("colgen: restricted master is infeasible")
	// ErrSolver marks a failure inside the solving engine.
	ErrSolver = errors.New("colgen: solver failure")
	// ErrTimeout marks a per-solve deadline that expired.
	ErrTimeout = errors.New("colgen: solve timed out")
)

// Instance is the immutable data of one cutting stock problem: rolls of
// width RollWidth must be cut to satisfy Demands[i] pieces of width
// Widths[i], using as few rolls as possible.
type Instance struct {
	RollWidth float64
	Widths    []float64
	Demands   []float64
}

// Validate checks the instance invariants. All failures wrap ErrConfig.
func (in Instance) Validate() error {
	if len(in.Widths) == 0 {
		return errors.Wrap(ErrConfig, "no piece types")
	}
	if len(in.Demands) != len(in.Widths) {
		return errors.Wrapf(ErrConfig, "%d demands for %d piece types", len(in.Demands), len(in.Widths))
	}
	if in.RollWidth <= 0 {
		return errors.Wrapf(ErrConfig, "roll width %g must be positive", in.RollWidth)
	}
	for i, w := range in.Widths {
		if w <= 0 {
			return errors.Wrapf(ErrConfig, "piece type %d has width %g", i, w)
		}
		if w > in.RollWidth {
			return errors.Wrapf(ErrConfig, "piece type %d is wider than the roll (%g > %g)", i, w, in.RollWidth)
		}
	}
	for i, b := range in.Demands {
		if b <= 0 {
			return errors.Wrapf(ErrConfig, "piece type %d has demand %g", i, b)
		}
	}
	return nil
}

// Column is one cutting pattern: Column[i] pieces of type i from a
// single roll.
type Column []float64

func (c Column) equal(o Column) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}

// Config tunes a Solve run. The zero value uses the defaults.
type Config struct {
	// Tolerance is the reduced-cost optimality tolerance epsilon.
	// Zero means DefaultTolerance.
	Tolerance float64
	// MaxIterations caps the number of pricing rounds. Zero means no
	// cap; with a cap, hitting it yields StatusIterationLimit rather
	// than an error, and the incumbent master solution is returned.
	MaxIterations int
	// SolveTimeout bounds each individual master or pricing solve.
	// Zero means no deadline.
	SolveTimeout time.Duration
	// Solver overrides the solving engine. Nil means solver.Exact.
	Solver solver.Solver
	// IntegerFinish re-solves the final restricted master with
	// integral pattern counts and reports the result alongside the
	// LP optimum.
	IntegerFinish bool
}

// DefaultTolerance absorbs floating-point noise in the duals coming out
// of the master solve.
const DefaultTolerance = 1e-6

// Status is the terminal state of the generation loop.
type Status int

const (
	// StatusOptimal: the pricing subproblem certified that no column
	// in the full universe can improve the master objective.
	StatusOptimal Status = iota
	// StatusIterationLimit: MaxIterations pricing rounds passed with
	// the certificate still outstanding.
	StatusIterationLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusIterationLimit:
		return "iteration limit"
	}
	return "unknown"
}

// Result is the outcome of a Solve run. Values[j] is the (fractional)
// number of rolls cut with pattern Columns[j]; Columns lists every
// column in the master in generation order, starter columns first.
type Result struct {
	Status     Status
	Instance   Instance
	Objective  float64
	Values     []float64
	Columns    []Column
	Iterations int

	// Set only when Config.IntegerFinish succeeded.
	IntegerObjective float64
	IntegerValues    []float64
}

// Solve runs column generation on the instance until the pricing
// subproblem proves optimality, the iteration cap is reached, or a
// component fails. The context covers the whole run; Config.SolveTimeout
// additionally bounds each individual solve.
func Solve(ctx context.Context, in Instance, cfg Config) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	slv := cfg.Solver
	if slv == nil {
		slv = solver.Exact{}
	}

	ma := newMaster(in, slv, cfg.SolveTimeout)
	pr := newPricing(in, slv, cfg.SolveTimeout)

	status := StatusOptimal
	iters := 0
	var last Column
	for {
		if err := ma.solve(ctx); err != nil {
			return nil, err
		}
		glog.V(1).Infof("iteration %d: master objective %.6f over %d columns", iters, ma.obj, len(ma.cols))

		col, rc, err := pr.solve(ctx, ma.duals)
		if err != nil {
			return nil, err
		}
		iters++
		if rc >= -tol {
			break
		}
		if last != nil && col.equal(last) {
			// zero progress; the iteration cap is the only way out
			glog.Warningf("pricing repeated column %v with reduced cost %.3g", col, rc)
		}
		if cfg.MaxIterations > 0 && iters >= cfg.MaxIterations {
			status = StatusIterationLimit
			break
		}
		glog.V(1).Infof("iteration %d: adding column %v, reduced cost %.6f", iters, col, rc)
		ma.addColumn(col)
		last = col
	}

	res := &Result{
		Status:     status,
		Instance:   in,
		Objective:  ma.obj,
		Values:     append([]float64(nil), ma.x...),
		Columns:    ma.columns(),
		Iterations: iters,
	}
	if cfg.IntegerFinish {
		sol, err := ma.solveInteger(ctx)
		if err != nil {
			return nil, err
		}
		if sol.Status == solver.Optimal {
			res.IntegerObjective = sol.Obj
			res.IntegerValues = sol.X
		} else {
			glog.Warningf("integer finish ended %v; reporting the LP optimum only", sol.Status)
		}
	}
	return res, nil
}

// withTimeout layers the per-solve deadline onto the run context.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// classify maps an engine failure onto the package taxonomy.
func classify(err error, what string) error {
	if errors.Cause(err) == context.DeadlineExceeded {
		return errors.Wrapf(ErrTimeout, "%s: %v", what, err)
	}
	return errors.Wrapf(ErrSolver, "%s: %v", what, err)
}
