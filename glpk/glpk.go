// Package glpk adapts the GLPK library (through the go-glpk cgo
// bindings) to the solver.Solver contract. Pure LPs are solved with
// GLPK's simplex, yielding row duals; models with integer variables go
// through GLPK's branch-and-cut. Building this package requires the
// GLPK C library to be installed.
package glpk

import (
	"context"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"

	"q.log/colgen/model"
	"q.log/colgen/solver"
)

// Solver solves models with GLPK.
type Solver struct{}

var _ solver.Solver = Solver{}

func (Solver) Solve(ctx context.Context, m *model.Model) (*solver.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "glpk")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "glpk")
	}

	// the GLPK environment is tied to the calling thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	lp := glpk.New()
	defer lp.Delete()

	load(lp, m)

	if len(m.IntVariables()) == 0 {
		return solveLP(lp, m)
	}
	return solveMIP(lp, m)
}

// load translates the model into a fresh GLPK problem object. GLPK rows
// and columns are 1-based.
func load(lp *glpk.Prob, m *model.Model) {
	if m.Dir() == model.Maximize {
		lp.SetObjDir(glpk.MAX)
	} else {
		lp.SetObjDir(glpk.MIN)
	}

	nRows := m.NumConstraints()
	nCols := m.NumVariables()
	lp.AddRows(nRows)
	lp.AddCols(nCols)

	for j := 0; j < nCols; j++ {
		v := m.Variable(j)
		if v.Name != "" {
			lp.SetColName(j+1, v.Name)
		}
		switch {
		case v.Lower == v.Upper:
			lp.SetColBnds(j+1, glpk.FX, v.Lower, v.Upper)
		case v.Upper == model.Inf():
			lp.SetColBnds(j+1, glpk.LO, v.Lower, 0)
		default:
			lp.SetColBnds(j+1, glpk.DB, v.Lower, v.Upper)
		}
		lp.SetObjCoef(j+1, v.Obj)
		if v.Integer {
			lp.SetColKind(j+1, glpk.IV)
		}
	}

	for i := 0; i < nRows; i++ {
		c := m.Constraint(i)
		if c.Name != "" {
			lp.SetRowName(i+1, c.Name)
		}
		switch c.Op {
		case model.Eq:
			lp.SetRowBnds(i+1, glpk.FX, c.Rhs, c.Rhs)
		case model.Le:
			lp.SetRowBnds(i+1, glpk.UP, 0, c.Rhs)
		case model.Ge:
			lp.SetRowBnds(i+1, glpk.LO, c.Rhs, 0)
		}
		// index 0 of the coefficient arrays is unused by GLPK
		ind := make([]int32, 1, len(c.Coefs)+1)
		val := make([]float64, 1, len(c.Coefs)+1)
		for _, e := range c.Coefs {
			ind = append(ind, int32(e.Var+1))
			val = append(val, e.Val)
		}
		lp.SetMatRow(i+1, ind, val)
	}
}

func solveLP(lp *glpk.Prob, m *model.Model) (*solver.Solution, error) {
	parm := glpk.NewSmcp()
	parm.SetMsgLev(glpk.MSG_ERR)
	if err := lp.Simplex(parm); err != nil {
		return nil, errors.Wrap(err, "glpk: simplex")
	}
	switch lp.Status() {
	case glpk.OPT:
	case glpk.NOFEAS, glpk.INFEAS:
		return &solver.Solution{Status: solver.Infeasible}, nil
	case glpk.UNBND:
		return &solver.Solution{Status: solver.Unbounded}, nil
	default:
		return nil, errors.Errorf("glpk: unexpected solution status %v", lp.Status())
	}

	x := make([]float64, m.NumVariables())
	for j := range x {
		x[j] = lp.ColPrim(j + 1)
	}
	duals := make([]float64, m.NumConstraints())
	for i := range duals {
		duals[i] = lp.RowDual(i + 1)
	}
	return &solver.Solution{
		Status: solver.Optimal,
		X:      x,
		Obj:    lp.ObjVal(),
		Duals:  duals,
	}, nil
}

func solveMIP(lp *glpk.Prob, m *model.Model) (*solver.Solution, error) {
	parm := glpk.NewIocp()
	parm.SetPresolve(true)
	if err := lp.Intopt(parm); err != nil {
		return nil, errors.Wrap(err, "glpk: intopt")
	}
	switch lp.MipStatus() {
	case glpk.OPT:
	case glpk.NOFEAS:
		return &solver.Solution{Status: solver.Infeasible}, nil
	case glpk.UNBND:
		return &solver.Solution{Status: solver.Unbounded}, nil
	default:
		return nil, errors.Errorf("glpk: unexpected MIP status %v", lp.MipStatus())
	}

	x := make([]float64, m.NumVariables())
	for j := range x {
		x[j] = lp.MipColVal(j + 1)
	}
	return &solver.Solution{
		Status: solver.Optimal,
		X:      x,
		Obj:    lp.MipObjVal(),
	}, nil
}
