package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Standard is a model converted to computational standard form
//
//	minimize c'x  subject to  Ax = b, x >= 0, b >= 0
//
// with slack columns for inequality rows and extra rows for finite
// variable bounds. It keeps the bookkeeping needed to translate primal
// values, the objective, and duals back to the originating model.
type Standard struct {
	C []float64
	A *mat.Dense
	B []float64

	nOrig   int
	nCons   int
	rowSign []float64
	objSign float64
}

// Standard converts the model. The first NumOrig columns are the model
// variables in order; the first NumConstraints rows are the model
// constraints in order, followed by bound rows.
func (m *Model) Standard() (*Standard, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "standard form")
	}

	nVars := len(m.vars)
	type boundRow struct {
		v     int
		rhs   float64
		slack float64 // +1 for upper bound, -1 for lower bound
	}
	var bounds []boundRow
	for j, v := range m.vars {
		if v.Lower > 0 {
			bounds = append(bounds, boundRow{v: j, rhs: v.Lower, slack: -1})
		}
		if !math.IsInf(v.Upper, 1) {
			bounds = append(bounds, boundRow{v: j, rhs: v.Upper, slack: 1})
		}
	}

	nSlack := len(bounds)
	for _, c := range m.cons {
		if c.Op != Eq {
			nSlack++
		}
	}

	rows := len(m.cons) + len(bounds)
	cols := nVars + nSlack

	st := &Standard{
		C:       make([]float64, cols),
		A:       mat.NewDense(rows, cols, nil),
		B:       make([]float64, rows),
		nOrig:   nVars,
		nCons:   len(m.cons),
		rowSign: make([]float64, rows),
		objSign: 1,
	}
	if m.dir == Maximize {
		st.objSign = -1
	}
	for j, v := range m.vars {
		st.C[j] = st.objSign * v.Obj
	}

	slack := nVars
	for i, c := range m.cons {
		for _, e := range c.Coefs {
			st.A.Set(i, e.Var, e.Val)
		}
		switch c.Op {
		case Le:
			st.A.Set(i, slack, 1)
			slack++
		case Ge:
			st.A.Set(i, slack, -1)
			slack++
		}
		st.B[i] = c.Rhs
	}
	for k, br := range bounds {
		i := len(m.cons) + k
		st.A.Set(i, br.v, 1)
		st.A.Set(i, slack, br.slack)
		slack++
		st.B[i] = br.rhs
	}

	// normalize to b >= 0; dual signs follow the flipped rows
	for i := range st.B {
		st.rowSign[i] = 1
		if st.B[i] < 0 {
			st.B[i] = -st.B[i]
			st.rowSign[i] = -1
			for j := 0; j < cols; j++ {
				st.A.Set(i, j, -st.A.At(i, j))
			}
		}
	}

	return st, nil
}

// NumOrig is the number of model variables (leading columns of A).
func (s *Standard) NumOrig() int { return s.nOrig }

// Primal extracts the model variable values from a standard-form point.
func (s *Standard) Primal(x []float64) []float64 {
	out := make([]float64, s.nOrig)
	copy(out, x[:s.nOrig])
	return out
}

// Objective translates a standard-form objective value back to the
// model's direction.
func (s *Standard) Objective(obj float64) float64 { return s.objSign * obj }

// Duals translates standard-form duals back to one value per model
// constraint, with the sign convention of the model's direction.
func (s *Standard) Duals(p []float64) []float64 {
	if p == nil {
		return nil
	}
	out := make([]float64, s.nCons)
	for i := 0; i < s.nCons; i++ {
		out[i] = s.objSign * s.rowSign[i] * p[i]
	}
	return out
}
