// Package simplex solves linear programs in computational standard form
//
//	minimize c'x  subject to  Ax = b, x >= 0, b >= 0
//
// with a two-phase revised simplex method. Alongside the primal optimum
// it reports the dual vector p = cB'*inv(B) associated with the optimal
// basis, one value per equality row.
package simplex

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInfeasible = errors.New("simplex: problem is infeasible")
	ErrUnbounded  = errors.New("simplex: problem is unbounded")
	ErrSingular   = errors.New("simplex: basis is singular")
	ErrIterations = errors.New("simplex: iteration limit exceeded")
	ErrShape      = errors.New("simplex: dimension mismatch")
)

const (
	// rcTol decides when a reduced cost counts as negative.
	rcTol = 1e-9
	// ratioTol decides when a direction component can limit the step.
	ratioTol = 1e-9
	// pivotTol decides when an element is usable for driving an
	// artificial variable out of the basis.
	pivotTol = 1e-7
	// phase1Tol decides whether the phase-1 optimum certifies feasibility.
	phase1Tol = 1e-7
)

// Problem is a standard-form linear program.
type Problem struct {
	C []float64
	A *mat.Dense
	B []float64
}

// Solution is the optimum of a standard-form linear program.
type Solution struct {
	X     []float64
	Obj   float64
	Duals []float64
	Basic []int
}

// dict is the working state of one simplex run: the constraint data,
// the current basis, its inverse, and the basic variable values.
type dict struct {
	a     *mat.Dense
	b     []float64
	c     []float64
	basic []int
	binv  *mat.Dense
	xb    []float64
	duals []float64
}

func (d *dict) cols() int { _, c := d.a.Dims(); return c }

// refactor recomputes the basis inverse and the basic solution from the
// current basis index set.
func (d *dict) refactor() error {
	m := len(d.b)
	bmat := mat.NewDense(m, m, nil)
	for pos, j := range d.basic {
		for i := 0; i < m; i++ {
			bmat.Set(i, pos, d.a.At(i, j))
		}
	}
	if d.binv == nil {
		d.binv = mat.NewDense(m, m, nil)
	}
	if err := d.binv.Inverse(bmat); err != nil {
		return ErrSingular
	}
	if d.xb == nil {
		d.xb = make([]float64, m)
	}
	bvec := mat.NewVecDense(m, d.b)
	xvec := mat.NewVecDense(m, d.xb)
	xvec.MulVec(d.binv, bvec)
	for i := range d.xb {
		if d.xb[i] < 0 && d.xb[i] > -pivotTol {
			d.xb[i] = 0
		}
	}
	return nil
}

// inBasis reports whether column j is currently basic.
func (d *dict) inBasis(j int) bool {
	for _, k := range d.basic {
		if k == j {
			return true
		}
	}
	return false
}

// iterate runs primal simplex iterations until optimality. Entering
// columns follow Bland's rule (lowest index with negative reduced cost)
// and ratio-test ties break on the lowest basic index, which rules out
// cycling. On return d holds the optimal basis and d.duals the dual
// vector of the final pass.
func (d *dict) iterate() error {
	m := len(d.b)
	n := d.cols()
	maxIter := 1000 + 100*(m+n)

	cb := make([]float64, m)
	p := make([]float64, m)
	col := make([]float64, m)
	u := make([]float64, m)

	for iter := 0; iter < maxIter; iter++ {
		if err := d.refactor(); err != nil {
			return err
		}
		for pos, j := range d.basic {
			cb[pos] = d.c[j]
		}
		// duals p = cB' * inv(B)
		pv := mat.NewVecDense(m, p)
		pv.MulVec(d.binv.T(), mat.NewVecDense(m, cb))

		entering := -1
		for j := 0; j < n; j++ {
			if d.inBasis(j) {
				continue
			}
			mat.Col(col, j, d.a)
			rc := d.c[j] - floats.Dot(p, col)
			if rc < -rcTol {
				entering = j
				break
			}
		}
		if entering < 0 {
			d.duals = append(d.duals[:0], p...)
			return nil
		}

		mat.Col(col, entering, d.a)
		uv := mat.NewVecDense(m, u)
		uv.MulVec(d.binv, mat.NewVecDense(m, col))

		leave := -1
		best := 0.0
		for i := 0; i < m; i++ {
			if u[i] <= ratioTol {
				continue
			}
			r := d.xb[i] / u[i]
			if leave < 0 || r < best-rcTol ||
				(r <= best+rcTol && d.basic[i] < d.basic[leave]) {
				best = r
				leave = i
			}
		}
		if leave < 0 {
			return ErrUnbounded
		}
		d.basic[leave] = entering
	}
	return ErrIterations
}

// Solve solves the standard-form problem p. It returns ErrInfeasible if
// no x >= 0 satisfies Ax = b, ErrUnbounded if the objective decreases
// without limit, and the optimal solution otherwise.
func Solve(p *Problem) (*Solution, error) {
	m, n := p.A.Dims()
	if len(p.B) != m || len(p.C) != n {
		return nil, ErrShape
	}
	for _, v := range p.B {
		if v < 0 {
			return nil, ErrShape
		}
	}

	// phase 1: minimize the sum of artificial variables over [A | I]
	ext := mat.NewDense(m, n+m, nil)
	ext.Slice(0, m, 0, n).(*mat.Dense).Copy(p.A)
	for i := 0; i < m; i++ {
		ext.Set(i, n+i, 1)
	}
	c1 := make([]float64, n+m)
	for i := 0; i < m; i++ {
		c1[n+i] = 1
	}
	basic := make([]int, m)
	for i := range basic {
		basic[i] = n + i
	}

	d1 := &dict{a: ext, b: p.B, c: c1, basic: basic}
	if err := d1.iterate(); err != nil {
		if err == ErrUnbounded {
			// phase 1 is bounded below by zero; this is numerical failure
			return nil, ErrSingular
		}
		return nil, err
	}
	infeas := 0.0
	for pos, j := range d1.basic {
		if j >= n {
			infeas += d1.xb[pos]
		}
	}
	if infeas > phase1Tol {
		return nil, ErrInfeasible
	}

	keep, basic2, err := driveOut(d1, n)
	if err != nil {
		return nil, err
	}

	// phase 2 over the original columns and the surviving rows
	m2 := len(keep)
	a2 := mat.NewDense(m2, n, nil)
	b2 := make([]float64, m2)
	for i2, i := range keep {
		for j := 0; j < n; j++ {
			a2.Set(i2, j, p.A.At(i, j))
		}
		b2[i2] = p.B[i]
	}
	d2 := &dict{a: a2, b: b2, c: p.C, basic: basic2}
	if err := d2.iterate(); err != nil {
		return nil, err
	}

	x := make([]float64, n)
	for pos, j := range d2.basic {
		x[j] = d2.xb[pos]
	}
	duals := make([]float64, m)
	for i2, i := range keep {
		duals[i] = d2.duals[i2]
	}
	return &Solution{
		X:     x,
		Obj:   floats.Dot(p.C, x),
		Duals: duals,
		Basic: append([]int(nil), d2.basic...),
	}, nil
}

// driveOut pivots artificial variables out of the phase-1 basis. A row
// whose artificial cannot be replaced by any original column is
// linearly dependent on the others and is dropped. It returns the
// surviving row indices and the all-original basis for them.
func driveOut(d *dict, n int) (keep []int, basic []int, err error) {
	m := len(d.b)
	redundant := make(map[int]bool)

	for pos := 0; pos < m; pos++ {
		j := d.basic[pos]
		if j < n {
			continue
		}
		found := -1
		for cand := 0; cand < n; cand++ {
			if d.inBasis(cand) {
				continue
			}
			// element (pos, cand) of inv(B)*A
			v := 0.0
			for k := 0; k < m; k++ {
				v += d.binv.At(pos, k) * d.a.At(k, cand)
			}
			if v > pivotTol || v < -pivotTol {
				found = cand
				break
			}
		}
		if found < 0 {
			redundant[j-n] = true
			continue
		}
		d.basic[pos] = found
		if err := d.refactor(); err != nil {
			return nil, nil, err
		}
	}

	for i := 0; i < m; i++ {
		if !redundant[i] {
			keep = append(keep, i)
		}
	}
	for _, j := range d.basic {
		if j < n {
			basic = append(basic, j)
		}
	}
	if len(basic) != len(keep) {
		return nil, nil, ErrSingular
	}
	return keep, basic, nil
}
