package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestModelIncremental(t *testing.T) {
	m := New(Minimize)
	r := m.AddConstraint("cap", Le, 10)
	x := m.AddVariable(Variable{Name: "x", Upper: Inf(), Obj: 1})
	m.SetCoef(r, x, 2)

	if got := m.NumVariables(); got != 1 {
		t.Fatalf("NumVariables = %d, want 1", got)
	}
	if got := m.NumConstraints(); got != 1 {
		t.Fatalf("NumConstraints = %d, want 1", got)
	}

	// adding a variable later must not disturb existing rows
	y := m.AddVariable(Variable{Name: "y", Upper: Inf(), Obj: 3})
	m.SetCoef(r, y, 5)
	want := Constraint{Name: "cap", Op: Le, Rhs: 10, Coefs: []Coef{{Var: x, Val: 2}, {Var: y, Val: 5}}}
	if diff := cmp.Diff(want, m.Constraint(r)); diff != "" {
		t.Errorf("Constraint mismatch (-want +got):\n%s", diff)
	}

	// overwriting a coefficient must not duplicate the entry
	m.SetCoef(r, x, 7)
	if got := m.Constraint(r).Coefs; len(got) != 2 || got[0].Val != 7 {
		t.Errorf("after overwrite Coefs = %v", got)
	}
}

func TestSetInteger(t *testing.T) {
	m := New(Minimize)
	m.AddVariable(Variable{Name: "x", Upper: 5})
	y := m.AddVariable(Variable{Name: "y", Upper: 5})
	m.SetInteger(y, true)
	if diff := cmp.Diff([]int{y}, m.IntVariables()); diff != "" {
		t.Errorf("IntVariables mismatch (-want +got):\n%s", diff)
	}
	m.SetInteger(y, false)
	if got := m.IntVariables(); len(got) != 0 {
		t.Errorf("IntVariables = %v, want none", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		build func() *Model
	}{
		{"negative lower", func() *Model {
			m := New(Minimize)
			m.AddVariable(Variable{Name: "x", Lower: -1, Upper: Inf()})
			return m
		}},
		{"upper below lower", func() *Model {
			m := New(Minimize)
			m.AddVariable(Variable{Name: "x", Lower: 3, Upper: 2})
			return m
		}},
		{"bad var reference", func() *Model {
			m := New(Minimize)
			r := m.AddConstraint("c", Eq, 1)
			m.SetCoef(r, 5, 1)
			return m
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.build().Validate(); err == nil {
				t.Fatal("Validate = nil, want error")
			}
		})
	}
}

func TestStandardShape(t *testing.T) {
	m := New(Minimize)
	r1 := m.AddConstraint("eq", Eq, 4)
	r2 := m.AddConstraint("le", Le, 6)
	x := m.AddVariable(Variable{Name: "x", Upper: Inf(), Obj: 1})
	y := m.AddVariable(Variable{Name: "y", Lower: 1, Upper: 3, Obj: 2})
	m.SetCoef(r1, x, 1)
	m.SetCoef(r1, y, 1)
	m.SetCoef(r2, x, 2)

	st, err := m.Standard()
	if err != nil {
		t.Fatalf("Standard: %v", err)
	}
	// rows: eq, le, y lower, y upper; cols: x, y + 3 slacks
	rows, cols := st.A.Dims()
	if rows != 4 || cols != 5 {
		t.Fatalf("A is %dx%d, want 4x5", rows, cols)
	}
	if st.NumOrig() != 2 {
		t.Fatalf("NumOrig = %d, want 2", st.NumOrig())
	}
	wantB := []float64{4, 6, 1, 3}
	if diff := cmp.Diff(wantB, st.B); diff != "" {
		t.Errorf("B mismatch (-want +got):\n%s", diff)
	}
}

func TestStandardMaximize(t *testing.T) {
	m := New(Maximize)
	r := m.AddConstraint("cap", Le, 4)
	x := m.AddVariable(Variable{Name: "x", Upper: Inf(), Obj: 3})
	m.SetCoef(r, x, 1)

	st, err := m.Standard()
	if err != nil {
		t.Fatalf("Standard: %v", err)
	}
	if st.C[0] != -3 {
		t.Errorf("C[0] = %v, want -3 for a maximization", st.C[0])
	}
	if got := st.Objective(-12); !scalar.EqualWithinAbs(got, 12, 1e-12) {
		t.Errorf("Objective(-12) = %v, want 12", got)
	}
	if got := st.Duals([]float64{-3}); !scalar.EqualWithinAbs(got[0], 3, 1e-12) {
		t.Errorf("Duals = %v, want [3]", got)
	}
}

func TestStandardNegativeRhs(t *testing.T) {
	// -x <= -2 must flip to x - s = 2 with the dual sign restored
	m := New(Minimize)
	r := m.AddConstraint("c", Le, -2)
	x := m.AddVariable(Variable{Name: "x", Upper: Inf(), Obj: 1})
	m.SetCoef(r, x, -1)

	st, err := m.Standard()
	if err != nil {
		t.Fatalf("Standard: %v", err)
	}
	if st.B[0] != 2 {
		t.Fatalf("B[0] = %v, want 2", st.B[0])
	}
	if st.A.At(0, 0) != 1 {
		t.Errorf("A[0,0] = %v, want 1 after the flip", st.A.At(0, 0))
	}
	if got := st.Duals([]float64{1}); got[0] != -1 {
		t.Errorf("Duals = %v, want [-1]", got)
	}
}
