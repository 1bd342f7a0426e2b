package solver

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats/scalar"

	"q.log/colgen/model"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestExactLP(t *testing.T) {
	// min x + y subject to x + y >= 3
	m := model.New(model.Minimize)
	r := m.AddConstraint("cover", model.Ge, 3)
	x := m.AddVariable(model.Variable{Name: "x", Upper: model.Inf(), Obj: 1})
	y := m.AddVariable(model.Variable{Name: "y", Upper: model.Inf(), Obj: 1})
	m.SetCoef(r, x, 1)
	m.SetCoef(r, y, 1)

	sol, err := Exact{}.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("Status = %v, want optimal", sol.Status)
	}
	if !scalar.EqualWithinAbs(sol.Obj, 3, 1e-9) {
		t.Errorf("Obj = %v, want 3", sol.Obj)
	}
	if diff := cmp.Diff([]float64{1}, sol.Duals, approx); diff != "" {
		t.Errorf("Duals mismatch (-want +got):\n%s", diff)
	}
}

func TestExactMaximize(t *testing.T) {
	// max 3x subject to x <= 4
	m := model.New(model.Maximize)
	r := m.AddConstraint("cap", model.Le, 4)
	x := m.AddVariable(model.Variable{Name: "x", Upper: model.Inf(), Obj: 3})
	m.SetCoef(r, x, 1)

	sol, err := Exact{}.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !scalar.EqualWithinAbs(sol.Obj, 12, 1e-9) {
		t.Errorf("Obj = %v, want 12", sol.Obj)
	}
	if diff := cmp.Diff([]float64{3}, sol.Duals, approx); diff != "" {
		t.Errorf("Duals mismatch (-want +got):\n%s", diff)
	}
}

func TestExactInfeasible(t *testing.T) {
	// x = -1 with x >= 0
	m := model.New(model.Minimize)
	r := m.AddConstraint("c", model.Eq, -1)
	x := m.AddVariable(model.Variable{Name: "x", Upper: model.Inf(), Obj: 1})
	m.SetCoef(r, x, 1)

	sol, err := Exact{}.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Infeasible {
		t.Fatalf("Status = %v, want infeasible", sol.Status)
	}
}

func TestExactUnbounded(t *testing.T) {
	// max x with x = y; both grow without limit
	m := model.New(model.Maximize)
	r := m.AddConstraint("link", model.Eq, 0)
	x := m.AddVariable(model.Variable{Name: "x", Upper: model.Inf(), Obj: 1})
	y := m.AddVariable(model.Variable{Name: "y", Upper: model.Inf()})
	m.SetCoef(r, x, 1)
	m.SetCoef(r, y, -1)

	sol, err := Exact{}.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Unbounded {
		t.Fatalf("Status = %v, want unbounded", sol.Status)
	}
}

func TestExactKnapsack(t *testing.T) {
	// 0/1 knapsack: values 60/100/120, weights 10/20/30, capacity 50
	m := model.New(model.Maximize)
	knap := m.AddConstraint("cap", model.Le, 50)
	values := []float64{60, 100, 120}
	weights := []float64{10, 20, 30}
	for i := range values {
		j := m.AddVariable(model.Variable{Name: "item", Upper: 1, Integer: true, Obj: values[i]})
		m.SetCoef(knap, j, weights[i])
	}

	sol, err := Exact{}.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("Status = %v, want optimal", sol.Status)
	}
	if !scalar.EqualWithinAbs(sol.Obj, 220, 1e-9) {
		t.Errorf("Obj = %v, want 220", sol.Obj)
	}
	if diff := cmp.Diff([]float64{0, 1, 1}, sol.X, approx); diff != "" {
		t.Errorf("X mismatch (-want +got):\n%s", diff)
	}
	if sol.Duals != nil {
		t.Errorf("Duals = %v, want nil for an integer model", sol.Duals)
	}
}

func TestExactBoundedInteger(t *testing.T) {
	// max 4a + 2b with 3a + 2b <= 12, a <= 3, b <= 4, both integer
	m := model.New(model.Maximize)
	knap := m.AddConstraint("cap", model.Le, 12)
	a := m.AddVariable(model.Variable{Name: "a", Upper: 3, Integer: true, Obj: 4})
	b := m.AddVariable(model.Variable{Name: "b", Upper: 4, Integer: true, Obj: 2})
	m.SetCoef(knap, a, 3)
	m.SetCoef(knap, b, 2)

	sol, err := Exact{}.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !scalar.EqualWithinAbs(sol.Obj, 14, 1e-9) {
		t.Errorf("Obj = %v, want 14", sol.Obj)
	}
}

func TestExactCancelled(t *testing.T) {
	m := model.New(model.Minimize)
	r := m.AddConstraint("c", model.Eq, 1)
	x := m.AddVariable(model.Variable{Name: "x", Upper: model.Inf(), Obj: 1})
	m.SetCoef(r, x, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Exact{}).Solve(ctx, m); err == nil {
		t.Fatal("Solve with cancelled context = nil, want error")
	}
}

func TestExactNodeLimit(t *testing.T) {
	// a tree deeper than one node, capped at one node
	m := model.New(model.Maximize)
	knap := m.AddConstraint("cap", model.Le, 7)
	a := m.AddVariable(model.Variable{Name: "a", Upper: 10, Integer: true, Obj: 3})
	b := m.AddVariable(model.Variable{Name: "b", Upper: 10, Integer: true, Obj: 5})
	m.SetCoef(knap, a, 2)
	m.SetCoef(knap, b, 3)

	if _, err := (Exact{MaxNodes: 1}).Solve(context.Background(), m); err == nil {
		t.Fatal("Solve with MaxNodes 1 = nil, want error")
	}
}
