// Package model holds the linear model description handed to a solver:
// variables with bounds and integrality, a linear objective, and linear
// constraints. Variables can be appended to an existing model one at a
// time, together with their constraint coefficients, without touching
// anything already present.
package model

import (
	"math"

	"github.com/pkg/errors"
)

// Dir is the optimization direction.
type Dir int

const (
	Minimize Dir = iota
	Maximize
)

// Op is the relational operator of a constraint.
type Op int

const (
	Eq Op = iota
	Le
	Ge
)

func (op Op) String() string {
	switch op {
	case Eq:
		return "="
	case Le:
		return "<="
	case Ge:
		return ">="
	}
	return "?"
}

// Variable describes one decision variable.
type Variable struct {
	Name    string
	Lower   float64
	Upper   float64
	Integer bool
	Obj     float64
}

// Coef is one (variable, coefficient) entry of a constraint row.
type Coef struct {
	Var int
	Val float64
}

// Constraint is one linear constraint, stored as its own coefficient
// list so that appending a variable touches only the rows the new
// column participates in.
type Constraint struct {
	Name  string
	Op    Op
	Rhs   float64
	Coefs []Coef
}

// Model is a mutable linear model. The zero value is not usable; use New.
type Model struct {
	dir  Dir
	vars []Variable
	cons []Constraint
}

func New(dir Dir) *Model {
	return &Model{dir: dir}
}

func (m *Model) Dir() Dir { return m.dir }

func (m *Model) NumVariables() int { return len(m.vars) }

func (m *Model) NumConstraints() int { return len(m.cons) }

// AddVariable appends a variable and returns its index. Existing
// variables and constraints are left untouched.
func (m *Model) AddVariable(v Variable) int {
	m.vars = append(m.vars, v)
	return len(m.vars) - 1
}

// AddConstraint appends an empty constraint row and returns its index.
func (m *Model) AddConstraint(name string, op Op, rhs float64) int {
	m.cons = append(m.cons, Constraint{Name: name, Op: op, Rhs: rhs})
	return len(m.cons) - 1
}

// SetCoef sets the coefficient of variable v in constraint con. Setting
// a coefficient that is already present overwrites it in place.
func (m *Model) SetCoef(con, v int, coef float64) {
	c := &m.cons[con]
	for i := range c.Coefs {
		if c.Coefs[i].Var == v {
			c.Coefs[i].Val = coef
			return
		}
	}
	c.Coefs = append(c.Coefs, Coef{Var: v, Val: coef})
}

// SetInteger flags variable v as integer (or relaxes it back).
func (m *Model) SetInteger(v int, integer bool) {
	m.vars[v].Integer = integer
}

func (m *Model) Variable(j int) Variable { return m.vars[j] }

func (m *Model) Constraint(i int) Constraint { return m.cons[i] }

// IntVariables returns the indices of all integer variables.
func (m *Model) IntVariables() []int {
	var idx []int
	for j, v := range m.vars {
		if v.Integer {
			idx = append(idx, j)
		}
	}
	return idx
}

// Validate checks the model for shapes a solver cannot handle.
func (m *Model) Validate() error {
	if len(m.vars) == 0 {
		return errors.New("model has no variables")
	}
	if len(m.cons) == 0 {
		return errors.New("model has no constraints")
	}
	for j, v := range m.vars {
		if v.Lower < 0 {
			return errors.Errorf("variable %d (%s): negative lower bound %g not supported", j, v.Name, v.Lower)
		}
		if v.Upper < v.Lower {
			return errors.Errorf("variable %d (%s): upper bound %g below lower bound %g", j, v.Name, v.Upper, v.Lower)
		}
	}
	for i, c := range m.cons {
		for _, e := range c.Coefs {
			if e.Var < 0 || e.Var >= len(m.vars) {
				return errors.Errorf("constraint %d (%s): coefficient for unknown variable %d", i, c.Name, e.Var)
			}
		}
	}
	return nil
}

// Inf is the upper bound of an unbounded variable.
func Inf() float64 { return math.Inf(1) }
