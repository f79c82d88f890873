package mip

import (
	"math"
	"strconv"

	"github.com/go-opt/milo/engine"
)

// Cons is a constraint handle. A Cons belongs to the session that
// created it.
type Cons struct {
	s    *Session
	id   engine.RowID
	name string

	// terms kept for model export
	vars  []*Var
	coefs []float64
	lower float64
	upper float64

	deleted  bool
	released bool
}

// Constrain adds the linear range constraint
//
//	lower <= sum coefs[i]*vars[i] <= upper
//
// to the model. Variables may repeat; their coefficients accumulate.
func (s *Session) Constrain(lower, upper float64, vars []*Var, coefs []float64) (*Cons, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if len(vars) != len(coefs) {
		return nil, wrap(ErrDimensionMismatch, "%d variables, %d coefficients", len(vars), len(coefs))
	}
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return nil, wrap(ErrValueNotNumeric, "constraint range")
	}
	if lower > upper {
		return nil, wrap(ErrInvalidConstraint, "lower bound %v exceeds upper bound %v", lower, upper)
	}

	cols := make([]engine.ColumnID, len(vars))
	for i, v := range vars {
		if v == nil || v.s == nil {
			return nil, ErrInvalidVariable
		}
		if v.s != s {
			return nil, ErrForeignVariable
		}
		if math.IsNaN(coefs[i]) {
			return nil, wrap(ErrValueNotNumeric, "coefficient of %s", v.name)
		}
		cols[i] = v.id
	}

	name := "c" + strconv.Itoa(len(s.cons))
	id, err := s.eng.AddRow(name, cols, coefs, lower, upper)
	if err != nil {
		return nil, err
	}
	c := &Cons{
		s:     s,
		id:    id,
		name:  name,
		vars:  append([]*Var(nil), vars...),
		coefs: append([]float64(nil), coefs...),
		lower: lower,
		upper: upper,
	}
	s.cons = append(s.cons, c)
	return c, nil
}

// ConstrainEq adds the equality constraint sum coefs[i]*vars[i] = rhs.
func (s *Session) ConstrainEq(rhs float64, vars []*Var, coefs []float64) (*Cons, error) {
	return s.Constrain(rhs, rhs, vars, coefs)
}

// ConstrainLe adds the constraint sum coefs[i]*vars[i] <= upper.
func (s *Session) ConstrainLe(upper float64, vars []*Var, coefs []float64) (*Cons, error) {
	return s.Constrain(-s.eng.Infinity(), upper, vars, coefs)
}

// ConstrainGe adds the constraint sum coefs[i]*vars[i] >= lower.
func (s *Session) ConstrainGe(lower float64, vars []*Var, coefs []float64) (*Cons, error) {
	return s.Constrain(lower, s.eng.Infinity(), vars, coefs)
}

// Unconstrain removes a constraint from the model. The session
// restarts first, so it is left unsolved even when the removal fails.
func (s *Session) Unconstrain(c *Cons) error {
	if s.closed {
		return ErrSessionClosed
	}
	if c == nil || c.s == nil {
		return ErrInvalidConstraint
	}
	if c.s != s {
		return ErrForeignConstraint
	}
	if c.deleted {
		return wrap(ErrInvalidConstraint, "%s already removed", c.name)
	}
	if err := s.restart(); err != nil {
		return err
	}
	if err := s.eng.DeleteRow(c.id); err != nil {
		return err
	}
	c.deleted = true
	return nil
}

// Name returns the constraint name.
func (c *Cons) Name() string { return c.name }

// Lower returns the constraint's lower bound.
func (c *Cons) Lower() float64 { return c.lower }

// Upper returns the constraint's upper bound.
func (c *Cons) Upper() float64 { return c.upper }

// Removed reports whether the constraint has been removed from the
// model.
func (c *Cons) Removed() bool { return c.deleted }

// Terms returns the constraint's variables and coefficients as
// declared.
func (c *Cons) Terms() ([]*Var, []float64) {
	return append([]*Var(nil), c.vars...), append([]float64(nil), c.coefs...)
}
