package mip

import (
	"github.com/go-opt/milo/mps"
)

// FromMPS builds a session holding the parsed model. Later options
// override the model's name. The objective sense and constant are
// solve options, not model state: m.Maximize and m.ObjOffset are the
// caller's to apply at solve time.
//
// Constraint names regenerate; variable names carry over.
func FromMPS(m *mps.Model, opts ...Option) (*Session, error) {
	if m.Name != "" {
		opts = append([]Option{WithName(m.Name)}, opts...)
	}
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}

	vars := make([]*Var, len(m.Columns))
	for i := range m.Columns {
		col := &m.Columns[i]
		v, err := s.Var(
			WithVarName(col.Name),
			WithType(col.Type),
			WithCoefficient(col.Coef),
			WithLower(col.Lower),
			WithUpper(col.Upper),
		)
		if err != nil {
			s.Close()
			return nil, err
		}
		vars[i] = v
	}
	for i := range m.Rows {
		r := &m.Rows[i]
		rv := make([]*Var, len(r.Cols))
		for k, j := range r.Cols {
			if j < 0 || j >= len(vars) {
				s.Close()
				return nil, wrap(ErrInvalidConstraint, "row %s references column %d of %d", r.Name, j, len(vars))
			}
			rv[k] = vars[j]
		}
		if _, err := s.Constrain(r.Lower, r.Upper, rv, r.Coefs); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// ToMPS snapshots the model into the MPS exchange layout. Removed
// constraints are skipped; branching priorities have no MPS home and
// are dropped.
func (s *Session) ToMPS() (*mps.Model, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	m := &mps.Model{Name: s.name}

	idx := make(map[*Var]int, len(s.vars))
	for i, v := range s.vars {
		idx[v] = i
		m.Columns = append(m.Columns, mps.Column{
			Name:  v.name,
			Type:  v.typ,
			Coef:  v.coef,
			Lower: v.lower,
			Upper: v.upper,
		})
	}
	for _, c := range s.cons {
		if c.deleted {
			continue
		}
		cols := make([]int, len(c.vars))
		for k, v := range c.vars {
			j, ok := idx[v]
			if !ok {
				return nil, wrap(ErrInvalidConstraint, "%s references an unknown variable", c.name)
			}
			cols[k] = j
		}
		m.Rows = append(m.Rows, mps.Row{
			Name:  c.name,
			Cols:  cols,
			Coefs: append([]float64(nil), c.coefs...),
			Lower: c.lower,
			Upper: c.upper,
		})
	}
	return m, nil
}
