package mip

import (
	"math"
	"strconv"

	"github.com/go-opt/milo/engine"
)

// Var is a decision variable handle. A Var belongs to the session that
// created it; using it with another session is a validation error.
type Var struct {
	s    *Session
	id   engine.ColumnID
	name string
	typ  engine.VarType

	// cached bounds, used for the monotone tighten checks
	lower, upper float64
	coef         float64

	released bool
}

// VarOption configures a variable at declaration. Later options win.
type VarOption func(*varConfig) error

type varConfig struct {
	name     string
	typ      engine.VarType
	coef     float64
	lower    float64
	upper    float64
	hasLower bool
	hasUpper bool
	priority int
}

// Binary restricts the variable to {0, 1}. Bounds given alongside are
// clipped into [0, 1].
func Binary() VarOption {
	return func(cfg *varConfig) error {
		cfg.typ = engine.Binary
		return nil
	}
}

// Integer restricts the variable to integers.
func Integer() VarOption {
	return func(cfg *varConfig) error {
		cfg.typ = engine.Integer
		return nil
	}
}

// SemiContinuous allows the variable to be zero or within its bounds.
func SemiContinuous() VarOption {
	return func(cfg *varConfig) error {
		cfg.typ = engine.SemiContinuous
		return nil
	}
}

// WithType sets the value domain directly. Unrecognized types fall back
// to continuous.
func WithType(t engine.VarType) VarOption {
	return func(cfg *varConfig) error {
		cfg.typ = engine.TypeOf(uint8(t))
		return nil
	}
}

// WithCoefficient sets the variable's objective coefficient.
func WithCoefficient(coef float64) VarOption {
	return func(cfg *varConfig) error {
		if math.IsNaN(coef) {
			return wrap(ErrValueNotNumeric, "objective coefficient")
		}
		cfg.coef = coef
		return nil
	}
}

// WithLower sets the variable's lower bound.
func WithLower(lower float64) VarOption {
	return func(cfg *varConfig) error {
		if math.IsNaN(lower) {
			return wrap(ErrValueNotNumeric, "lower bound")
		}
		cfg.lower = lower
		cfg.hasLower = true
		return nil
	}
}

// WithUpper sets the variable's upper bound.
func WithUpper(upper float64) VarOption {
	return func(cfg *varConfig) error {
		if math.IsNaN(upper) {
			return wrap(ErrValueNotNumeric, "upper bound")
		}
		cfg.upper = upper
		cfg.hasUpper = true
		return nil
	}
}

// WithPriority sets the variable's branching priority. Nonzero
// priorities apply to the engine immediately after declaration.
func WithPriority(priority int) VarOption {
	return func(cfg *varConfig) error {
		cfg.priority = priority
		return nil
	}
}

// WithVarName names the variable. Unnamed variables get x0, x1, ... in
// declaration order.
func WithVarName(name string) VarOption {
	return func(cfg *varConfig) error {
		cfg.name = name
		return nil
	}
}

// Var declares a decision variable. Defaults: continuous, objective
// coefficient 0, bounds at the engine's infinity sentinel, branching
// priority 0.
func (s *Session) Var(opts ...VarOption) (*Var, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	inf := s.eng.Infinity()
	cfg := varConfig{
		typ:   engine.Continuous,
		lower: -inf,
		upper: inf,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.hasLower {
		cfg.lower = -inf
	}
	if !cfg.hasUpper {
		cfg.upper = inf
	}
	if cfg.typ == engine.Binary {
		if cfg.lower < 0 {
			cfg.lower = 0
		}
		if cfg.upper > 1 {
			cfg.upper = 1
		}
	}
	if cfg.name == "" {
		cfg.name = "x" + strconv.Itoa(len(s.vars))
	}

	id, err := s.eng.AddColumn(cfg.name, cfg.typ, cfg.coef, cfg.lower, cfg.upper)
	if err != nil {
		return nil, err
	}
	v := &Var{
		s:     s,
		id:    id,
		name:  cfg.name,
		typ:   cfg.typ,
		lower: cfg.lower,
		upper: cfg.upper,
		coef:  cfg.coef,
	}
	s.vars = append(s.vars, v)

	if cfg.priority != 0 {
		if err := s.eng.SetBranchPriority(id, cfg.priority); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Name returns the variable name.
func (v *Var) Name() string { return v.name }

// Type returns the variable's value domain.
func (v *Var) Type() engine.VarType { return v.typ }

// Lower returns the cached lower bound.
func (v *Var) Lower() float64 { return v.lower }

// Upper returns the cached upper bound.
func (v *Var) Upper() float64 { return v.upper }

// Coefficient returns the cached objective coefficient.
func (v *Var) Coefficient() float64 { return v.coef }

func (v *Var) valid() error {
	if v == nil || v.s == nil {
		return ErrInvalidVariable
	}
	if v.s.closed {
		return ErrSessionClosed
	}
	return nil
}

// SetCoefficient changes the variable's objective coefficient. The
// session must not hold a finished solve; call Restart first.
func (v *Var) SetCoefficient(coef float64) error {
	if err := v.valid(); err != nil {
		return err
	}
	if math.IsNaN(coef) {
		return wrap(ErrValueNotNumeric, "objective coefficient")
	}
	if err := v.s.eng.SetObjCoefficient(v.id, coef); err != nil {
		return err
	}
	v.coef = coef
	return nil
}

// TightenLower raises the variable's lower bound. Values at or below
// the current bound are ignored without an engine call; bounds only
// ever tighten.
func (v *Var) TightenLower(lower float64) error {
	if err := v.valid(); err != nil {
		return err
	}
	if math.IsNaN(lower) {
		return wrap(ErrValueNotNumeric, "lower bound")
	}
	if lower <= v.lower {
		return nil
	}
	if err := v.s.eng.SetLowerBound(v.id, lower); err != nil {
		return err
	}
	v.lower = lower
	return nil
}

// TightenUpper lowers the variable's upper bound. Values at or above
// the current bound are ignored without an engine call.
func (v *Var) TightenUpper(upper float64) error {
	if err := v.valid(); err != nil {
		return err
	}
	if math.IsNaN(upper) {
		return wrap(ErrValueNotNumeric, "upper bound")
	}
	if upper >= v.upper {
		return nil
	}
	if err := v.s.eng.SetUpperBound(v.id, upper); err != nil {
		return err
	}
	v.upper = upper
	return nil
}

// Priority reads the variable's branching priority live from the
// engine.
func (v *Var) Priority() (int, error) {
	if err := v.valid(); err != nil {
		return 0, err
	}
	return v.s.eng.BranchPriority(v.id)
}

// SetPriority changes the variable's branching priority. Unlike bound
// and coefficient edits it applies in any session state.
func (v *Var) SetPriority(priority int) error {
	if err := v.valid(); err != nil {
		return err
	}
	return v.s.eng.SetBranchPriority(v.id, priority)
}
