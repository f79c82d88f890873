package mip

import (
	"math"

	"github.com/go-opt/milo/engine"
)

// SolveOption configures a single Maximize or Minimize call.
type SolveOption func(*solveConfig) error

type solveConfig struct {
	seed   map[*Var]float64
	time   float64
	gap    float64
	absgap float64
	nsol   int
	offset float64
}

func newSolveConfig(opts ...SolveOption) (solveConfig, error) {
	cfg := solveConfig{
		time:   engine.DefaultTimeLimit,
		gap:    engine.DefaultGap,
		absgap: engine.DefaultAbsGap,
		nsol:   engine.DefaultSolutionLimit,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return solveConfig{}, err
		}
	}
	return cfg, nil
}

// WithSeed feeds a known primal assignment to the solve. Variables
// absent from the map count as zero. An infeasible seed aborts the
// solve with ErrInfeasibleSeed after the engine has seen it.
func WithSeed(seed map[*Var]float64) SolveOption {
	return func(cfg *solveConfig) error {
		cfg.seed = seed
		return nil
	}
}

// WithTime caps solving wall-clock time in seconds.
func WithTime(seconds float64) SolveOption {
	return func(cfg *solveConfig) error {
		if math.IsNaN(seconds) || seconds < 0 {
			return wrap(ErrValueNotNumeric, "time limit")
		}
		cfg.time = seconds
		return nil
	}
}

// WithGap stops the solve once the relative gap between incumbent and
// bound reaches it.
func WithGap(gap float64) SolveOption {
	return func(cfg *solveConfig) error {
		if math.IsNaN(gap) || gap < 0 {
			return wrap(ErrValueNotNumeric, "gap limit")
		}
		cfg.gap = gap
		return nil
	}
}

// WithAbsGap is the absolute counterpart of WithGap.
func WithAbsGap(gap float64) SolveOption {
	return func(cfg *solveConfig) error {
		if math.IsNaN(gap) || gap < 0 {
			return wrap(ErrValueNotNumeric, "absolute gap limit")
		}
		cfg.absgap = gap
		return nil
	}
}

// WithSolutions caps the number of improving solutions the engine
// finds. Negative means uncapped.
func WithSolutions(n int) SolveOption {
	return func(cfg *solveConfig) error {
		cfg.nsol = n
		return nil
	}
}

// WithOffset adds a constant to the objective.
func WithOffset(offset float64) SolveOption {
	return func(cfg *solveConfig) error {
		if math.IsNaN(offset) {
			return wrap(ErrValueNotNumeric, "objective offset")
		}
		cfg.offset = offset
		return nil
	}
}

// Maximize solves for the largest objective value.
func (s *Session) Maximize(opts ...SolveOption) (*Solution, error) {
	return s.optimize(engine.Maximize, opts...)
}

// Minimize solves for the smallest objective value.
func (s *Session) Minimize(opts ...SolveOption) (*Solution, error) {
	return s.optimize(engine.Minimize, opts...)
}

func (s *Session) optimize(sense engine.ObjSense, opts ...SolveOption) (*Solution, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	cfg, err := newSolveConfig(opts...)
	if err != nil {
		return nil, err
	}

	// a finished solve restarts implicitly; an aborted seeded solve
	// leaves the engine transformed and the sense change below fails
	if s.solved {
		if err := s.restart(); err != nil {
			return nil, err
		}
	}
	if err := s.eng.SetObjSense(sense); err != nil {
		return nil, err
	}
	if len(cfg.seed) > 0 {
		if err := s.seedPrimal(cfg.seed); err != nil {
			return nil, err
		}
	}

	if err := s.eng.ResetClock(); err != nil {
		return nil, err
	}
	st := s.eng.Settings()
	st.Time = cfg.time
	st.Gap = cfg.gap
	st.AbsGap = cfg.absgap
	st.Solutions = cfg.nsol
	if err := s.eng.SetObjOffset(cfg.offset); err != nil {
		return nil, err
	}

	if err := s.eng.Solve(); err != nil {
		return nil, err
	}
	s.solved = true
	return s.snapshot()
}
