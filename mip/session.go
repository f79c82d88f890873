package mip

import (
	"github.com/go-opt/milo/engine"
	"github.com/rs/zerolog"
)

// Session owns a mixed-integer model and the engine that solves it.
//
// A session tracks every variable and constraint declared against it
// and releases them exactly once at Close. The zero value is not
// usable; use New.
type Session struct {
	eng  engine.Engine
	log  zerolog.Logger
	name string

	vars []*Var
	cons []*Cons

	solved bool
	closed bool
}

// New creates a session. Without options it is quiet and drives a
// fresh relax engine.
func New(opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	s := &Session{
		eng:  cfg.engine,
		log:  cfg.log,
		name: cfg.name,
	}
	if err := s.eng.Init(s.log); err != nil {
		return nil, err
	}
	// keyboard interrupts belong to the host process, not the engine
	s.eng.Settings().CatchInterrupts = false
	return s, nil
}

// Name returns the model name.
func (s *Session) Name() string { return s.name }

// Engine exposes the engine the session drives, for engine-specific
// configuration and introspection.
func (s *Session) Engine() engine.Engine { return s.eng }

// Solved reports whether the session holds a finished solve.
func (s *Session) Solved() bool { return s.solved }

// Vars returns the declared variables in declaration order.
func (s *Session) Vars() []*Var {
	return append([]*Var(nil), s.vars...)
}

// Cons returns the declared constraints in declaration order, removed
// ones included.
func (s *Session) Cons() []*Cons {
	return append([]*Cons(nil), s.cons...)
}

// Restart returns the session to the unsolved state, dropping the
// engine's transformed data. It is required before bounds or
// coefficients of a solved session can change; removing a constraint
// restarts implicitly.
func (s *Session) Restart() error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.restart()
}

func (s *Session) restart() error {
	if err := s.eng.FreeTransform(); err != nil {
		return err
	}
	s.solved = false
	return nil
}

// Close releases every variable and constraint exactly once, in
// declaration order, then the engine. Close is idempotent; any further
// use of the session or its handles fails with ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, v := range s.vars {
		if v.released {
			continue
		}
		v.released = true
		keep(s.eng.ReleaseColumn(v.id))
	}
	for _, c := range s.cons {
		if c.released {
			continue
		}
		c.released = true
		keep(s.eng.ReleaseRow(c.id))
	}
	keep(s.eng.Release())
	return firstErr
}
