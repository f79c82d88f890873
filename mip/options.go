package mip

import (
	"errors"

	"github.com/go-opt/milo/engine"
	"github.com/go-opt/milo/engine/relax"
	"github.com/go-opt/milo/logger"
	"github.com/rs/zerolog"
)

// Option configures a session at creation. Later options win.
type Option func(*config) error

type config struct {
	engine engine.Engine
	log    zerolog.Logger
	name   string
}

func newConfig(opts ...Option) (config, error) {
	cfg := config{
		log:  zerolog.Nop(),
		name: "milo",
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	if cfg.engine == nil {
		cfg.engine = relax.New()
	}
	return cfg, nil
}

// WithEngine sets the engine instance the session drives. The session
// takes ownership and releases it at Close.
func WithEngine(e engine.Engine) Option {
	return func(cfg *config) error {
		if e == nil {
			return errors.New("nil engine")
		}
		cfg.engine = e
		return nil
	}
}

// WithSolver selects a registered engine by name. The shipped engines
// register as "relax" (always available) and "scip" (once engine/scip
// is imported).
func WithSolver(name string) Option {
	return func(cfg *config) error {
		e, err := engine.New(name)
		if err != nil {
			return err
		}
		cfg.engine = e
		return nil
	}
}

// Verbose routes engine progress output to the global logger. Sessions
// are quiet by default.
func Verbose() Option {
	return func(cfg *config) error {
		cfg.log = logger.Logger()
		return nil
	}
}

// WithLogger routes engine progress output to l.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *config) error {
		cfg.log = l
		return nil
	}
}

// WithName names the model.
func WithName(name string) Option {
	return func(cfg *config) error {
		cfg.name = name
		return nil
	}
}
