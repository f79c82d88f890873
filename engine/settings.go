package engine

// Infinity is the conventional infinity sentinel. Bounds and limits at
// or beyond its magnitude count as unbounded. Engines report their own
// sentinel through Engine.Infinity; every shipped engine uses this one.
const Infinity = 1e20

// Limit defaults. "No limit" is the infinity sentinel for continuous
// limits and -1 for counters.
const (
	DefaultTimeLimit     = Infinity
	DefaultGap           = 0.0
	DefaultAbsGap        = 0.0
	DefaultSolutionLimit = -1
	DefaultFeasTol       = 1e-6
)

// Settings are an engine's live limits. A session writes them directly
// before each solve; the engine reads them during Solve.
type Settings struct {
	// Time caps solving wall-clock seconds, counted from the last
	// ResetClock.
	Time float64
	// Gap stops the solve once the relative gap between incumbent and
	// bound reaches it. Zero demands a proven optimum.
	Gap float64
	// AbsGap is the absolute counterpart of Gap.
	AbsGap float64
	// Solutions caps the number of improving solutions found. Negative
	// means uncapped.
	Solutions int
	// FeasTol is the feasibility tolerance for candidate checks and
	// integrality.
	FeasTol float64
	// CatchInterrupts lets the engine install its own interrupt handler
	// during Solve. Sessions switch it off so the host process keeps
	// signal ownership.
	CatchInterrupts bool
}

// NewSettings returns settings at their defaults.
func NewSettings() *Settings {
	return &Settings{
		Time:            DefaultTimeLimit,
		Gap:             DefaultGap,
		AbsGap:          DefaultAbsGap,
		Solutions:       DefaultSolutionLimit,
		FeasTol:         DefaultFeasTol,
		CatchInterrupts: true,
	}
}
