package engine

// Status is the outcome of a solve.
type Status uint8

const (
	// StatusUnknown means no solve has finished since the last
	// transform reset.
	StatusUnknown Status = iota
	// StatusOptimal means the engine proved optimality of the
	// incumbent.
	StatusOptimal
	// StatusInfeasible means the engine proved no feasible assignment
	// exists.
	StatusInfeasible
	// StatusUnbounded means the objective is unbounded in the
	// optimization direction.
	StatusUnbounded
	// StatusInfeasibleOrUnbounded means the engine proved one of the
	// two without separating them.
	StatusInfeasibleOrUnbounded
	// StatusTimeLimit means the time limit stopped the solve.
	StatusTimeLimit
	// StatusGapLimit means the gap limit stopped the solve.
	StatusGapLimit
	// StatusSolutionLimit means the solution count limit stopped the
	// solve.
	StatusSolutionLimit
	// StatusNodeLimit means the engine exhausted the nodes it explores.
	StatusNodeLimit
	// StatusInterrupted means the solve was interrupted from outside.
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusInfeasibleOrUnbounded:
		return "infeasible or unbounded"
	case StatusTimeLimit:
		return "time limit reached"
	case StatusGapLimit:
		return "gap limit reached"
	case StatusSolutionLimit:
		return "solution limit reached"
	case StatusNodeLimit:
		return "node limit reached"
	case StatusInterrupted:
		return "interrupted"
	}
	return "unknown"
}
