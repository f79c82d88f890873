package mip

import (
	"math"
)

// seedPrimal validates a primal assignment, transforms the model and
// offers the assignment to the engine as a candidate. Variables absent
// from the map count as zero.
//
// The candidate is checked against the original problem first.
// Infeasibility does not stop the offer: the engine still sees the
// candidate and decides on its own whether to keep it, and
// ErrInfeasibleSeed is returned afterwards.
func (s *Session) seedPrimal(seed map[*Var]float64) error {
	// validate everything before touching the engine
	for v, val := range seed {
		if v == nil || v.s == nil {
			return ErrInvalidVariable
		}
		if v.s != s {
			return ErrForeignVariable
		}
		if math.IsNaN(val) {
			return wrap(ErrValueNotNumeric, "seed value for %s", v.name)
		}
	}

	if err := s.eng.Transform(); err != nil {
		return err
	}
	if err := s.eng.NewCandidate(); err != nil {
		return err
	}
	for v, val := range seed {
		// zero is the candidate default
		if val == 0 {
			continue
		}
		if err := s.eng.SetCandidateValue(v.id, val); err != nil {
			return err
		}
	}

	feasible, err := s.eng.CheckCandidate()
	if err != nil {
		return err
	}
	if !feasible {
		s.log.Warn().Msg("seed candidate failed the feasibility check")
	}
	if _, err := s.eng.TryCandidate(); err != nil {
		return err
	}
	// whether the engine kept a feasible candidate is its own business;
	// it may discard one whose objective is too poor to use
	if !feasible {
		return ErrInfeasibleSeed
	}
	return nil
}
