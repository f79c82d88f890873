package mip

import "github.com/go-opt/milo/engine"

// Solution is an immutable snapshot of a finished solve.
type Solution struct {
	status    engine.Status
	objective float64
	bound     float64
	feasible  bool
	values    map[*Var]float64
}

func (s *Session) snapshot() (*Solution, error) {
	sol := &Solution{
		status:    s.eng.Status(),
		objective: s.eng.ObjectiveValue(),
		bound:     s.eng.BestBound(),
		feasible:  s.eng.HasSolution(),
		values:    make(map[*Var]float64, len(s.vars)),
	}
	if sol.feasible {
		for _, v := range s.vars {
			if v.released {
				continue
			}
			val, err := s.eng.ColumnValue(v.id)
			if err != nil {
				return nil, err
			}
			sol.values[v] = val
		}
	}
	return sol, nil
}

// Status reports the engine's solve status.
func (sol *Solution) Status() engine.Status { return sol.status }

// Objective returns the objective value of the incumbent, offset
// included. Without an incumbent it is the engine's primal bound,
// sense-signed infinite for unbounded problems.
func (sol *Solution) Objective() float64 { return sol.objective }

// Bound returns the proven bound on the optimal objective.
func (sol *Solution) Bound() float64 { return sol.bound }

// Feasible reports whether the solve produced an assignment.
func (sol *Solution) Feasible() bool { return sol.feasible }

// Optimal reports whether the engine proved optimality.
func (sol *Solution) Optimal() bool { return sol.status == engine.StatusOptimal }

// Infeasible reports whether the engine proved infeasibility.
func (sol *Solution) Infeasible() bool { return sol.status == engine.StatusInfeasible }

// Unbounded reports whether the objective is unbounded.
func (sol *Solution) Unbounded() bool { return sol.status == engine.StatusUnbounded }

// InfeasibleOrUnbounded reports whether the engine proved one of the
// two without separating them.
func (sol *Solution) InfeasibleOrUnbounded() bool {
	return sol.status == engine.StatusInfeasibleOrUnbounded
}

// Value returns v's value in the solution, zero when the solve
// produced none.
func (sol *Solution) Value(v *Var) float64 { return sol.values[v] }

// Values returns the assignment for every variable of the session.
func (sol *Solution) Values() map[*Var]float64 {
	out := make(map[*Var]float64, len(sol.values))
	for v, val := range sol.values {
		out[v] = val
	}
	return out
}

// Nonzero returns the assignment restricted to nonzero values.
func (sol *Solution) Nonzero() map[*Var]float64 {
	out := make(map[*Var]float64)
	for v, val := range sol.values {
		if val != 0 {
			out[v] = val
		}
	}
	return out
}
