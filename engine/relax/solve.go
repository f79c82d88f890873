package relax

import (
	"math"

	"github.com/go-opt/milo/engine"
)

// Solve runs the root node: presolve, the LP relaxation, then the
// rounding heuristic. It transforms the model first when needed.
func (e *Engine) Solve() error {
	if err := e.guard("Solve"); err != nil {
		return err
	}
	switch e.stage {
	case engine.StageProblem:
		e.stage = engine.StageTransformed
	case engine.StageTransformed:
	default:
		return invalidCall("Solve", e.stage)
	}
	if err := e.solveRoot(); err != nil {
		return err
	}
	e.stage = engine.StageSolved
	return nil
}

func (e *Engine) solveRoot() error {
	liveRows := 0
	for i := range e.rows {
		if !e.rows[i].deleted {
			liveRows++
		}
	}
	e.log.Debug().
		Int("cols", len(e.cols)).
		Int("rows", liveRows).
		Stringer("sense", e.sense).
		Msg("solving root relaxation")

	// seeds count toward the solution limit before the search starts
	if e.solutionLimitReached() {
		e.finish(engine.StatusSolutionLimit, 0)
		return nil
	}

	w := newWork(e)
	if e.cfg.presolveRounds > 0 {
		if w.presolve(e.cfg.presolveRounds) == psInfeasible {
			e.finish(engine.StatusInfeasible, w.removed())
			return nil
		}
	}
	if e.overTime() {
		e.finish(engine.StatusTimeLimit, w.removed())
		return nil
	}

	c, lo, up, rows, liveIdx := w.compact()
	lpObj, redX, out, err := solveGeneral(c, lo, up, rows, e.settings.FeasTol)
	if err != nil {
		return err
	}
	switch out {
	case lpInfeasible:
		e.finish(engine.StatusInfeasible, w.removed())
		return nil
	case lpUnbounded:
		// an unbounded relaxation proves nothing about the integral
		// model beyond "infeasible or unbounded"
		if e.hasNonConvex() {
			e.finish(engine.StatusInfeasibleOrUnbounded, w.removed())
		} else {
			e.finish(engine.StatusUnbounded, w.removed())
		}
		return nil
	}

	e.bound = float64(e.sense) * (lpObj + w.objConst)
	e.hasBound = true

	full := make([]float64, len(e.cols))
	for k, j := range liveIdx {
		full[j] = redX[k]
	}
	w.postsolve(full)

	if e.checkPoint(full, e.settings.FeasTol) {
		e.store(full)
	} else if e.cfg.rounding {
		if rounded, ok := e.roundToFeasible(full, e.settings.FeasTol); ok {
			e.store(rounded)
		}
	}

	e.finish(e.rootStatus(), w.removed())
	return nil
}

// hasNonConvex reports whether any column has a non-continuous domain.
func (e *Engine) hasNonConvex() bool {
	for j := range e.cols {
		if e.cols[j].typ != engine.Continuous {
			return true
		}
	}
	return false
}

// proven reports whether the incumbent meets the dual bound within
// tolerance.
func (e *Engine) proven(tol float64) bool {
	if !e.hasIncumbent || !e.hasBound {
		return false
	}
	diff := math.Abs(e.incumbentObj - e.bound)
	scale := math.Max(1, math.Abs(e.bound))
	return diff <= tol*scale
}

// gap is the relative primal-dual gap, |primal-dual|/min(|primal|,|dual|),
// or Infinity when it is undefined.
func (e *Engine) gap() float64 {
	if !e.hasIncumbent || !e.hasBound {
		return engine.Infinity
	}
	if e.incumbentObj == e.bound {
		return 0
	}
	den := math.Min(math.Abs(e.incumbentObj), math.Abs(e.bound))
	if den == 0 {
		return engine.Infinity
	}
	return math.Abs(e.incumbentObj-e.bound) / den
}

// rootStatus picks the final status once the root node is exhausted.
func (e *Engine) rootStatus() engine.Status {
	if e.overTime() {
		return engine.StatusTimeLimit
	}
	if e.proven(e.settings.FeasTol) {
		return engine.StatusOptimal
	}
	if e.hasIncumbent {
		if e.hasBound && e.settings.AbsGap > 0 &&
			math.Abs(e.incumbentObj-e.bound) <= e.settings.AbsGap {
			return engine.StatusGapLimit
		}
		if e.settings.Gap > 0 && e.gap() <= e.settings.Gap {
			return engine.StatusGapLimit
		}
		if e.solutionLimitReached() {
			return engine.StatusSolutionLimit
		}
	}
	return engine.StatusNodeLimit
}

func (e *Engine) finish(st engine.Status, removed int) {
	e.status = st
	ev := e.log.Info().
		Float64("time", e.elapsed()).
		Int("presolved", removed)
	if e.hasIncumbent {
		ev = ev.Float64("primal", e.incumbentObj+e.offset)
	}
	if e.hasBound {
		ev = ev.Float64("dual", e.bound+e.offset)
	}
	if g := e.gap(); g < engine.Infinity {
		ev = ev.Float64("gap", g)
	}
	ev.Stringer("status", st).Msg("root solve finished")
}
