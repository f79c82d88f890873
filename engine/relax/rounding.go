package relax

import (
	"math"

	"github.com/go-opt/milo/engine"
)

// checkPoint verifies x against the original model: column bounds,
// integrality, semi-continuity and every live row, all within tol.
func (e *Engine) checkPoint(x []float64, tol float64) bool {
	inf := engine.Infinity
	for j := range e.cols {
		c := &e.cols[j]
		v := x[j]
		if c.typ == engine.SemiContinuous && math.Abs(v) <= tol {
			continue
		}
		if c.lower > -inf && v < c.lower-tol {
			return false
		}
		if c.upper < inf && v > c.upper+tol {
			return false
		}
		if c.typ.Integral() && math.Abs(v-math.Round(v)) > tol {
			return false
		}
	}
	for i := range e.rows {
		r := &e.rows[i]
		if r.deleted {
			continue
		}
		var act float64
		for k, id := range r.cols {
			act += r.coefs[k] * x[id]
		}
		if r.lower > -inf && act < r.lower-tol {
			return false
		}
		if r.upper < inf && act > r.upper+tol {
			return false
		}
	}
	return true
}

// roundToFeasible rounds the integral and semi-continuous entries of a
// relaxation point and reports whether the result satisfies the model.
func (e *Engine) roundToFeasible(x []float64, tol float64) ([]float64, bool) {
	inf := engine.Infinity
	r := append([]float64(nil), x...)
	for j := range e.cols {
		c := &e.cols[j]
		switch {
		case c.typ.Integral():
			v := math.Round(r[j])
			if c.lower > -inf {
				if lo := math.Ceil(c.lower - tol); v < lo {
					v = lo
				}
			}
			if c.upper < inf {
				if hi := math.Floor(c.upper + tol); v > hi {
					v = hi
				}
			}
			r[j] = v
		case c.typ == engine.SemiContinuous:
			if math.Abs(r[j]) <= tol {
				r[j] = 0
			} else if c.lower > tol && r[j] > 0 && r[j] < c.lower {
				// below the live part of the domain: snap to the
				// closer of zero and the lower bound
				if r[j] < c.lower/2 {
					r[j] = 0
				} else {
					r[j] = c.lower
				}
			}
		}
	}
	return r, e.checkPoint(r, tol)
}
