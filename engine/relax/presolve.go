package relax

import (
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/go-opt/milo/engine"
)

// work is the mutable reduced model a solve operates on. Objective
// coefficients live in minimization space: a maximization negates them
// on the way in and negates the bound back on the way out.
type work struct {
	c      []float64
	lo, up []float64
	typ    []engine.VarType

	rows []wrow
	rlo  []float64
	rup  []float64

	deadCol *bitset.BitSet
	deadRow *bitset.BitSet

	journal  []postOp
	objConst float64
	tol      float64
}

type wrow struct {
	cols  []int
	coefs []float64
}

type postKind uint8

const (
	postFixed postKind = iota
	postFreeSingleton
)

// postOp records an eliminated column for value reconstruction. Ops
// replay in reverse journal order, so an op may reference columns that
// were eliminated after it.
type postOp struct {
	kind postKind
	col  int
	val  float64

	// postFreeSingleton: x[col] moves coef*x[col] + terms into [rlo, rup]
	coef  float64
	rlo   float64
	rup   float64
	cols  []int
	coefs []float64
}

type psResult uint8

const (
	psOK psResult = iota
	psInfeasible
)

func newWork(e *Engine) *work {
	n := len(e.cols)
	w := &work{
		c:       make([]float64, n),
		lo:      make([]float64, n),
		up:      make([]float64, n),
		typ:     make([]engine.VarType, n),
		deadCol: bitset.New(uint(n)),
		tol:     e.settings.FeasTol,
	}
	sense := float64(e.sense)
	for j := range e.cols {
		w.c[j] = sense * e.cols[j].coef
		w.lo[j] = e.cols[j].lower
		w.up[j] = e.cols[j].upper
		w.typ[j] = e.cols[j].typ
		if w.typ[j] == engine.SemiContinuous {
			// relax the semi-continuous domain to its convex hull
			if w.lo[j] > 0 {
				w.lo[j] = 0
			}
			if w.up[j] < 0 {
				w.up[j] = 0
			}
		}
	}
	for i := range e.rows {
		if e.rows[i].deleted {
			continue
		}
		r := wrow{
			cols:  make([]int, len(e.rows[i].cols)),
			coefs: append([]float64(nil), e.rows[i].coefs...),
		}
		for k, id := range e.rows[i].cols {
			r.cols[k] = int(id)
		}
		w.rows = append(w.rows, r)
		w.rlo = append(w.rlo, e.rows[i].lower)
		w.rup = append(w.rup, e.rows[i].upper)
	}
	w.deadRow = bitset.New(uint(len(w.rows)))
	return w
}

// liveTerms calls fn for each term of row i whose column is alive and
// whose coefficient is nonzero.
func (w *work) liveTerms(i int, fn func(j int, a float64)) {
	r := &w.rows[i]
	for k, j := range r.cols {
		if w.deadCol.Test(uint(j)) {
			continue
		}
		if a := r.coefs[k]; a != 0 {
			fn(j, a)
		}
	}
}

// presolve runs the reduction passes until a fixed point or the round
// limit, reporting infeasibility detected along the way.
func (w *work) presolve(maxRounds int) psResult {
	passes := []func(*bool) psResult{
		w.passNonbinding,
		w.passEmptyRows,
		w.passRowSingletons,
		w.passFixedVars,
		w.passFreeSingletons,
	}
	for round := 0; round < maxRounds; round++ {
		changed := false
		for _, pass := range passes {
			if pass(&changed) == psInfeasible {
				return psInfeasible
			}
		}
		if !changed {
			return psOK
		}
	}
	return psOK
}

// removed reports how many columns and rows presolve eliminated.
func (w *work) removed() int {
	return int(w.deadCol.Count() + w.deadRow.Count())
}

// fix eliminates column j at value v, folding its contribution into
// the row ranges and the objective constant.
func (w *work) fix(j int, v float64) psResult {
	if v < w.lo[j]-w.tol || v > w.up[j]+w.tol {
		return psInfeasible
	}
	w.deadCol.Set(uint(j))
	w.objConst += w.c[j] * v
	w.journal = append(w.journal, postOp{kind: postFixed, col: j, val: v})
	if v == 0 {
		return psOK
	}
	inf := engine.Infinity
	for i := range w.rows {
		if w.deadRow.Test(uint(i)) {
			continue
		}
		r := &w.rows[i]
		for k, cj := range r.cols {
			if cj != j || r.coefs[k] == 0 {
				continue
			}
			a := r.coefs[k]
			if w.rlo[i] > -inf {
				w.rlo[i] -= a * v
			}
			if w.rup[i] < inf {
				w.rup[i] -= a * v
			}
		}
	}
	return psOK
}

// activityBounds computes the row's minimum and maximum activity from
// the live column bounds, saturating at the infinity sentinel.
func (w *work) activityBounds(i int) (minAct, maxAct float64) {
	w.liveTerms(i, func(j int, a float64) {
		if a > 0 {
			minAct = addScaled(minAct, a, w.lo[j])
			maxAct = addScaled(maxAct, a, w.up[j])
		} else {
			minAct = addScaled(minAct, a, w.up[j])
			maxAct = addScaled(maxAct, a, w.lo[j])
		}
	})
	return minAct, maxAct
}

// addScaled accumulates acc + a*b treating ±Infinity as absorbing.
func addScaled(acc, a, b float64) float64 {
	inf := engine.Infinity
	if acc <= -inf || acc >= inf {
		return acc
	}
	if b <= -inf {
		if a > 0 {
			return -inf
		}
		return inf
	}
	if b >= inf {
		if a > 0 {
			return inf
		}
		return -inf
	}
	return acc + a*b
}

// divBound divides a range endpoint by a nonzero coefficient, keeping
// the infinity sentinel exact.
func divBound(b, a float64) float64 {
	inf := engine.Infinity
	if b <= -inf {
		if a > 0 {
			return -inf
		}
		return inf
	}
	if b >= inf {
		if a > 0 {
			return inf
		}
		return -inf
	}
	return b / a
}

// roundBounds snaps an integral column's bounds inward.
func (w *work) roundBounds(j int) {
	inf := engine.Infinity
	if w.lo[j] > -inf {
		w.lo[j] = math.Ceil(w.lo[j] - w.tol)
	}
	if w.up[j] < inf {
		w.up[j] = math.Floor(w.up[j] + w.tol)
	}
}

// passNonbinding drops rows whose activity bounds already imply the
// row's range, and detects rows no bound assignment can satisfy.
func (w *work) passNonbinding(changed *bool) psResult {
	inf := engine.Infinity
	for i := range w.rows {
		if w.deadRow.Test(uint(i)) {
			continue
		}
		minAct, maxAct := w.activityBounds(i)
		if minAct > w.rup[i]+w.tol || maxAct < w.rlo[i]-w.tol {
			return psInfeasible
		}
		lowFree := w.rlo[i] <= -inf || minAct >= w.rlo[i]-w.tol
		upFree := w.rup[i] >= inf || maxAct <= w.rup[i]+w.tol
		if lowFree && upFree {
			w.deadRow.Set(uint(i))
			*changed = true
		}
	}
	return psOK
}

// passEmptyRows drops rows with no live terms once a zero activity is
// known to be admissible.
func (w *work) passEmptyRows(changed *bool) psResult {
	for i := range w.rows {
		if w.deadRow.Test(uint(i)) {
			continue
		}
		live := 0
		w.liveTerms(i, func(int, float64) { live++ })
		if live > 0 {
			continue
		}
		if w.rlo[i] > w.tol || w.rup[i] < -w.tol {
			return psInfeasible
		}
		w.deadRow.Set(uint(i))
		*changed = true
	}
	return psOK
}

// passRowSingletons turns single-column rows into column bounds.
func (w *work) passRowSingletons(changed *bool) psResult {
	for i := range w.rows {
		if w.deadRow.Test(uint(i)) {
			continue
		}
		live, col := 0, -1
		coef := 0.0
		w.liveTerms(i, func(j int, a float64) {
			live++
			col, coef = j, a
		})
		if live != 1 {
			continue
		}
		var newLo, newUp float64
		if coef > 0 {
			newLo = divBound(w.rlo[i], coef)
			newUp = divBound(w.rup[i], coef)
		} else {
			newLo = divBound(w.rup[i], coef)
			newUp = divBound(w.rlo[i], coef)
		}
		if newLo > w.lo[col] {
			w.lo[col] = newLo
		}
		if newUp < w.up[col] {
			w.up[col] = newUp
		}
		if w.typ[col].Integral() {
			w.roundBounds(col)
		}
		if w.lo[col] > w.up[col]+w.tol {
			return psInfeasible
		}
		w.deadRow.Set(uint(i))
		*changed = true
	}
	return psOK
}

// passFixedVars eliminates columns whose bounds meet.
func (w *work) passFixedVars(changed *bool) psResult {
	inf := engine.Infinity
	for j := range w.c {
		if w.deadCol.Test(uint(j)) {
			continue
		}
		if w.lo[j] <= -inf || w.up[j] >= inf {
			continue
		}
		if w.up[j]-w.lo[j] > w.tol {
			continue
		}
		v := (w.lo[j] + w.up[j]) / 2
		if w.typ[j].Integral() {
			v = math.Round(v)
		}
		if w.fix(j, v) == psInfeasible {
			return psInfeasible
		}
		*changed = true
	}
	return psOK
}

// passFreeSingletons substitutes free continuous columns that appear
// in exactly one row. A zero-cost column absorbs any row; a costly one
// needs an equality row, and the substitution shifts its cost onto the
// row's other columns. Occurrence counts go stale after one
// substitution, so the pass performs at most one per call and lets the
// next round continue.
func (w *work) passFreeSingletons(changed *bool) psResult {
	inf := engine.Infinity
	count := make([]int, len(w.c))
	where := make([]int, len(w.c))
	for i := range w.rows {
		if w.deadRow.Test(uint(i)) {
			continue
		}
		w.liveTerms(i, func(j int, _ float64) {
			count[j]++
			where[j] = i
		})
	}
	for j := range w.c {
		if w.deadCol.Test(uint(j)) || w.typ[j] != engine.Continuous {
			continue
		}
		if w.lo[j] > -inf || w.up[j] < inf {
			continue
		}
		if count[j] != 1 {
			continue
		}
		i := where[j]
		var coef float64
		var restCols []int
		var restCoefs []float64
		w.liveTerms(i, func(jj int, a float64) {
			if jj == j {
				coef = a
				return
			}
			restCols = append(restCols, jj)
			restCoefs = append(restCoefs, a)
		})
		if math.Abs(coef) <= w.tol {
			continue
		}
		isEq := w.rlo[i] > -inf && w.rup[i] < inf && w.rup[i]-w.rlo[i] <= w.tol
		if w.c[j] != 0 && !isEq {
			continue
		}
		if w.c[j] != 0 {
			// substitute x[j] = (b - rest)/coef into the objective
			b := (w.rlo[i] + w.rup[i]) / 2
			w.objConst += w.c[j] * b / coef
			for k, jj := range restCols {
				w.c[jj] -= w.c[j] * restCoefs[k] / coef
			}
		}
		w.journal = append(w.journal, postOp{
			kind:  postFreeSingleton,
			col:   j,
			coef:  coef,
			rlo:   w.rlo[i],
			rup:   w.rup[i],
			cols:  restCols,
			coefs: restCoefs,
		})
		w.deadCol.Set(uint(j))
		w.deadRow.Set(uint(i))
		*changed = true
		return psOK
	}
	return psOK
}

// compact extracts the live reduced model with dense column indices.
// liveIdx maps reduced back to original column positions.
func (w *work) compact() (c, lo, up []float64, rows []lpRow, liveIdx []int) {
	colOf := make([]int, len(w.c))
	for j := range w.c {
		colOf[j] = -1
		if w.deadCol.Test(uint(j)) {
			continue
		}
		colOf[j] = len(liveIdx)
		liveIdx = append(liveIdx, j)
		c = append(c, w.c[j])
		lo = append(lo, w.lo[j])
		up = append(up, w.up[j])
	}
	for i := range w.rows {
		if w.deadRow.Test(uint(i)) {
			continue
		}
		r := lpRow{lo: w.rlo[i], up: w.rup[i]}
		w.liveTerms(i, func(j int, a float64) {
			r.cols = append(r.cols, colOf[j])
			r.coefs = append(r.coefs, a)
		})
		rows = append(rows, r)
	}
	return c, lo, up, rows, liveIdx
}

// postsolve fills the eliminated entries of a full-length point by
// replaying the journal in reverse.
func (w *work) postsolve(x []float64) {
	inf := engine.Infinity
	for k := len(w.journal) - 1; k >= 0; k-- {
		op := &w.journal[k]
		switch op.kind {
		case postFixed:
			x[op.col] = op.val
		case postFreeSingleton:
			rest := 0.0
			for t, jj := range op.cols {
				rest += op.coefs[t] * x[jj]
			}
			target := rest
			if op.rlo > -inf && target < op.rlo {
				target = op.rlo
			}
			if op.rup < inf && target > op.rup {
				target = op.rup
			}
			x[op.col] = (target - rest) / op.coef
		}
	}
}
