package relax

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/go-opt/milo/engine"
)

// lpRow is a range constraint lo <= coefs·x <= up handed to the LP
// core. Term columns are dense reduced indices.
type lpRow struct {
	cols   []int
	coefs  []float64
	lo, up float64
}

type lpOutcome uint8

const (
	lpOptimal lpOutcome = iota
	lpInfeasible
	lpUnbounded
)

// solveGeneral minimizes c·x subject to column bounds and range rows.
// Columns no row touches are optimized by bound inspection; the rest
// go through gonum's simplex after conversion to standard form:
// columns shifted to a finite bound or split in two, slack columns
// turning ranges into equalities.
func solveGeneral(c, lo, up []float64, rows []lpRow, tol float64) (float64, []float64, lpOutcome, error) {
	inf := engine.Infinity
	n := len(c)
	x := make([]float64, n)

	touched := make([]bool, n)
	var matRows []lpRow
	for _, r := range rows {
		if len(r.cols) == 0 {
			if r.lo > tol || r.up < -tol {
				return 0, nil, lpInfeasible, nil
			}
			continue
		}
		for _, j := range r.cols {
			touched[j] = true
		}
		matRows = append(matRows, r)
	}

	var obj float64
	if len(matRows) > 0 {
		lpObj, err := solveRows(c, lo, up, matRows, touched, tol, x)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return 0, nil, lpInfeasible, nil
		case errors.Is(err, lp.ErrUnbounded):
			return 0, nil, lpUnbounded, nil
		case err != nil:
			return 0, nil, lpOptimal, engine.Errf("solve", engine.CodeLPError, "simplex failed: %v", err)
		}
		obj = lpObj
	}

	for j := 0; j < n; j++ {
		if touched[j] {
			continue
		}
		switch {
		case c[j] > 0:
			if lo[j] <= -inf {
				return 0, nil, lpUnbounded, nil
			}
			x[j] = lo[j]
		case c[j] < 0:
			if up[j] >= inf {
				return 0, nil, lpUnbounded, nil
			}
			x[j] = up[j]
		default:
			x[j] = insideBounds(lo[j], up[j])
		}
		obj += c[j] * x[j]
	}
	return obj, x, lpOptimal, nil
}

// insideBounds picks a point of [lo, up], preferring zero.
func insideBounds(lo, up float64) float64 {
	switch {
	case lo <= 0 && up >= 0:
		return 0
	case lo > 0:
		return lo
	default:
		return up
	}
}

// colPlan maps an original column onto the standard-form layout:
// x = base + std[plus] - std[minus], with -1 for an absent part.
type colPlan struct {
	plus, minus int
	base        float64
}

// solveRows runs the simplex over the rows and the columns they touch,
// writing the optimum into x and returning its objective value.
func solveRows(c, lo, up []float64, matRows []lpRow, touched []bool, tol float64, x []float64) (float64, error) {
	inf := engine.Infinity

	var cs []float64
	alloc := func(cost float64) int {
		cs = append(cs, cost)
		return len(cs) - 1
	}

	plans := make([]colPlan, len(c))
	var constStd float64
	for j := range c {
		if !touched[j] {
			continue
		}
		switch {
		case lo[j] <= -inf && up[j] >= inf:
			plans[j] = colPlan{plus: alloc(c[j]), minus: alloc(-c[j])}
		case lo[j] > -inf:
			plans[j] = colPlan{plus: alloc(c[j]), minus: -1, base: lo[j]}
		default:
			plans[j] = colPlan{plus: -1, minus: alloc(-c[j]), base: up[j]}
		}
		constStd += c[j] * plans[j].base
	}

	type entry struct {
		row, col int
		v        float64
	}
	var entries []entry
	var b []float64
	addRow := func(rhs float64) int {
		b = append(b, rhs)
		return len(b) - 1
	}

	for _, r := range matRows {
		var shift float64
		for k, j := range r.cols {
			shift += r.coefs[k] * plans[j].base
		}
		rl, ru := r.lo, r.up
		if rl > -inf {
			rl -= shift
		}
		if ru < inf {
			ru -= shift
		}

		var row int
		switch {
		case rl > -inf && ru < inf && ru-rl <= tol:
			row = addRow((rl + ru) / 2)
		case ru < inf:
			row = addRow(ru)
			s := alloc(0)
			entries = append(entries, entry{row, s, 1})
			if rl > -inf {
				// bounded slack keeps the activity above rl
				length := ru - rl
				if length < 0 {
					length = 0
				}
				capRow := addRow(length)
				entries = append(entries, entry{capRow, s, 1})
				entries = append(entries, entry{capRow, alloc(0), 1})
			}
		default: // rl only
			row = addRow(rl)
			entries = append(entries, entry{row, alloc(0), -1})
		}
		for k, j := range r.cols {
			a := r.coefs[k]
			if p := plans[j].plus; p >= 0 {
				entries = append(entries, entry{row, p, a})
			}
			if m := plans[j].minus; m >= 0 {
				entries = append(entries, entry{row, m, -a})
			}
		}
	}

	// doubly bounded columns need their width as an explicit row
	for j := range c {
		if !touched[j] || lo[j] <= -inf || up[j] >= inf {
			continue
		}
		length := up[j] - lo[j]
		if length < 0 {
			length = 0
		}
		row := addRow(length)
		entries = append(entries, entry{row, plans[j].plus, 1})
		entries = append(entries, entry{row, alloc(0), 1})
	}

	a := mat.NewDense(len(b), len(cs), nil)
	for _, e := range entries {
		a.Set(e.row, e.col, a.At(e.row, e.col)+e.v)
	}

	optF, optX, err := lp.Simplex(cs, a, b, 0, nil)
	if err != nil {
		return 0, err
	}

	for j := range c {
		if !touched[j] {
			continue
		}
		v := plans[j].base
		if p := plans[j].plus; p >= 0 {
			v += optX[p]
		}
		if m := plans[j].minus; m >= 0 {
			v -= optX[m]
		}
		x[j] = v
	}
	return optF + constStd, nil
}
