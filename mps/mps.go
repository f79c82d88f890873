// Package mps reads and writes linear models in the MPS exchange
// format.
//
// The dialect is free-form MPS: fields are whitespace separated,
// section keywords start in the first column and data lines are
// indented. Supported sections are NAME, OBJSENSE, ROWS, COLUMNS
// (with INTORG/INTEND integrality markers), RHS, RANGES, BOUNDS and
// ENDATA; bound keys are LO, UP, FX, FR, MI, PL, BV and SC.
//
// Integer columns default to the bounds of continuous ones, [0, +inf).
// Semi-continuous columns without an explicit LO line default their
// lower bound to 1, the customary reading of the SC key.
package mps

import (
	"errors"

	"github.com/go-opt/milo/engine"
)

// ErrFormat reports malformed MPS input. Read wraps it with the line
// number and the offending token.
var ErrFormat = errors.New("malformed mps data")

// Model is a linear model as laid out in an MPS file. Bounds at or
// beyond engine.Infinity in magnitude mean unbounded.
type Model struct {
	// Name is the model name from the NAME section.
	Name string
	// Objective is the objective row's name, the first N row. Write
	// defaults it to "obj" when empty.
	Objective string
	// Maximize is set by an OBJSENSE MAX section; MPS minimizes by
	// default. The field is exchange metadata: solve calls pick their
	// own sense.
	Maximize bool
	// ObjOffset is the objective constant, carried as the negated RHS
	// entry of the objective row.
	ObjOffset float64

	Columns []Column
	Rows    []Row
}

// Column is a model variable with its objective coefficient.
type Column struct {
	Name         string
	Type         engine.VarType
	Coef         float64
	Lower, Upper float64
}

// Row is the range constraint
//
//	Lower <= sum Coefs[k] * x[Cols[k]] <= Upper
//
// over column indexes into Model.Columns. N rows other than the
// objective read as rows free on both sides.
type Row struct {
	Name         string
	Cols         []int
	Coefs        []float64
	Lower, Upper float64
}
