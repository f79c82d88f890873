package engine

import (
	"github.com/rs/zerolog"
)

// ColumnID identifies a variable inside an engine. IDs are dense
// indices assigned in declaration order.
type ColumnID int

// RowID identifies a constraint inside an engine.
type RowID int

// VarType is the value domain of a column.
type VarType uint8

const (
	Continuous VarType = iota
	Binary
	Integer
	SemiContinuous
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	case SemiContinuous:
		return "semi-continuous"
	}
	return "continuous"
}

// TypeOf maps a numeric type tag to a VarType. Unrecognized tags fall
// back to Continuous; callers that need strictness must check the tag
// themselves.
func TypeOf(tag uint8) VarType {
	if tag > uint8(SemiContinuous) {
		return Continuous
	}
	return VarType(tag)
}

// Integral reports whether the domain restricts values to integers.
func (t VarType) Integral() bool {
	return t == Binary || t == Integer
}

// ObjSense selects the optimization direction. Minimization is +1 and
// maximization is -1, the usual MIP convention.
type ObjSense int8

const (
	Minimize ObjSense = 1
	Maximize ObjSense = -1
)

func (s ObjSense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Stage is an engine's lifecycle position.
type Stage uint8

const (
	StageProblem Stage = iota
	StageTransformed
	StageSolved
)

func (s Stage) String() string {
	switch s {
	case StageProblem:
		return "problem"
	case StageTransformed:
		return "transformed"
	case StageSolved:
		return "solved"
	}
	return "unknown"
}

// Engine is the solving side of a session. Implementations are not safe
// for concurrent use; a session drives its engine from one goroutine.
type Engine interface {
	// Init prepares the engine for a new model. Engine progress output
	// goes to log.
	Init(log zerolog.Logger) error
	// Release frees everything the engine holds. No calls may follow.
	Release() error

	// Infinity returns the engine's infinity sentinel. Bounds at or
	// beyond its magnitude count as unbounded.
	Infinity() float64
	// Settings returns the engine's live settings. Writes through the
	// returned pointer apply to the next Solve.
	Settings() *Settings
	// Stage reports the engine's lifecycle position.
	Stage() Stage

	// AddColumn declares a variable. Requires StageProblem.
	AddColumn(name string, typ VarType, coef, lower, upper float64) (ColumnID, error)
	// ReleaseColumn drops the caller's handle on a column. Valid in any
	// stage; the column's data stays with the engine.
	ReleaseColumn(id ColumnID) error
	// SetObjCoefficient changes a column's objective coefficient.
	// Requires StageProblem.
	SetObjCoefficient(id ColumnID, coef float64) error
	// SetLowerBound changes a column's lower bound. Requires
	// StageProblem.
	SetLowerBound(id ColumnID, lower float64) error
	// SetUpperBound changes a column's upper bound. Requires
	// StageProblem.
	SetUpperBound(id ColumnID, upper float64) error
	// SetBranchPriority changes a column's branching priority. Valid in
	// any stage.
	SetBranchPriority(id ColumnID, priority int) error
	// BranchPriority reads a column's branching priority.
	BranchPriority(id ColumnID) (int, error)

	// AddRow declares the linear range constraint
	// lower <= sum coefs[i]*cols[i] <= upper. Requires StageProblem.
	AddRow(name string, cols []ColumnID, coefs []float64, lower, upper float64) (RowID, error)
	// ReleaseRow drops the caller's handle on a row. Valid in any stage
	// and for deleted rows.
	ReleaseRow(id RowID) error
	// DeleteRow removes a row from the model. Requires StageProblem.
	DeleteRow(id RowID) error

	// SetObjSense sets the optimization direction. Requires
	// StageProblem.
	SetObjSense(sense ObjSense) error
	// SetObjOffset sets the constant added to the objective. Valid in
	// any stage.
	SetObjOffset(offset float64) error

	// Transform moves the engine to StageTransformed.
	Transform() error
	// FreeTransform drops transformed state, candidates and results and
	// returns the engine to StageProblem. A no-op in StageProblem.
	FreeTransform() error

	// NewCandidate opens a primal candidate with every column at zero.
	// Requires StageTransformed. A second call discards the first
	// candidate.
	NewCandidate() error
	// SetCandidateValue assigns a column's value in the open candidate.
	SetCandidateValue(id ColumnID, value float64) error
	// CheckCandidate verifies the open candidate against the original
	// model, integrality included. It reports feasibility and keeps the
	// candidate open.
	CheckCandidate() (bool, error)
	// TryCandidate offers the open candidate to the engine and closes
	// it. Acceptance is the engine's decision; it reports whether the
	// candidate was kept.
	TryCandidate() (bool, error)

	// ResetClock restarts the solving clock. The time limit counts from
	// here.
	ResetClock() error
	// Solve runs the engine until it finishes or hits a limit. Valid in
	// StageProblem or StageTransformed; leaves the engine in
	// StageSolved.
	Solve() error

	// Status reports the outcome of the last Solve.
	Status() Status
	// HasSolution reports whether an incumbent assignment exists.
	HasSolution() bool
	// ObjectiveValue returns the incumbent's objective, offset
	// included. Without an incumbent it is the engine's primal bound:
	// the worst value of the current sense, sense-signed infinite when
	// the problem is unbounded.
	ObjectiveValue() float64
	// BestBound returns the proven bound on the optimal objective,
	// offset included.
	BestBound() float64
	// ColumnValue returns a column's value in the incumbent. Fails with
	// CodeInvalidCall when HasSolution is false.
	ColumnValue(id ColumnID) (float64, error)

	// PluginNames lists the engine's registered plugin names for a
	// category. Order is not significant.
	PluginNames(c Category) []string
}
