// Package enginetest provides a scriptable engine for front-end tests.
//
// The Fake records state-changing calls in order, enforces the engine
// stage machine and plays back configured results. Tests drive it
// through the mip front-end and assert on the recorded trace.
package enginetest

import (
	"github.com/go-opt/milo/engine"
	"github.com/rs/zerolog"
)

// Column is a recorded column declaration.
type Column struct {
	Name         string
	Type         engine.VarType
	Coef         float64
	Lower, Upper float64
	Priority     int
	Released     bool
}

// Row is a recorded row declaration.
type Row struct {
	Name         string
	Cols         []engine.ColumnID
	Coefs        []float64
	Lower, Upper float64
	Deleted      bool
	Released     bool
}

// Fake implements engine.Engine. The zero value is usable; the exported
// fields customize behavior per test.
type Fake struct {
	// Fail makes the named ops fail with the mapped code.
	Fail map[string]engine.Code
	// CandidateInfeasible makes CheckCandidate report false and
	// TryCandidate reject.
	CandidateInfeasible bool
	// SolveStatus is reported after Solve. The zero value means
	// StatusOptimal.
	SolveStatus engine.Status
	// NoSolution suppresses the incumbent even for a feasible status.
	NoSolution bool
	// Objective is returned by ObjectiveValue after a solve, offset
	// added.
	Objective float64
	// Bound is returned by BestBound, offset added.
	Bound float64
	// Values supplies ColumnValue results. Columns absent from the map
	// report zero.
	Values map[engine.ColumnID]float64
	// Plugins supplies PluginNames results.
	Plugins map[engine.Category][]string

	// Ops is the call trace, one op name per state-changing call.
	// Getters are not recorded.
	Ops []string

	Columns []Column
	Rows    []Row

	// Candidate holds the open candidate's assignments.
	Candidate map[engine.ColumnID]float64
	// Checked counts CheckCandidate calls, Tried counts TryCandidate
	// calls, ClockResets counts ResetClock calls, Solves counts Solve
	// calls.
	Checked, Tried, ClockResets, Solves int

	Sense  engine.ObjSense
	Offset float64

	stage    engine.Stage
	status   engine.Status
	settings *engine.Settings
	candOpen bool
	released bool
}

var _ engine.Engine = (*Fake)(nil)

func (f *Fake) record(op string) error {
	if f.released && op != "Release" {
		return engine.Errf(op, engine.CodeInvalidCall, "engine released")
	}
	f.Ops = append(f.Ops, op)
	if code, ok := f.Fail[op]; ok {
		return engine.Errf(op, code, "")
	}
	return nil
}

func (f *Fake) col(op string, id engine.ColumnID) (*Column, error) {
	if id < 0 || int(id) >= len(f.Columns) {
		return nil, engine.Errf(op, engine.CodeInvalidData, "no column %d", id)
	}
	return &f.Columns[id], nil
}

func (f *Fake) row(op string, id engine.RowID) (*Row, error) {
	if id < 0 || int(id) >= len(f.Rows) {
		return nil, engine.Errf(op, engine.CodeInvalidData, "no row %d", id)
	}
	return &f.Rows[id], nil
}

func (f *Fake) Init(log zerolog.Logger) error {
	if err := f.record("Init"); err != nil {
		return err
	}
	f.Settings()
	return nil
}

func (f *Fake) Release() error {
	if err := f.record("Release"); err != nil {
		return err
	}
	f.released = true
	return nil
}

func (f *Fake) Infinity() float64 { return engine.Infinity }

func (f *Fake) Settings() *engine.Settings {
	if f.settings == nil {
		f.settings = engine.NewSettings()
	}
	return f.settings
}

func (f *Fake) Stage() engine.Stage { return f.stage }

func (f *Fake) AddColumn(name string, typ engine.VarType, coef, lower, upper float64) (engine.ColumnID, error) {
	if err := f.record("AddColumn"); err != nil {
		return 0, err
	}
	if f.stage != engine.StageProblem {
		return 0, engine.Errf("AddColumn", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	f.Columns = append(f.Columns, Column{Name: name, Type: typ, Coef: coef, Lower: lower, Upper: upper})
	return engine.ColumnID(len(f.Columns) - 1), nil
}

func (f *Fake) ReleaseColumn(id engine.ColumnID) error {
	if err := f.record("ReleaseColumn"); err != nil {
		return err
	}
	c, err := f.col("ReleaseColumn", id)
	if err != nil {
		return err
	}
	if c.Released {
		return engine.Errf("ReleaseColumn", engine.CodeInvalidCall, "column %d released twice", id)
	}
	c.Released = true
	return nil
}

func (f *Fake) SetObjCoefficient(id engine.ColumnID, coef float64) error {
	if err := f.record("SetObjCoefficient"); err != nil {
		return err
	}
	if f.stage != engine.StageProblem {
		return engine.Errf("SetObjCoefficient", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	c, err := f.col("SetObjCoefficient", id)
	if err != nil {
		return err
	}
	c.Coef = coef
	return nil
}

func (f *Fake) SetLowerBound(id engine.ColumnID, lower float64) error {
	if err := f.record("SetLowerBound"); err != nil {
		return err
	}
	if f.stage != engine.StageProblem {
		return engine.Errf("SetLowerBound", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	c, err := f.col("SetLowerBound", id)
	if err != nil {
		return err
	}
	c.Lower = lower
	return nil
}

func (f *Fake) SetUpperBound(id engine.ColumnID, upper float64) error {
	if err := f.record("SetUpperBound"); err != nil {
		return err
	}
	if f.stage != engine.StageProblem {
		return engine.Errf("SetUpperBound", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	c, err := f.col("SetUpperBound", id)
	if err != nil {
		return err
	}
	c.Upper = upper
	return nil
}

func (f *Fake) SetBranchPriority(id engine.ColumnID, priority int) error {
	if err := f.record("SetBranchPriority"); err != nil {
		return err
	}
	c, err := f.col("SetBranchPriority", id)
	if err != nil {
		return err
	}
	c.Priority = priority
	return nil
}

func (f *Fake) BranchPriority(id engine.ColumnID) (int, error) {
	c, err := f.col("BranchPriority", id)
	if err != nil {
		return 0, err
	}
	return c.Priority, nil
}

func (f *Fake) AddRow(name string, cols []engine.ColumnID, coefs []float64, lower, upper float64) (engine.RowID, error) {
	if err := f.record("AddRow"); err != nil {
		return 0, err
	}
	if f.stage != engine.StageProblem {
		return 0, engine.Errf("AddRow", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	r := Row{
		Name:  name,
		Cols:  append([]engine.ColumnID(nil), cols...),
		Coefs: append([]float64(nil), coefs...),
		Lower: lower,
		Upper: upper,
	}
	f.Rows = append(f.Rows, r)
	return engine.RowID(len(f.Rows) - 1), nil
}

func (f *Fake) ReleaseRow(id engine.RowID) error {
	if err := f.record("ReleaseRow"); err != nil {
		return err
	}
	r, err := f.row("ReleaseRow", id)
	if err != nil {
		return err
	}
	if r.Released {
		return engine.Errf("ReleaseRow", engine.CodeInvalidCall, "row %d released twice", id)
	}
	r.Released = true
	return nil
}

func (f *Fake) DeleteRow(id engine.RowID) error {
	if err := f.record("DeleteRow"); err != nil {
		return err
	}
	if f.stage != engine.StageProblem {
		return engine.Errf("DeleteRow", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	r, err := f.row("DeleteRow", id)
	if err != nil {
		return err
	}
	r.Deleted = true
	return nil
}

func (f *Fake) SetObjSense(sense engine.ObjSense) error {
	if err := f.record("SetObjSense"); err != nil {
		return err
	}
	if f.stage != engine.StageProblem {
		return engine.Errf("SetObjSense", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	f.Sense = sense
	return nil
}

func (f *Fake) SetObjOffset(offset float64) error {
	if err := f.record("SetObjOffset"); err != nil {
		return err
	}
	f.Offset = offset
	return nil
}

func (f *Fake) Transform() error {
	if err := f.record("Transform"); err != nil {
		return err
	}
	switch f.stage {
	case engine.StageProblem:
		f.stage = engine.StageTransformed
	case engine.StageTransformed:
		// already transformed
	default:
		return engine.Errf("Transform", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	return nil
}

func (f *Fake) FreeTransform() error {
	if err := f.record("FreeTransform"); err != nil {
		return err
	}
	f.stage = engine.StageProblem
	f.status = engine.StatusUnknown
	f.candOpen = false
	f.Candidate = nil
	return nil
}

func (f *Fake) NewCandidate() error {
	if err := f.record("NewCandidate"); err != nil {
		return err
	}
	if f.stage != engine.StageTransformed {
		return engine.Errf("NewCandidate", engine.CodeInvalidCall, "stage %s", f.stage)
	}
	f.Candidate = make(map[engine.ColumnID]float64)
	f.candOpen = true
	return nil
}

func (f *Fake) SetCandidateValue(id engine.ColumnID, value float64) error {
	if err := f.record("SetCandidateValue"); err != nil {
		return err
	}
	if !f.candOpen {
		return engine.Errf("SetCandidateValue", engine.CodeInvalidCall, "no open candidate")
	}
	if _, err := f.col("SetCandidateValue", id); err != nil {
		return err
	}
	f.Candidate[id] = value
	return nil
}

func (f *Fake) CheckCandidate() (bool, error) {
	if err := f.record("CheckCandidate"); err != nil {
		return false, err
	}
	if !f.candOpen {
		return false, engine.Errf("CheckCandidate", engine.CodeInvalidCall, "no open candidate")
	}
	f.Checked++
	return !f.CandidateInfeasible, nil
}

func (f *Fake) TryCandidate() (bool, error) {
	if err := f.record("TryCandidate"); err != nil {
		return false, err
	}
	if !f.candOpen {
		return false, engine.Errf("TryCandidate", engine.CodeInvalidCall, "no open candidate")
	}
	f.Tried++
	f.candOpen = false
	return !f.CandidateInfeasible, nil
}

func (f *Fake) ResetClock() error {
	if err := f.record("ResetClock"); err != nil {
		return err
	}
	f.ClockResets++
	return nil
}

func (f *Fake) Solve() error {
	if err := f.record("Solve"); err != nil {
		return err
	}
	f.Solves++
	f.stage = engine.StageSolved
	f.status = f.SolveStatus
	if f.status == engine.StatusUnknown {
		f.status = engine.StatusOptimal
	}
	return nil
}

func (f *Fake) Status() engine.Status { return f.status }

func (f *Fake) HasSolution() bool {
	if f.stage != engine.StageSolved || f.NoSolution {
		return false
	}
	switch f.status {
	case engine.StatusInfeasible, engine.StatusUnbounded,
		engine.StatusInfeasibleOrUnbounded, engine.StatusUnknown:
		return false
	}
	return true
}

func (f *Fake) ObjectiveValue() float64 {
	if f.status == engine.StatusUnbounded || f.status == engine.StatusInfeasibleOrUnbounded {
		return -float64(f.Sense) * engine.Infinity
	}
	return f.Objective + f.Offset
}

func (f *Fake) BestBound() float64 { return f.Bound + f.Offset }

func (f *Fake) ColumnValue(id engine.ColumnID) (float64, error) {
	if !f.HasSolution() {
		return 0, engine.Errf("ColumnValue", engine.CodeInvalidCall, "no solution")
	}
	c, err := f.col("ColumnValue", id)
	if err != nil {
		return 0, err
	}
	if c.Released {
		return 0, engine.Errf("ColumnValue", engine.CodeInvalidData, "column %d released", id)
	}
	return f.Values[id], nil
}

func (f *Fake) PluginNames(c engine.Category) []string {
	return append([]string(nil), f.Plugins[c]...)
}
