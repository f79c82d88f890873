// Package scip implements an engine backed by a SCIP executable.
//
// The engine keeps the model in memory and shells out once per Solve:
// it writes the model as MPS to a temporary directory, drives the
// binary in batch mode with a command script (limits, tolerances, an
// optional start solution, optimize, write solution) and parses the
// solution file and the solver log back into engine results. Branching
// priorities are bookkeeping only; the batch protocol has no channel
// for them. PluginNames queries the binary's display menus once per
// category and caches the answer.
package scip

import (
	"math"
	"os/exec"

	"github.com/go-opt/milo/engine"
	"github.com/rs/zerolog"
)

func init() {
	engine.Register("scip", func() engine.Engine { return New() })
}

// Option configures an engine at construction.
type Option func(*config)

type config struct {
	path      string
	keepFiles bool
}

// WithPath sets the SCIP executable. The default searches PATH for
// "scip".
func WithPath(path string) Option {
	return func(cfg *config) {
		cfg.path = path
	}
}

// WithKeepFiles keeps each solve's working directory instead of
// removing it. The directory is logged at debug level.
func WithKeepFiles() Option {
	return func(cfg *config) {
		cfg.keepFiles = true
	}
}

type column struct {
	name         string
	typ          engine.VarType
	coef         float64
	lower, upper float64
	priority     int
	released     bool
}

type row struct {
	name         string
	cols         []engine.ColumnID
	coefs        []float64
	lower, upper float64
	deleted      bool
	released     bool
}

// Engine drives a SCIP binary. Use New; the zero value is not usable.
type Engine struct {
	cfg      config
	log      zerolog.Logger
	settings *engine.Settings
	path     string // resolved at Init

	cols []column
	rows []row

	sense  engine.ObjSense
	offset float64

	stage engine.Stage

	cand     []float64
	candOpen bool

	// accepted candidate, seeded into the next run
	start    []float64
	hasStart bool

	status    engine.Status
	hasSol    bool
	objective float64   // offset included, as reported by the binary
	values    []float64 // incumbent by column, zero-filled
	bound     float64   // offset included
	hasBound  bool

	plugins map[engine.Category][]string

	released bool
}

var _ engine.Engine = (*Engine)(nil)

// New builds an engine. The binary is looked up at Init.
func New(opts ...Option) *Engine {
	cfg := config{path: "scip"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		cfg:      cfg,
		log:      zerolog.Nop(),
		sense:    engine.Minimize,
		settings: engine.NewSettings(),
		plugins:  make(map[engine.Category][]string),
	}
}

func invalidCall(op string, st engine.Stage) *engine.Error {
	return engine.Errf(op, engine.CodeInvalidCall, "stage %s", st)
}

func (e *Engine) guard(op string) error {
	if e.released {
		return engine.Errf(op, engine.CodeInvalidCall, "engine released")
	}
	return nil
}

func (e *Engine) Init(log zerolog.Logger) error {
	if err := e.guard("Init"); err != nil {
		return err
	}
	path, err := exec.LookPath(e.cfg.path)
	if err != nil {
		return engine.Errf("Init", engine.CodeNoFile, "scip executable %q: %v", e.cfg.path, err)
	}
	e.path = path
	e.log = log
	e.log.Debug().Str("path", path).Msg("scip executable found")
	return nil
}

func (e *Engine) Release() error {
	if e.released {
		return engine.Errf("Release", engine.CodeInvalidCall, "engine released twice")
	}
	e.released = true
	e.cols = nil
	e.rows = nil
	e.cand = nil
	e.start = nil
	e.values = nil
	return nil
}

func (e *Engine) Infinity() float64 { return engine.Infinity }

func (e *Engine) Settings() *engine.Settings { return e.settings }

func (e *Engine) Stage() engine.Stage { return e.stage }

func (e *Engine) col(op string, id engine.ColumnID) (*column, error) {
	if id < 0 || int(id) >= len(e.cols) {
		return nil, engine.Errf(op, engine.CodeInvalidData, "no column %d", id)
	}
	return &e.cols[id], nil
}

func (e *Engine) row(op string, id engine.RowID) (*row, error) {
	if id < 0 || int(id) >= len(e.rows) {
		return nil, engine.Errf(op, engine.CodeInvalidData, "no row %d", id)
	}
	return &e.rows[id], nil
}

func (e *Engine) AddColumn(name string, typ engine.VarType, coef, lower, upper float64) (engine.ColumnID, error) {
	if err := e.guard("AddColumn"); err != nil {
		return 0, err
	}
	if e.stage != engine.StageProblem {
		return 0, invalidCall("AddColumn", e.stage)
	}
	if math.IsNaN(coef) || math.IsNaN(lower) || math.IsNaN(upper) {
		return 0, engine.Errf("AddColumn", engine.CodeInvalidData, "NaN in column %s", name)
	}
	if lower > upper {
		return 0, engine.Errf("AddColumn", engine.CodeInvalidData,
			"column %s: lower bound %v exceeds upper bound %v", name, lower, upper)
	}
	e.cols = append(e.cols, column{
		name:  name,
		typ:   typ,
		coef:  coef,
		lower: lower,
		upper: upper,
	})
	return engine.ColumnID(len(e.cols) - 1), nil
}

func (e *Engine) ReleaseColumn(id engine.ColumnID) error {
	if err := e.guard("ReleaseColumn"); err != nil {
		return err
	}
	c, err := e.col("ReleaseColumn", id)
	if err != nil {
		return err
	}
	if c.released {
		return engine.Errf("ReleaseColumn", engine.CodeInvalidCall, "column %d released twice", id)
	}
	c.released = true
	return nil
}

func (e *Engine) SetObjCoefficient(id engine.ColumnID, coef float64) error {
	if err := e.guard("SetObjCoefficient"); err != nil {
		return err
	}
	if e.stage != engine.StageProblem {
		return invalidCall("SetObjCoefficient", e.stage)
	}
	c, err := e.col("SetObjCoefficient", id)
	if err != nil {
		return err
	}
	if math.IsNaN(coef) {
		return engine.Errf("SetObjCoefficient", engine.CodeInvalidData, "NaN coefficient")
	}
	c.coef = coef
	return nil
}

func (e *Engine) SetLowerBound(id engine.ColumnID, lower float64) error {
	if err := e.guard("SetLowerBound"); err != nil {
		return err
	}
	if e.stage != engine.StageProblem {
		return invalidCall("SetLowerBound", e.stage)
	}
	c, err := e.col("SetLowerBound", id)
	if err != nil {
		return err
	}
	if math.IsNaN(lower) {
		return engine.Errf("SetLowerBound", engine.CodeInvalidData, "NaN bound")
	}
	if lower > c.upper {
		return engine.Errf("SetLowerBound", engine.CodeInvalidData,
			"lower bound %v exceeds upper bound %v", lower, c.upper)
	}
	c.lower = lower
	return nil
}

func (e *Engine) SetUpperBound(id engine.ColumnID, upper float64) error {
	if err := e.guard("SetUpperBound"); err != nil {
		return err
	}
	if e.stage != engine.StageProblem {
		return invalidCall("SetUpperBound", e.stage)
	}
	c, err := e.col("SetUpperBound", id)
	if err != nil {
		return err
	}
	if math.IsNaN(upper) {
		return engine.Errf("SetUpperBound", engine.CodeInvalidData, "NaN bound")
	}
	if upper < c.lower {
		return engine.Errf("SetUpperBound", engine.CodeInvalidData,
			"upper bound %v below lower bound %v", upper, c.lower)
	}
	c.upper = upper
	return nil
}

func (e *Engine) SetBranchPriority(id engine.ColumnID, priority int) error {
	if err := e.guard("SetBranchPriority"); err != nil {
		return err
	}
	c, err := e.col("SetBranchPriority", id)
	if err != nil {
		return err
	}
	c.priority = priority
	return nil
}

func (e *Engine) BranchPriority(id engine.ColumnID) (int, error) {
	if err := e.guard("BranchPriority"); err != nil {
		return 0, err
	}
	c, err := e.col("BranchPriority", id)
	if err != nil {
		return 0, err
	}
	return c.priority, nil
}

func (e *Engine) AddRow(name string, cols []engine.ColumnID, coefs []float64, lower, upper float64) (engine.RowID, error) {
	if err := e.guard("AddRow"); err != nil {
		return 0, err
	}
	if e.stage != engine.StageProblem {
		return 0, invalidCall("AddRow", e.stage)
	}
	if len(cols) != len(coefs) {
		return 0, engine.Errf("AddRow", engine.CodeInvalidData,
			"row %s: %d columns, %d coefficients", name, len(cols), len(coefs))
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return 0, engine.Errf("AddRow", engine.CodeInvalidData, "row %s: bad range", name)
	}
	for i, id := range cols {
		if _, err := e.col("AddRow", id); err != nil {
			return 0, err
		}
		if math.IsNaN(coefs[i]) {
			return 0, engine.Errf("AddRow", engine.CodeInvalidData, "row %s: NaN coefficient", name)
		}
	}
	e.rows = append(e.rows, row{
		name:  name,
		cols:  append([]engine.ColumnID(nil), cols...),
		coefs: append([]float64(nil), coefs...),
		lower: lower,
		upper: upper,
	})
	return engine.RowID(len(e.rows) - 1), nil
}

func (e *Engine) ReleaseRow(id engine.RowID) error {
	if err := e.guard("ReleaseRow"); err != nil {
		return err
	}
	r, err := e.row("ReleaseRow", id)
	if err != nil {
		return err
	}
	if r.released {
		return engine.Errf("ReleaseRow", engine.CodeInvalidCall, "row %d released twice", id)
	}
	r.released = true
	return nil
}

func (e *Engine) DeleteRow(id engine.RowID) error {
	if err := e.guard("DeleteRow"); err != nil {
		return err
	}
	if e.stage != engine.StageProblem {
		return invalidCall("DeleteRow", e.stage)
	}
	r, err := e.row("DeleteRow", id)
	if err != nil {
		return err
	}
	if r.deleted {
		return engine.Errf("DeleteRow", engine.CodeInvalidData, "row %d already deleted", id)
	}
	r.deleted = true
	return nil
}

func (e *Engine) SetObjSense(sense engine.ObjSense) error {
	if err := e.guard("SetObjSense"); err != nil {
		return err
	}
	if e.stage != engine.StageProblem {
		return invalidCall("SetObjSense", e.stage)
	}
	e.sense = sense
	return nil
}

func (e *Engine) SetObjOffset(offset float64) error {
	if err := e.guard("SetObjOffset"); err != nil {
		return err
	}
	if math.IsNaN(offset) {
		return engine.Errf("SetObjOffset", engine.CodeInvalidData, "NaN offset")
	}
	e.offset = offset
	return nil
}

func (e *Engine) Transform() error {
	if err := e.guard("Transform"); err != nil {
		return err
	}
	switch e.stage {
	case engine.StageProblem:
		e.stage = engine.StageTransformed
	case engine.StageTransformed:
		// already transformed
	default:
		return invalidCall("Transform", e.stage)
	}
	return nil
}

func (e *Engine) FreeTransform() error {
	if err := e.guard("FreeTransform"); err != nil {
		return err
	}
	e.stage = engine.StageProblem
	e.status = engine.StatusUnknown
	e.cand = nil
	e.candOpen = false
	e.start = nil
	e.hasStart = false
	e.hasSol = false
	e.objective = 0
	e.values = nil
	e.bound = 0
	e.hasBound = false
	return nil
}

func (e *Engine) NewCandidate() error {
	if err := e.guard("NewCandidate"); err != nil {
		return err
	}
	if e.stage != engine.StageTransformed {
		return invalidCall("NewCandidate", e.stage)
	}
	e.cand = make([]float64, len(e.cols))
	e.candOpen = true
	return nil
}

func (e *Engine) SetCandidateValue(id engine.ColumnID, value float64) error {
	if err := e.guard("SetCandidateValue"); err != nil {
		return err
	}
	if !e.candOpen {
		return engine.Errf("SetCandidateValue", engine.CodeInvalidCall, "no open candidate")
	}
	if _, err := e.col("SetCandidateValue", id); err != nil {
		return err
	}
	if math.IsNaN(value) {
		return engine.Errf("SetCandidateValue", engine.CodeInvalidData, "NaN value")
	}
	e.cand[id] = value
	return nil
}

func (e *Engine) CheckCandidate() (bool, error) {
	if err := e.guard("CheckCandidate"); err != nil {
		return false, err
	}
	if !e.candOpen {
		return false, engine.Errf("CheckCandidate", engine.CodeInvalidCall, "no open candidate")
	}
	return e.feasible(e.cand, e.settings.FeasTol), nil
}

// TryCandidate closes the open candidate. A candidate that passes the
// feasibility check is written as a start solution for the next run;
// the binary re-verifies it when it reads the file.
func (e *Engine) TryCandidate() (bool, error) {
	if err := e.guard("TryCandidate"); err != nil {
		return false, err
	}
	if !e.candOpen {
		return false, engine.Errf("TryCandidate", engine.CodeInvalidCall, "no open candidate")
	}
	cand := e.cand
	e.cand = nil
	e.candOpen = false
	if !e.feasible(cand, e.settings.FeasTol) {
		return false, nil
	}
	e.start = cand
	e.hasStart = true
	return true, nil
}

// feasible checks x against bounds, integrality and rows.
func (e *Engine) feasible(x []float64, tol float64) bool {
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

// ResetClock is a no-op beyond the release guard: the binary starts a
// fresh clock on every run.
func (e *Engine) ResetClock() error {
	return e.guard("ResetClock")
}

func (e *Engine) Status() engine.Status { return e.status }

func (e *Engine) HasSolution() bool { return e.hasSol }

func (e *Engine) ObjectiveValue() float64 {
	switch e.status {
	case engine.StatusUnbounded, engine.StatusInfeasibleOrUnbounded:
		return -float64(e.sense) * engine.Infinity
	}
	if e.hasSol {
		return e.objective
	}
	// no incumbent: the worst value of the sense
	return float64(e.sense) * engine.Infinity
}

func (e *Engine) BestBound() float64 {
	if e.hasBound {
		return e.bound
	}
	switch e.status {
	case engine.StatusInfeasible:
		return float64(e.sense) * engine.Infinity
	}
	return -float64(e.sense) * engine.Infinity
}

func (e *Engine) ColumnValue(id engine.ColumnID) (float64, error) {
	if err := e.guard("ColumnValue"); err != nil {
		return 0, err
	}
	c, err := e.col("ColumnValue", id)
	if err != nil {
		return 0, err
	}
	if c.released {
		return 0, engine.Errf("ColumnValue", engine.CodeInvalidData, "column %d released", id)
	}
	if !e.hasSol {
		return 0, engine.Errf("ColumnValue", engine.CodeInvalidCall, "no solution")
	}
	return e.values[id], nil
}
