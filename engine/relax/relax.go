// Package relax implements the default engine: a root-node solver for
// mixed-integer linear models.
//
// The engine presolves the model, solves its LP relaxation through
// gonum's simplex and rounds the relaxation point toward feasibility.
// It never branches: when the root node leaves a fractional gap the
// solve ends with StatusNodeLimit and the best incumbent found, seeds
// included. Proven results (optimal, infeasible, unbounded) are
// reported as such.
package relax

import (
	"math"
	"time"

	"github.com/go-opt/milo/engine"
	"github.com/rs/zerolog"
)

func init() {
	engine.Register("relax", func() engine.Engine { return New() })
}

// Option configures an engine at construction.
type Option func(*config)

type config struct {
	presolveRounds int
	rounding       bool
}

// WithPresolveRounds caps the presolve iterations. Zero disables
// presolve entirely.
func WithPresolveRounds(n int) Option {
	return func(cfg *config) {
		if n < 0 {
			n = 0
		}
		cfg.presolveRounds = n
	}
}

// WithoutRounding disables the rounding heuristic.
func WithoutRounding() Option {
	return func(cfg *config) {
		cfg.rounding = false
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

// Engine is the root-node engine. Use New; the zero value is not
// usable.
type Engine struct {
	cfg      config
	log      zerolog.Logger
	settings *engine.Settings

	cols []column
	rows []row

	sense  engine.ObjSense
	offset float64

	stage      engine.Stage
	clockStart time.Time

	cand     []float64
	candOpen bool

	incumbent    []float64
	incumbentObj float64 // original-sense objective, no offset
	hasIncumbent bool
	nSols        int

	status   engine.Status
	bound    float64 // original-sense dual bound, no offset
	hasBound bool

	released bool
}

var _ engine.Engine = (*Engine)(nil)

// New builds an engine with presolve (10 rounds) and rounding enabled.
func New(opts ...Option) *Engine {
	cfg := config{presolveRounds: 10, rounding: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		cfg:      cfg,
		log:      zerolog.Nop(),
		sense:    engine.Minimize,
		settings: engine.NewSettings(),
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
	e.log = log
	e.clockStart = time.Now()
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
	e.incumbent = nil
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
	e.incumbent = nil
	e.incumbentObj = 0
	e.hasIncumbent = false
	e.nSols = 0
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
	return e.checkPoint(e.cand, e.settings.FeasTol), nil
}

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
	if !e.checkPoint(cand, e.settings.FeasTol) {
		return false, nil
	}
	return e.store(cand), nil
}

// store keeps x as the incumbent when it improves on the current one.
// Kept solutions count toward the solution limit.
func (e *Engine) store(x []float64) bool {
	obj := e.rawObjective(x)
	if e.hasIncumbent && !e.improves(obj) {
		return false
	}
	e.incumbent = append([]float64(nil), x...)
	e.incumbentObj = obj
	e.hasIncumbent = true
	e.nSols++
	return true
}

// improves reports whether obj is strictly better than the incumbent
// objective in the current sense.
func (e *Engine) improves(obj float64) bool {
	if e.sense == engine.Maximize {
		return obj > e.incumbentObj
	}
	return obj < e.incumbentObj
}

// rawObjective evaluates the model objective at x, without the offset.
func (e *Engine) rawObjective(x []float64) float64 {
	var obj float64
	for j := range e.cols {
		obj += e.cols[j].coef * x[j]
	}
	return obj
}

func (e *Engine) ResetClock() error {
	if err := e.guard("ResetClock"); err != nil {
		return err
	}
	e.clockStart = time.Now()
	return nil
}

func (e *Engine) elapsed() float64 {
	return time.Since(e.clockStart).Seconds()
}

func (e *Engine) overTime() bool {
	if e.settings.Time >= engine.Infinity {
		return false
	}
	return e.elapsed() > e.settings.Time
}

func (e *Engine) solutionLimitReached() bool {
	return e.settings.Solutions >= 0 && e.nSols >= e.settings.Solutions
}

func (e *Engine) Status() engine.Status { return e.status }

func (e *Engine) HasSolution() bool { return e.hasIncumbent }

func (e *Engine) ObjectiveValue() float64 {
	switch e.status {
	case engine.StatusUnbounded, engine.StatusInfeasibleOrUnbounded:
		return -float64(e.sense) * engine.Infinity
	}
	if e.hasIncumbent {
		return e.incumbentObj + e.offset
	}
	// no incumbent: the worst value of the sense
	return float64(e.sense) * engine.Infinity
}

func (e *Engine) BestBound() float64 {
	if e.hasBound {
		return e.bound + e.offset
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
	if !e.hasIncumbent {
		return 0, engine.Errf("ColumnValue", engine.CodeInvalidCall, "no solution")
	}
	return e.incumbent[id], nil
}

var pluginNames = map[engine.Category][]string{
	engine.Presolver: {"nonbinding", "emptyrow", "rowsingleton", "fixedvar", "freecolsingleton"},
	engine.Heuristic: {"rounding"},
	engine.Display:   {"time", "presolved", "primal", "dual", "gap"},
}

// PluginNames lists the engine's plugins. Branching, conflict,
// propagation, node selection and separation have none: the engine
// never leaves the root node.
func (e *Engine) PluginNames(c engine.Category) []string {
	return append([]string(nil), pluginNames[c]...)
}
