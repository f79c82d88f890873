package scip

import (
	"os/exec"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-opt/milo/engine"
	"github.com/go-opt/milo/mps"
)

func TestInitMissingBinary(t *testing.T) {
	assert := require.New(t)
	e := New(WithPath("/nonexistent/scip"))

	err := e.Init(zerolog.Nop())
	assert.Equal(engine.CodeNoFile, engine.CodeOf(err))
	assert.ErrorContains(err, "scip executable")
}

func TestStageGuards(t *testing.T) {
	assert := require.New(t)
	e := New()

	x, err := e.AddColumn("x", engine.Continuous, 1, 0, 1)
	assert.NoError(err)
	assert.NoError(e.Transform())

	_, err = e.AddColumn("y", engine.Continuous, 1, 0, 1)
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))
	err = e.SetObjSense(engine.Maximize)
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))
	err = e.DeleteRow(0)
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))

	assert.NoError(e.FreeTransform())
	assert.Equal(engine.StageProblem, e.Stage())
	_, err = e.AddColumn("y", engine.Continuous, 1, 0, 1)
	assert.NoError(err)
	err = e.DeleteRow(0) // no rows declared
	assert.Equal(engine.CodeInvalidData, engine.CodeOf(err))

	_, err = e.ColumnValue(x)
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))
}

func TestSolveWithoutBinary(t *testing.T) {
	assert := require.New(t)
	e := New()

	_, err := e.AddColumn("x", engine.Continuous, 1, 0, 1)
	assert.NoError(err)

	// no Init, so no resolved executable: the run itself fails
	err = e.Solve()
	assert.Equal(engine.CodeError, engine.CodeOf(err))
	assert.Equal(engine.StageTransformed, e.Stage())
}

func TestCandidateKeptAsStart(t *testing.T) {
	assert := require.New(t)
	e := New()

	x, err := e.AddColumn("x", engine.Integer, 1, 0, 5)
	assert.NoError(err)
	_, err = e.AddRow("r", []engine.ColumnID{x}, []float64{1}, -engine.Infinity, 4)
	assert.NoError(err)

	err = e.NewCandidate()
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))

	assert.NoError(e.Transform())
	assert.NoError(e.NewCandidate())
	assert.NoError(e.SetCandidateValue(x, 7)) // above the upper bound
	ok, err := e.CheckCandidate()
	assert.NoError(err)
	assert.False(ok)
	kept, err := e.TryCandidate()
	assert.NoError(err)
	assert.False(kept)
	assert.False(e.hasStart)

	// the try consumed the candidate
	_, err = e.CheckCandidate()
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))

	assert.NoError(e.NewCandidate())
	assert.NoError(e.SetCandidateValue(x, 3))
	kept, err = e.TryCandidate()
	assert.NoError(err)
	assert.True(kept)
	assert.True(e.hasStart)
	assert.InDelta(3, e.start[x], 1e-9)

	assert.NoError(e.FreeTransform())
	assert.False(e.hasStart)
}

func TestCandidateSemiContinuousZero(t *testing.T) {
	assert := require.New(t)
	e := New()

	x, err := e.AddColumn("x", engine.SemiContinuous, 1, 2, 9)
	assert.NoError(err)
	assert.NoError(e.Transform())
	assert.NoError(e.NewCandidate())

	// zero is inside a semi-continuous domain, 1 is not
	ok, err := e.CheckCandidate()
	assert.NoError(err)
	assert.True(ok)
	assert.NoError(e.SetCandidateValue(x, 1))
	ok, err = e.CheckCandidate()
	assert.NoError(err)
	assert.False(ok)
}

func TestExportModel(t *testing.T) {
	assert := require.New(t)
	e := New()

	x, err := e.AddColumn("first", engine.Integer, 3, 0, 4)
	assert.NoError(err)
	y, err := e.AddColumn("second", engine.Continuous, -1, -engine.Infinity, engine.Infinity)
	assert.NoError(err)
	r, err := e.AddRow("cap", []engine.ColumnID{x, y}, []float64{1, 2}, -engine.Infinity, 8)
	assert.NoError(err)
	assert.NoError(e.DeleteRow(r))
	_, err = e.AddRow("dup", []engine.ColumnID{y, x, y}, []float64{1, 2, 3}, 1, 1)
	assert.NoError(err)
	assert.NoError(e.SetObjSense(engine.Maximize))
	assert.NoError(e.SetObjOffset(2.5))

	m, colIdx := e.exportModel()
	want := &mps.Model{
		Name:      "milo",
		Objective: "obj",
		Maximize:  true,
		ObjOffset: 2.5,
		Columns: []mps.Column{
			{Name: "x0", Type: engine.Integer, Coef: 3, Lower: 0, Upper: 4},
			{Name: "x1", Type: engine.Continuous, Coef: -1, Lower: -engine.Infinity, Upper: engine.Infinity},
		},
		Rows: []mps.Row{
			{Name: "r1", Cols: []int{0, 1}, Coefs: []float64{2, 4}, Lower: 1, Upper: 1},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(map[string]int{"x0": 0, "x1": 1}, colIdx)
}

func TestScript(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		assert := require.New(t)
		e := New()

		want := `read /work/model.mps
set limits time 1e+20
set limits gap 0
set limits absgap 0
set limits solutions -1
set numerics feastol 1e-06
optimize
write solution /work/model.sol
quit
`
		assert.Equal(want, e.script("/work"))
	})

	t.Run("session settings and start", func(t *testing.T) {
		assert := require.New(t)
		e := New()
		e.settings.Time = 30
		e.settings.Gap = 0.05
		e.settings.AbsGap = 0.5
		e.settings.Solutions = 2
		e.settings.CatchInterrupts = false
		e.hasStart = true

		want := `read /work/model.mps
set limits time 30
set limits gap 0.05
set limits absgap 0.5
set limits solutions 2
set numerics feastol 1e-06
set misc catchctrlc FALSE
read /work/start.sol
optimize
write solution /work/model.sol
quit
`
		assert.Equal(want, e.script("/work"))
	})
}

func TestStartSolution(t *testing.T) {
	assert := require.New(t)
	e := New()
	e.start = []float64{0, 2.5, -3}

	assert.Equal("x0 0\nx1 2.5\nx2 -3\n", e.startSolution())
}

func TestParseStatus(t *testing.T) {
	assert := require.New(t)
	for line, want := range map[string]engine.Status{
		"solution status: optimal solution found":  engine.StatusOptimal,
		"solution status: infeasible":              engine.StatusInfeasible,
		"solution status: unbounded":               engine.StatusUnbounded,
		"solution status: infeasible or unbounded": engine.StatusInfeasibleOrUnbounded,
		"solution status: time limit reached":      engine.StatusTimeLimit,
		"solution status: gap limit reached":       engine.StatusGapLimit,
		"solution status: solution limit reached":  engine.StatusSolutionLimit,
		"solution status: node limit reached":      engine.StatusNodeLimit,
		"solution status: user interrupt":          engine.StatusInterrupted,
		"solution status: memory limit reached":    engine.StatusUnknown,
	} {
		assert.Equal(want, parseStatus(line), line)
	}
}

func TestParseSolutionFile(t *testing.T) {
	t.Run("optimal", func(t *testing.T) {
		assert := require.New(t)
		sol, err := parseSolutionFile([]byte(
			"solution status: optimal solution found\n" +
				"objective value:                                   17\n" +
				"x0                                                  5 \t(obj:3)\n" +
				"x2                            1.5 \t(obj:2)\n"))
		assert.NoError(err)
		assert.Equal(engine.StatusOptimal, sol.status)
		assert.True(sol.found)
		assert.InDelta(17, sol.objective, 1e-9)
		assert.Equal(map[string]float64{"x0": 5, "x2": 1.5}, sol.values)
	})

	t.Run("no solution", func(t *testing.T) {
		assert := require.New(t)
		sol, err := parseSolutionFile([]byte(
			"solution status: infeasible\nno solution available\n"))
		assert.NoError(err)
		assert.Equal(engine.StatusInfeasible, sol.status)
		assert.False(sol.found)
		assert.Empty(sol.values)
	})

	t.Run("limit with incumbent", func(t *testing.T) {
		assert := require.New(t)
		sol, err := parseSolutionFile([]byte(
			"solution status: time limit reached\n" +
				"objective value:                          -2.25\n" +
				"x1                                            3 \t(obj:-0.75)\n"))
		assert.NoError(err)
		assert.Equal(engine.StatusTimeLimit, sol.status)
		assert.True(sol.found)
		assert.InDelta(-2.25, sol.objective, 1e-9)
		assert.Equal(map[string]float64{"x1": 3}, sol.values)
	})

	t.Run("errors", func(t *testing.T) {
		assert := require.New(t)
		for name, data := range map[string]string{
			"missing status": "x0 5\n",
			"bad objective":  "solution status: optimal solution found\nobjective value: abc\n",
			"bad value":      "solution status: optimal solution found\nobjective value: 1\nx0 abc\n",
			"bare word":      "solution status: optimal solution found\nobjective value: 1\nloneword\n",
			"empty":          "",
		} {
			_, err := parseSolutionFile([]byte(data))
			assert.Equal(engine.CodeInvalidResult, engine.CodeOf(err), name)
		}
	})
}

func TestParseDualBound(t *testing.T) {
	assert := require.New(t)

	out := `SCIP Status        : problem is solved [optimal solution found]
Solving Time (sec) : 0.00
Solving Nodes      : 1
Primal Bound       : +1.70000000000000e+01 (2 solutions)
Dual Bound         : +1.70000000000000e+01
Gap                : 0.00 %
`
	v, ok := parseDualBound([]byte(out))
	assert.True(ok)
	assert.InDelta(17, v, 1e-9)

	_, ok = parseDualBound([]byte("Primal Bound : 3\n"))
	assert.False(ok)

	// the last line wins across restarts
	v, ok = parseDualBound([]byte("Dual Bound : 3\nDual Bound : 4\n"))
	assert.True(ok)
	assert.InDelta(4, v, 1e-9)
}

func TestParseMenu(t *testing.T) {
	assert := require.New(t)

	out := `SCIP version 8.0.3 [precision: 8 byte]
SCIP> display heuristics
 primal heuristic     c priority freq ofs  description
 ----------------     - -------- ---- ---  -----------
 actconsdiving        a   -10028   -1   5  LP diving heuristic that chooses fixings w.r.t. active constraints
 rounding             R    -1000    1   0  LP rounding heuristic with infeasibility recovering

SCIP> quit
`
	assert.Equal([]string{"actconsdiving", "rounding"}, parseMenu([]byte(out)))
	assert.Empty(parseMenu([]byte("no table here\n")))
}

func TestPluginNamesWithoutBinary(t *testing.T) {
	assert := require.New(t)
	e := New()

	// never initialized: no executable to ask
	assert.Empty(e.PluginNames(engine.Heuristic))
}

func TestRegistered(t *testing.T) {
	assert := require.New(t)
	eng, err := engine.New("scip")
	assert.NoError(err)
	assert.IsType(&Engine{}, eng)
}

// newLiveEngine skips the test unless a scip executable is on PATH.
func newLiveEngine(t *testing.T) *Engine {
	t.Helper()
	if _, err := exec.LookPath("scip"); err != nil {
		t.Skip("scip executable not on PATH")
	}
	e := New()
	require.NoError(t, e.Init(zerolog.Nop()))
	return e
}

func TestLiveSolve(t *testing.T) {
	assert := require.New(t)
	e := newLiveEngine(t)

	x, err := e.AddColumn("x", engine.Integer, 1, 0, 10)
	assert.NoError(err)
	y, err := e.AddColumn("y", engine.Integer, 2, 0, 10)
	assert.NoError(err)
	_, err = e.AddRow("cap", []engine.ColumnID{x, y}, []float64{1, 1}, -engine.Infinity, 2)
	assert.NoError(err)
	assert.NoError(e.SetObjSense(engine.Maximize))

	assert.NoError(e.Solve())
	assert.Equal(engine.StageSolved, e.Stage())
	assert.Equal(engine.StatusOptimal, e.Status())
	assert.True(e.HasSolution())
	assert.InDelta(4, e.ObjectiveValue(), 1e-6)
	assert.InDelta(4, e.BestBound(), 1e-6)
	vx, err := e.ColumnValue(x)
	assert.NoError(err)
	vy, err := e.ColumnValue(y)
	assert.NoError(err)
	assert.InDelta(0, vx, 1e-6)
	assert.InDelta(2, vy, 1e-6)
}

func TestLiveOffset(t *testing.T) {
	assert := require.New(t)
	e := newLiveEngine(t)

	_, err := e.AddColumn("x", engine.Continuous, 1, 2, 10)
	assert.NoError(err)
	assert.NoError(e.SetObjOffset(-3))

	assert.NoError(e.Solve())
	assert.Equal(engine.StatusOptimal, e.Status())
	assert.InDelta(-1, e.ObjectiveValue(), 1e-6)
}

func TestLiveInfeasible(t *testing.T) {
	assert := require.New(t)
	e := newLiveEngine(t)

	x, err := e.AddColumn("x", engine.Continuous, 1, 0, 1)
	assert.NoError(err)
	y, err := e.AddColumn("y", engine.Continuous, 1, 0, 1)
	assert.NoError(err)
	_, err = e.AddRow("r", []engine.ColumnID{x, y}, []float64{1, 1}, 5, engine.Infinity)
	assert.NoError(err)

	assert.NoError(e.Solve())
	assert.Equal(engine.StatusInfeasible, e.Status())
	assert.False(e.HasSolution())
	assert.InDelta(engine.Infinity, e.ObjectiveValue(), 1)
}

func TestLiveSeededSolve(t *testing.T) {
	assert := require.New(t)
	e := newLiveEngine(t)

	x, err := e.AddColumn("x", engine.Integer, 1, 0, 10)
	assert.NoError(err)
	assert.NoError(e.SetObjSense(engine.Maximize))

	assert.NoError(e.Transform())
	assert.NoError(e.NewCandidate())
	assert.NoError(e.SetCandidateValue(x, 3))
	kept, err := e.TryCandidate()
	assert.NoError(err)
	assert.True(kept)

	assert.NoError(e.Solve())
	assert.Equal(engine.StatusOptimal, e.Status())
	assert.InDelta(10, e.ObjectiveValue(), 1e-6)
}

func TestLivePlugins(t *testing.T) {
	assert := require.New(t)
	e := newLiveEngine(t)

	names := e.PluginNames(engine.Heuristic)
	assert.NotEmpty(names)
	assert.Contains(names, "rounding")
	assert.NotEmpty(e.PluginNames(engine.Presolver))
}
