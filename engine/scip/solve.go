package scip

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-opt/milo/engine"
	"github.com/go-opt/milo/mps"
	"github.com/rs/zerolog"
)

// Solve hands the model to the binary: one batch run per call. It
// transforms the model first when needed.
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
	if err := e.run(); err != nil {
		return err
	}
	e.stage = engine.StageSolved
	return nil
}

func (e *Engine) run() error {
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
		Msg("handing model to scip")

	dir, err := os.MkdirTemp("", "milo-scip-")
	if err != nil {
		return engine.Errf("Solve", engine.CodeWriteError, "%v", err)
	}
	if e.cfg.keepFiles {
		e.log.Debug().Str("dir", dir).Msg("keeping solve files")
	} else {
		defer os.RemoveAll(dir)
	}

	m, colIdx := e.exportModel()
	var buf bytes.Buffer
	if err := mps.Write(&buf, m); err != nil {
		return engine.Errf("Solve", engine.CodeWriteError, "model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "model.mps"), buf.Bytes(), 0o600); err != nil {
		return engine.Errf("Solve", engine.CodeWriteError, "%v", err)
	}
	if e.hasStart {
		if err := os.WriteFile(filepath.Join(dir, "start.sol"), []byte(e.startSolution()), 0o600); err != nil {
			return engine.Errf("Solve", engine.CodeWriteError, "%v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "commands"), []byte(e.script(dir)), 0o600); err != nil {
		return engine.Errf("Solve", engine.CodeWriteError, "%v", err)
	}

	cmd := exec.Command(e.path, "-b", filepath.Join(dir, "commands"))
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return engine.Errf("Solve", engine.CodeError, "%s: %v", e.path, err)
	}
	if e.log.GetLevel() <= zerolog.DebugLevel {
		e.log.Debug().Msg(out.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "model.sol"))
	if err != nil {
		return engine.Errf("Solve", engine.CodeReadError, "solution file: %v", err)
	}
	sol, err := parseSolutionFile(data)
	if err != nil {
		return err
	}
	values := make([]float64, len(e.cols))
	for name, v := range sol.values {
		j, ok := colIdx[name]
		if !ok {
			return engine.Errf("Solve", engine.CodeInvalidResult, "unknown column %q in solution", name)
		}
		values[j] = v
	}

	e.status = sol.status
	e.hasSol = sol.found
	e.objective = sol.objective
	e.values = values
	e.bound, e.hasBound = 0, false
	if b, ok := parseDualBound(out.Bytes()); ok && math.Abs(b) < engine.Infinity {
		e.bound, e.hasBound = b, true
	}
	e.log.Debug().
		Stringer("status", e.status).
		Bool("solution", e.hasSol).
		Msg("scip run finished")
	return nil
}

// exportModel renders the model for the exchange file. Columns go out
// under positional names; user names need not be unique nor clean MPS
// fields. Duplicate columns inside a row collapse into one entry.
func (e *Engine) exportModel() (*mps.Model, map[string]int) {
	m := &mps.Model{
		Name:      "milo",
		Objective: "obj",
		Maximize:  e.sense == engine.Maximize,
		ObjOffset: e.offset,
	}
	colIdx := make(map[string]int, len(e.cols))
	for j := range e.cols {
		c := &e.cols[j]
		name := "x" + strconv.Itoa(j)
		colIdx[name] = j
		m.Columns = append(m.Columns, mps.Column{
			Name:  name,
			Type:  c.typ,
			Coef:  c.coef,
			Lower: c.lower,
			Upper: c.upper,
		})
	}
	for i := range e.rows {
		r := &e.rows[i]
		if r.deleted {
			continue
		}
		sum := make(map[int]float64, len(r.cols))
		for k, id := range r.cols {
			sum[int(id)] += r.coefs[k]
		}
		cols := make([]int, 0, len(sum))
		for j := range sum {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		row := mps.Row{
			Name:  "r" + strconv.Itoa(i),
			Cols:  cols,
			Lower: r.lower,
			Upper: r.upper,
		}
		for _, j := range cols {
			row.Coefs = append(row.Coefs, sum[j])
		}
		m.Rows = append(m.Rows, row)
	}
	return m, colIdx
}

// startSolution renders the accepted candidate in the binary's
// solution format, every column listed.
func (e *Engine) startSolution() string {
	var b strings.Builder
	for j, v := range e.start {
		fmt.Fprintf(&b, "x%d %s\n", j, num(v))
	}
	return b.String()
}

// script renders the batch command file for one run.
func (e *Engine) script(dir string) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	line("read %s", filepath.Join(dir, "model.mps"))
	line("set limits time %s", num(math.Min(e.settings.Time, engine.Infinity)))
	line("set limits gap %s", num(e.settings.Gap))
	line("set limits absgap %s", num(e.settings.AbsGap))
	line("set limits solutions %d", e.settings.Solutions)
	line("set numerics feastol %s", num(e.settings.FeasTol))
	if !e.settings.CatchInterrupts {
		line("set misc catchctrlc FALSE")
	}
	if e.hasStart {
		line("read %s", filepath.Join(dir, "start.sol"))
	}
	line("optimize")
	line("write solution %s", filepath.Join(dir, "model.sol"))
	line("quit")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// solution is a parsed solution file.
type solution struct {
	status    engine.Status
	found     bool
	objective float64
	values    map[string]float64
}

// parseSolutionFile reads the output of the binary's "write solution":
// a status line, then either "no solution available" or an objective
// line followed by the nonzero columns. Columns the file omits are
// zero.
func parseSolutionFile(data []byte) (*solution, error) {
	sol := &solution{values: make(map[string]float64)}
	sawStatus := false
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "solution status:"):
			sol.status = parseStatus(line)
			sawStatus = true
			continue
		case line == "no solution available":
			sol.found = false
			continue
		}
		if !sawStatus {
			return nil, engine.Errf("Solve", engine.CodeInvalidResult, "solution file: missing status line")
		}
		if rest, ok := strings.CutPrefix(line, "objective value:"); ok {
			v, err := parseValue(rest)
			if err != nil {
				return nil, err
			}
			sol.found = true
			sol.objective = v
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, engine.Errf("Solve", engine.CodeInvalidResult, "solution file: bad line %q", line)
		}
		v, err := parseValue(fields[1])
		if err != nil {
			return nil, err
		}
		sol.values[fields[0]] = v
	}
	if !sawStatus {
		return nil, engine.Errf("Solve", engine.CodeInvalidResult, "solution file: missing status line")
	}
	return sol, nil
}

func parseValue(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, engine.Errf("Solve", engine.CodeInvalidResult, "solution file: missing value")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, engine.Errf("Solve", engine.CodeInvalidResult, "solution file: bad value %q", fields[0])
	}
	return v, nil
}

// parseStatus maps the binary's status text. "infeasible or unbounded"
// must be tried before its two substrings.
func parseStatus(line string) engine.Status {
	switch {
	case strings.Contains(line, "optimal"):
		return engine.StatusOptimal
	case strings.Contains(line, "infeasible or unbounded"):
		return engine.StatusInfeasibleOrUnbounded
	case strings.Contains(line, "infeasible"):
		return engine.StatusInfeasible
	case strings.Contains(line, "unbounded"):
		return engine.StatusUnbounded
	case strings.Contains(line, "time limit"):
		return engine.StatusTimeLimit
	case strings.Contains(line, "gap limit"):
		return engine.StatusGapLimit
	case strings.Contains(line, "solution limit"):
		return engine.StatusSolutionLimit
	case strings.Contains(line, "node limit"):
		return engine.StatusNodeLimit
	case strings.Contains(line, "interrupt"):
		return engine.StatusInterrupted
	default:
		return engine.StatusUnknown
	}
}

// parseDualBound scans the solver log for the final "Dual Bound" line.
func parseDualBound(out []byte) (float64, bool) {
	var v float64
	var ok bool
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "Dual Bound") {
			continue
		}
		_, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		b, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		v, ok = b, true
	}
	return v, ok
}
