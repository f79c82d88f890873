package mps

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-opt/milo/engine"
)

// Write lays m out as free-form MPS. Doubly bounded rows become L rows
// with a RANGES entry; every column carries an explicit objective
// entry so a reader materializes columns no row touches.
func Write(w io.Writer, m *Model) error {
	obj := m.Objective
	if obj == "" {
		obj = "obj"
	}
	if err := validate(m, obj); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if m.Name == "" {
		fmt.Fprintln(bw, "NAME")
	} else {
		fmt.Fprintf(bw, "NAME          %s\n", m.Name)
	}
	if m.Maximize {
		fmt.Fprintln(bw, "OBJSENSE")
		fmt.Fprintln(bw, "    MAX")
	}

	fmt.Fprintln(bw, "ROWS")
	fmt.Fprintf(bw, " N  %s\n", obj)
	for i := range m.Rows {
		fmt.Fprintf(bw, " %s  %s\n", rowSense(&m.Rows[i]), m.Rows[i].Name)
	}

	writeColumns(bw, m, obj)
	writeRHS(bw, m, obj)
	writeRanges(bw, m)
	writeBounds(bw, m)

	fmt.Fprintln(bw, "ENDATA")
	return bw.Flush()
}

func rowSense(r *Row) string {
	inf := engine.Infinity
	switch {
	case r.Lower <= -inf && r.Upper >= inf:
		return "N"
	case r.Lower <= -inf:
		return "L"
	case r.Upper >= inf:
		return "G"
	case r.Lower == r.Upper:
		return "E"
	default:
		// doubly bounded: L row plus a RANGES entry
		return "L"
	}
}

func writeColumns(bw *bufio.Writer, m *Model, obj string) {
	type centry struct {
		row  int
		coef float64
	}
	perCol := make([][]centry, len(m.Columns))
	for ri := range m.Rows {
		r := &m.Rows[ri]
		for k, j := range r.Cols {
			perCol[j] = append(perCol[j], centry{ri, r.Coefs[k]})
		}
	}

	fmt.Fprintln(bw, "COLUMNS")
	integral := false
	for j := range m.Columns {
		c := &m.Columns[j]
		isInt := c.Type == engine.Integer || c.Type == engine.Binary
		if isInt != integral {
			marker := "'INTEND'"
			if isInt {
				marker = "'INTORG'"
			}
			fmt.Fprintf(bw, "    MARKER                 'MARKER'                 %s\n", marker)
			integral = isInt
		}
		fmt.Fprintf(bw, "    %-9s %-9s %s\n", c.Name, obj, num(c.Coef))
		for _, e := range perCol[j] {
			fmt.Fprintf(bw, "    %-9s %-9s %s\n", c.Name, m.Rows[e.row].Name, num(e.coef))
		}
	}
	if integral {
		fmt.Fprintln(bw, "    MARKER                 'MARKER'                 'INTEND'")
	}
}

func writeRHS(bw *bufio.Writer, m *Model, obj string) {
	fmt.Fprintln(bw, "RHS")
	if m.ObjOffset != 0 {
		fmt.Fprintf(bw, "    %-9s %-9s %s\n", "RHS", obj, num(-m.ObjOffset))
	}
	for i := range m.Rows {
		r := &m.Rows[i]
		var b float64
		switch rowSense(r) {
		case "N":
			continue
		case "L":
			b = r.Upper
		case "G", "E":
			b = r.Lower
		}
		if b != 0 {
			fmt.Fprintf(bw, "    %-9s %-9s %s\n", "RHS", r.Name, num(b))
		}
	}
}

func writeRanges(bw *bufio.Writer, m *Model) {
	inf := engine.Infinity
	wrote := false
	for i := range m.Rows {
		r := &m.Rows[i]
		if r.Lower <= -inf || r.Upper >= inf || r.Lower == r.Upper {
			continue
		}
		if !wrote {
			fmt.Fprintln(bw, "RANGES")
			wrote = true
		}
		fmt.Fprintf(bw, "    %-9s %-9s %s\n", "RNG", r.Name, num(r.Upper-r.Lower))
	}
}

func writeBounds(bw *bufio.Writer, m *Model) {
	var lines []string
	for j := range m.Columns {
		lines = append(lines, boundLines(&m.Columns[j])...)
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(bw, "BOUNDS")
	for _, l := range lines {
		fmt.Fprintln(bw, l)
	}
}

// boundLines writes a column's deviation from the default [0, +inf)
// bounds.
func boundLines(c *Column) []string {
	inf := engine.Infinity
	withVal := func(key string, v float64) string {
		return fmt.Sprintf(" %-2s %-9s %-9s %s", key, "BND", c.Name, num(v))
	}
	bare := func(key string) string {
		return fmt.Sprintf(" %-2s %-9s %s", key, "BND", c.Name)
	}

	if c.Type == engine.Binary && c.Lower == 0 && c.Upper == 1 {
		return []string{bare("BV")}
	}
	if c.Type == engine.SemiContinuous {
		var out []string
		if c.Lower != 1 {
			out = append(out, withVal("LO", c.Lower))
		}
		return append(out, withVal("SC", c.Upper))
	}

	var out []string
	switch {
	case c.Lower == c.Upper:
		out = append(out, withVal("FX", c.Lower))
	case c.Lower <= -inf && c.Upper >= inf:
		out = append(out, bare("FR"))
	default:
		if c.Lower <= -inf {
			out = append(out, bare("MI"))
		} else if c.Lower != 0 {
			out = append(out, withVal("LO", c.Lower))
		}
		if c.Upper < inf {
			out = append(out, withVal("UP", c.Upper))
		}
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func validate(m *Model, obj string) error {
	if err := checkName(obj); err != nil {
		return fmt.Errorf("objective row: %w", err)
	}
	if math.IsNaN(m.ObjOffset) {
		return fmt.Errorf("objective constant is not a number")
	}

	colNames := make(map[string]bool, len(m.Columns))
	for i := range m.Columns {
		c := &m.Columns[i]
		if err := checkName(c.Name); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		if colNames[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		colNames[c.Name] = true
		if math.IsNaN(c.Coef) || math.IsNaN(c.Lower) || math.IsNaN(c.Upper) {
			return fmt.Errorf("column %q holds a NaN", c.Name)
		}
	}

	rowNames := map[string]bool{obj: true}
	for i := range m.Rows {
		r := &m.Rows[i]
		if err := checkName(r.Name); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if rowNames[r.Name] {
			return fmt.Errorf("duplicate row name %q", r.Name)
		}
		rowNames[r.Name] = true
		if len(r.Cols) != len(r.Coefs) {
			return fmt.Errorf("row %q: %d columns, %d coefficients", r.Name, len(r.Cols), len(r.Coefs))
		}
		if math.IsNaN(r.Lower) || math.IsNaN(r.Upper) {
			return fmt.Errorf("row %q bounds hold a NaN", r.Name)
		}
		if r.Lower > r.Upper {
			return fmt.Errorf("row %q: lower bound %v exceeds upper bound %v", r.Name, r.Lower, r.Upper)
		}
		seen := make(map[int]bool, len(r.Cols))
		for k, j := range r.Cols {
			if j < 0 || j >= len(m.Columns) {
				return fmt.Errorf("row %q references column %d of %d", r.Name, j, len(m.Columns))
			}
			if seen[j] {
				return fmt.Errorf("row %q: duplicate entry for column %q", r.Name, m.Columns[j].Name)
			}
			seen[j] = true
			if math.IsNaN(r.Coefs[k]) {
				return fmt.Errorf("row %q: coefficient of %q is not a number", r.Name, m.Columns[j].Name)
			}
		}
	}
	return nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 || strings.ContainsRune(name, '\'') {
		return fmt.Errorf("name %q is not a plain mps field", name)
	}
	return nil
}
