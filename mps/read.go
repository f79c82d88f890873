package mps

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-opt/milo/engine"
)

// objIdx marks the objective row in the name index.
const objIdx = -1

type rowKind uint8

const (
	rowFree rowKind = iota
	rowLe
	rowGe
	rowEq
)

var sectionRank = map[string]int{
	"NAME":     1,
	"OBJSENSE": 2,
	"ROWS":     3,
	"COLUMNS":  4,
	"RHS":      5,
	"RANGES":   6,
	"BOUNDS":   7,
	"ENDATA":   8,
}

type parser struct {
	m    *Model
	line int
	cur  string
	rank int

	rowIdx map[string]int
	kinds  []rowKind
	colIdx map[string]int

	// curCol and curSeen track the column being read; MPS keeps a
	// column's entries contiguous.
	curCol   string
	curSeen  map[int]bool
	integral bool

	rhsSeen map[int]bool
	rngSeen map[int]bool
	loSet   map[int]bool
	endata  bool
}

// Read parses a model from free-form MPS. Sections must appear in the
// canonical order and the file must close with ENDATA.
func Read(r io.Reader) (*Model, error) {
	p := &parser{
		m:       &Model{},
		rowIdx:  make(map[string]int),
		colIdx:  make(map[string]int),
		rhsSeen: make(map[int]bool),
		rngSeen: make(map[int]bool),
		loSet:   make(map[int]bool),
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		line := sc.Text()
		if line == "" || line[0] == '*' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var err error
		if line[0] != ' ' && line[0] != '\t' {
			err = p.sectionLine(fields)
		} else {
			err = p.dataLine(fields)
		}
		if err != nil {
			return nil, err
		}
		if p.endata {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !p.endata {
		return nil, fmt.Errorf("%w: missing ENDATA", ErrFormat)
	}
	return p.m, nil
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: "+format, append([]any{ErrFormat, p.line}, args...)...)
}

func (p *parser) sectionLine(fields []string) error {
	name := fields[0]
	rank, ok := sectionRank[name]
	if !ok {
		return p.errf("unknown section %q", name)
	}
	if rank <= p.rank {
		return p.errf("section %s out of order", name)
	}
	p.rank = rank
	p.cur = name
	switch name {
	case "NAME":
		if len(fields) > 1 {
			p.m.Name = fields[1]
		}
	case "OBJSENSE":
		// the sense may ride on the section line itself
		if len(fields) > 1 {
			return p.objSense(fields[1])
		}
	case "ENDATA":
		p.endata = true
	}
	return nil
}

func (p *parser) dataLine(fields []string) error {
	switch p.cur {
	case "OBJSENSE":
		return p.objSense(fields[0])
	case "ROWS":
		return p.rowLine(fields)
	case "COLUMNS":
		return p.columnLine(fields)
	case "RHS":
		return p.rhsLine(fields)
	case "RANGES":
		return p.rangesLine(fields)
	case "BOUNDS":
		return p.boundLine(fields)
	default:
		return p.errf("data outside a section")
	}
}

func (p *parser) objSense(tok string) error {
	switch tok {
	case "MIN", "MINIMIZE":
		p.m.Maximize = false
	case "MAX", "MAXIMIZE":
		p.m.Maximize = true
	default:
		return p.errf("unknown objective sense %q", tok)
	}
	return nil
}

func (p *parser) rowLine(fields []string) error {
	if len(fields) != 2 {
		return p.errf("want a sense and a row name, got %d fields", len(fields))
	}
	sense, name := fields[0], fields[1]
	if _, dup := p.rowIdx[name]; dup {
		return p.errf("row %q declared twice", name)
	}

	inf := engine.Infinity
	var kind rowKind
	var lo, up float64
	switch sense {
	case "N":
		// the first N row is the objective, the rest are free rows
		if p.m.Objective == "" {
			p.m.Objective = name
			p.rowIdx[name] = objIdx
			return nil
		}
		kind, lo, up = rowFree, -inf, inf
	case "L":
		kind, lo, up = rowLe, -inf, 0
	case "G":
		kind, lo, up = rowGe, 0, inf
	case "E":
		kind, lo, up = rowEq, 0, 0
	default:
		return p.errf("unknown row sense %q", sense)
	}
	p.rowIdx[name] = len(p.m.Rows)
	p.m.Rows = append(p.m.Rows, Row{Name: name, Lower: lo, Upper: up})
	p.kinds = append(p.kinds, kind)
	return nil
}

func (p *parser) columnLine(fields []string) error {
	if len(fields) >= 3 && fields[1] == "'MARKER'" {
		switch fields[2] {
		case "'INTORG'":
			p.integral = true
		case "'INTEND'":
			p.integral = false
		default:
			return p.errf("unknown marker %q", fields[2])
		}
		return nil
	}
	if len(fields) < 3 || len(fields)%2 == 0 {
		return p.errf("want a column name and row, value pairs")
	}

	name := fields[0]
	if name != p.curCol {
		if _, dup := p.colIdx[name]; dup {
			return p.errf("entries of column %q are not contiguous", name)
		}
		typ := engine.Continuous
		if p.integral {
			typ = engine.Integer
		}
		p.colIdx[name] = len(p.m.Columns)
		p.m.Columns = append(p.m.Columns, Column{Name: name, Type: typ, Upper: engine.Infinity})
		p.curCol = name
		p.curSeen = make(map[int]bool)
	}
	j := p.colIdx[name]

	for k := 1; k+1 < len(fields); k += 2 {
		ri, ok := p.rowIdx[fields[k]]
		if !ok {
			return p.errf("unknown row %q", fields[k])
		}
		v, err := p.parseFloat(fields[k+1])
		if err != nil {
			return err
		}
		if p.curSeen[ri] {
			return p.errf("duplicate entry for column %q in row %q", name, fields[k])
		}
		p.curSeen[ri] = true
		if ri == objIdx {
			p.m.Columns[j].Coef = v
			continue
		}
		r := &p.m.Rows[ri]
		r.Cols = append(r.Cols, j)
		r.Coefs = append(r.Coefs, v)
	}
	return nil
}

func (p *parser) rhsLine(fields []string) error {
	if len(fields) < 3 || len(fields)%2 == 0 {
		return p.errf("want a vector name and row, value pairs")
	}
	for k := 1; k+1 < len(fields); k += 2 {
		ri, ok := p.rowIdx[fields[k]]
		if !ok {
			return p.errf("unknown row %q", fields[k])
		}
		v, err := p.parseFloat(fields[k+1])
		if err != nil {
			return err
		}
		if p.rhsSeen[ri] {
			return p.errf("duplicate rhs entry for row %q", fields[k])
		}
		p.rhsSeen[ri] = true
		if ri == objIdx {
			// the objective rhs carries the negated constant
			p.m.ObjOffset = -v
			continue
		}
		r := &p.m.Rows[ri]
		switch p.kinds[ri] {
		case rowLe:
			r.Upper = v
		case rowGe:
			r.Lower = v
		case rowEq:
			r.Lower, r.Upper = v, v
		case rowFree:
			// an rhs on a free row has no meaning
		}
	}
	return nil
}

func (p *parser) rangesLine(fields []string) error {
	if len(fields) < 3 || len(fields)%2 == 0 {
		return p.errf("want a vector name and row, value pairs")
	}
	for k := 1; k+1 < len(fields); k += 2 {
		ri, ok := p.rowIdx[fields[k]]
		if !ok {
			return p.errf("unknown row %q", fields[k])
		}
		if ri == objIdx {
			return p.errf("range on the objective row")
		}
		v, err := p.parseFloat(fields[k+1])
		if err != nil {
			return err
		}
		if p.rngSeen[ri] {
			return p.errf("duplicate range entry for row %q", fields[k])
		}
		p.rngSeen[ri] = true
		r := &p.m.Rows[ri]
		switch p.kinds[ri] {
		case rowLe:
			r.Lower = r.Upper - math.Abs(v)
		case rowGe:
			r.Upper = r.Lower + math.Abs(v)
		case rowEq:
			if v >= 0 {
				r.Upper = r.Lower + v
			} else {
				r.Lower = r.Upper + v
			}
		default:
			return p.errf("range on free row %q", fields[k])
		}
	}
	return nil
}

func (p *parser) boundLine(fields []string) error {
	if len(fields) < 3 {
		return p.errf("want a bound key, vector and column")
	}
	key, name := fields[0], fields[2]
	j, ok := p.colIdx[name]
	if !ok {
		return p.errf("unknown column %q", name)
	}
	c := &p.m.Columns[j]

	var v float64
	switch key {
	case "LO", "UP", "FX", "SC":
		if len(fields) < 4 {
			return p.errf("bound %s needs a value", key)
		}
		var err error
		if v, err = p.parseFloat(fields[3]); err != nil {
			return err
		}
	}

	inf := engine.Infinity
	switch key {
	case "LO":
		c.Lower = v
		p.loSet[j] = true
	case "UP":
		c.Upper = v
	case "FX":
		c.Lower, c.Upper = v, v
		p.loSet[j] = true
	case "FR":
		c.Lower, c.Upper = -inf, inf
	case "MI":
		c.Lower = -inf
	case "PL":
		c.Upper = inf
	case "BV":
		c.Type = engine.Binary
		c.Lower, c.Upper = 0, 1
	case "SC":
		c.Type = engine.SemiContinuous
		c.Upper = v
		if !p.loSet[j] {
			c.Lower = 1
		}
	default:
		return p.errf("unknown bound key %q", key)
	}
	return nil
}

func (p *parser) parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, p.errf("bad number %q", s)
	}
	return v, nil
}
