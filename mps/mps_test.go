package mps

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-opt/milo/engine"
)

const fixture = `* a structurally complete fixture
NAME          TEST
OBJSENSE
    MAX
ROWS
 N  cost
 L  lim1
 G  lim2
 E  eq1
COLUMNS
    MARKER                 'MARKER'                 'INTORG'
    x1        cost         1  lim1         1
    x1        lim2         1
    MARKER                 'MARKER'                 'INTEND'
    x2        cost         2
    x2        lim1         1  eq1          -1
RHS
    RHS       lim1         4  lim2         1
    RHS       eq1          7
    RHS       cost         -5
RANGES
    RNG       lim1         2.5
BOUNDS
 UP BND       x1           4
 LO BND       x2           -1
ENDATA
`

func TestReadModel(t *testing.T) {
	assert := require.New(t)

	got, err := Read(strings.NewReader(fixture))
	assert.NoError(err)

	inf := engine.Infinity
	want := &Model{
		Name:      "TEST",
		Objective: "cost",
		Maximize:  true,
		ObjOffset: 5,
		Columns: []Column{
			{Name: "x1", Type: engine.Integer, Coef: 1, Lower: 0, Upper: 4},
			{Name: "x2", Type: engine.Continuous, Coef: 2, Lower: -1, Upper: inf},
		},
		Rows: []Row{
			{Name: "lim1", Cols: []int{0, 1}, Coefs: []float64{1, 1}, Lower: 1.5, Upper: 4},
			{Name: "lim2", Cols: []int{0}, Coefs: []float64{1}, Lower: 1, Upper: inf},
			{Name: "eq1", Cols: []int{1}, Coefs: []float64{-1}, Lower: 7, Upper: 7},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestReadObjSenseOnSectionLine(t *testing.T) {
	assert := require.New(t)

	m, err := Read(strings.NewReader("OBJSENSE MAXIMIZE\nROWS\n N  obj\nENDATA\n"))
	assert.NoError(err)
	assert.True(m.Maximize)
}

func TestRoundTrip(t *testing.T) {
	assert := require.New(t)

	inf := engine.Infinity
	m := &Model{
		Name:      "exchange",
		Objective: "profit",
		Maximize:  true,
		ObjOffset: 2.5,
		Columns: []Column{
			{Name: "a", Type: engine.Continuous, Coef: 1, Lower: 0, Upper: inf},
			{Name: "b", Type: engine.Integer, Coef: -2, Lower: 0, Upper: 7},
			{Name: "c", Type: engine.Binary, Coef: 0.5, Lower: 0, Upper: 1},
			{Name: "d", Type: engine.Continuous, Coef: 0, Lower: -inf, Upper: inf},
			{Name: "e", Type: engine.Continuous, Coef: 3, Lower: -inf, Upper: 4},
			{Name: "f", Type: engine.SemiContinuous, Coef: 1, Lower: 1, Upper: 9},
			{Name: "g", Type: engine.SemiContinuous, Coef: 1, Lower: 2, Upper: 8},
			{Name: "h", Type: engine.Continuous, Coef: 0, Lower: 5, Upper: 5},
		},
		Rows: []Row{
			{Name: "r1", Cols: []int{0, 1}, Coefs: []float64{1, 2}, Lower: -inf, Upper: 10},
			{Name: "r2", Cols: []int{2, 4}, Coefs: []float64{1, -1}, Lower: 3, Upper: inf},
			{Name: "r3", Cols: []int{0, 5}, Coefs: []float64{2, 2}, Lower: 6, Upper: 6},
			{Name: "r4", Cols: []int{1, 6}, Coefs: []float64{1, 1}, Lower: 1, Upper: 4},
			{Name: "r5", Lower: -inf, Upper: inf},
		},
	}

	var buf bytes.Buffer
	assert.NoError(Write(&buf, m))
	got, err := Read(&buf)
	assert.NoError(err)
	if diff := cmp.Diff(m, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripEmptyModel(t *testing.T) {
	assert := require.New(t)

	var buf bytes.Buffer
	assert.NoError(Write(&buf, &Model{}))
	got, err := Read(&buf)
	assert.NoError(err)
	assert.Equal("obj", got.Objective)
	assert.False(got.Maximize)
	assert.Empty(got.Columns)
	assert.Empty(got.Rows)
}

func TestReadErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"unknown section": {
			src:  "FOO\n",
			want: "unknown section",
		},
		"section out of order": {
			src:  "ROWS\n N  obj\nNAME t\n",
			want: "out of order",
		},
		"missing endata": {
			src:  "ROWS\n N  obj\n",
			want: "missing ENDATA",
		},
		"data outside a section": {
			src:  "    x0  obj  1\n",
			want: "outside a section",
		},
		"duplicate row": {
			src:  "ROWS\n N  obj\n L  r\n L  r\n",
			want: "declared twice",
		},
		"unknown row": {
			src:  "ROWS\n N  obj\nCOLUMNS\n    x  miss  1\n",
			want: "unknown row",
		},
		"split column": {
			src:  "ROWS\n N  obj\nCOLUMNS\n    x  obj  1\n    y  obj  1\n    x  obj  2\n",
			want: "not contiguous",
		},
		"bad number": {
			src:  "ROWS\n N  obj\nCOLUMNS\n    x  obj  abc\n",
			want: "bad number",
		},
		"duplicate rhs": {
			src:  "ROWS\n N  obj\n L  r\nCOLUMNS\n    x  r  1\nRHS\n    RHS  r  1  r  2\n",
			want: "duplicate rhs",
		},
		"range on objective": {
			src:  "ROWS\n N  obj\nRANGES\n    RNG  obj  1\n",
			want: "range on the objective row",
		},
		"unknown bound key": {
			src:  "ROWS\n N  obj\nCOLUMNS\n    x  obj  1\nBOUNDS\n ZZ BND  x  1\n",
			want: "unknown bound key",
		},
		"bound without value": {
			src:  "ROWS\n N  obj\nCOLUMNS\n    x  obj  1\nBOUNDS\n UP BND  x\n",
			want: "needs a value",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert := require.New(t)
			_, err := Read(strings.NewReader(tc.src))
			assert.ErrorIs(err, ErrFormat)
			assert.ErrorContains(err, tc.want)
		})
	}
}

func TestWriteValidation(t *testing.T) {
	inf := engine.Infinity
	cases := map[string]struct {
		m    *Model
		want string
	}{
		"duplicate row name": {
			m: &Model{Rows: []Row{
				{Name: "r", Lower: -inf, Upper: 1},
				{Name: "r", Lower: -inf, Upper: 2},
			}},
			want: "duplicate row name",
		},
		"row clashes with objective": {
			m:    &Model{Rows: []Row{{Name: "obj", Lower: -inf, Upper: 1}}},
			want: `duplicate row name "obj"`,
		},
		"column out of range": {
			m: &Model{Rows: []Row{
				{Name: "r", Cols: []int{3}, Coefs: []float64{1}, Lower: -inf, Upper: 1},
			}},
			want: "references column",
		},
		"name with whitespace": {
			m:    &Model{Columns: []Column{{Name: "bad name", Upper: inf}}},
			want: "not a plain mps field",
		},
		"inverted row bounds": {
			m:    &Model{Rows: []Row{{Name: "r", Lower: 2, Upper: 1}}},
			want: "exceeds upper bound",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert := require.New(t)
			err := Write(&bytes.Buffer{}, tc.m)
			assert.ErrorContains(err, tc.want)
		})
	}
}
