package relax

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opt/milo/engine"
)

func TestSolveGeneralBoundedRows(t *testing.T) {
	assert := require.New(t)

	obj, x, out, err := solveGeneral(
		[]float64{-1, -2},
		[]float64{0, 0},
		[]float64{10, 10},
		[]lpRow{{cols: []int{0, 1}, coefs: []float64{1, 1}, lo: -engine.Infinity, up: 4}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(-8, obj, 1e-6)
	assert.InDelta(0, x[0], 1e-6)
	assert.InDelta(4, x[1], 1e-6)
}

func TestSolveGeneralEquality(t *testing.T) {
	assert := require.New(t)

	obj, x, out, err := solveGeneral(
		[]float64{1, 0},
		[]float64{0, 0},
		[]float64{10, 10},
		[]lpRow{{cols: []int{0, 1}, coefs: []float64{1, 1}, lo: 3, up: 3}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(0, obj, 1e-6)
	assert.InDelta(3, x[0]+x[1], 1e-6)
	assert.InDelta(0, x[0], 1e-6)
}

func TestSolveGeneralRangeRow(t *testing.T) {
	assert := require.New(t)

	obj, x, out, err := solveGeneral(
		[]float64{1, 1},
		[]float64{0, 0},
		[]float64{10, 10},
		[]lpRow{{cols: []int{0, 1}, coefs: []float64{1, 1}, lo: 1, up: 2}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(1, obj, 1e-6)
	assert.InDelta(1, x[0]+x[1], 1e-6)
}

func TestSolveGeneralFreeColumn(t *testing.T) {
	assert := require.New(t)

	// a free column pushed to its row-implied minimum
	obj, x, out, err := solveGeneral(
		[]float64{1},
		[]float64{-engine.Infinity},
		[]float64{engine.Infinity},
		[]lpRow{{cols: []int{0}, coefs: []float64{1}, lo: -5, up: engine.Infinity}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(-5, obj, 1e-6)
	assert.InDelta(-5, x[0], 1e-6)
}

func TestSolveGeneralUpperBoundedColumn(t *testing.T) {
	assert := require.New(t)

	// maximize x (minimize -x) with only an upper bound
	obj, x, out, err := solveGeneral(
		[]float64{-1, 0},
		[]float64{-engine.Infinity, 0},
		[]float64{6, 10},
		[]lpRow{{cols: []int{0, 1}, coefs: []float64{1, 1}, lo: 2, up: engine.Infinity}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(-6, obj, 1e-6)
	assert.InDelta(6, x[0], 1e-6)
}

func TestSolveGeneralIndependentColumns(t *testing.T) {
	assert := require.New(t)

	// the second column appears in no row and is set by inspection
	obj, x, out, err := solveGeneral(
		[]float64{1, -2},
		[]float64{0, 0},
		[]float64{10, 3},
		[]lpRow{{cols: []int{0}, coefs: []float64{1}, lo: 1, up: engine.Infinity}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(1, x[0], 1e-6)
	assert.InDelta(3, x[1], 1e-6)
	assert.InDelta(-5, obj, 1e-6)
}

func TestSolveGeneralInfeasible(t *testing.T) {
	assert := require.New(t)

	_, _, out, err := solveGeneral(
		[]float64{0, 0},
		[]float64{0, 0},
		[]float64{1, 1},
		[]lpRow{{cols: []int{0, 1}, coefs: []float64{1, 1}, lo: 5, up: engine.Infinity}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpInfeasible, out)
}

func TestSolveGeneralUnbounded(t *testing.T) {
	assert := require.New(t)

	// minimize -x with x free above, held only from below
	_, _, out, err := solveGeneral(
		[]float64{-1},
		[]float64{0},
		[]float64{engine.Infinity},
		[]lpRow{{cols: []int{0}, coefs: []float64{1}, lo: 1, up: engine.Infinity}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpUnbounded, out)
}

func TestSolveGeneralEmptyRowFeasibility(t *testing.T) {
	assert := require.New(t)

	_, _, out, err := solveGeneral(
		[]float64{1},
		[]float64{0},
		[]float64{1},
		[]lpRow{{lo: 1, up: 2}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpInfeasible, out)

	obj, x, out, err := solveGeneral(
		[]float64{1},
		[]float64{0},
		[]float64{1},
		[]lpRow{{lo: -1, up: 2}},
		1e-6,
	)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.InDelta(0, obj, 1e-6)
	assert.InDelta(0, x[0], 1e-6)
}

func TestSolveGeneralNoModel(t *testing.T) {
	assert := require.New(t)

	obj, x, out, err := solveGeneral(nil, nil, nil, nil, 1e-6)
	assert.NoError(err)
	assert.Equal(lpOptimal, out)
	assert.Zero(obj)
	assert.Empty(x)
}
