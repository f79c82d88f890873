package mip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opt/milo/engine"
	"github.com/go-opt/milo/engine/enginetest"
)

func TestOptimizeCallOrder(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()

	x, err := s.Var(WithCoefficient(1), WithLower(0), WithUpper(1))
	assert.NoError(err)
	_, err = s.ConstrainLe(1, []*Var{x}, []float64{1})
	assert.NoError(err)

	sol, err := s.Maximize()
	assert.NoError(err)

	assert.Equal([]string{
		"Init",
		"AddColumn",
		"AddRow",
		"SetObjSense",
		"ResetClock",
		"SetObjOffset",
		"Solve",
	}, f.Ops)
	assert.Equal(engine.Maximize, f.Sense)
	assert.Equal(1, f.ClockResets)
	assert.True(s.Solved())
	assert.True(sol.Optimal())
	assert.True(sol.Feasible())
}

func TestSeededOptimizeCallOrder(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()

	x, err := s.Var()
	assert.NoError(err)

	_, err = s.Minimize(WithSeed(map[*Var]float64{x: 2}))
	assert.NoError(err)

	assert.Equal([]string{
		"Init",
		"AddColumn",
		"SetObjSense",
		"Transform",
		"NewCandidate",
		"SetCandidateValue",
		"CheckCandidate",
		"TryCandidate",
		"ResetClock",
		"SetObjOffset",
		"Solve",
	}, f.Ops)
	assert.Equal(engine.Minimize, f.Sense)
	assert.Equal(map[engine.ColumnID]float64{0: 2}, f.Candidate)
	assert.Equal(1, f.Checked)
	assert.Equal(1, f.Tried)
	assert.Equal(1, f.Solves)
}

func TestSeedZeroValuesSkipped(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()

	x, err := s.Var()
	assert.NoError(err)
	y, err := s.Var()
	assert.NoError(err)

	_, err = s.Minimize(WithSeed(map[*Var]float64{x: 0, y: 5}))
	assert.NoError(err)

	// zero assignments are the candidate default and are not sent
	assert.Equal(map[engine.ColumnID]float64{1: 5}, f.Candidate)
}

func TestEmptySeedSkipsCandidate(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()

	_, err := s.Var()
	assert.NoError(err)
	_, err = s.Minimize(WithSeed(map[*Var]float64{}))
	assert.NoError(err)

	assert.NotContains(f.Ops, "Transform")
	assert.NotContains(f.Ops, "NewCandidate")
	assert.Equal(1, f.Solves)
}

func TestInfeasibleSeedAbortsAfterOffer(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{CandidateInfeasible: true}
	s := newFakeSession(t, f)
	defer s.Close()

	x, err := s.Var()
	assert.NoError(err)

	_, err = s.Maximize(WithSeed(map[*Var]float64{x: 1}))
	assert.ErrorIs(err, ErrInfeasibleSeed)

	// the engine saw the candidate, the search never started
	assert.Equal(1, f.Tried)
	assert.Equal(0, f.Solves)
	assert.False(s.Solved())

	// the aborted solve left the engine transformed; the next sense
	// change fails until an explicit restart
	_, err = s.Maximize()
	assert.Equal(engine.CodeInvalidCall, engine.CodeOf(err))

	assert.NoError(s.Restart())
	_, err = s.Maximize()
	assert.NoError(err)
	assert.Equal(1, f.Solves)
}

func TestSeedValidationLeavesEngineUntouched(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()
	_, err := s.Var()
	assert.NoError(err)

	other, err := New()
	assert.NoError(err)
	defer other.Close()
	foreign, err := other.Var()
	assert.NoError(err)

	_, err = s.Maximize(WithSeed(map[*Var]float64{foreign: 1}))
	assert.ErrorIs(err, ErrForeignVariable)
	assert.NotContains(f.Ops, "Transform")

	_, err = s.Maximize(WithSeed(map[*Var]float64{nil: 1}))
	assert.ErrorIs(err, ErrInvalidVariable)
	assert.NotContains(f.Ops, "Transform")

	own, err := s.Var()
	assert.NoError(err)
	_, err = s.Maximize(WithSeed(map[*Var]float64{own: math.NaN()}))
	assert.ErrorIs(err, ErrValueNotNumeric)
	assert.NotContains(f.Ops, "Transform")
	assert.Equal(0, f.Solves)
}

func TestLimitsForwarded(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{Objective: 10}
	s := newFakeSession(t, f)
	defer s.Close()
	_, err := s.Var()
	assert.NoError(err)

	sol, err := s.Maximize(
		WithTime(30),
		WithGap(0.05),
		WithAbsGap(0.5),
		WithSolutions(2),
		WithOffset(4),
	)
	assert.NoError(err)

	st := f.Settings()
	assert.Equal(30.0, st.Time)
	assert.Equal(0.05, st.Gap)
	assert.Equal(0.5, st.AbsGap)
	assert.Equal(2, st.Solutions)
	assert.Equal(4.0, f.Offset)
	assert.Equal(14.0, sol.Objective())

	// a later plain solve falls back to the defaults
	_, err = s.Maximize()
	assert.NoError(err)
	assert.Equal(engine.Infinity, st.Time)
	assert.Equal(0.0, st.Gap)
	assert.Equal(0.0, st.AbsGap)
	assert.Equal(-1, st.Solutions)
	assert.Equal(0.0, f.Offset)
}

func TestSolveOptionValidation(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()

	_, err := s.Maximize(WithTime(-1))
	assert.ErrorIs(err, ErrValueNotNumeric)
	_, err = s.Maximize(WithGap(math.NaN()))
	assert.ErrorIs(err, ErrValueNotNumeric)
	_, err = s.Maximize(WithAbsGap(-2))
	assert.ErrorIs(err, ErrValueNotNumeric)
	_, err = s.Maximize(WithOffset(math.NaN()))
	assert.ErrorIs(err, ErrValueNotNumeric)
	assert.Equal(0, f.Solves)
}

func TestImplicitRestartBetweenSolves(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{}
	s := newFakeSession(t, f)
	defer s.Close()
	_, err := s.Var()
	assert.NoError(err)

	_, err = s.Maximize()
	assert.NoError(err)
	_, err = s.Minimize()
	assert.NoError(err)

	assert.Equal(2, f.Solves)
	assert.Equal(engine.Minimize, f.Sense)
	assert.Contains(f.Ops, "FreeTransform")
}

func TestSolveFailureSurfaced(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{Fail: map[string]engine.Code{"Solve": engine.CodeLPError}}
	s := newFakeSession(t, f)
	defer s.Close()
	_, err := s.Var()
	assert.NoError(err)

	_, err = s.Minimize()
	assert.Equal(engine.CodeLPError, engine.CodeOf(err))
	assert.False(s.Solved())
}

func TestSnapshotValues(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{
		Objective: 7,
		Bound:     9,
		Values:    map[engine.ColumnID]float64{0: 1.5},
	}
	s := newFakeSession(t, f)
	defer s.Close()

	x, err := s.Var()
	assert.NoError(err)
	y, err := s.Var()
	assert.NoError(err)

	sol, err := s.Maximize()
	assert.NoError(err)

	assert.Equal(7.0, sol.Objective())
	assert.Equal(9.0, sol.Bound())
	assert.Equal(1.5, sol.Value(x))
	assert.Zero(sol.Value(y))
	assert.Len(sol.Values(), 2)
	assert.Len(sol.Nonzero(), 1)
}

func TestSnapshotWithoutSolution(t *testing.T) {
	assert := require.New(t)

	f := &enginetest.Fake{SolveStatus: engine.StatusInfeasible}
	s := newFakeSession(t, f)
	defer s.Close()
	x, err := s.Var()
	assert.NoError(err)

	sol, err := s.Minimize()
	assert.NoError(err)
	assert.True(sol.Infeasible())
	assert.False(sol.Feasible())
	assert.Zero(sol.Value(x))
	assert.Empty(sol.Values())
}
