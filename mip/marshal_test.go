package mip

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-opt/milo/engine"
)

type varSnap struct {
	Name         string
	Type         engine.VarType
	Coef         float64
	Lower, Upper float64
	Priority     int
}

type consSnap struct {
	Names        []string
	Coefs        []float64
	Lower, Upper float64
}

func snapshotModel(t *testing.T, s *Session) ([]varSnap, []consSnap) {
	t.Helper()
	var vs []varSnap
	for _, v := range s.Vars() {
		prio, err := v.Priority()
		require.NoError(t, err)
		vs = append(vs, varSnap{
			Name:     v.Name(),
			Type:     v.Type(),
			Coef:     v.Coefficient(),
			Lower:    v.Lower(),
			Upper:    v.Upper(),
			Priority: prio,
		})
	}
	var cs []consSnap
	for _, c := range s.Cons() {
		if c.Removed() {
			continue
		}
		vars, coefs := c.Terms()
		snap := consSnap{Coefs: coefs, Lower: c.Lower(), Upper: c.Upper()}
		for _, v := range vars {
			snap.Names = append(snap.Names, v.Name())
		}
		cs = append(cs, snap)
	}
	return vs, cs
}

func TestModelRoundTrip(t *testing.T) {
	assert := require.New(t)

	s, err := New(WithName("diet"))
	assert.NoError(err)
	defer s.Close()

	x, err := s.Var(WithVarName("bread"), Integer(), WithCoefficient(3), WithLower(0), WithUpper(8), WithPriority(2))
	assert.NoError(err)
	y, err := s.Var(WithVarName("milk"), WithCoefficient(-1), WithLower(0))
	assert.NoError(err)
	b, err := s.Var(Binary(), WithCoefficient(5))
	assert.NoError(err)

	_, err = s.ConstrainLe(10, []*Var{x, y}, []float64{2, 1})
	assert.NoError(err)
	_, err = s.ConstrainEq(1, []*Var{x, y, b}, []float64{1, -1, 4})
	assert.NoError(err)
	gone, err := s.ConstrainGe(0, []*Var{b}, []float64{1})
	assert.NoError(err)
	assert.NoError(s.Unconstrain(gone))

	var buf bytes.Buffer
	n, err := s.WriteModel(&buf)
	assert.NoError(err)
	assert.EqualValues(buf.Len(), n)

	out, err := ReadModel(&buf)
	assert.NoError(err)
	defer out.Close()

	assert.Equal("diet", out.Name())

	wantVars, wantCons := snapshotModel(t, s)
	gotVars, gotCons := snapshotModel(t, out)
	if diff := cmp.Diff(wantVars, gotVars); diff != "" {
		t.Fatalf("variables mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantCons, gotCons); diff != "" {
		t.Fatalf("constraints mismatch (-want +got):\n%s", diff)
	}
	// the removed constraint is not part of the stream
	assert.Len(out.Cons(), 2)
}

func TestModelRoundTripSolves(t *testing.T) {
	assert := require.New(t)

	s, err := New()
	assert.NoError(err)
	defer s.Close()

	x, err := s.Var(Integer(), WithCoefficient(2), WithLower(0), WithUpper(10))
	assert.NoError(err)
	y, err := s.Var(Integer(), WithCoefficient(3), WithLower(0), WithUpper(10))
	assert.NoError(err)
	_, err = s.ConstrainLe(4, []*Var{x, y}, []float64{1, 1})
	assert.NoError(err)

	var buf bytes.Buffer
	_, err = s.WriteModel(&buf)
	assert.NoError(err)

	out, err := ReadModel(&buf)
	assert.NoError(err)
	defer out.Close()

	sol, err := out.Maximize()
	assert.NoError(err)
	assert.True(sol.Optimal())
	assert.InDelta(12, sol.Objective(), 1e-6)
}

func TestReadModelRejectsShortData(t *testing.T) {
	assert := require.New(t)

	_, err := ReadModel(bytes.NewReader([]byte{1, 2, 3}))
	assert.ErrorContains(err, "invalid data length")
}

func TestWriteModelClosedSession(t *testing.T) {
	assert := require.New(t)

	s, err := New()
	assert.NoError(err)
	assert.NoError(s.Close())

	var buf bytes.Buffer
	_, err = s.WriteModel(&buf)
	assert.ErrorIs(err, ErrSessionClosed)
}
