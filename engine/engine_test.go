package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeOfFallsBackToContinuous(t *testing.T) {
	assert := require.New(t)

	assert.Equal(Continuous, TypeOf(uint8(Continuous)))
	assert.Equal(Binary, TypeOf(uint8(Binary)))
	assert.Equal(Integer, TypeOf(uint8(Integer)))
	assert.Equal(SemiContinuous, TypeOf(uint8(SemiContinuous)))

	// unrecognized tags are continuous, not an error
	for tag := uint8(SemiContinuous) + 1; tag < 20; tag++ {
		assert.Equal(Continuous, TypeOf(tag))
	}
}

func TestIntegral(t *testing.T) {
	assert := require.New(t)

	assert.True(Binary.Integral())
	assert.True(Integer.Integral())
	assert.False(Continuous.Integral())
	assert.False(SemiContinuous.Integral())
}

func TestCodeOf(t *testing.T) {
	assert := require.New(t)

	err := Errf("solve", CodeLPError, "singular basis")
	assert.Equal(CodeLPError, CodeOf(err))
	assert.Equal(CodeLPError, CodeOf(fmt.Errorf("outer: %w", err)))
	assert.Equal(CodeOK, CodeOf(errors.New("plain")))
	assert.Equal(CodeOK, CodeOf(nil))
}

func TestErrorMessage(t *testing.T) {
	assert := require.New(t)

	assert.Equal("engine: addRow: method cannot be called at this stage",
		Errf("addRow", CodeInvalidCall, "").Error())
	assert.Equal("engine: solve: error in LP solver: singular basis",
		Errf("solve", CodeLPError, "singular basis").Error())
}

func TestParseCategory(t *testing.T) {
	assert := require.New(t)

	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		assert.NoError(err)
		assert.Equal(c, got)
	}

	got, err := ParseCategory(" Presolver ")
	assert.NoError(err)
	assert.Equal(Presolver, got)

	_, err = ParseCategory("cutting")
	assert.Error(err)
}

func TestDefaultSettings(t *testing.T) {
	assert := require.New(t)

	s := NewSettings()
	assert.Equal(float64(Infinity), s.Time)
	assert.Equal(0.0, s.Gap)
	assert.Equal(0.0, s.AbsGap)
	assert.Equal(-1, s.Solutions)
	assert.Equal(1e-6, s.FeasTol)
	assert.True(s.CatchInterrupts)
}
