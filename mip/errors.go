package mip

import (
	"errors"
	"fmt"

	"github.com/go-opt/milo/debug"
)

// Validation errors raised by the front-end before any engine call.
var (
	ErrSessionClosed     = errors.New("session is closed")
	ErrInvalidVariable   = errors.New("invalid variable")
	ErrForeignVariable   = errors.New("variable not associated with this session")
	ErrInvalidConstraint = errors.New("invalid constraint")
	ErrForeignConstraint = errors.New("constraint not associated with this session")
	ErrValueNotNumeric   = errors.New("value is not a number")
	ErrDimensionMismatch = errors.New("variables and coefficients differ in length")

	// ErrInfeasibleSeed reports a seed assignment that failed the
	// feasibility check. The candidate has still been offered to the
	// engine by the time the error is returned.
	ErrInfeasibleSeed = errors.New("infeasible primal solution")
)

// wrap adds detail to a sentinel error. With the debug build tag set
// the call stack is appended.
func wrap(sentinel error, format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
	if debug.Debug {
		err = fmt.Errorf("%w\n%s", err, debug.Stack())
	}
	return err
}
