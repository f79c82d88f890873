package engine

import (
	"errors"
	"fmt"
)

// Code classifies the failure of an engine call.
type Code uint8

const (
	// CodeOK is the zero code; it never appears in an Error.
	CodeOK Code = iota
	// CodeError is an unspecified engine failure.
	CodeError
	// CodeNoMemory reports an allocation failure inside the engine.
	CodeNoMemory
	// CodeReadError reports unparsable input.
	CodeReadError
	// CodeWriteError reports a failed write.
	CodeWriteError
	// CodeNoFile reports a missing file or executable.
	CodeNoFile
	// CodeLPError reports a failure inside the LP core.
	CodeLPError
	// CodeNoProblem reports a call that needs a model when none exists.
	CodeNoProblem
	// CodeInvalidCall reports a call made in the wrong stage.
	CodeInvalidCall
	// CodeInvalidData reports arguments the engine cannot accept.
	CodeInvalidData
	// CodeInvalidResult reports a result the engine cannot represent.
	CodeInvalidResult
	// CodePluginNotFound reports an unknown plugin or engine name.
	CodePluginNotFound
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeError:
		return "unspecified error"
	case CodeNoMemory:
		return "insufficient memory"
	case CodeReadError:
		return "read error"
	case CodeWriteError:
		return "write error"
	case CodeNoFile:
		return "file not found"
	case CodeLPError:
		return "error in LP solver"
	case CodeNoProblem:
		return "no problem exists"
	case CodeInvalidCall:
		return "method cannot be called at this stage"
	case CodeInvalidData:
		return "method cannot be called with this data"
	case CodeInvalidResult:
		return "method returned an invalid result"
	case CodePluginNotFound:
		return "plugin not found"
	}
	return "unknown error code"
}

// Error is the failure of an engine call. Op names the call in the
// engine's vocabulary, Code classifies it.
type Error struct {
	Op   string
	Code Code
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "engine: " + e.Op + ": " + e.Code.String() + ": " + e.Err.Error()
	}
	return "engine: " + e.Op + ": " + e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Errf builds an Error with a formatted cause. With an empty format the
// cause is left nil.
func Errf(op string, code Code, format string, args ...any) *Error {
	e := &Error{Op: op, Code: code}
	if format != "" {
		e.Err = fmt.Errorf(format, args...)
	}
	return e
}

// CodeOf extracts the Code from err. It reports CodeOK when err is not
// an engine Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeOK
}
