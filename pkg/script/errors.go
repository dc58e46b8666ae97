package script

import (
	"errors"
	"fmt"
)

// ErrScriptEmpty is returned when a candidate script contains no code.
var ErrScriptEmpty = errors.New("script contains no code")

// ErrAlreadyLoaded is returned when Load is called on a Context that already
// holds a script. Contexts are load-once; build a new one to change scripts.
var ErrAlreadyLoaded = errors.New("script already loaded")

// ErrNoRenderFunction is returned when a script does not define the
// mandatory node_render entry point.
var ErrNoRenderFunction = errors.New("script does not define node_render")

// InterpreterError wraps an error raised inside the embedded interpreter,
// tagged with the operation that triggered it. It is the only error shape
// that crosses the interpreter seam.
type InterpreterError struct {
	Op  string
	Err error
}

func (e *InterpreterError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Op, e.Err)
}

func (e *InterpreterError) Unwrap() error { return e.Err }
