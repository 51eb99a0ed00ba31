package avm1

import (
	"fmt"

	"github.com/lantern-player/lantern/heap"
)

// ScriptError is a scripting exception carrying a thrown value. It is
// catchable by a Try block in interpreted code; if nothing catches it, the
// player logs it and aborts the current frame's execution.
type ScriptError struct {
	Thrown heap.Value
	// Text is a best-effort rendering of the thrown value for logs.
	Text string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("avm1: uncaught error: %s", e.Text)
}

// RecursionError reports that a call exceeded the configured recursion
// depth. The call fails before any activation state is built.
type RecursionError struct {
	Limit int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("avm1: %d levels of recursion were exceeded", e.Limit)
}

// NotCallableError reports an attempt to call a value that is not a
// function.
type NotCallableError struct {
	Name string
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("avm1: %q is not a function", e.Name)
}

// InvalidActionError reports a malformed instruction stream. Like a bad
// constant pool reference, it indicates broken input rather than a script
// bug, and is not catchable.
type InvalidActionError struct {
	Offset int
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("avm1: invalid action at offset %d: %s", e.Offset, e.Reason)
}
