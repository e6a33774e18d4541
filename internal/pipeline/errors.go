package pipeline

import (
	"fmt"
	"strings"
)

// CompileError reports a component that failed to compile. Errs are the
// diagnostics collected by the compiler, in stage order.
type CompileError struct {
	File string
	Errs []error
}

func (e *CompileError) Error() string {
	if len(e.Errs) == 1 {
		return fmt.Sprintf("%s: %v", e.File, e.Errs[0])
	}
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = "  " + err.Error()
	}
	return fmt.Sprintf("%s: %d errors:\n%s", e.File, len(e.Errs), strings.Join(msgs, "\n"))
}

func (e *CompileError) Unwrap() []error {
	return e.Errs
}

// WriteError reports a compiled component whose outputs could not be stored.
type WriteError struct {
	File  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: writing outputs: %v", e.File, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
