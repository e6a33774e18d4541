package compiler

import (
	"errors"
	"fmt"
)

// Error kinds. Every error in Result.Errors matches exactly one of these
// with errors.Is, except template diagnostics which are reported as the
// template compiler produced them.
var (
	// ErrParse indicates a malformed document.
	ErrParse = errors.New("parse error")

	// ErrUnsupportedLanguage indicates a script or template language
	// outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnsupportedStyleLang indicates a style language other than css,
	// scss, sass or less.
	ErrUnsupportedStyleLang = errors.New("unsupported style language")

	// ErrExtensionMismatch indicates an external reference whose extension
	// contradicts the declared language.
	ErrExtensionMismatch = errors.New("extension mismatch")

	// ErrUnsupportedExternalReference indicates an external template or
	// setup script.
	ErrUnsupportedExternalReference = errors.New("unsupported external reference")

	// ErrConflictingStyleFlags indicates scoped and module on the same
	// external style reference.
	ErrConflictingStyleFlags = errors.New("conflicting style flags")

	// ErrSubCompiler wraps a failure of a section compiler or the
	// transpiler.
	ErrSubCompiler = errors.New("sub-compiler error")
)

// Error is a compile error attributed to one section of the document.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// Block names the section, e.g. "script" or "style[1]".
	Block   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Block != "" {
		msg = e.Block + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func newError(kind error, block, format string, args ...any) *Error {
	return &Error{Kind: kind, Block: block, Message: fmt.Sprintf(format, args...)}
}

// subCompilerError wraps err unless it is already a compile error.
func subCompilerError(block, message string, err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: ErrSubCompiler, Block: block, Message: message, Cause: err}
}

// guard runs fn and converts a panic into an ErrSubCompiler error.
func guard(block string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: ErrSubCompiler, Block: block, Message: fmt.Sprintf("compiler panic: %v", r)}
		}
	}()
	return fn()
}
