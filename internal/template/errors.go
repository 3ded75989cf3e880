package template

import (
	"errors"
	"fmt"
)

// ErrorKind describes the class of a template error.
type ErrorKind int

const (
	// ErrMalformed covers unterminated tags and unbalanced or
	// unrecognized control structures.
	ErrMalformed ErrorKind = iota
	// ErrUndefinedVar is returned when an expression references a name
	// that is not present in the render context.
	ErrUndefinedVar
	// ErrEval covers runtime failures inside expression or statement
	// evaluation, such as comparing incompatible types.
	ErrEval
	// ErrNotFound is returned by the loader when the named template
	// file does not exist.
	ErrNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformed:
		return "malformed template"
	case ErrUndefinedVar:
		return "undefined variable"
	case ErrEval:
		return "evaluation error"
	case ErrNotFound:
		return "template not found"
	default:
		return "error"
	}
}

// Error is the error type produced by the lexer, parser, renderer, and
// loader. Line is 1-based and refers to the template source; it is zero
// when no position is known.
type Error struct {
	Kind    ErrorKind
	Message string
	Name    string // template name, when loaded by name
	Line    int
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Name != "" && e.Line > 0:
		return fmt.Sprintf("%s: %s (%s:%d)", e.Kind, e.Message, e.Name, e.Line)
	case e.Line > 0:
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	case e.Name != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Name)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) withLine(line int) *Error {
	if e.Line == 0 {
		e.Line = line
	}
	return e
}

func (e *Error) withName(name string) *Error {
	if e.Name == "" {
		e.Name = name
	}
	return e
}

// IsKind reports whether err is a template Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}
