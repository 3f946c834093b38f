package analyzer

import (
	"fmt"

	"modernc.org/token"
)

// ErrorKind classifies a semantic error.
type ErrorKind int

const (
	// DeclarationError is a name bound twice in one scope.
	DeclarationError ErrorKind = iota + 1
	// ResolutionError is an identifier, module or field that was not found.
	ResolutionError
	// TypeError is a violated type expectation.
	TypeError
	// ControlFlowError is a break or return in the wrong place.
	ControlFlowError
)

func (k ErrorKind) String() string {
	switch k {
	case DeclarationError:
		return "declaration error"
	case ResolutionError:
		return "resolution error"
	case TypeError:
		return "type error"
	case ControlFlowError:
		return "control flow error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the first semantic violation found in a program.
type Error struct {
	kind ErrorKind
	pos  token.Position
	msg  string
}

// Kind reports the error class.
func (e *Error) Kind() ErrorKind { return e.kind }

// Position reports where the error was found.
func (e *Error) Position() token.Position { return e.pos }

// Message returns the error text without the location prefix.
func (e *Error) Message() string { return e.msg }

func (e *Error) Error() string {
	if !e.pos.IsValid() {
		return e.msg
	}
	return fmt.Sprintf("Line %d, col %d: %s", e.pos.Line, e.pos.Column, e.msg)
}
