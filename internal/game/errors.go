package game

import "fmt"

// Code classifies domain failures.
type Code int

const (
	CodeUnknown Code = iota
	CodeInvalidConfiguration
	CodeOutOfBounds
	CodeCellOccupied
	CodeInvalidInput
)

func (c Code) String() string {
	switch c {
	case CodeInvalidConfiguration:
		return "invalid configuration"
	case CodeOutOfBounds:
		return "out of bounds"
	case CodeCellOccupied:
		return "cell occupied"
	case CodeInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Error is a domain error carrying a machine-readable code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidConfiguration = &Error{Code: CodeInvalidConfiguration, Message: "invalid configuration"}
	ErrOutOfBounds          = &Error{Code: CodeOutOfBounds, Message: "out of bounds"}
	ErrCellOccupied         = &Error{Code: CodeCellOccupied, Message: "cell occupied"}
	ErrInvalidInput         = &Error{Code: CodeInvalidInput, Message: "invalid input"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput builds an input error for the turn loop.
func InvalidInput(format string, args ...any) *Error {
	return newError(CodeInvalidInput, format, args...)
}
