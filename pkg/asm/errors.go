package asm

import "fmt"

// Kind classifies an assembly failure. Each kind is itself an error so callers
// can test for it with errors.Is.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrUnrecognizedMnemonic Kind = "unrecognized mnemonic"
	ErrInvalidSymbol        Kind = "invalid symbol"
	ErrDuplicateSymbol      Kind = "duplicate symbol"
	ErrUndefinedSymbol      Kind = "undefined symbol"
	ErrIntegerTooLarge      Kind = "integer too large"
	ErrProgramTooLarge      Kind = "ROM capacity exceeded"
	ErrOutOfDataMemory      Kind = "RAM capacity exceeded"
)

// Error is a failure of one assembly run. Line is the 1-based source line the
// failure was detected on, or 0 when it is not tied to a line.
type Error struct {
	Kind   Kind
	Line   int
	Detail string
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// atLine decorates err with a line number unless it already carries one.
func atLine(err error, line int) error {
	if e, ok := err.(*Error); ok {
		if e.Line != 0 {
			return e
		}
		decorated := *e
		decorated.Line = line
		return &decorated
	}
	return fmt.Errorf("line %d: %w", line, err)
}
