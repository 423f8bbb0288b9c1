package scan

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedScope  = errors.New("scan: malformed scope path")
	ErrMissingGeneric  = errors.New("scan: missing generic argument")
	ErrUnbalanced      = errors.New("scan: unbalanced delimiters")
	ErrBadAddress      = errors.New("scan: address must start with 0x")
	ErrUndefinedSymbol = errors.New("scan: undefined symbol")
	ErrNoIndirect      = errors.New("scan: indirection marker required")
	ErrStrict          = errors.New("scan: annotation skipped in strict mode")
)

// LineError anchors a fatal error to an input line.
type LineError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func lineErr(lineNo int, text string, err error) error {
	return &LineError{Line: lineNo, Text: text, Err: err}
}
