package mysqlschema

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType matches, via errors.Is, the error returned for column
// type keywords the parser does not know.
var ErrUnsupportedType = errors.New("unsupported type")

// UnsupportedTypeError names the unknown type keyword.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return ErrUnsupportedType.Error() + ": " + e.Type
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// ParseError reports a line of DDL that could not be decoded.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %q", msg, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(line, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// LookupError reports a column or index requested by a name the table does
// not have.
type LookupError struct {
	Table string
	Kind  string // "column" or "index"
	Name  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("table %s does not have %s %s", e.Table, e.Kind, e.Name)
}
