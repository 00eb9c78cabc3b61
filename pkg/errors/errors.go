package errors

import (
	"fmt"
	"io"
	"strings"
)

// Error is implemented by every error the pipeline reports.
type Error interface {
	error
	Pos() Position
	Kind() string // "Syntax", "Unsupported"
	// Message returns the message without position info.
	Message() string
	Unwrap() error
}

// SyntaxError is raised by the lexer, the parser and the early-error checks
// of scope analysis.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// UnsupportedError reports a construct the lowering does not handle.
// Construct names the source node kind, e.g. "ArrowFunctionLiteral".
type UnsupportedError struct {
	Position
	Construct string
	Detail    string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Unsupported Error at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *UnsupportedError) Pos() Position { return e.Position }
func (e *UnsupportedError) Kind() string  { return "Unsupported" }
func (e *UnsupportedError) Message() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s is not supported (%s)", e.Construct, e.Detail)
	}
	return fmt.Sprintf("%s is not supported", e.Construct)
}
func (e *UnsupportedError) Unwrap() error { return nil }

// InvariantError is the panic value used when an internal precondition
// does not hold. It is never returned as an error.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "invariant violated: " + e.Msg }

// Invariantf panics with an *InvariantError.
func Invariantf(format string, args ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}

// DisplayErrors writes errs to w, each followed by the offending source line
// and a caret under the column.
func DisplayErrors(w io.Writer, source string, errs []Error) {
	if len(errs) == 0 {
		return
	}
	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s Error: %s\n", err.Kind(), err.Message())
			continue
		}
		name := ""
		if pos.Source != nil {
			name = pos.Source.DisplayPath() + ":"
		}
		fmt.Fprintf(w, "%s Error at %s%d:%d: %s\n", err.Kind(), name, pos.Line, pos.Column, err.Message())
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(lines[lineIdx], "\r\n\t "))
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "  %s^\n\n", strings.Repeat(" ", col))
	}
}
