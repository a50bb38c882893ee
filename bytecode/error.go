package bytecode

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Common compilation errors
var (
	// ErrInvalidPattern indicates the pattern or its options cannot be compiled
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrTooComplex indicates the pattern nests deeper than the compiler allows
	ErrTooComplex = errors.New("pattern too complex")
)

// ParseError is returned when the parser rejects the pattern text.
// Position is the byte offset of the offending token in Pattern, or -1 when
// the parser did not report one.
type ParseError struct {
	Pattern  string
	Code     syntax.ErrorCode
	Expr     string
	Position int
}

// Error implements the error interface, in the format of regexp/syntax.
func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing regexp: %s: `%s`", e.Code, e.Expr)
}

// Unwrap returns ErrInvalidPattern so callers can test with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrInvalidPattern
}

// Render formats the error with the pattern on one line and a caret under the
// error position on the next. An empty message uses the parser's error code.
//
//	Error during parsing of regular expression:
//	    a(b
//	     ^---- missing closing )
func (e *ParseError) Render(message string) string {
	if message == "" {
		message = e.Code.String()
	}
	var sb strings.Builder
	sb.WriteString("Error during parsing of regular expression:\n")
	sb.WriteString("    ")
	sb.WriteString(e.Pattern)
	sb.WriteString("\n    ")
	if pos := e.Position; pos > 0 && pos <= len(e.Pattern) {
		sb.WriteString(strings.Repeat(" ", runewidth.StringWidth(e.Pattern[:pos])))
	}
	sb.WriteString("^---- ")
	sb.WriteString(message)
	return sb.String()
}

func newParseError(pattern string, err error) error {
	var se *syntax.Error
	if !errors.As(err, &se) {
		return &CompileError{Pattern: pattern, Err: err}
	}
	pos := -1
	if se.Expr != "" {
		pos = strings.Index(pattern, se.Expr)
	}
	return &ParseError{
		Pattern:  pattern,
		Code:     se.Code,
		Expr:     se.Expr,
		Position: pos,
	}
}

// CompileError wraps failures that happen after parsing, while emitting the program
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface
func (e *CompileError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("bytecode compilation failed for pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("bytecode compilation failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *CompileError) Unwrap() error {
	return e.Err
}
