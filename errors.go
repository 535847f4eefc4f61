// errors.go implements the error taxonomy plus the caret-snippet diagnostic
// renderer. Internal evaluation signals an error by panicking with rtErr,
// recovered exactly once per fiber at the scheduler boundary. This keeps
// eval's signature free of a second error return threaded through every
// recursive call while still guaranteeing every error is classified and
// written to the fiber's result slot exactly once.
package twine

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind is the closed error taxonomy — kinds, not type names.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindUnboundIdentifier
	KindType
	KindArity
	KindNumeric
	KindIO
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "Syntax"
	case KindUnboundIdentifier:
		return "UnboundIdentifier"
	case KindType:
		return "TypeError"
	case KindArity:
		return "ArityError"
	case KindNumeric:
		return "NumericError"
	case KindIO:
		return "IoError"
	case KindInternal:
		return "InternalError"
	}
	return "UnknownError"
}

// EvalError is the value ultimately stored in a fiber's result slot on
// failure. It carries the source position of the originating AST node when
// available.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Pos     SourcePos
	cause   error
}

func (e *EvalError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Pos.Line, e.Pos.Col, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EvalError) Unwrap() error { return e.cause }

// rtErr is the internal panic carrier. Builtins and the evaluator call fail
// (or one of the kind-specific helpers below) to raise it; the one recover
// site converts it to an *EvalError.
type rtErr struct {
	err *EvalError
}

func fail(kind ErrorKind, pos SourcePos, format string, args ...any) {
	panic(rtErr{err: &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}})
}

func failSyntax(pos SourcePos, format string, args ...any) {
	fail(KindSyntax, pos, format, args...)
}

func failUnbound(pos SourcePos, name string) {
	fail(KindUnboundIdentifier, pos, "unbound identifier: %s", name)
}

func failType(pos SourcePos, expected, got string) {
	fail(KindType, pos, "expected %s, got %s", expected, got)
}

func failArity(pos SourcePos, op string, expected, got int) {
	fail(KindArity, pos, "%s: expected %d argument(s), got %d", op, expected, got)
}

func failNumeric(pos SourcePos, reason string) {
	fail(KindNumeric, pos, "%s", reason)
}

// failIO wraps a lower-level OS/backend error with github.com/pkg/errors
// before classifying it, preserving a cause chain so the original I/O
// error stays inspectable through Unwrap after being retagged as KindIO.
func failIO(pos SourcePos, detail string, cause error) {
	wrapped := errors.Wrap(cause, detail)
	panic(rtErr{err: &EvalError{Kind: KindIO, Message: wrapped.Error(), Pos: pos, cause: cause}})
}

func failInternal(pos SourcePos, format string, args ...any) {
	fail(KindInternal, pos, format, args...)
}

// recoverEval converts a panic value into an *EvalError. Any panic that is
// not an rtErr is classified InternalError rather than discarded, so no
// error condition is ever silently dropped.
func recoverEval(r any) *EvalError {
	switch v := r.(type) {
	case rtErr:
		return v.err
	case *EvalError:
		return v
	case error:
		return &EvalError{Kind: KindInternal, Message: v.Error()}
	default:
		return &EvalError{Kind: KindInternal, Message: fmt.Sprintf("unexpected panic: %v", v)}
	}
}

// PrettyError renders an *EvalError as a caret-snippet diagnostic against
// source text: a header line followed by up to one line of context before
// and after the offending line, with a caret under the 1-based column.
func PrettyError(src string, e *EvalError) string {
	if e.Pos.Line <= 0 {
		return e.Error()
	}
	lines := strings.Split(src, "\n")
	line := e.Pos.Line
	col := e.Pos.Col
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", e.Kind, e.Pos.Line, e.Pos.Col, e.Message)
	if line-2 >= 0 && line-2 < len(lines) {
		fmt.Fprintf(&b, "  %4d | %s\n", line-1, lines[line-2])
	}
	if line-1 >= 0 && line-1 < len(lines) {
		fmt.Fprintf(&b, "  %4d | %s\n", line, lines[line-1])
	}
	caretCol := col
	if caretCol < 1 {
		caretCol = 1
	}
	b.WriteString("       | ")
	b.WriteString(strings.Repeat(" ", caretCol-1))
	b.WriteString("^\n")
	if line < len(lines) {
		fmt.Fprintf(&b, "  %4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
