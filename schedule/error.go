package schedule

import (
	"fmt"
	"strings"
)

// ErrorKind classifies which stage produced an Error.
type ErrorKind string

const (
	ErrorKindLex   ErrorKind = "lex"
	ErrorKindParse ErrorKind = "parse"
	ErrorKindEval  ErrorKind = "eval"
	ErrorKindCron  ErrorKind = "cron"
)

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Error is the error type returned by parsing, evaluation, and cron
// conversion. Lex and parse errors carry the offending span and the full
// input so they can be rendered with a caret underline.
type Error struct {
	Kind       ErrorKind
	Message    string
	Span       *Span
	Input      string
	Suggestion string
}

func (e *Error) Error() string {
	return e.Message
}

// NewLexError builds a lex-stage error pointing at span within input.
func NewLexError(message string, span Span, input string) *Error {
	return &Error{Kind: ErrorKindLex, Message: message, Span: &span, Input: input}
}

// NewParseError builds a parse-stage error. suggestion may be empty.
func NewParseError(message string, span Span, input, suggestion string) *Error {
	return &Error{Kind: ErrorKindParse, Message: message, Span: &span, Input: input, Suggestion: suggestion}
}

// NewEvalError builds an evaluation-stage error.
func NewEvalError(message string) *Error {
	return &Error{Kind: ErrorKindEval, Message: message}
}

// NewCronError builds a cron-conversion error.
func NewCronError(message string) *Error {
	return &Error{Kind: ErrorKindCron, Message: message}
}

// DisplayRich renders the error for terminals. Lex and parse errors with a
// span produce a three-line diagnostic: the message, the input indented by
// two spaces, and a caret underline at the span (minimum width one), followed
// by the suggestion when present. Other errors render as a single line.
func (e *Error) DisplayRich() string {
	if (e.Kind == ErrorKindLex || e.Kind == ErrorKindParse) && e.Span != nil && e.Input != "" {
		var sb strings.Builder
		fmt.Fprintf(&sb, "error: %s\n", e.Message)
		fmt.Fprintf(&sb, "  %s\n", e.Input)

		width := e.Span.End - e.Span.Start
		if width < 1 {
			width = 1
		}
		sb.WriteString(strings.Repeat(" ", e.Span.Start+2))
		sb.WriteString(strings.Repeat("^", width))

		if e.Suggestion != "" {
			fmt.Fprintf(&sb, " try: %q", e.Suggestion)
		}
		return sb.String()
	}
	return fmt.Sprintf("error: %s", e.Message)
}
