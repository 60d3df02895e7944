// Package diag defines source spans and the staged error type that every
// phase of the compiler reports through.
package diag

import "fmt"

// Span marks a region of source text. The zero value means "unknown
// location". Line and Column are 1-based; StartByte/EndByte are byte
// offsets into the original input, half-open.
type Span struct {
	Line      uint32
	Column    uint32
	StartByte int
	EndByte   int
}

func (s Span) Known() bool { return s.Line != 0 }

func (s Span) String() string {
	if !s.Known() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Stage identifies which phase produced an error.
type Stage int

const (
	StageLexer Stage = iota
	StageParser
	StageSemantic
	StageBackend
)

func (s Stage) String() string {
	switch s {
	case StageLexer:
		return "Lexer"
	case StageParser:
		return "Parser"
	case StageSemantic:
		return "Semantic"
	case StageBackend:
		return "Backend"
	}
	return "Unknown"
}

// Kind discriminates the error variants within a stage.
type Kind int

const (
	// Lexer
	UnknownCharacter Kind = iota
	UnterminatedString
	MalformedNumber
	MalformedChar

	// Parser
	UnexpectedToken
	UnexpectedEOF
	InvalidAssignmentTarget

	// Semantic
	SymbolAlreadyDefined
	SymbolNotFound
	TypeMismatch
	ConditionNotBoolean
	IllegalBreak
	IllegalContinue
	NotAFunction
	ArityMismatch
	InvalidOperatorForType
	ImmutableAssignment

	// Backend
	Internal
)

// Error is the diagnostic carried from any compiler stage to the driver.
type Error struct {
	Stage   Stage
	Kind    Kind
	Message string
	Span    Span
}

func (e *Error) Error() string {
	if e.Span.Known() {
		return fmt.Sprintf("%s Error: %s at line %d.", e.Stage, e.Message, e.Span.Line)
	}
	return fmt.Sprintf("%s Error: %s", e.Stage, e.Message)
}

func newError(stage Stage, kind Kind, span Span, format string, args ...any) *Error {
	return &Error{Stage: stage, Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// Lexer errors.

func NewUnknownCharacter(ch rune, span Span) *Error {
	return newError(StageLexer, UnknownCharacter, span, "unknown character '%c'", ch)
}

func NewUnterminatedString(start Span) *Error {
	return newError(StageLexer, UnterminatedString, start, "unterminated string literal")
}

func NewMalformedNumber(reason string, span Span) *Error {
	return newError(StageLexer, MalformedNumber, span, "malformed number literal: %s", reason)
}

func NewMalformedChar(span Span) *Error {
	return newError(StageLexer, MalformedChar, span, "malformed character literal")
}

// Parser errors.

func NewUnexpectedToken(expected, found string, span Span) *Error {
	return newError(StageParser, UnexpectedToken, span, "expected %s, found '%s'", expected, found)
}

func NewUnexpectedEOF(expected string) *Error {
	return newError(StageParser, UnexpectedEOF, Span{}, "unexpected end of input, expected %s", expected)
}

// NewInvalidAssignmentTarget takes the stage: the parser rejects some
// targets syntactically, the analyzer rejects the rest.
func NewInvalidAssignmentTarget(stage Stage, span Span) *Error {
	return newError(stage, InvalidAssignmentTarget, span, "invalid assignment target")
}

// Semantic errors.

func NewSymbolAlreadyDefined(name string, span Span) *Error {
	return newError(StageSemantic, SymbolAlreadyDefined, span, "symbol '%s' is already defined in this scope", name)
}

func NewSymbolNotFound(name string, span Span) *Error {
	return newError(StageSemantic, SymbolNotFound, span, "symbol '%s' not found", name)
}

func NewTypeMismatch(expected, found string, span Span) *Error {
	return newError(StageSemantic, TypeMismatch, span, "type mismatch: expected %s, found %s", expected, found)
}

func NewConditionNotBoolean(found string, span Span) *Error {
	return newError(StageSemantic, ConditionNotBoolean, span, "condition must be a boolean, found %s", found)
}

func NewIllegalBreak(span Span) *Error {
	return newError(StageSemantic, IllegalBreak, span, "'break' used outside of a loop")
}

func NewIllegalContinue(span Span) *Error {
	return newError(StageSemantic, IllegalContinue, span, "'continue' used outside of a loop")
}

func NewNotAFunction(found string, span Span) *Error {
	return newError(StageSemantic, NotAFunction, span, "cannot call a value of type %s", found)
}

func NewArityMismatch(expected, found int, span Span) *Error {
	return newError(StageSemantic, ArityMismatch, span, "wrong number of arguments: expected %d, found %d", expected, found)
}

func NewInvalidOperatorForType(operator, typ string, span Span) *Error {
	return newError(StageSemantic, InvalidOperatorForType, span, "operator '%s' is not defined for type %s", operator, typ)
}

func NewImmutableAssignment(name string, span Span) *Error {
	return newError(StageSemantic, ImmutableAssignment, span, "cannot assign to immutable binding '%s'", name)
}

// Backend errors. Conditions that indicate a bug in an earlier stage
// surface here instead of panicking.

func NewInternal(span Span, format string, args ...any) *Error {
	return newError(StageBackend, Internal, span, format, args...)
}

// Warning is a non-fatal diagnostic. Warnings never stop compilation.
type Warning struct {
	Message string
	Span    Span
}

func (w *Warning) String() string {
	if w.Span.Known() {
		return fmt.Sprintf("Warning: %s at line %d.", w.Message, w.Span.Line)
	}
	return fmt.Sprintf("Warning: %s", w.Message)
}

func NewWarning(span Span, format string, args ...any) *Warning {
	return &Warning{Message: fmt.Sprintf(format, args...), Span: span}
}
