package report

import "fmt"

// Severity is the severity level of a diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// Code is a stable diagnostic code, per the taxonomy in spec.md §7.
type Code string

const (
	CodeLexError          Code = "LexError"
	CodeLayoutError       Code = "LayoutError"
	CodeParseError        Code = "ParseError"
	CodeImportCycle       Code = "ImportCycle"
	CodeUnresolvedName    Code = "UnresolvedName"
	CodeRedefinition      Code = "Redefinition"
	CodeVisibilityViol    Code = "VisibilityViolation"
	CodeTypeMismatch      Code = "TypeMismatch"
	CodeOccursCheck       Code = "OccursCheck"
	CodeArityMismatch     Code = "ArityMismatch"
	CodeMissingField      Code = "MissingField"
	CodeUnknownField      Code = "UnknownField"
	CodeNonExhaustive     Code = "NonExhaustiveMatch"
	CodeUnreachableArm    Code = "UnreachableArm"
	CodeIllegalTopLevel   Code = "IllegalTopLevel"
	CodeDefaultParamOrder Code = "DefaultParamOrder"
	CodeReturnOutsideFunc Code = "ReturnOutsideFunction"
	CodeAwaitOutsideAsync Code = "AwaitOutsideAsync"
	CodeFfiLookupFailed   Code = "FfiLookupFailed"
	CodeConfigError       Code = "ConfigError"
	CodeProfileNotFound   Code = "ProfileNotFound"
	CodeInternalError     Code = "InternalCompilerError"
)

// Label attaches a short message to a secondary span within a diagnostic.
type Label struct {
	Span    Span
	Message string
}

// Diagnostic is a single structured, source-spanned compiler message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Span     Span
	Labels   []Label
	Message  string
}

// Errorf builds an error-severity diagnostic over a span.
func Errorf(code Code, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity diagnostic over a span.
func Warnf(code Code, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityWarning, Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// WithLabel attaches a secondary labeled span and returns the diagnostic for
// chaining.
func (d *Diagnostic) WithLabel(span Span, message string) *Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Message: message})
	return d
}
