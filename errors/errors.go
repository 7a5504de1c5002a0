package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // WAVE text to value tree
	PhaseEncode   Phase = "encode"   // value tree to WAVE text
	PhaseValidate Phase = "validate" // value tree against a WIT type
	PhaseCompile  Phase = "compile"  // WIT type translation and schema generation
	PhaseLoad     Phase = "load"     // descriptor loading
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindOutOfRange     Kind = "out_of_range"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindFieldMissing   Kind = "field_missing"
	KindInvalidEnum    Kind = "invalid_enum"
	KindInvalidVariant Kind = "invalid_variant"
	KindInvalidFlag    Kind = "invalid_flag"
	KindLength         Kind = "length"
	KindUnknownType    Kind = "unknown_type"
	KindTooDeep        Kind = "too_deep"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	WitType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.WitType != "" {
		b.WriteString(": WIT type ")
		b.WriteString(e.WitType)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Field returns the name of the innermost field on the error path,
// or an empty string when the error is not tied to a field.
func (e *Error) Field() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[len(e.Path)-1]
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = append([]string(nil), path...)
	return b
}

// GoType sets the runtime type name of the offending value
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error naming the expected WIT type and
// the runtime type that was found.
func TypeMismatch(phase Phase, path []string, got, witType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  got,
		WitType: witType,
		Detail:  fmt.Sprintf("expected %s, got %s", witType, got),
	}
}

// OutOfRange creates an error for a number outside the range of an integer type
func OutOfRange(phase Phase, path []string, value any, witType string, lo, hi any) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutOfRange,
		Path:    path,
		WitType: witType,
		Value:   value,
		Detail:  fmt.Sprintf("value %v out of range for %s (%v..%v)", value, witType, lo, hi),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, value any, cases []string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidEnum,
		Path:    path,
		WitType: "enum",
		Value:   value,
		Detail:  fmt.Sprintf("invalid enum value %v, expected one of [%s]", value, strings.Join(cases, ", ")),
	}
}

// InvalidVariant creates an error for a variant case that is not declared
func InvalidVariant(phase Phase, path []string, caseName string, cases []string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidVariant,
		Path:    path,
		WitType: "variant",
		Value:   caseName,
		Detail:  fmt.Sprintf("unknown variant case %q, expected one of [%s]", caseName, strings.Join(cases, ", ")),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// UnknownType creates an error for a type tag outside the WIT vocabulary
func UnknownType(phase Phase, path []string, tag string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnknownType,
		Path:    path,
		WitType: tag,
		Detail:  fmt.Sprintf("unrecognized type %q", tag),
	}
}

// TooDeep creates an error for input nested beyond the configured limit
func TooDeep(phase Phase, path []string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTooDeep,
		Path:   path,
		Detail: fmt.Sprintf("maximum nesting depth %d exceeded", limit),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a descriptor loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// SyntaxError reports malformed WAVE text. Offset is the byte offset into the
// input at which the problem was detected.
type SyntaxError struct {
	Message string
	Offset  int
}

// Syntax creates a syntax error at the given byte offset
func Syntax(offset int, msg string, args ...any) *SyntaxError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &SyntaxError{Offset: offset, Message: msg}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[%s] syntax error at offset %d: %s", PhaseParse, e.Offset, e.Message)
}

// Is reports whether target is a SyntaxError
func (e *SyntaxError) Is(target error) bool {
	_, ok := target.(*SyntaxError)
	return ok
}
