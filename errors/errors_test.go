package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseValidate,
				Kind:    KindTypeMismatch,
				Path:    []string{"user", "address", "zip"},
				GoType:  "string",
				WitType: "u32",
				Detail:  "expected u32, got string",
			},
			contains: []string{"[validate]", "type_mismatch", "user.address.zip", "expected u32, got string"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseParse,
				Kind:  KindInvalidData,
			},
			contains: []string{"[parse]", "invalid_data"},
		},
		{
			name: "wit type without detail",
			err: &Error{
				Phase:   PhaseCompile,
				Kind:    KindUnsupported,
				WitType: "future",
			},
			contains: []string{"[compile]", "unsupported", "WIT type future"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "decode descriptor",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "decode descriptor", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseValidate,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseValidate, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseParse, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseValidate, Kind: KindOutOfRange}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseValidate, Kind: KindTypeMismatch}) {
		t.Error("errors.Is should match")
	}
}

func TestError_Field(t *testing.T) {
	err := &Error{Path: []string{"user", "age"}}
	if got := err.Field(); got != "age" {
		t.Errorf("Field() = %q, want %q", got, "age")
	}
	if got := (&Error{}).Field(); got != "" {
		t.Errorf("Field() on empty path = %q, want empty", got)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	path := []string{"user", "name"}
	err := New(PhaseValidate, KindTypeMismatch).
		Path(path...).
		GoType("number").
		WitType("string").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "number").
		Build()

	if err.Phase != PhaseValidate {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseValidate)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if err.Detail != "expected string, got number" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("Cause not set")
	}

	// Path copies its argument
	path[0] = "changed"
	if err.Path[0] != "user" {
		t.Error("Builder.Path must not alias the caller's slice")
	}
}

func TestBuilder_DetailWithoutArgs(t *testing.T) {
	err := New(PhaseParse, KindInvalidData).Detail("100% literal").Build()
	if err.Detail != "100% literal" {
		t.Errorf("Detail = %q, want %q", err.Detail, "100% literal")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		name string
		kind Kind
		want string
	}{
		{TypeMismatch(PhaseValidate, []string{"id"}, "string", "u32"), "type mismatch", KindTypeMismatch, "expected u32, got string"},
		{OutOfRange(PhaseValidate, []string{"n"}, 256, "u8", 0, 255), "out of range", KindOutOfRange, "value 256 out of range for u8 (0..255)"},
		{FieldMissing(PhaseValidate, nil, "id"), "field missing", KindFieldMissing, `required field "id" not found`},
		{InvalidEnum(PhaseValidate, nil, "x", []string{"a", "b"}), "invalid enum", KindInvalidEnum, "expected one of [a, b]"},
		{InvalidVariant(PhaseValidate, nil, "x", []string{"a"}), "invalid variant", KindInvalidVariant, `unknown variant case "x"`},
		{UnknownType(PhaseValidate, nil, "future"), "unknown type", KindUnknownType, `unrecognized type "future"`},
		{TooDeep(PhaseValidate, nil, 8), "too deep", KindTooDeep, "maximum nesting depth 8 exceeded"},
		{Unsupported(PhaseCompile, "stream types"), "unsupported", KindUnsupported, "stream types"},
		{InvalidData(PhaseLoad, nil, "bad"), "invalid data", KindInvalidData, "bad"},
		{InvalidInput(PhaseLoad, "empty"), "invalid input", KindInvalidInput, "empty"},
		{NotFound(PhaseLoad, "function", "greet"), "not found", KindNotFound, `function "greet" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestWrapAndLoad(t *testing.T) {
	cause := errors.New("yaml: line 3")
	w := Wrap(PhaseCompile, KindUnsupported, cause, "translate")
	if !errors.Is(w, cause) || w.Detail != "translate" {
		t.Errorf("Wrap = %+v", w)
	}

	l := Load("read descriptor", cause)
	if l.Phase != PhaseLoad || !errors.Is(l, cause) {
		t.Errorf("Load = %+v", l)
	}
}

func TestSyntaxError(t *testing.T) {
	err := Syntax(7, "unexpected character %q", ']')
	if err.Offset != 7 {
		t.Errorf("Offset = %d, want 7", err.Offset)
	}
	want := "[parse] syntax error at offset 7: unexpected character ']'"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var wrapped error = Wrap(PhaseLoad, KindInvalidData, err, "read input")
	var se *SyntaxError
	if !errors.As(wrapped, &se) || se.Offset != 7 {
		t.Error("errors.As should find the SyntaxError")
	}
	if !errors.Is(wrapped, &SyntaxError{}) {
		t.Error("errors.Is should match any SyntaxError")
	}

	plain := Syntax(0, "50% done")
	if plain.Message != "50% done" {
		t.Errorf("Message = %q", plain.Message)
	}
}
