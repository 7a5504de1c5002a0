package wave

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/value"
)

func rec(entries ...value.Entry) value.Map {
	return value.Map(entries)
}

func entry(key string, v value.Value) value.Entry {
	return value.Entry{Key: key, Value: v}
}

func TestEncode_Typed(t *testing.T) {
	shape := types.NewVariant(
		types.Case{Name: "circle", Type: types.F64},
		types.Case{Name: "point"},
		types.Case{Name: "rect", Type: types.NewRecord(
			types.Field{Name: "w", Type: types.U32},
			types.Field{Name: "h", Type: types.U32},
		)},
	)
	user := types.NewRecord(
		types.Field{Name: "id", Type: types.U32},
		types.Field{Name: "active", Type: types.Bool},
	)

	tests := []struct {
		name string
		v    value.Value
		typ  types.Type
		want string
	}{
		{"string", value.String("bar"), types.String, `"bar"`},
		{"string escapes", value.String("a\"b\\c\nd\te\rf\x01"), types.String, `"a\"b\\c\nd\te\rf\u{1}"`},
		{"bool", value.Bool(true), types.Bool, `true`},
		{"u32", value.Number(5), types.U32, `5`},
		{"s64 negative", value.Number(-9), types.S64, `-9`},
		{"u32 max", value.Number(4294967295), types.U32, `4294967295`},
		{"f64", value.Number(2.5), types.F64, `2.5`},
		{"f64 small", value.Number(1e-7), types.F64, `1e-07`},
		{"f64 nan", value.Number(math.NaN()), types.F64, `nan`},
		{"f32 -inf", value.Number(math.Inf(-1)), types.F32, `-inf`},
		{"char number", value.Number(97), types.Char, `97`},
		{"char string", value.String("é!"), types.Char, `233`},
		{"enum", value.String("low"), types.NewEnum("low", "high"), `low`},
		{"enum keyword", value.String("none"), types.NewEnum("none", "some"), `%none`},
		{"option none", value.Null{}, types.NewOption(types.String), `none`},
		{"option nil", nil, types.NewOption(types.String), `none`},
		{"option simple", value.String("bar"), types.NewOption(types.String), `"bar"`},
		{"option enum", value.String("low"), types.NewOption(types.NewEnum("low")), `low`},
		{"option record", rec(entry("id", value.Number(1))), types.NewOption(user), `some({id: 1})`},
		{"option untyped", value.Number(1), types.NewOption(nil), `some(1)`},
		{"list", value.List{value.Number(1), value.Number(2)}, types.NewList(types.U8), `[1, 2]`},
		{"list empty", value.List{}, types.NewList(types.U8), `[]`},
		{"list untyped", value.List{value.String("a"), value.Bool(false)}, types.NewList(nil), `["a", false]`},
		{"record", rec(entry("id", value.Number(5)), entry("active", value.Bool(true))), user, `{id: 5, active: true}`},
		{"record declared order", rec(entry("active", value.Bool(false)), entry("id", value.Number(1))), user, `{id: 1, active: false}`},
		{"record missing field", rec(entry("id", value.Number(1))), user, `{id: 1}`},
		{"record extra field", rec(entry("id", value.Number(1)), entry("x", value.Number(2))), user, `{id: 1}`},
		{"record empty", rec(), user, `{}`},
		{"record without fields", rec(entry("a", value.Number(1)), entry("b", value.String("x"))), types.NewRecord(), `{a: 1, b: "x"}`},
		{"variant unit string", value.String("point"), shape, `point`},
		{"variant payload", rec(entry("circle", value.Number(2))), shape, `circle(2)`},
		{"variant null payload", rec(entry("point", value.Null{})), shape, `point`},
		{"variant record payload", rec(entry("rect", rec(entry("w", value.Number(1)), entry("h", value.Number(2))))), shape, `rect({w: 1, h: 2})`},
		{"variant string payload", rec(entry("foo", value.String("bar"))), types.NewVariant(types.Case{Name: "foo", Type: types.String}), `foo("bar")`},
		{"result ok simple", rec(entry("ok", value.Number(7))), types.NewResult(types.U32, types.String), `7`},
		{"result ok value", value.Ok(value.Number(7)), types.NewResult(types.U32, types.String), `7`},
		{"result ok complex", rec(entry("ok", value.List{value.Number(1)})), types.NewResult(types.NewList(types.U8), nil), `ok([1])`},
		{"result ok null", rec(entry("ok", value.Null{})), types.NewResult(nil, types.String), `ok(null)`},
		{"result ok untyped", value.Ok(value.String("x")), types.NewResult(nil, nil), `ok("x")`},
		{"result err", rec(entry("err", value.String("boom"))), types.NewResult(types.U32, types.String), `err("boom")`},
		{"result ok and err keys", rec(entry("ok", value.Number(0)), entry("err", value.String(""))), types.NewResult(types.U32, types.String), `0`},
		{"result err and ok keys", rec(entry("err", value.String("")), entry("ok", value.List{})), types.NewResult(types.NewList(types.U8), types.String), `ok([])`},
		{"result err simple is wrapped", value.Err(value.Number(3)), types.NewResult(nil, types.U8), `err(3)`},
		{"tuple", value.List{value.Number(1), value.String("a")}, types.NewTuple(types.U8, types.String), `(1, "a")`},
		{"tuple drops extra", value.List{value.Number(1), value.Number(2), value.Number(3)}, types.NewTuple(types.U8, types.U8), `(1, 2)`},
		{"tuple single", value.List{value.Number(1)}, types.NewTuple(types.U8), `(1,)`},
		{"flags", value.List{value.String("read"), value.String("write")}, types.NewFlags("read", "write"), `{read, write}`},
		{"flags empty", value.List{}, types.NewFlags("read"), `{}`},
		{"handle", value.String("res-1"), types.Handle{}, `"res-1"`},
		{"handle number", value.Number(3), types.Handle{}, `"3"`},
		{"unit", value.Null{}, types.Unit{}, `null`},
		{"nil type", value.List{value.Number(1)}, nil, `[1]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, diags := EncodeWithDiagnostics(tc.v, tc.typ)
			if got != tc.want {
				t.Errorf("Encode = %s, want %s", got, tc.want)
			}
			if len(diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", diags)
			}
		})
	}
}

func TestEncode_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		typ  types.Type
		want string
		diag string
	}{
		{"string got number", value.Number(5), types.String, `5`, "expected string, got number"},
		{"u8 got string", value.String("x"), types.U8, `"x"`, "expected u8, got string"},
		{"record got list", value.List{value.Number(1)}, types.NewRecord(types.Field{Name: "a", Type: types.U8}), `[1]`, "expected record"},
		{"variant unknown case", rec(entry("zap", value.Number(1))), types.NewVariant(types.Case{Name: "a"}), `zap(1)`, `unknown variant case "zap"`},
		{"variant bad shape", value.Number(1), types.NewVariant(types.Case{Name: "a"}), `1`, "expected variant"},
		{"result bad shape", value.String("x"), types.NewResult(nil, nil), `"x"`, "expected result"},
		{"result map without branch", rec(entry("x", value.Number(1))), types.NewResult(types.U8, nil), `{x: 1}`, "expected result"},
		{"enum unknown case", value.String("mid"), types.NewEnum("low"), `mid`, `unknown enum case "mid"`},
		{"flags not strings", value.List{value.Number(1)}, types.NewFlags("a"), `[1]`, "expected flags"},
		{"empty char", value.String(""), types.Char, `0`, "empty string for char"},
		{"unknown type", value.Number(1), types.Unknown{Tag: "future"}, `1`, `unrecognized type "future"`},
		{"invalid key", rec(entry("a b", value.Number(1))), nil, `{"a b": 1}`, "not a valid identifier"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, diags := EncodeWithDiagnostics(tc.v, tc.typ)
			if got != tc.want {
				t.Errorf("Encode = %s, want %s", got, tc.want)
			}
			if len(diags) != 1 {
				t.Fatalf("diagnostics = %v, want exactly one", diags)
			}
			if !strings.Contains(diags[0].Message, tc.diag) {
				t.Errorf("diagnostic %q does not contain %q", diags[0].Message, tc.diag)
			}
		})
	}
}

func TestEncode_DiagnosticPath(t *testing.T) {
	typ := types.NewRecord(types.Field{
		Name: "items",
		Type: types.NewList(types.NewRecord(types.Field{Name: "count", Type: types.U8})),
	})
	v := rec(entry("items", value.List{
		rec(entry("count", value.Number(1))),
		rec(entry("count", value.String("two"))),
	}))

	got, diags := EncodeWithDiagnostics(v, typ)
	if got != `{items: [{count: 1}, {count: "two"}]}` {
		t.Errorf("Encode = %s", got)
	}
	if len(diags) != 1 || diags[0].Path != "value.items.1.count" {
		t.Fatalf("diagnostics = %v", diags)
	}
	if diags[0].String() != "value.items.1.count: expected u8, got string" {
		t.Errorf("String() = %q", diags[0].String())
	}
}

func TestEncode_Untyped(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"nil", nil, `none`},
		{"null", value.Null{}, `none`},
		{"string", value.String(`say "hi"`), `"say \"hi\""`},
		{"integer", value.Number(42), `42`},
		{"large integer", value.Number(1e21), `1e+21`},
		{"negative zero", value.Number(math.Copysign(0, -1)), `-0`},
		{"float", value.Number(0.1), `0.1`},
		{"inf", value.Number(math.Inf(1)), `inf`},
		{"bool", value.Bool(false), `false`},
		{"list", value.List{value.Number(1), value.List{}}, `[1, []]`},
		{"map", rec(entry("a", value.Number(1)), entry("true", value.Null{})), `{a: 1, %true: none}`},
		{"empty map", rec(), `{}`},
		{"ok", value.Ok(value.Number(1)), `ok(1)`},
		{"err null", value.Err(nil), `err(none)`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EncodeUntyped(tc.v); got != tc.want {
				t.Errorf("EncodeUntyped = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEncoder_MaxDepth(t *testing.T) {
	var v value.Value = value.Number(1)
	for i := 0; i < 5; i++ {
		v = value.List{v}
	}

	enc := NewEncoder(WithMaxDepth(3))
	got, diags := enc.EncodeUntyped(v)
	if got != `[[[null]]]` {
		t.Errorf("got %s", got)
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "maximum nesting depth 3") {
		t.Errorf("diagnostics = %v", diags)
	}

	if got := Encode(v, nil); got != `[[[[[1]]]]]` {
		t.Errorf("default depth: got %s", got)
	}
}

func TestEncoder_LogsDiagnostics(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	enc := NewEncoder(WithLogger(zap.New(core)))

	enc.Encode(value.Number(1), types.Unknown{Tag: "stream"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "value" || !strings.Contains(fields["problem"].(string), "stream") {
		t.Errorf("unexpected log fields %v", fields)
	}
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	Encode(value.String("x"), types.Bool)
	if logs.Len() != 1 {
		t.Errorf("package logger got %d entries, want 1", logs.Len())
	}
}
