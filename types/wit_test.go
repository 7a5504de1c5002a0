package types

import (
	stderrors "errors"
	"reflect"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wave/errors"
)

func TestFromWIT_Primitives(t *testing.T) {
	tests := []struct {
		in   wit.Type
		want Type
	}{
		{wit.Bool{}, Bool},
		{wit.U8{}, U8},
		{wit.S8{}, S8},
		{wit.U16{}, U16},
		{wit.S16{}, S16},
		{wit.U32{}, U32},
		{wit.S32{}, S32},
		{wit.U64{}, U64},
		{wit.S64{}, S64},
		{wit.F32{}, F32},
		{wit.F64{}, F64},
		{wit.Char{}, Char},
		{wit.String{}, String},
	}

	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			got, err := FromWIT(tc.in)
			if err != nil {
				t.Fatalf("FromWIT: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFromWIT_TypeDefs(t *testing.T) {
	tests := []struct {
		name string
		in   *wit.TypeDef
		want Type
	}{
		{
			"record",
			&wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
				{Name: "id", Type: wit.U32{}},
				{Name: "name", Type: wit.String{}},
			}}},
			NewRecord(Field{Name: "id", Type: U32}, Field{Name: "name", Type: String}),
		},
		{
			"list",
			&wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}},
			NewList(U8),
		},
		{
			"tuple",
			&wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.String{}}}},
			NewTuple(U32, String),
		},
		{
			"enum",
			&wit.TypeDef{Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "low"}, {Name: "high"}}}},
			NewEnum("low", "high"),
		},
		{
			"flags",
			&wit.TypeDef{Kind: &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}}}},
			NewFlags("read", "write"),
		},
		{
			"option",
			&wit.TypeDef{Kind: &wit.Option{Type: wit.String{}}},
			NewOption(String),
		},
		{
			"result",
			&wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}, Err: wit.String{}}},
			NewResult(U32, String),
		},
		{
			"bare result",
			&wit.TypeDef{Kind: &wit.Result{}},
			NewResult(nil, nil),
		},
		{
			"variant",
			&wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: "circle", Type: wit.F64{}},
				{Name: "none"},
			}}},
			NewVariant(Case{Name: "circle", Type: F64}, Case{Name: "none"}),
		},
		{
			"own",
			&wit.TypeDef{Kind: &wit.Own{}},
			Handle{},
		},
		{
			"borrow",
			&wit.TypeDef{Kind: &wit.Borrow{}},
			Handle{},
		},
		{
			"alias",
			&wit.TypeDef{Kind: wit.U16{}},
			U16,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromWIT(tc.in)
			if err != nil {
				t.Fatalf("FromWIT: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFromWIT_SharedTypeDefIsNotRecursion(t *testing.T) {
	point := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.S32{}, wit.S32{}}}}
	line := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "from", Type: point},
		{Name: "to", Type: point},
	}}}

	got, err := FromWIT(line)
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}
	if got.String() != "record { from: tuple<s32, s32>, to: tuple<s32, s32> }" {
		t.Errorf("got %s", got)
	}
}

func TestFromWIT_RejectsRecursion(t *testing.T) {
	name := "node"
	node := &wit.TypeDef{Name: &name}
	children := &wit.TypeDef{Kind: &wit.List{Type: node}}
	node.Kind = &wit.Record{Fields: []wit.Field{
		{Name: "children", Type: children},
	}}

	_, err := FromWIT(node)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Phase != errors.PhaseCompile || e.Kind != errors.KindUnsupported {
		t.Errorf("got %s/%s", e.Phase, e.Kind)
	}
	if e.WitType != "node" {
		t.Errorf("WitType = %q, want node", e.WitType)
	}
}

func TestFromWITParams(t *testing.T) {
	fields, err := FromWITParams([]wit.Type{wit.U32{}, wit.String{}}, []string{"id"})
	if err != nil {
		t.Fatalf("FromWITParams: %v", err)
	}
	want := []Field{{Name: "id", Type: U32}, {Name: "arg1", Type: String}}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %v, want %v", fields, want)
	}
}

const resolveJSON = `{
  "worlds": [
    {
      "name": "cli",
      "exports": {
        "run": {"function": {"name": "run", "kind": "freestanding", "params": [{"name": "args", "type": 0}]}}
      },
      "package": 0
    }
  ],
  "interfaces": [
    {
      "name": "api",
      "types": {},
      "functions": {
        "create-user": {
          "name": "create-user",
          "kind": "freestanding",
          "params": [{"name": "id", "type": "u8"}, {"name": "tags", "type": 0}],
          "result": 1
        },
        "ping": {"name": "ping", "kind": "freestanding", "params": []}
      },
      "package": 0
    }
  ],
  "types": [
    {"kind": {"list": "string"}},
    {"kind": {"result": {"ok": "u32", "err": "string"}}}
  ],
  "packages": [
    {"name": "test:api", "interfaces": {"api": 0}, "worlds": {"cli": 0}}
  ]
}`

func TestParseWITFunctions(t *testing.T) {
	funcs, err := ParseWITFunctions([]byte(resolveJSON))
	if err != nil {
		t.Fatalf("ParseWITFunctions: %v", err)
	}

	var got []string
	for _, f := range funcs {
		got = append(got, f.String())
	}
	want := []string{
		"run(args: list<string>)",
		"create-user(id: u8, tags: list<string>) -> result<u32, string>",
		"ping()",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseWITFunctions_BadJSON(t *testing.T) {
	_, err := ParseWITFunctions([]byte(`{"interfaces": [}`))
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Phase != errors.PhaseLoad || e.Kind != errors.KindInvalidData {
		t.Errorf("got %s/%s", e.Phase, e.Kind)
	}
}

func TestFunctionsFromWIT(t *testing.T) {
	name := "counter"
	counter := &wit.TypeDef{Name: &name, Kind: &wit.Resource{}}

	iface := &wit.Interface{}
	iface.Functions.Set("pair", &wit.Function{
		Name:    "pair",
		Kind:    &wit.Freestanding{},
		Params:  []wit.Param{{Type: wit.Bool{}}},
		Results: []wit.Param{{Name: "a", Type: wit.U8{}}, {Name: "b", Type: wit.String{}}},
	})
	iface.Functions.Set("[static]counter.new", &wit.Function{
		Name: "[static]counter.new",
		Kind: &wit.Static{Type: counter},
	})

	funcs, err := FunctionsFromWIT(&wit.Resolve{Interfaces: []*wit.Interface{iface}})
	if err != nil {
		t.Fatalf("FunctionsFromWIT: %v", err)
	}
	if len(funcs) != 1 {
		t.Fatalf("got %d functions, want only the freestanding one", len(funcs))
	}
	if s := funcs[0].String(); s != "pair(arg0: bool) -> tuple<u8, string>" {
		t.Errorf("got %s", s)
	}
}

func TestFunctionsFromWIT_PathNamesFunction(t *testing.T) {
	name := "node"
	node := &wit.TypeDef{Name: &name}
	node.Kind = &wit.Record{Fields: []wit.Field{
		{Name: "next", Type: &wit.TypeDef{Kind: &wit.Option{Type: node}}},
	}}

	iface := &wit.Interface{}
	iface.Functions.Set("walk", &wit.Function{
		Name:   "walk",
		Kind:   &wit.Freestanding{},
		Params: []wit.Param{{Name: "start", Type: node}},
	})

	_, err := FunctionsFromWIT(&wit.Resolve{Interfaces: []*wit.Interface{iface}})
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if len(e.Path) == 0 || e.Path[0] != "walk" {
		t.Errorf("Path = %v, want it to start with walk", e.Path)
	}
}
