// Package skeleton builds example values for WIT types, used to prefill
// editors with something that already validates.
package skeleton

import (
	"sort"
	"strings"

	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/value"
)

// Generate returns a representative value for t. It never fails: nil,
// unit and unrecognized types give Null.
func Generate(t types.Type) value.Value {
	return generate(t, 0)
}

func generate(t types.Type, depth int) value.Value {
	if t == nil || depth > types.DefaultMaxDepth {
		return value.Null{}
	}

	switch typ := t.(type) {
	case types.Primitive:
		switch k := typ.Kind(); {
		case k == types.KindString || k == types.KindChar:
			return value.String("")
		case k == types.KindBool:
			return value.Bool(false)
		default:
			return value.Number(0)
		}

	case *types.Record:
		m := make(value.Map, len(typ.Fields))
		for i, f := range typ.Fields {
			m[i] = value.Entry{Key: f.Name, Value: generate(f.Type, depth+1)}
		}
		return m

	case *types.Tuple:
		list := make(value.List, len(typ.Fields))
		for i, f := range typ.Fields {
			list[i] = generate(f.Type, depth+1)
		}
		return list

	case *types.List:
		if typ.Elem == nil {
			return value.List{}
		}
		return value.List{generate(typ.Elem, depth+1)}

	case *types.Option:
		return value.Null{}

	case *types.Flags:
		if len(typ.Names) == 0 {
			return value.List{}
		}
		return value.List{value.String(typ.Names[0])}

	case *types.Enum:
		if len(typ.Cases) == 0 {
			return value.Null{}
		}
		if isLowMediumHigh(typ.Cases) {
			return value.String("low")
		}
		return value.String(typ.Cases[0])

	case *types.Variant:
		if len(typ.Cases) == 0 {
			return value.Null{}
		}
		first := typ.Cases[0]
		return value.Map{{Key: first.Name, Value: generate(first.Type, depth+1)}}

	case *types.Result:
		return value.Map{
			{Key: "ok", Value: generate(typ.OK, depth+1)},
			{Key: "err", Value: value.String(errPlaceholder(typ.Err))},
		}

	case types.Handle:
		return value.String("")
	}

	return value.Null{}
}

// isLowMediumHigh reports whether cases is exactly {low, medium, high}, the
// one enum whose default is not its first case.
func isLowMediumHigh(cases []string) bool {
	if len(cases) != 3 {
		return false
	}
	sorted := append([]string(nil), cases...)
	sort.Strings(sorted)
	return sorted[0] == "high" && sorted[1] == "low" && sorted[2] == "medium"
}

// errPlaceholder names the cases of an enum error type, e.g. "not-found |
// denied", and is empty for any other error type.
func errPlaceholder(t types.Type) string {
	if e, ok := t.(*types.Enum); ok {
		return strings.Join(e.Cases, " | ")
	}
	return ""
}
