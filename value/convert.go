package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/wippyai/wave/errors"
)

// FromAny converts a Go value as produced by encoding/json or yaml into a
// value tree. Keys of map[string]any are sorted since Go maps carry no order;
// use DecodeJSON to keep document order.
func FromAny(v any) (Value, error) {
	return fromAny(v, nil)
}

func fromAny(v any, path []string) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case int:
		return Number(x), nil
	case int8:
		return Number(x), nil
	case int16:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint8:
		return Number(x), nil
	case uint16:
		return Number(x), nil
	case uint32:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(path...).
				Value(x).
				Cause(err).
				Detail("invalid number %q", string(x)).
				Build()
		}
		return Number(f), nil
	case []any:
		list := make(List, len(x))
		for i, item := range x {
			elem, err := fromAny(item, appendPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			list[i] = elem
		}
		return list, nil
	case []string:
		list := make(List, len(x))
		for i, s := range x {
			list[i] = String(s)
		}
		return list, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Map, 0, len(keys))
		for _, k := range keys {
			elem, err := fromAny(x[k], appendPath(path, k))
			if err != nil {
				return nil, err
			}
			m = append(m, Entry{Key: k, Value: elem})
		}
		return m, nil
	}

	return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
		Path(path...).
		GoType(fmt.Sprintf("%T", v)).
		Detail("cannot convert %T to a value", v).
		Build()
}

// ToAny converts a value tree back to plain Go values. Maps lose their order
// and results become {"ok": v} or {"err": v}.
func ToAny(v Value) any {
	switch x := v.(type) {
	case String:
		return string(x)
	case Number:
		return float64(x)
	case Bool:
		return bool(x)
	case List:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = ToAny(item)
		}
		return out
	case Map:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = ToAny(e.Value)
		}
		return out
	case Result:
		return map[string]any{x.Tag(): ToAny(x.Payload)}
	}
	return nil
}

func appendPath(path []string, elem string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, elem)
}
