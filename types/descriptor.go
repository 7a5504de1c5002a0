package types

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wave/errors"
)

// ParseDescriptor decodes a JSON or YAML type descriptor such as
//
//	{"type": "record", "fields": [{"name": "id", "typ": {"type": "u32"}}]}
//
// Tags outside the WIT vocabulary decode to Unknown so that consumers can
// report them; structurally malformed descriptors fail with a PhaseLoad error.
func ParseDescriptor(data []byte) (Type, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Load("decode type descriptor", err)
	}
	if raw == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty type descriptor")
	}
	return FromDescriptor(raw)
}

// LoadFile reads and decodes a descriptor file.
func LoadFile(path string) (Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return ParseDescriptor(data)
}

// FromDescriptor converts an already decoded descriptor (maps, slices and
// strings as produced by encoding/json or yaml) into a Type.
func FromDescriptor(d any) (Type, error) {
	return fromDescriptor(d, nil, 0)
}

func fromDescriptor(d any, path []string, depth int) (Type, error) {
	if depth > DefaultMaxDepth {
		return nil, errors.TooDeep(errors.PhaseLoad, path, DefaultMaxDepth)
	}

	var tag string
	var m map[string]any
	switch v := d.(type) {
	case string:
		tag = v
	case map[string]any:
		m = v
		t, ok := v["type"].(string)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseLoad, path, `descriptor has no "type" tag`)
		}
		tag = t
	default:
		return nil, errors.InvalidData(errors.PhaseLoad, path, fmt.Sprintf("descriptor must be a string or an object, got %T", d))
	}

	kind, ok := ParseKind(tag)
	if !ok {
		return Unknown{Tag: tag}, nil
	}
	if kind.IsPrimitive() {
		return Primitive(kind), nil
	}

	switch kind {
	case KindList:
		elem, err := optionalType(m, "inner", path, depth)
		if err != nil {
			return nil, err
		}
		return &List{Elem: elem}, nil

	case KindOption:
		inner, err := optionalType(m, "inner", path, depth)
		if err != nil {
			return nil, err
		}
		return &Option{Inner: inner}, nil

	case KindRecord, KindTuple:
		fields, err := decodeFields(m["fields"], kind == KindTuple, path, depth)
		if err != nil {
			return nil, err
		}
		if kind == KindTuple {
			return &Tuple{Fields: fields}, nil
		}
		return &Record{Fields: fields}, nil

	case KindVariant:
		cases, err := decodeCases(m["cases"], path, depth)
		if err != nil {
			return nil, err
		}
		return &Variant{Cases: cases}, nil

	case KindEnum:
		names, err := decodeNames(m["cases"], appendPath(path, "cases"))
		if err != nil {
			return nil, err
		}
		return &Enum{Cases: names}, nil

	case KindFlags:
		names, err := decodeNames(m["names"], appendPath(path, "names"))
		if err != nil {
			return nil, err
		}
		return &Flags{Names: names}, nil

	case KindResult:
		okType, err := optionalType(m, "ok", path, depth)
		if err != nil {
			return nil, err
		}
		errType, err := optionalType(m, "err", path, depth)
		if err != nil {
			return nil, err
		}
		return &Result{OK: okType, Err: errType}, nil

	case KindHandle:
		h := Handle{}
		if m != nil {
			h.Resource, _ = m["resource"].(string)
		}
		return h, nil

	case KindUnit:
		return Unit{}, nil
	}

	return Unknown{Tag: tag}, nil
}

func optionalType(m map[string]any, key string, path []string, depth int) (Type, error) {
	if m == nil {
		return nil, nil
	}
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	return fromDescriptor(raw, appendPath(path, key), depth+1)
}

func decodeFields(raw any, positional bool, path []string, depth int) ([]Field, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseLoad, appendPath(path, "fields"), "fields must be a list")
	}

	fields := make([]Field, 0, len(items))
	for i, item := range items {
		name := strconv.Itoa(i)
		typeRaw := item

		obj, isObj := item.(map[string]any)
		switch {
		case isObj && obj["name"] != nil:
			n, ok := nameOf(obj["name"])
			if !ok {
				return nil, errors.InvalidData(errors.PhaseLoad, appendPath(path, "fields", name), "field name must be a string")
			}
			name = n
			typeRaw = fieldType(obj)
		case positional:
			// a tuple element is either a bare descriptor or {typ: ...}
			if _, isTag := obj["type"].(string); isObj && !isTag {
				typeRaw = fieldType(obj)
			}
		default:
			return nil, errors.FieldMissing(errors.PhaseLoad, appendPath(path, "fields", name), "name")
		}

		fieldPath := appendPath(path, name)
		if typeRaw == nil {
			return nil, errors.InvalidData(errors.PhaseLoad, fieldPath, "field has no type")
		}
		t, err := fromDescriptor(typeRaw, fieldPath, depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: t})
	}
	return fields, nil
}

// nameOf accepts string names and the integer names YAML produces for
// positional tuple fields.
func nameOf(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case int:
		return strconv.Itoa(n), true
	}
	return "", false
}

// fieldType returns the nested type of a field or case object. "typ" is the
// canonical key; "type" is accepted when it holds a nested descriptor or tag.
func fieldType(obj map[string]any) any {
	if t, ok := obj["typ"]; ok {
		return t
	}
	if t, ok := obj["type"]; ok {
		return t
	}
	return nil
}

func decodeCases(raw any, path []string, depth int) ([]Case, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseLoad, appendPath(path, "cases"), "cases must be a list")
	}

	cases := make([]Case, 0, len(items))
	for i, item := range items {
		switch c := item.(type) {
		case string:
			cases = append(cases, Case{Name: c})
		case map[string]any:
			name, ok := c["name"].(string)
			if !ok {
				return nil, errors.FieldMissing(errors.PhaseLoad, appendPath(path, "cases", strconv.Itoa(i)), "name")
			}
			var t Type
			if raw := fieldType(c); raw != nil {
				var err error
				t, err = fromDescriptor(raw, appendPath(path, name), depth+1)
				if err != nil {
					return nil, err
				}
			}
			cases = append(cases, Case{Name: name, Type: t})
		default:
			return nil, errors.InvalidData(errors.PhaseLoad, appendPath(path, "cases", strconv.Itoa(i)),
				fmt.Sprintf("case must be a string or an object, got %T", item))
		}
	}
	return cases, nil
}

func decodeNames(raw any, path []string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseLoad, path, "names must be a list")
	}
	names := make([]string, 0, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case string:
			names = append(names, n)
		case map[string]any:
			name, ok := n["name"].(string)
			if !ok {
				return nil, errors.FieldMissing(errors.PhaseLoad, appendPath(path, strconv.Itoa(i)), "name")
			}
			names = append(names, name)
		default:
			return nil, errors.InvalidData(errors.PhaseLoad, appendPath(path, strconv.Itoa(i)),
				fmt.Sprintf("name must be a string, got %T", item))
		}
	}
	return names, nil
}

// Descriptor renders t in the descriptor shape accepted by FromDescriptor.
func Descriptor(t Type) map[string]any {
	if t == nil {
		return nil
	}
	d := map[string]any{"type": t.Kind().String()}
	switch v := t.(type) {
	case *List:
		if v.Elem != nil {
			d["inner"] = Descriptor(v.Elem)
		}
	case *Option:
		if v.Inner != nil {
			d["inner"] = Descriptor(v.Inner)
		}
	case *Tuple:
		d["fields"] = fieldDescriptors(v.Fields)
	case *Record:
		d["fields"] = fieldDescriptors(v.Fields)
	case *Variant:
		cases := make([]any, len(v.Cases))
		for i, c := range v.Cases {
			cd := map[string]any{"name": c.Name}
			if c.Type != nil {
				cd["typ"] = Descriptor(c.Type)
			}
			cases[i] = cd
		}
		d["cases"] = cases
	case *Enum:
		d["cases"] = stringsToAny(v.Cases)
	case *Flags:
		d["names"] = stringsToAny(v.Names)
	case *Result:
		if v.OK != nil {
			d["ok"] = Descriptor(v.OK)
		}
		if v.Err != nil {
			d["err"] = Descriptor(v.Err)
		}
	case Handle:
		if v.Resource != "" {
			d["resource"] = v.Resource
		}
	case Unknown:
		d["type"] = v.Tag
	}
	return d
}

func fieldDescriptors(fields []Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		fd := map[string]any{"name": f.Name}
		if f.Type != nil {
			fd["typ"] = Descriptor(f.Type)
		}
		out[i] = fd
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func appendPath(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}
