// Package schema exports WIT types as JSON Schema (draft 2020-12) and checks
// value trees against the compiled result, for tools that speak JSON Schema
// rather than WIT.
package schema

import (
	"encoding/json"

	"github.com/kaptinlin/jsonschema"

	"github.com/wippyai/wave/errors"
	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/value"
)

// Draft is the JSON Schema dialect of generated documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Generate renders t as a JSON Schema document. The schema accepts the same
// JSON shapes as the validator package: records are open objects whose
// non-optional fields are required, variants are single-key objects (or the
// bare name of a unit case) and results are objects with "ok" and/or "err".
func Generate(t types.Type) map[string]any {
	s := generate(t, 0)
	s["$schema"] = Draft
	if t != nil {
		s["description"] = t.String()
	}
	return s
}

// Compile generates and compiles the schema for t.
func Compile(t types.Type) (*jsonschema.Schema, error) {
	doc, err := json.Marshal(Generate(t))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindInvalidData, err, "encode schema")
	}
	compiled, err := jsonschema.NewCompiler().Compile(doc)
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidData).
			WitType(typeString(t)).
			Cause(err).
			Detail("compile schema").
			Build()
	}
	return compiled, nil
}

// Check validates v against a compiled schema.
func Check(s *jsonschema.Schema, v value.Value) error {
	result := s.Validate(value.ToAny(v))
	if !result.IsValid() {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("%s", result.Error()).
			Build()
	}
	return nil
}

func generate(t types.Type, depth int) map[string]any {
	if t == nil {
		return map[string]any{}
	}
	if depth > types.DefaultMaxDepth {
		return map[string]any{"not": map[string]any{}}
	}

	switch typ := t.(type) {
	case types.Primitive:
		return primitive(typ.Kind())

	case *types.List:
		s := map[string]any{"type": "array"}
		if typ.Elem != nil {
			s["items"] = generate(typ.Elem, depth+1)
		}
		return s

	case *types.Option:
		if typ.Inner == nil {
			return map[string]any{}
		}
		return map[string]any{"anyOf": []any{
			map[string]any{"type": "null"},
			generate(typ.Inner, depth+1),
		}}

	case *types.Tuple:
		items := make([]any, len(typ.Fields))
		for i, f := range typ.Fields {
			items[i] = generate(f.Type, depth+1)
		}
		s := map[string]any{
			"type":     "array",
			"minItems": len(items),
			"maxItems": len(items),
		}
		if len(items) > 0 {
			s["prefixItems"] = items
		}
		return s

	case *types.Record:
		props := make(map[string]any, len(typ.Fields))
		required := []any{}
		for _, f := range typ.Fields {
			props[f.Name] = generate(f.Type, depth+1)
			if acceptsMissing(f.Type) {
				continue
			}
			required = append(required, f.Name)
		}
		return map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		}

	case *types.Variant:
		alts := make([]any, 0, len(typ.Cases))
		for _, c := range typ.Cases {
			payload := map[string]any{"type": "null"}
			if c.Type != nil {
				payload = generate(c.Type, depth+1)
			} else {
				alts = append(alts, map[string]any{"const": c.Name})
			}
			alts = append(alts, map[string]any{
				"type":                 "object",
				"properties":           map[string]any{c.Name: payload},
				"required":             []any{c.Name},
				"additionalProperties": false,
			})
		}
		if len(alts) == 0 {
			return map[string]any{"not": map[string]any{}}
		}
		return map[string]any{"anyOf": alts}

	case *types.Enum:
		if len(typ.Cases) == 0 {
			return map[string]any{"not": map[string]any{}}
		}
		return map[string]any{"type": "string", "enum": stringsToAny(typ.Cases)}

	case *types.Flags:
		items := map[string]any{"type": "string"}
		if len(typ.Names) > 0 {
			items["enum"] = stringsToAny(typ.Names)
		}
		return map[string]any{"type": "array", "items": items}

	case *types.Result:
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"ok":  generate(typ.OK, depth+1),
				"err": map[string]any{"type": "string"},
			},
		}

	case types.Handle:
		return map[string]any{"type": "string"}

	case types.Unit:
		return map[string]any{"type": "null"}
	}

	// unrecognized types accept nothing
	return map[string]any{"not": map[string]any{}}
}

func primitive(k types.Kind) map[string]any {
	switch {
	case k == types.KindBool:
		return map[string]any{"type": "boolean"}
	case k == types.KindString:
		return map[string]any{"type": "string"}
	case k == types.KindChar:
		return map[string]any{"anyOf": []any{
			map[string]any{"type": "string", "maxLength": 1},
			map[string]any{"type": "integer", "minimum": 0, "maximum": 0x10FFFF},
		}}
	case k.IsInteger():
		lo, hi := k.Range()
		return map[string]any{"type": "integer", "minimum": lo, "maximum": hi}
	}
	return map[string]any{"type": "number"}
}

// acceptsMissing reports whether a record field of type t may be absent:
// the validator checks absent fields as null.
func acceptsMissing(t types.Type) bool {
	switch t.(type) {
	case nil, *types.Option, types.Unit:
		return true
	}
	return false
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func typeString(t types.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}
