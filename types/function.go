package types

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wave/errors"
)

// Function is an exported function signature: the source of the type
// descriptors that editors validate arguments against.
type Function struct {
	Result Type
	Name   string
	Params []Field
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + typeString(p.Type)
	}
	s := f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.Result != nil {
		s += " -> " + f.Result.String()
	}
	return s
}

// ParseFunctions decodes a JSON or YAML signature document, either a list of
// functions or an object with a "functions" list:
//
//	functions:
//	  - name: create-user
//	    params:
//	      - {name: id, typ: u32}
//	    result: {type: result, ok: u32, err: string}
func ParseFunctions(data []byte) ([]*Function, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Load("decode function document", err)
	}

	if obj, ok := raw.(map[string]any); ok {
		raw = obj["functions"]
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseLoad, `function document must be a list or contain a "functions" list`)
	}

	funcs := make([]*Function, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseLoad, nil, "function entry must be an object")
		}
		name, _ := obj["name"].(string)
		if name == "" {
			return nil, errors.FieldMissing(errors.PhaseLoad, []string{"functions"}, "name")
		}

		params, err := decodeFields(obj["params"], false, []string{name}, 0)
		if err != nil {
			return nil, err
		}
		result, err := optionalType(obj, "result", []string{name}, 0)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, &Function{Name: name, Params: params, Result: result})
	}
	return funcs, nil
}

// FindFunction returns the function with the given name.
func FindFunction(funcs []*Function, name string) (*Function, error) {
	for _, f := range funcs {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseLoad, "function", name)
}
