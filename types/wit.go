package types

import (
	"bytes"
	"os"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wave/errors"
)

// FromWIT translates a resolved WIT type into the Type Model. Named types
// are expanded in place; a type that refers back to itself is rejected since
// the model has no recursive references.
func FromWIT(t wit.Type) (Type, error) {
	c := witConverter{visiting: make(map[*wit.TypeDef]bool)}
	return c.convert(t, nil, 0)
}

// FromWITParams translates function parameters. Missing names default to
// "arg<N>".
func FromWITParams(params []wit.Type, names []string) ([]Field, error) {
	fields := make([]Field, len(params))
	for i, p := range params {
		name := "arg" + strconv.Itoa(i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		t, err := FromWIT(p)
		if err != nil {
			return nil, err
		}
		fields[i] = Field{Name: name, Type: t}
	}
	return fields, nil
}

// FunctionsFromWIT collects the freestanding functions of every world and
// interface in a resolved package graph. Canonical ABI helpers and resource
// methods are skipped.
func FunctionsFromWIT(res *wit.Resolve) ([]*Function, error) {
	var funcs []*Function
	for f := range res.AllFunctions() {
		if !f.IsFreestanding() || f.IsAdmin() {
			continue
		}
		fn, err := functionFromWIT(f)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return funcs, nil
}

func functionFromWIT(f *wit.Function) (*Function, error) {
	params := make([]wit.Type, len(f.Params))
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
		names[i] = p.Name
	}
	fields, err := FromWITParams(params, names)
	if err != nil {
		return nil, wrapFunction(f.Name, err)
	}

	fn := &Function{Name: f.Name, Params: fields}
	switch len(f.Results) {
	case 0:
	case 1:
		fn.Result, err = FromWIT(f.Results[0].Type)
	default:
		elems := make([]Type, len(f.Results))
		for i, r := range f.Results {
			if elems[i], err = FromWIT(r.Type); err != nil {
				break
			}
		}
		fn.Result = NewTuple(elems...)
	}
	if err != nil {
		return nil, wrapFunction(f.Name, err)
	}
	return fn, nil
}

func wrapFunction(name string, err error) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{name}, e.Path...)
		return e
	}
	return errors.Wrap(errors.PhaseCompile, errors.KindUnsupported, err, "function "+name)
}

// ParseWITFunctions decodes a wit.Resolve JSON document (as printed by
// wasm-tools component wit --json) and returns its functions.
func ParseWITFunctions(data []byte) ([]*Function, error) {
	res, err := wit.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Load("decode WIT JSON", err)
	}
	return FunctionsFromWIT(res)
}

// LoadWITFunctions reads a wit.Resolve JSON file.
func LoadWITFunctions(path string) ([]*Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return ParseWITFunctions(data)
}

type witConverter struct {
	visiting map[*wit.TypeDef]bool
}

func (c *witConverter) convert(t wit.Type, path []string, depth int) (Type, error) {
	if depth > DefaultMaxDepth {
		return nil, errors.TooDeep(errors.PhaseCompile, path, DefaultMaxDepth)
	}

	switch v := t.(type) {
	case nil:
		return nil, nil
	case wit.Bool:
		return Bool, nil
	case wit.U8:
		return U8, nil
	case wit.S8:
		return S8, nil
	case wit.U16:
		return U16, nil
	case wit.S16:
		return S16, nil
	case wit.U32:
		return U32, nil
	case wit.S32:
		return S32, nil
	case wit.U64:
		return U64, nil
	case wit.S64:
		return S64, nil
	case wit.F32:
		return F32, nil
	case wit.F64:
		return F64, nil
	case wit.Char:
		return Char, nil
	case wit.String:
		return String, nil
	case *wit.TypeDef:
		if c.visiting[v] {
			return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
				Path(path...).
				WitType(typeDefName(v)).
				Detail("recursive type %s", typeDefName(v)).
				Build()
		}
		c.visiting[v] = true
		defer delete(c.visiting, v)
		return c.convertTypeDef(v, path, depth)
	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

func (c *witConverter) convertTypeDef(td *wit.TypeDef, path []string, depth int) (Type, error) {
	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]Field, len(kind.Fields))
		for i, f := range kind.Fields {
			ft, err := c.convert(f.Type, appendPath(path, f.Name), depth+1)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		return &Record{Fields: fields}, nil

	case *wit.List:
		elem, err := c.convert(kind.Type, appendPath(path, "[elem]"), depth+1)
		if err != nil {
			return nil, err
		}
		return &List{Elem: elem}, nil

	case *wit.Tuple:
		fields := make([]Field, len(kind.Types))
		for i, et := range kind.Types {
			name := strconv.Itoa(i)
			ft, err := c.convert(et, appendPath(path, name), depth+1)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: name, Type: ft}
		}
		return &Tuple{Fields: fields}, nil

	case *wit.Enum:
		cases := make([]string, len(kind.Cases))
		for i, ec := range kind.Cases {
			cases[i] = ec.Name
		}
		return &Enum{Cases: cases}, nil

	case *wit.Flags:
		names := make([]string, len(kind.Flags))
		for i, f := range kind.Flags {
			names[i] = f.Name
		}
		return &Flags{Names: names}, nil

	case *wit.Option:
		inner, err := c.convert(kind.Type, appendPath(path, "some"), depth+1)
		if err != nil {
			return nil, err
		}
		return &Option{Inner: inner}, nil

	case *wit.Result:
		okType, err := c.convert(kind.OK, appendPath(path, "ok"), depth+1)
		if err != nil {
			return nil, err
		}
		errType, err := c.convert(kind.Err, appendPath(path, "err"), depth+1)
		if err != nil {
			return nil, err
		}
		return &Result{OK: okType, Err: errType}, nil

	case *wit.Variant:
		cases := make([]Case, len(kind.Cases))
		for i, vc := range kind.Cases {
			ct, err := c.convert(vc.Type, appendPath(path, vc.Name), depth+1)
			if err != nil {
				return nil, err
			}
			cases[i] = Case{Name: vc.Name, Type: ct}
		}
		return &Variant{Cases: cases}, nil

	case *wit.Own:
		return Handle{Resource: typeDefName(kind.Type)}, nil

	case *wit.Borrow:
		return Handle{Resource: typeDefName(kind.Type)}, nil

	case wit.Type:
		return c.convert(kind, path, depth+1)

	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported TypeDef kind: %T", kind).
			Build()
	}
}

func typeDefName(td *wit.TypeDef) string {
	if td == nil || td.Name == nil {
		return ""
	}
	return *td.Name
}
