package validator

import (
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/wave/errors"
	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/value"
)

// RootName is the path name given to the top-level value by Validate.
const RootName = "value"

// Option configures a Validator.
type Option func(*Validator)

// WithMaxDepth bounds the nesting depth checked before failing.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// Validator checks value trees against types. The zero value is not usable;
// create one with New.
type Validator struct {
	maxDepth int
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{maxDepth: types.DefaultMaxDepth}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate checks v against t and returns the first violation as an
// *errors.Error, or nil.
func Validate(v value.Value, t types.Type) error {
	return defaultValidator.ValidateField(RootName, v, t)
}

// ValidateField is Validate with the top-level value named name.
func ValidateField(name string, v value.Value, t types.Type) error {
	return defaultValidator.ValidateField(name, v, t)
}

// Validate checks v against t.
func (val *Validator) Validate(v value.Value, t types.Type) error {
	return val.ValidateField(RootName, v, t)
}

// ValidateField checks v against t, naming the top-level value name.
func (val *Validator) ValidateField(name string, v value.Value, t types.Type) error {
	c := &checker{maxDepth: val.maxDepth, path: []string{name}}
	if err := c.check(v, t, 0); err != nil {
		return err
	}
	return nil
}

type checker struct {
	path     []string
	maxDepth int
}

// at returns a copy of the current path for an error.
func (c *checker) at(elems ...string) []string {
	out := make([]string, 0, len(c.path)+len(elems))
	out = append(out, c.path...)
	return append(out, elems...)
}

func (c *checker) push(elem string) {
	c.path = append(c.path, elem)
}

func (c *checker) pop() {
	c.path = c.path[:len(c.path)-1]
}

func (c *checker) mismatch(v value.Value, expected string) *errors.Error {
	return errors.TypeMismatch(errors.PhaseValidate, c.at(), typeName(v), expected)
}

func (c *checker) check(v value.Value, t types.Type, depth int) *errors.Error {
	if t == nil {
		return nil
	}
	if depth > c.maxDepth {
		return errors.TooDeep(errors.PhaseValidate, c.at(), c.maxDepth)
	}

	switch typ := t.(type) {
	case types.Primitive:
		return c.primitive(v, typ)

	case *types.Record:
		m, ok := v.(value.Map)
		if !ok {
			return c.mismatch(v, "record")
		}
		for _, f := range typ.Fields {
			fv, ok := m.Get(f.Name)
			if !ok {
				fv = value.Null{}
			}
			c.push(f.Name)
			err := c.check(fv, f.Type, depth+1)
			c.pop()
			if err != nil {
				return err
			}
		}
		return nil

	case *types.Tuple:
		list, ok := v.(value.List)
		if !ok {
			return c.mismatch(v, "tuple")
		}
		if len(list) != len(typ.Fields) {
			return errors.New(errors.PhaseValidate, errors.KindLength).
				Path(c.path...).
				WitType(typ.String()).
				Detail("expected tuple of %d elements, got %d", len(typ.Fields), len(list)).
				Build()
		}
		for i, f := range typ.Fields {
			c.push(strconv.Itoa(i))
			err := c.check(list[i], f.Type, depth+1)
			c.pop()
			if err != nil {
				return err
			}
		}
		return nil

	case *types.List:
		list, ok := v.(value.List)
		if !ok {
			return c.mismatch(v, "list")
		}
		if typ.Elem == nil {
			return nil
		}
		for i, item := range list {
			c.push(strconv.Itoa(i))
			err := c.check(item, typ.Elem, depth+1)
			c.pop()
			if err != nil {
				return err
			}
		}
		return nil

	case *types.Option:
		if value.IsNull(v) {
			return nil
		}
		return c.check(v, typ.Inner, depth+1)

	case *types.Flags:
		return c.flags(v, typ)

	case *types.Enum:
		name, ok := v.(value.String)
		if !ok {
			return c.mismatch(v, "enum")
		}
		if !typ.Has(string(name)) {
			return errors.InvalidEnum(errors.PhaseValidate, c.at(), string(name), typ.Cases)
		}
		return nil

	case *types.Variant:
		return c.variant(v, typ, depth)

	case *types.Result:
		return c.result(v, typ, depth)

	case types.Handle:
		if _, ok := v.(value.String); !ok {
			return c.mismatch(v, "handle")
		}
		return nil

	case types.Unit:
		if !value.IsNull(v) {
			return c.mismatch(v, "unit")
		}
		return nil
	}

	return errors.UnknownType(errors.PhaseValidate, c.at(), t.String())
}

func (c *checker) primitive(v value.Value, t types.Primitive) *errors.Error {
	kind := t.Kind()
	switch {
	case kind == types.KindString:
		if _, ok := v.(value.String); !ok {
			return c.mismatch(v, "string")
		}

	case kind == types.KindBool:
		if _, ok := v.(value.Bool); !ok {
			return c.mismatch(v, "bool")
		}

	case kind == types.KindChar:
		return c.char(v)

	case kind.IsFloat():
		if _, ok := v.(value.Number); !ok {
			return c.mismatch(v, kind.String())
		}

	case kind.IsInteger():
		n, ok := v.(value.Number)
		if !ok {
			return c.mismatch(v, kind.String())
		}
		if !n.IsIntegral() {
			return errors.New(errors.PhaseValidate, errors.KindTypeMismatch).
				Path(c.path...).
				WitType(kind.String()).
				GoType("number").
				Value(float64(n)).
				Detail("expected integer for %s, got %v", kind, float64(n)).
				Build()
		}
		if !kind.InRange(float64(n)) {
			lo, hi := kind.Range()
			return errors.OutOfRange(errors.PhaseValidate, c.at(), float64(n), kind.String(), lo, hi)
		}
	}
	return nil
}

// char accepts a string of at most one code point or a code point number.
func (c *checker) char(v value.Value) *errors.Error {
	switch x := v.(type) {
	case value.String:
		if utf8.RuneCountInString(string(x)) > 1 {
			return errors.New(errors.PhaseValidate, errors.KindLength).
				Path(c.path...).
				WitType("char").
				Value(string(x)).
				Detail("expected a single character, got %q", string(x)).
				Build()
		}
		return nil
	case value.Number:
		f := float64(x)
		if !x.IsIntegral() || f < 0 || f > utf8.MaxRune || !utf8.ValidRune(rune(f)) {
			return errors.New(errors.PhaseValidate, errors.KindOutOfRange).
				Path(c.path...).
				WitType("char").
				Value(f).
				Detail("value %v is not a valid code point", f).
				Build()
		}
		return nil
	}
	return c.mismatch(v, "char")
}

func (c *checker) flags(v value.Value, t *types.Flags) *errors.Error {
	list, ok := v.(value.List)
	if !ok {
		return c.mismatch(v, "flags")
	}
	for i, item := range list {
		name, ok := item.(value.String)
		if !ok {
			return errors.TypeMismatch(errors.PhaseValidate, c.at(strconv.Itoa(i)), typeName(item), "string")
		}
		if len(t.Names) > 0 && !t.Has(string(name)) {
			return errors.New(errors.PhaseValidate, errors.KindInvalidFlag).
				Path(c.at(strconv.Itoa(i))...).
				WitType("flags").
				Value(string(name)).
				Detail("unknown flag %q, expected one of %v", string(name), t.Names).
				Build()
		}
	}
	return nil
}

// variant accepts a single-key object {case: payload}, or the bare case name
// for unit cases.
func (c *checker) variant(v value.Value, t *types.Variant, depth int) *errors.Error {
	switch x := v.(type) {
	case value.String:
		vc, ok := t.Case(string(x))
		if !ok {
			return errors.InvalidVariant(errors.PhaseValidate, c.at(), string(x), t.CaseNames())
		}
		if vc.Type != nil {
			return errors.New(errors.PhaseValidate, errors.KindInvalidVariant).
				Path(c.path...).
				WitType("variant").
				Value(string(x)).
				Detail("variant case %q requires a %s payload", vc.Name, vc.Type).
				Build()
		}
		return nil

	case value.Map:
		if len(x) != 1 {
			return errors.New(errors.PhaseValidate, errors.KindInvalidVariant).
				Path(c.path...).
				WitType("variant").
				Detail("expected an object with exactly one case key, got %d keys", len(x)).
				Build()
		}
		name, payload := x[0].Key, x[0].Value
		vc, ok := t.Case(name)
		if !ok {
			return errors.InvalidVariant(errors.PhaseValidate, c.at(), name, t.CaseNames())
		}
		c.push(name)
		defer c.pop()
		if vc.Type == nil {
			if !value.IsNull(payload) {
				return errors.New(errors.PhaseValidate, errors.KindInvalidVariant).
					Path(c.path...).
					WitType("variant").
					GoType(typeName(payload)).
					Detail("unit case %q takes no payload, got %s", name, typeName(payload)).
					Build()
			}
			return nil
		}
		return c.check(payload, vc.Type, depth+1)
	}
	return c.mismatch(v, "variant")
}

// result checks whichever of the ok and err keys are present. Error
// payloads are plain message strings.
func (c *checker) result(v value.Value, t *types.Result, depth int) *errors.Error {
	var okPayload, errPayload value.Value
	switch x := v.(type) {
	case value.Result:
		// nil marks an absent key below
		payload := x.Payload
		if payload == nil {
			payload = value.Null{}
		}
		if x.IsErr {
			errPayload = payload
		} else {
			okPayload = payload
		}
	case value.Map:
		okPayload, _ = x.Get("ok")
		errPayload, _ = x.Get("err")
	default:
		return c.mismatch(v, "result")
	}

	if okPayload != nil {
		c.push("ok")
		err := c.check(okPayload, t.OK, depth+1)
		c.pop()
		if err != nil {
			return err
		}
	}
	if errPayload != nil {
		if _, ok := errPayload.(value.String); !ok {
			return errors.TypeMismatch(errors.PhaseValidate, c.at("err"), typeName(errPayload), "string")
		}
	}
	return nil
}

func typeName(v value.Value) string {
	if v == nil {
		return "null"
	}
	return v.TypeName()
}
