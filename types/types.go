package types

import (
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds the nesting of types and values walked by the codec.
const DefaultMaxDepth = 128

// Type is a WIT type descriptor. Each variant carries only the fields
// relevant to it. Types are immutable once constructed.
type Type interface {
	Kind() Kind
	String() string
}

// Primitive is a scalar type with no payload.
type Primitive Kind

const (
	Bool   = Primitive(KindBool)
	U8     = Primitive(KindU8)
	S8     = Primitive(KindS8)
	U16    = Primitive(KindU16)
	S16    = Primitive(KindS16)
	U32    = Primitive(KindU32)
	S32    = Primitive(KindS32)
	U64    = Primitive(KindU64)
	S64    = Primitive(KindS64)
	F32    = Primitive(KindF32)
	F64    = Primitive(KindF64)
	Char   = Primitive(KindChar)
	String = Primitive(KindString)
)

func (p Primitive) Kind() Kind     { return Kind(p) }
func (p Primitive) String() string { return Kind(p).String() }

// Field is a named member of a record, or a positional member of a tuple
// (named by its index).
type Field struct {
	Type Type
	Name string
}

// Case is a variant case. A nil Type marks a unit case.
type Case struct {
	Type Type
	Name string
}

// List is list<Elem>. Elem may be nil when the element type is unknown.
type List struct {
	Elem Type
}

func (*List) Kind() Kind { return KindList }

func (l *List) String() string {
	return "list<" + typeString(l.Elem) + ">"
}

// Option is option<Inner>.
type Option struct {
	Inner Type
}

func (*Option) Kind() Kind { return KindOption }

func (o *Option) String() string {
	return "option<" + typeString(o.Inner) + ">"
}

// Tuple is tuple<...>; fields are named "0", "1", ...
type Tuple struct {
	Fields []Field
}

func (*Tuple) Kind() Kind { return KindTuple }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = typeString(f.Type)
	}
	return "tuple<" + strings.Join(parts, ", ") + ">"
}

// Record has named fields in declaration order.
type Record struct {
	Fields []Field
}

func (*Record) Kind() Kind { return KindRecord }

// Field returns the declared field with the given name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (r *Record) String() string {
	if len(r.Fields) == 0 {
		return "record {}"
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + ": " + typeString(f.Type)
	}
	return "record { " + strings.Join(parts, ", ") + " }"
}

// Variant is a tagged union of named cases.
type Variant struct {
	Cases []Case
}

func (*Variant) Kind() Kind { return KindVariant }

// Case returns the declared case with the given name.
func (v *Variant) Case(name string) (Case, bool) {
	for _, c := range v.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return Case{}, false
}

// CaseNames returns the case names in declaration order.
func (v *Variant) CaseNames() []string {
	names := make([]string, len(v.Cases))
	for i, c := range v.Cases {
		names[i] = c.Name
	}
	return names
}

func (v *Variant) String() string {
	parts := make([]string, len(v.Cases))
	for i, c := range v.Cases {
		if c.Type == nil {
			parts[i] = c.Name
		} else {
			parts[i] = c.Name + "(" + c.Type.String() + ")"
		}
	}
	return "variant { " + strings.Join(parts, ", ") + " }"
}

// Enum is a variant whose cases have no payload.
type Enum struct {
	Cases []string
}

func (*Enum) Kind() Kind { return KindEnum }

func (e *Enum) Has(name string) bool {
	return contains(e.Cases, name)
}

func (e *Enum) String() string {
	return "enum { " + strings.Join(e.Cases, ", ") + " }"
}

// Result is result<OK, Err>. Either side may be nil.
type Result struct {
	OK  Type
	Err Type
}

func (*Result) Kind() Kind { return KindResult }

func (r *Result) String() string {
	switch {
	case r.OK == nil && r.Err == nil:
		return "result"
	case r.Err == nil:
		return "result<" + r.OK.String() + ">"
	default:
		return "result<" + typeString(r.OK) + ", " + r.Err.String() + ">"
	}
}

// Flags is a named bit-set.
type Flags struct {
	Names []string
}

func (*Flags) Kind() Kind { return KindFlags }

func (f *Flags) Has(name string) bool {
	return contains(f.Names, name)
}

func (f *Flags) String() string {
	return "flags { " + strings.Join(f.Names, ", ") + " }"
}

// Handle is an opaque resource reference. Resource optionally names the
// resource type.
type Handle struct {
	Resource string
}

func (Handle) Kind() Kind { return KindHandle }

func (h Handle) String() string {
	if h.Resource != "" {
		return "own<" + h.Resource + ">"
	}
	return "handle"
}

// Unit is the empty type.
type Unit struct{}

func (Unit) Kind() Kind     { return KindUnit }
func (Unit) String() string { return "unit" }

// Unknown carries a descriptor tag outside the WIT vocabulary. Consumers
// apply their documented fallbacks to it.
type Unknown struct {
	Tag string
}

func (Unknown) Kind() Kind { return KindUnknown }

func (u Unknown) String() string {
	if u.Tag == "" {
		return "unknown"
	}
	return u.Tag
}

// NewList returns list<elem>.
func NewList(elem Type) *List {
	return &List{Elem: elem}
}

// NewOption returns option<inner>.
func NewOption(inner Type) *Option {
	return &Option{Inner: inner}
}

// NewTuple returns a tuple whose fields are named by position.
func NewTuple(elems ...Type) *Tuple {
	fields := make([]Field, len(elems))
	for i, t := range elems {
		fields[i] = Field{Name: strconv.Itoa(i), Type: t}
	}
	return &Tuple{Fields: fields}
}

// NewRecord returns a record with the given fields.
func NewRecord(fields ...Field) *Record {
	return &Record{Fields: fields}
}

// NewVariant returns a variant with the given cases.
func NewVariant(cases ...Case) *Variant {
	return &Variant{Cases: cases}
}

// NewEnum returns an enum with the given case names.
func NewEnum(cases ...string) *Enum {
	return &Enum{Cases: cases}
}

// NewResult returns result<ok, err>. Pass nil for an untyped side.
func NewResult(ok, err Type) *Result {
	return &Result{OK: ok, Err: err}
}

// NewFlags returns flags with the given names.
func NewFlags(names ...string) *Flags {
	return &Flags{Names: names}
}

// KindOf returns t.Kind(), or KindUnknown for a nil type.
func KindOf(t Type) Kind {
	if t == nil {
		return KindUnknown
	}
	return t.Kind()
}

// IsSimple reports whether t is written bare as an option or result payload.
func IsSimple(t Type) bool {
	return t != nil && t.Kind().IsSimple()
}

func typeString(t Type) string {
	if t == nil {
		return "_"
	}
	return t.String()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
