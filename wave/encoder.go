package wave

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/value"
)

// Diagnostic is a non-fatal problem found while encoding. Path names the
// value position, starting at "value".
type Diagnostic struct {
	Path    string
	Message string
}

func (d Diagnostic) String() string {
	return d.Path + ": " + d.Message
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l *zap.Logger) EncoderOption {
	return func(e *Encoder) {
		e.logger = l
	}
}

// WithMaxDepth bounds value nesting. Deeper values are written as null.
func WithMaxDepth(n int) EncoderOption {
	return func(e *Encoder) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// Encoder renders value trees as WAVE text. It holds no per-call state and is
// safe for concurrent use.
type Encoder struct {
	logger   *zap.Logger
	maxDepth int
}

// NewEncoder creates an encoder. Without WithLogger it reports to Logger().
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{maxDepth: types.DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode renders v using the type t. A nil t selects the untyped encoding.
func Encode(v value.Value, t types.Type) string {
	s, _ := NewEncoder().Encode(v, t)
	return s
}

// EncodeWithDiagnostics is Encode that also returns the diagnostics.
func EncodeWithDiagnostics(v value.Value, t types.Type) (string, []Diagnostic) {
	return NewEncoder().Encode(v, t)
}

// EncodeUntyped renders v inferring the syntax from its shape alone.
func EncodeUntyped(v value.Value) string {
	s, _ := NewEncoder().EncodeUntyped(v)
	return s
}

// Encode renders v using the type t and returns the diagnostics raised on
// the way. It never fails.
func (e *Encoder) Encode(v value.Value, t types.Type) (string, []Diagnostic) {
	st := e.newState()
	if t == nil {
		st.untyped(v, 0)
	} else {
		st.typed(v, t, 0)
	}
	return st.buf.String(), st.diags
}

// EncodeUntyped renders v without type information.
func (e *Encoder) EncodeUntyped(v value.Value) (string, []Diagnostic) {
	st := e.newState()
	st.untyped(v, 0)
	return st.buf.String(), st.diags
}

func (e *Encoder) newState() *encodeState {
	log := e.logger
	if log == nil {
		log = Logger()
	}
	return &encodeState{logger: log, maxDepth: e.maxDepth, path: []string{"value"}}
}

type encodeState struct {
	logger   *zap.Logger
	diags    []Diagnostic
	path     []string
	buf      strings.Builder
	maxDepth int
}

func (s *encodeState) warn(format string, args ...any) {
	d := Diagnostic{Path: strings.Join(s.path, "."), Message: fmt.Sprintf(format, args...)}
	s.diags = append(s.diags, d)
	s.logger.Warn("wave encode", zap.String("path", d.Path), zap.String("problem", d.Message))
}

func (s *encodeState) push(elem string) {
	s.path = append(s.path, elem)
}

func (s *encodeState) pop() {
	s.path = s.path[:len(s.path)-1]
}

// mismatch writes v untyped after reporting that it does not fit t.
func (s *encodeState) mismatch(v value.Value, t types.Type, depth int) {
	s.warn("expected %s, got %s", t, typeName(v))
	s.untyped(v, depth)
}

func (s *encodeState) tooDeep(depth int) bool {
	if depth < s.maxDepth {
		return false
	}
	s.warn("maximum nesting depth %d exceeded", s.maxDepth)
	s.buf.WriteString("null")
	return true
}

func (s *encodeState) typed(v value.Value, t types.Type, depth int) {
	if t == nil {
		s.untyped(v, depth)
		return
	}
	if s.tooDeep(depth) {
		return
	}

	switch typ := t.(type) {
	case types.Primitive:
		s.primitive(v, typ, depth)

	case *types.Enum:
		name, ok := v.(value.String)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		if !typ.Has(string(name)) {
			s.warn("unknown enum case %q", string(name))
		}
		s.ident(string(name))

	case *types.Option:
		switch {
		case value.IsNull(v):
			s.buf.WriteString("none")
		case types.IsSimple(typ.Inner):
			s.typed(v, typ.Inner, depth+1)
		default:
			s.buf.WriteString("some(")
			s.typed(v, typ.Inner, depth+1)
			s.buf.WriteByte(')')
		}

	case *types.List:
		list, ok := v.(value.List)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		s.buf.WriteByte('[')
		for i, item := range list {
			if i > 0 {
				s.buf.WriteString(", ")
			}
			s.push(strconv.Itoa(i))
			s.typed(item, typ.Elem, depth+1)
			s.pop()
		}
		s.buf.WriteByte(']')

	case *types.Record:
		s.record(v, typ, depth)

	case *types.Variant:
		s.variant(v, typ, depth)

	case *types.Result:
		s.result(v, typ, depth)

	case *types.Tuple:
		list, ok := v.(value.List)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		n := min(len(list), len(typ.Fields))
		s.buf.WriteByte('(')
		for i := 0; i < n; i++ {
			if i > 0 {
				s.buf.WriteString(", ")
			}
			s.push(strconv.Itoa(i))
			s.typed(list[i], typ.Fields[i].Type, depth+1)
			s.pop()
		}
		// (x) reads back as x
		if n == 1 {
			s.buf.WriteByte(',')
		}
		s.buf.WriteByte(')')

	case *types.Flags:
		list, ok := v.(value.List)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		names := make([]string, 0, len(list))
		for _, item := range list {
			name, ok := item.(value.String)
			if !ok {
				s.mismatch(v, t, depth)
				return
			}
			names = append(names, string(name))
		}
		s.buf.WriteByte('{')
		for i, name := range names {
			if i > 0 {
				s.buf.WriteString(", ")
			}
			if !typ.Has(name) && len(typ.Names) > 0 {
				s.warn("unknown flag %q", name)
			}
			s.ident(name)
		}
		s.buf.WriteByte('}')

	case types.Handle:
		switch h := v.(type) {
		case value.String:
			s.quote(string(h))
		case value.Number:
			s.quote(formatNumber(float64(h)))
		default:
			s.mismatch(v, t, depth)
		}

	case types.Unit:
		s.buf.WriteString("null")

	default:
		s.warn("unrecognized type %q", t.String())
		s.untyped(v, depth)
	}
}

func (s *encodeState) primitive(v value.Value, t types.Primitive, depth int) {
	kind := t.Kind()
	switch {
	case kind == types.KindString:
		str, ok := v.(value.String)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		s.quote(string(str))

	case kind == types.KindBool:
		b, ok := v.(value.Bool)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		s.buf.WriteString(strconv.FormatBool(bool(b)))

	case kind == types.KindChar:
		switch c := v.(type) {
		case value.Number:
			s.buf.WriteString(formatNumber(float64(c)))
		case value.String:
			if c == "" {
				s.warn("empty string for char")
				s.buf.WriteByte('0')
				return
			}
			r, _ := utf8.DecodeRuneInString(string(c))
			s.buf.WriteString(strconv.Itoa(int(r)))
		default:
			s.mismatch(v, t, depth)
		}

	case kind.IsNumeric():
		n, ok := v.(value.Number)
		if !ok {
			s.mismatch(v, t, depth)
			return
		}
		s.buf.WriteString(formatNumber(float64(n)))

	default:
		s.mismatch(v, t, depth)
	}
}

func (s *encodeState) record(v value.Value, t *types.Record, depth int) {
	m, ok := v.(value.Map)
	if !ok {
		s.mismatch(v, t, depth)
		return
	}
	if len(t.Fields) == 0 {
		s.untypedMap(m, depth)
		return
	}

	s.buf.WriteByte('{')
	n := 0
	for _, f := range t.Fields {
		fv, ok := m.Get(f.Name)
		if !ok {
			continue
		}
		if n > 0 {
			s.buf.WriteString(", ")
		}
		n++
		s.ident(f.Name)
		s.buf.WriteString(": ")
		s.push(f.Name)
		s.typed(fv, f.Type, depth+1)
		s.pop()
	}
	s.buf.WriteByte('}')
}

func (s *encodeState) variant(v value.Value, t *types.Variant, depth int) {
	switch x := v.(type) {
	case value.String:
		if _, ok := t.Case(string(x)); ok {
			s.ident(string(x))
			return
		}
	case value.Map:
		if len(x) != 1 {
			break
		}
		name, payload := x[0].Key, x[0].Value
		c, ok := t.Case(name)
		if !ok {
			s.warn("unknown variant case %q", name)
		}
		s.ident(name)
		if value.IsNull(payload) {
			return
		}
		s.buf.WriteByte('(')
		s.push(name)
		s.typed(payload, c.Type, depth+1)
		s.pop()
		s.buf.WriteByte(')')
		return
	}
	s.mismatch(v, t, depth)
}

func (s *encodeState) result(v value.Value, t *types.Result, depth int) {
	r, ok := resultBranch(v)
	if !ok {
		s.mismatch(v, t, depth)
		return
	}

	if r.IsErr {
		s.buf.WriteString("err(")
		s.push("err")
		s.typed(r.Payload, t.Err, depth+1)
		s.pop()
		s.buf.WriteByte(')')
		return
	}

	switch {
	case value.IsNull(r.Payload):
		s.buf.WriteString("ok(null)")
	case types.IsSimple(t.OK):
		s.push("ok")
		s.typed(r.Payload, t.OK, depth+1)
		s.pop()
	default:
		s.buf.WriteString("ok(")
		s.push("ok")
		s.typed(r.Payload, t.OK, depth+1)
		s.pop()
		s.buf.WriteByte(')')
	}
}

// resultBranch picks the branch to encode. A map carrying an "ok" key
// encodes as ok even when an "err" key sits next to it.
func resultBranch(v value.Value) (value.Result, bool) {
	m, isMap := v.(value.Map)
	if !isMap {
		return value.AsResult(v)
	}
	if p, ok := m.Get("ok"); ok {
		return value.Ok(p), true
	}
	if p, ok := m.Get("err"); ok {
		return value.Err(p), true
	}
	return value.Result{}, false
}

// untyped infers the syntax from the shape of v.
func (s *encodeState) untyped(v value.Value, depth int) {
	if s.tooDeep(depth) {
		return
	}

	switch x := v.(type) {
	case nil, value.Null:
		s.buf.WriteString("none")
	case value.String:
		s.quote(string(x))
	case value.Number:
		s.buf.WriteString(formatNumber(float64(x)))
	case value.Bool:
		s.buf.WriteString(strconv.FormatBool(bool(x)))
	case value.List:
		s.buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				s.buf.WriteString(", ")
			}
			s.push(strconv.Itoa(i))
			s.untyped(item, depth+1)
			s.pop()
		}
		s.buf.WriteByte(']')
	case value.Map:
		s.untypedMap(x, depth)
	case value.Result:
		s.buf.WriteString(x.Tag())
		s.buf.WriteByte('(')
		s.push(x.Tag())
		s.untyped(x.Payload, depth+1)
		s.pop()
		s.buf.WriteByte(')')
	}
}

func (s *encodeState) untypedMap(m value.Map, depth int) {
	s.buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			s.buf.WriteString(", ")
		}
		s.ident(e.Key)
		s.buf.WriteString(": ")
		s.push(e.Key)
		s.untyped(e.Value, depth+1)
		s.pop()
	}
	s.buf.WriteByte('}')
}

// ident writes a name, escaping keywords with '%'. Names that are not valid
// identifiers cannot be written as WAVE and are quoted with a diagnostic.
func (s *encodeState) ident(name string) {
	if !isIdent(name) {
		s.warn("%q is not a valid identifier", name)
		s.quote(name)
		return
	}
	if keywords[name] {
		s.buf.WriteByte('%')
	}
	s.buf.WriteString(name)
}

func (s *encodeState) quote(str string) {
	s.buf.WriteByte('"')
	for i := 0; i < len(str); i++ {
		c := str[i]
		switch c {
		case '"':
			s.buf.WriteString(`\"`)
		case '\\':
			s.buf.WriteString(`\\`)
		case '\n':
			s.buf.WriteString(`\n`)
		case '\t':
			s.buf.WriteString(`\t`)
		case '\r':
			s.buf.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&s.buf, `\u{%x}`, c)
				continue
			}
			s.buf.WriteByte(c)
		}
	}
	s.buf.WriteByte('"')
}

func isIdent(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentChar(name[i]) {
			return false
		}
	}
	return !strings.HasSuffix(name, "-") && !strings.Contains(name, "--")
}

// formatNumber writes integral values without exponent where float64 holds
// them exactly, and everything else in the shortest round-tripping form.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func typeName(v value.Value) string {
	if v == nil {
		return "null"
	}
	return v.TypeName()
}
