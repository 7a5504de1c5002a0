package wave

import (
	stderrors "errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/wave/errors"
	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/value"
)

// Options configures parsing.
type Options struct {
	// MaxDepth bounds value nesting. Zero means types.DefaultMaxDepth.
	MaxDepth int
}

// Parse parses WAVE text into an untyped value tree. Failures are returned as
// *errors.SyntaxError carrying the byte offset of the problem.
func Parse(input string) (value.Value, error) {
	return ParseWithOptions(input, Options{})
}

// ParseWithOptions is Parse with explicit options.
func ParseWithOptions(input string, opts Options) (value.Value, error) {
	p := &parser{input: input, maxDepth: opts.MaxDepth}
	if p.maxDepth <= 0 {
		p.maxDepth = types.DefaultMaxDepth
	}

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected trailing characters %q", p.rest(16))
	}
	return v, nil
}

// ParseTyped parses input and uses t to resolve what untyped text cannot:
// an empty "{}" in a flags position becomes an empty list instead of an empty
// record. A nil t behaves like Parse.
func ParseTyped(input string, t types.Type) (value.Value, error) {
	v, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return applyHints(v, t, 0), nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) value.Value {
	v, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return v
}

// keywords cannot be used as bare names; the encoder writes such names
// with a leading '%'.
var keywords = map[string]bool{
	"true":  true,
	"false": true,
	"none":  true,
	"some":  true,
	"ok":    true,
	"err":   true,
	"inf":   true,
	"nan":   true,
	"null":  true,
}

type parser struct {
	input    string
	pos      int
	depth    int
	maxDepth int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) rest(n int) string {
	s := p.input[p.pos:]
	if len(s) > n {
		s = s[:n]
	}
	return s
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(msg string, args ...any) *errors.SyntaxError {
	return errors.Syntax(p.pos, msg, args...)
}

func (p *parser) errorAt(offset int, msg string, args ...any) *errors.SyntaxError {
	return errors.Syntax(offset, msg, args...)
}

func (p *parser) unexpected() *errors.SyntaxError {
	if p.eof() {
		return p.errorf("unexpected end of input")
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return p.errorf("unexpected character %q", r)
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	p.pos++
	return nil
}

func (p *parser) parseValue() (value.Value, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, p.errorf("maximum nesting depth %d exceeded", p.maxDepth)
	}

	c := p.input[p.pos]
	switch {
	case c == '"':
		s, err := p.parseQuoted('"')
		if err != nil {
			return nil, err
		}
		return value.String(s), nil
	case c == '\'':
		return p.parseChar()
	case c == '[':
		return p.parseList()
	case c == '(':
		return p.parseTuple()
	case c == '{':
		return p.parseBraces()
	case isDigit(c), c == '-' || c == '+':
		return p.parseNumber()
	case isIdentStart(c) || c == '%':
		return p.parseIdentValue()
	}
	return nil, p.unexpected()
}

// parseQuoted reads a string or char body up to the closing quote.
func (p *parser) parseQuoted(quote byte) (string, error) {
	start := p.pos
	p.pos++

	var sb strings.Builder
	for {
		if p.eof() {
			if quote == '"' {
				return "", p.errorAt(start, "unterminated string")
			}
			return "", p.errorAt(start, "unterminated character")
		}
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				continue
			}
			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) parseEscape(sb *strings.Builder) error {
	c := p.input[p.pos]
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '\\', '"', '\'':
		sb.WriteByte(c)
	case 'u':
		if strings.HasPrefix(p.input[p.pos:], "u{") {
			return p.parseUnicodeEscape(sb)
		}
		sb.WriteByte(c)
	default:
		// unknown escapes keep the escaped character
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteByte(c)
		} else {
			sb.WriteRune(r)
		}
		p.pos += size
		return nil
	}
	p.pos++
	return nil
}

// parseUnicodeEscape reads \u{XXXX}; the cursor is on the 'u'.
func (p *parser) parseUnicodeEscape(sb *strings.Builder) error {
	start := p.pos - 1
	end := strings.IndexByte(p.input[p.pos:], '}')
	if end < 0 {
		return p.errorAt(start, "unterminated unicode escape")
	}
	hex := p.input[p.pos+2 : p.pos+end]
	code, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) == 0 || len(hex) > 6 || !utf8.ValidRune(rune(code)) {
		return p.errorAt(start, "invalid unicode escape %q", p.input[start:p.pos+end+1])
	}
	sb.WriteRune(rune(code))
	p.pos += end + 1
	return nil
}

func (p *parser) parseChar() (value.Value, error) {
	start := p.pos
	s, err := p.parseQuoted('\'')
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, p.errorAt(start, "empty character literal")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return value.Number(r), nil
}

func (p *parser) parseList() (value.Value, error) {
	start := p.pos
	p.pos++

	list := value.List{}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return list, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == ']' {
				return nil, p.errorf("trailing comma in list")
			}
		case ']':
			p.pos++
			return list, nil
		default:
			if p.eof() {
				return nil, p.errorAt(start, "unterminated list")
			}
			return nil, p.errorf("expected ',' or ']' in list, got %q", p.peek())
		}
	}
}

// parseTuple reads "()", "(x,)" and "(x, y, ...)". A parenthesized "(x)" is
// x itself. A trailing comma is only accepted after a single element.
func (p *parser) parseTuple() (value.Value, error) {
	start := p.pos
	p.pos++

	tuple := value.List{}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return tuple, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		tuple = append(tuple, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == ')' {
				if len(tuple) > 1 {
					return nil, p.errorf("trailing comma in tuple")
				}
				p.pos++
				return tuple, nil
			}
		case ')':
			p.pos++
			// (x) is a parenthesized value, (x,) the one-element tuple
			if len(tuple) == 1 {
				return tuple[0], nil
			}
			return tuple, nil
		default:
			if p.eof() {
				return nil, p.errorAt(start, "unterminated tuple")
			}
			return nil, p.errorf("expected ',' or ')' in tuple, got %q", p.peek())
		}
	}
}

// parseBraces decides between a record and flags by looking past the first
// name for a ':'.
func (p *parser) parseBraces() (value.Value, error) {
	start := p.pos
	p.pos++

	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return value.Map{}, nil
	}
	if p.eof() {
		return nil, p.errorAt(start, "unterminated record")
	}

	if p.isRecord() {
		return p.parseRecord(start)
	}
	return p.parseFlags(start)
}

// isRecord reports whether the name at the cursor is followed by ':'. The
// cursor is restored in every case.
func (p *parser) isRecord() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if _, _, err := p.parseIdent(); err != nil {
		return false
	}
	p.skipSpace()
	return p.peek() == ':'
}

func (p *parser) parseRecord(start int) (value.Value, error) {
	rec := value.Map{}
	for {
		p.skipSpace()
		keyPos := p.pos
		key, _, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if rec.Has(key) {
			return nil, p.errorAt(keyPos, "duplicate field %q", key)
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		rec = append(rec, value.Entry{Key: key, Value: v})

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' {
				return nil, p.errorf("trailing comma in record")
			}
		case '}':
			p.pos++
			return rec, nil
		default:
			if p.eof() {
				return nil, p.errorAt(start, "unterminated record")
			}
			return nil, p.errorf("expected ',' or '}' in record, got %q", p.peek())
		}
	}
}

func (p *parser) parseFlags(start int) (value.Value, error) {
	flags := value.List{}
	for {
		p.skipSpace()
		name, _, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		flags = append(flags, value.String(name))

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' {
				return nil, p.errorf("trailing comma in flags")
			}
		case '}':
			p.pos++
			return flags, nil
		default:
			if p.eof() {
				return nil, p.errorAt(start, "unterminated flags")
			}
			return nil, p.errorf("expected ',' or '}' in flags, got %q", p.peek())
		}
	}
}

// parseIdent reads a kebab-case name. A leading '%' is stripped and reported
// as escaped, so "%none" is the name "none" rather than the keyword.
func (p *parser) parseIdent() (name string, escaped bool, err error) {
	start := p.pos
	if p.peek() == '%' {
		escaped = true
		p.pos++
	}
	if !isIdentStart(p.peek()) {
		if p.eof() {
			return "", false, p.errorf("expected identifier, got end of input")
		}
		return "", false, p.unexpected()
	}
	nameStart := p.pos
	for !p.eof() && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	name = p.input[nameStart:p.pos]
	if strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
		return "", false, p.errorAt(start, "invalid identifier %q", p.input[start:p.pos])
	}
	return name, escaped, nil
}

func (p *parser) parseIdentValue() (value.Value, error) {
	name, escaped, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	if p.peek() == '(' {
		return p.parseCall(name, escaped)
	}

	if !escaped {
		switch name {
		case "true":
			return value.Bool(true), nil
		case "false":
			return value.Bool(false), nil
		case "none", "null":
			return value.Null{}, nil
		case "inf":
			return value.Number(math.Inf(1)), nil
		case "nan":
			return value.Number(math.NaN()), nil
		}
	}
	return value.String(name), nil
}

// parseCall reads the "(payload)" after a name: some, ok and err map to
// option and result values, any other name to a single-key variant map.
func (p *parser) parseCall(name string, escaped bool) (value.Value, error) {
	start := p.pos
	p.pos++

	var payload value.Value = value.Null{}
	p.skipSpace()
	if p.peek() != ')' {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		payload = v
		p.skipSpace()
		if p.peek() != ')' {
			if p.eof() {
				return nil, p.errorAt(start, "unterminated payload of %q", name)
			}
			return nil, p.errorf("expected ')' after payload of %q, got %q", name, p.peek())
		}
	}
	p.pos++

	if !escaped {
		switch name {
		case "some":
			return payload, nil
		case "ok":
			return value.Ok(payload), nil
		case "err":
			return value.Err(payload), nil
		}
	}
	return value.Map{{Key: name, Value: payload}}, nil
}

func (p *parser) parseNumber() (value.Value, error) {
	start := p.pos
	c := p.input[p.pos]
	if c == '-' || c == '+' {
		p.pos++
		if strings.HasPrefix(p.input[p.pos:], "inf") && !isIdentCharAt(p.input, p.pos+3) {
			p.pos += 3
			if c == '-' {
				return value.Number(math.Inf(-1)), nil
			}
			return value.Number(math.Inf(1)), nil
		}
		if !isDigit(p.peek()) {
			p.pos = start
			return nil, p.unexpected()
		}
	}

	p.digits()
	if p.peek() == '.' {
		p.pos++
		if !isDigit(p.peek()) {
			return nil, p.errorAt(start, "invalid number %q", p.input[start:p.pos])
		}
		p.digits()
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			return nil, p.errorAt(start, "invalid number %q", p.input[start:p.pos])
		}
		p.digits()
	}
	if isIdentCharAt(p.input, p.pos) && !isDigit(p.peek()) || p.peek() == '.' {
		for !p.eof() && (isIdentChar(p.input[p.pos]) || p.input[p.pos] == '.') {
			p.pos++
		}
		return nil, p.errorAt(start, "invalid number %q", p.input[start:p.pos])
	}

	f, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil && !stderrors.Is(err, strconv.ErrRange) {
		return nil, p.errorAt(start, "invalid number %q", p.input[start:p.pos])
	}
	return value.Number(f), nil
}

func (p *parser) digits() {
	for !p.eof() && isDigit(p.input[p.pos]) {
		p.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}

func isIdentCharAt(s string, i int) bool {
	return i < len(s) && (isIdentChar(s[i]) || s[i] == '_')
}

// applyHints rewrites parts of an untyped tree that the type disambiguates.
func applyHints(v value.Value, t types.Type, depth int) value.Value {
	if t == nil || depth > types.DefaultMaxDepth {
		return v
	}

	switch typ := t.(type) {
	case *types.Flags:
		if m, ok := v.(value.Map); ok && len(m) == 0 {
			return value.List{}
		}
	case *types.Option:
		if !value.IsNull(v) {
			return applyHints(v, typ.Inner, depth+1)
		}
	case *types.List:
		if list, ok := v.(value.List); ok {
			out := make(value.List, len(list))
			for i, item := range list {
				out[i] = applyHints(item, typ.Elem, depth+1)
			}
			return out
		}
	case *types.Tuple:
		if list, ok := v.(value.List); ok {
			out := make(value.List, len(list))
			for i, item := range list {
				if i < len(typ.Fields) {
					item = applyHints(item, typ.Fields[i].Type, depth+1)
				}
				out[i] = item
			}
			return out
		}
	case *types.Record:
		if m, ok := v.(value.Map); ok {
			out := make(value.Map, len(m))
			for i, e := range m {
				if f, ok := typ.Field(e.Key); ok {
					e.Value = applyHints(e.Value, f.Type, depth+1)
				}
				out[i] = e
			}
			return out
		}
	case *types.Variant:
		if m, ok := v.(value.Map); ok && len(m) == 1 {
			if c, ok := typ.Case(m[0].Key); ok {
				return value.Map{{Key: m[0].Key, Value: applyHints(m[0].Value, c.Type, depth+1)}}
			}
		}
	case *types.Result:
		if r, ok := v.(value.Result); ok {
			inner := typ.OK
			if r.IsErr {
				inner = typ.Err
			}
			r.Payload = applyHints(r.Payload, inner, depth+1)
			return r
		}
		// the encoder drops ok( ) around simple payloads
		if types.IsSimple(typ.OK) && !value.IsNull(v) {
			if _, isMap := v.(value.Map); !isMap {
				return value.Ok(applyHints(v, typ.OK, depth+1))
			}
		}
	}
	return v
}
