package value

import (
	"math"
)

// Value is a node of a decoded value tree. The set of implementations is
// closed: String, Number, Bool, Null, List, Map and Result.
type Value interface {
	isValue()
	// TypeName is the runtime type name used in diagnostics.
	TypeName() string
}

type String string

func (String) isValue()         {}
func (String) TypeName() string { return "string" }

// Number holds every numeric value, including char code points and the
// inf/nan sentinels.
type Number float64

func (Number) isValue()         {}
func (Number) TypeName() string { return "number" }

// IsIntegral reports whether n has no fractional part and is finite.
func (n Number) IsIntegral() bool {
	f := float64(n)
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

type Bool bool

func (Bool) isValue()         {}
func (Bool) TypeName() string { return "boolean" }

type Null struct{}

func (Null) isValue()         {}
func (Null) TypeName() string { return "null" }

// List is an ordered sequence. Lists, tuples and flags all decode to List.
type List []Value

func (List) isValue()         {}
func (List) TypeName() string { return "list" }

// Entry is one key/value pair of a Map.
type Entry struct {
	Value Value
	Key   string
}

// Map is an insertion-ordered string-keyed map. Records and single-key
// variant objects decode to Map.
type Map []Entry

func (Map) isValue()         {}
func (Map) TypeName() string { return "map" }

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Set replaces the value under key in place, or appends a new entry.
func (m Map) Set(key string, v Value) Map {
	for i := range m {
		if m[i].Key == key {
			m[i].Value = v
			return m
		}
	}
	return append(m, Entry{Key: key, Value: v})
}

// Result is a tagged ok/err value. It is interchangeable with a single-key
// Map keyed "ok" or "err".
type Result struct {
	Payload Value
	IsErr   bool
}

func (Result) isValue()         {}
func (Result) TypeName() string { return "result" }

// Tag returns "ok" or "err".
func (r Result) Tag() string {
	if r.IsErr {
		return "err"
	}
	return "ok"
}

// Ok and Err build results; a nil payload becomes Null.
func Ok(v Value) Result  { return Result{Payload: orNull(v)} }
func Err(v Value) Result { return Result{Payload: orNull(v), IsErr: true} }

// AsResult views v as a result: either a Result or a single-key Map keyed
// "ok" or "err".
func AsResult(v Value) (Result, bool) {
	switch r := v.(type) {
	case Result:
		r.Payload = orNull(r.Payload)
		return r, true
	case Map:
		if len(r) != 1 {
			return Result{}, false
		}
		switch r[0].Key {
		case "ok":
			return Ok(r[0].Value), true
		case "err":
			return Err(r[0].Value), true
		}
	}
	return Result{}, false
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// Equal reports structural equality. NaN equals NaN, a nil Value equals
// Null, and map entries must appear in the same order.
func Equal(a, b Value) bool {
	a, b = orNull(a), orNull(b)
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) {
			return math.IsNaN(float64(y))
		}
		return x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Null:
		_, ok := b.(Null)
		return ok
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i].Key != y[i].Key || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	case Result:
		y, ok := b.(Result)
		return ok && x.IsErr == y.IsErr && Equal(x.Payload, y.Payload)
	}
	return false
}
