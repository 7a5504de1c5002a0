package types

import (
	"math"
	"strings"
)

// Kind is the canonical tag of a WIT type.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindChar
	KindString
	KindList
	KindOption
	KindTuple
	KindRecord
	KindVariant
	KindEnum
	KindResult
	KindFlags
	KindHandle
	KindUnit
	KindUnknown
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindS8:      "s8",
	KindU16:     "u16",
	KindS16:     "s16",
	KindU32:     "u32",
	KindS32:     "s32",
	KindU64:     "u64",
	KindS64:     "s64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindChar:    "char",
	KindString:  "string",
	KindList:    "list",
	KindOption:  "option",
	KindTuple:   "tuple",
	KindRecord:  "record",
	KindVariant: "variant",
	KindEnum:    "enum",
	KindResult:  "result",
	KindFlags:   "flags",
	KindHandle:  "handle",
	KindUnit:    "unit",
	KindUnknown: "unknown",
}

// tag aliases accepted in descriptors, after lower-casing
var kindAliases = map[string]Kind{
	"str":      KindString,
	"chr":      KindChar,
	"own":      KindHandle,
	"borrow":   KindHandle,
	"resource": KindHandle,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a descriptor tag to its canonical Kind. Tags are matched
// case-insensitively and aliases such as "str" and "chr" are accepted.
func ParseKind(tag string) (Kind, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if k, ok := kindAliases[tag]; ok {
		return k, true
	}
	for i, name := range kindNames {
		if name == tag && Kind(i) != KindUnknown {
			return Kind(i), true
		}
	}
	return KindUnknown, false
}

// IsPrimitive reports whether k is a scalar with no type parameters.
func (k Kind) IsPrimitive() bool {
	return k <= KindString
}

func (k Kind) IsInteger() bool {
	return k >= KindU8 && k <= KindS64
}

func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}

func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat()
}

// IsSimple reports whether values of this kind are written without a
// some(...)/ok(...) wrapper when they are the payload of an option or result.
func (k Kind) IsSimple() bool {
	return k.IsPrimitive() || k == KindEnum
}

// Signed reports whether an integer kind is signed.
func (k Kind) Signed() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	}
	return false
}

// Bits returns the width of an integer or float kind, or 0.
func (k Kind) Bits() int {
	switch k {
	case KindU8, KindS8:
		return 8
	case KindU16, KindS16:
		return 16
	case KindU32, KindS32, KindF32:
		return 32
	case KindU64, KindS64, KindF64:
		return 64
	}
	return 0
}

// Range returns the inclusive bounds of an integer kind.
func (k Kind) Range() (lo int64, hi uint64) {
	bits := k.Bits()
	if !k.IsInteger() {
		return 0, 0
	}
	if k.Signed() {
		return -1 << (bits - 1), 1<<(bits-1) - 1
	}
	if bits == 64 {
		return 0, math.MaxUint64
	}
	return 0, 1<<bits - 1
}

// InRange reports whether f is an integral number that fits the integer kind.
// Bounds are compared in float64 with an exclusive power-of-two upper limit so
// that 64-bit limits are exact.
func (k Kind) InRange(f float64) bool {
	if !k.IsInteger() || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	bits := k.Bits()
	if k.Signed() {
		limit := math.Ldexp(1, bits-1)
		return f >= -limit && f < limit
	}
	return f >= 0 && f < math.Ldexp(1, bits)
}
