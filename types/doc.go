// Package types is the WIT type model shared by the WAVE parser, encoder,
// validator and skeleton generator.
//
// A Type is a closed sum: Primitive scalars (bool, s8..s64, u8..u64, f32,
// f64, char, string), *List, *Option, *Tuple, *Record, *Variant, *Enum,
// *Result, *Flags and Handle. Unit and Unknown only come out of descriptor
// decoding, where they carry the "unit" tag and tags outside the vocabulary.
//
// Types are usually built in one of three ways:
//
//	t := types.NewRecord(
//		types.Field{Name: "id", Type: types.U32},
//		types.Field{Name: "tags", Type: types.NewList(types.String)},
//	)
//
//	t, err := types.ParseDescriptor([]byte(`{"type": "option", "inner": "u8"}`))
//
//	t, err := types.FromWIT(witType) // go.bytecodealliance.org/wit
//
// Every type renders as WIT-like text through String, e.g.
// "record { id: u32, tags: list<string> }".
package types
