// Package value is the dynamic value tree exchanged by the WAVE parser,
// encoder, validator and skeleton generator.
//
// The tree is a closed sum: String, Number (every numeric value, including
// char code points), Bool, Null, List, Map (insertion ordered) and Result.
// Use DecodeJSON to build a tree from JSON while keeping key order, and
// FromAny for values already decoded by encoding/json or yaml.
package value
