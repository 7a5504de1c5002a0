// Package wave reads and writes WAVE, the WebAssembly Value Encoding: a
// textual form for values of WIT types.
//
//	"text"            string
//	'x'               char
//	[1, 2, 3]         list
//	(1, "a")  (1,)    tuple
//	{id: 5, ok: true} record
//	{read, write}     flags
//	some(1)  none     option
//	ok(1)  err("e")   result
//	circle(2.5)  red  variant and enum cases
//
// Parse produces an untyped value.Value tree. Encode renders a tree back to
// text, driven by an optional types.Type: with a type it applies the WIT
// specific syntax (simple option and ok payloads are written without their
// wrapper), without one it infers the syntax from the shape of the value.
//
// The encoder never fails. Values that do not match their declared type are
// written untyped and reported as Diagnostics, which are also logged at warn
// level through the package Logger or the one given to NewEncoder.
package wave
