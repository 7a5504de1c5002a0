// Package wave is the root of the WAVE value codec: a text encoding for
// WebAssembly Interface Type values, and the tooling that validates value
// trees against WIT types and generates placeholders for them.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	wave/                Root package (documentation only)
//	├── types/           WIT type model, descriptor files, WIT translation
//	├── value/           Dynamic value tree and JSON interop
//	├── wave/            WAVE parser and typed/untyped encoder
//	├── validator/       Structural validation of value trees
//	├── skeleton/        Placeholder values for types
//	├── schema/          JSON Schema export and checking
//	├── errors/          Structured error types
//	└── cmd/wave/        Command line tool and interactive argument editor
//
// # Quick Start
//
// Parse, validate and re-encode a value:
//
//	typ, err := types.LoadFile("user.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := wave.ParseTyped(`{id: 5, tags: ["a"]}`, typ)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := validator.Validate(v, typ); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(wave.Encode(v, typ)) // {id: 5, tags: ["a"]}
//
// # Type Support
//
// The codec supports the full WIT type system:
//
//   - Primitives: bool, u8-u64, s8-s64, f32, f64, char, string
//   - Compound: list<T>, option<T>, result<T, E>, tuple<...>
//   - Named: record, variant, enum, flags
//   - Resources: handles, encoded as quoted strings
//
// # Thread Safety
//
// Parsing, encoding, validation and skeleton generation are pure functions
// and safe for concurrent use. Package loggers are set once with SetLogger
// before use.
package wave
