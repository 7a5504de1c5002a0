// Package errors provides structured error types for the WAVE codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, runtime/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindTypeMismatch).
//		Path("user", "age").
//		GoType("string").
//		WitType("u32").
//		Detail("expected u32, got string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseValidate, path, "string", "u32")
//	err := errors.OutOfRange(errors.PhaseValidate, path, 256, "u8", 0, 255)
//
// Malformed WAVE text is reported as a *SyntaxError carrying the byte offset.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
