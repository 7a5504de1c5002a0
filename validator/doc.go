// Package validator checks decoded values against WIT types.
//
// Validation stops at the first violation, visiting fields in declaration
// order. The returned *errors.Error carries the path of the offending value
// starting at the root name ("value" unless ValidateField names it), so a
// message reads like
//
//	[validate] out_of_range at value.age: value 256 out of range for u8 (0..255)
package validator
