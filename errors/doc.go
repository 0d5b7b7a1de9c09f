// Package errors provides structured error types for the rescue library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: struct/field path, got/want type names, and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
//		Path("Session", "file").
//		GotType("string").
//		WantType("*os.File").
//		Detail("rescue parameter 0 does not match field type").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SignatureMismatch(path, "string", "*os.File")
//	err := errors.FieldUnknown(path, "sender")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
