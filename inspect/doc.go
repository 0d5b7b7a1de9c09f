// Package inspect discovers and validates rescue annotations in Go source.
//
// A type opts in with directive comments. The type-level directive names
// the rescue function; field-level markers select the fields handed to it:
//
//	//rescue:func handoff
//	type Session struct {
//		buf    []byte
//		file   *os.File     //rescue:field
//		sender chan Report  //rescue:field
//	}
//
//	func handoff(file *os.File, sender chan Report) { ... }
//
// Optional type-level directives:
//
//	//rescue:cleanup shutdown    cleanup method (default: a method named
//	                             "cleanup", when the type has one)
//	//rescue:finalizer Close     generated entry point (default: Destroy)
//
// Scan collects annotated structs; Check enforces the definition-time
// contract before anything is generated: the rescue function must take
// exactly the marked fields' types, by value, in declaration order, and
// return nothing or a single error. A mismatch is rejected here, never
// deferred to runtime.
package inspect
