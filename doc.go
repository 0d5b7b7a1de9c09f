// Package rescue generates finalizers that move marked struct fields
// out to a rescue function instead of destroying them in place.
//
// A struct opts in with comment directives. The type-level directive
// names the rescue function, and field-level markers select the fields
// that survive finalization:
//
//	//rescue:func handoff
//	type Session struct {
//	    buf    *Buffer
//	    file   *File       //rescue:field
//	    sender chan Report //rescue:field
//	}
//
//	func handoff(file *File, sender chan Report) { ... }
//
// Running the generator produces a Destroy method on Session that runs
// the struct's cleanup routine, destroys the unmarked fields in place,
// zeroes the instance, and hands file and sender to handoff in a
// single call. The rescue function's signature must match the marked
// fields exactly, in declaration order; mismatches are rejected before
// anything is written.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	rescue/              Root package tying loading, checking and generation together
//	├── inspect/         Directive scanning and definition-time checks over go/types
//	├── gen/             Finalizer source rendering and file output
//	├── lifecycle/       Runtime instance tracking and deferred-drop cells
//	├── errors/          Structured error types for diagnostics
//	└── cmd/rescuegen/   Command-line generator with an interactive mode
//
// # Quick Start
//
// Generate finalizers for every package under the current module:
//
//	report, err := rescue.Generate(ctx, rescue.Options{}, "./...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, path := range report.Files() {
//	    fmt.Println("wrote", path)
//	}
//
// Or install the command and run it from a package directory:
//
//	go run github.com/wippyai/rescue/cmd/rescuegen ./...
//
// # Directives
//
// All directives use the machine-readable comment form with no space
// after the slashes. A type may carry:
//
//	//rescue:func F          bind rescue function F (required for generation)
//	//rescue:cleanup m       run method m before fields are destroyed (default: cleanup, if present)
//	//rescue:finalizer Name  name the generated method (default: Destroy)
//
// and each surviving field carries:
//
//	//rescue:field
//
// # Error Handling
//
// When the cleanup routine can fail, the generated finalizer still
// performs the rescue and returns the cleanup error afterwards. When
// both the cleanup routine and the rescue function return errors, the
// cleanup error takes precedence.
//
// Definition-time violations are collected into a *errors.CheckError
// listing every finding with the struct, field and expected signature,
// and no file is written until all of them are fixed.
package rescue
