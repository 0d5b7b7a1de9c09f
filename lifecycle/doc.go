// Package lifecycle provides the runtime support for field rescue.
//
// A type with rescuable fields moves through three states when finalized:
//
//	live      - constructed, in ordinary use; rescuable fields behave as
//	            plain owned fields, no wrapper is observable
//	cleaning  - the cleanup routine runs with full access to the instance
//	rescued   - terminal: rescuable fields were moved out, by value, and
//	            handed to the rescue function in a single call
//
// Instances with nothing to rescue finish in the dropped state instead.
//
// # Instance Table
//
// The Table maps integer handles to tracked instances and enforces the
// transition order:
//
//	table := lifecycle.NewTable()
//
//	// Register a live instance, get a handle
//	handle := table.Insert(session)
//
//	// Cleanup begins: live -> cleaning
//	value, err := table.Begin(handle)
//
//	// Cleanup done, fields handed off: cleaning -> rescued
//	value, err := table.Finish(handle, true)
//
// Finish on a handle that is not cleaning fails, so a rescue can happen
// at most once and never before cleanup completes.
//
// # Deferred-Drop Cells
//
// Cell[T] suppresses a value's destruction until Take moves it out:
//
//	cell := lifecycle.NewCell(file)
//	f, err := cell.Take() // moves the file out
//	_, err = cell.Take()  // fails: already taken
//
// Generated finalizers are the only intended clients; member methods of
// annotated types never observe a cell.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(obs) // obs.OnLifecycleEvent(Event) per transition
//
// # Signature Checking
//
// CheckSignature rejects a rescue function that does not take the marked
// fields' types by value, in declaration order, before any instance is
// created:
//
//	err := lifecycle.CheckSignature(handoff,
//		reflect.TypeOf((*os.File)(nil)),
//		reflect.TypeOf((chan Report)(nil)),
//	)
//
// # Memory Management
//
// Instances are not garbage collected out of the table. The finalizer
// must call Finish, or Clear/Close must be used when tearing down a
// whole table.
package lifecycle
