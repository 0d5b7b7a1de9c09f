// Package gen renders finalizer methods for annotated structs.
//
// Given a scanned and checked package model from inspect, gen emits one
// Go source file per package containing a finalizer method for every
// struct that carries a rescue binding. The emitted body follows a
// fixed order:
//
//  1. The cleanup routine runs with the instance fully intact.
//  2. Non-rescued fields are destroyed in place, in declaration order.
//     Fields with a Drop method use it, io.Closers are closed, and
//     everything else is released when the struct is zeroed.
//  3. Rescued fields are copied into locals and the instance is zeroed,
//     so no later step can observe a moved-out field.
//  4. The rescue function receives every moved value in a single call.
//
// When either the cleanup routine or the rescue function returns an
// error, the finalizer returns error too. A cleanup failure never
// skips the rescue call; the cleanup error takes precedence when both
// fail.
//
// Output is passed through go/format before writing, so a file that
// would not survive gofmt is reported rather than written:
//
//	path, err := gen.Write(pkg, gen.Options{})
package gen
