// Package errctx implements a collection of error reporting facilities
// used across the limdy memory subsystem.
//
// levels:
//
// Level values ordered from Debug to Fatal, mirroring syslog severities.
//
// codes:
//
// A fixed vocabulary of Code values plus a reserved range at
// codeBase for component-specific codes.
//
// context:
//
// The "last error" for a unit of work is carried as a value on a
// context.Context rather than a goroutine-local, so callers that
// fan work out across goroutines keep one record per logical task.
//
// sink:
//
// A pluggable Sink receives every logged Record; the package ships a
// defaultSink that appends formatted lines to error.log.
package errctx
