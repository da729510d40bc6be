// Package result implements the packed two-level result encoding shared by
// the bridge, the helper process and the C facade.
//
// A Result is a 32-bit value:
//   - bits [0,16): subsystem code (0 means success)
//   - bits [16,32): error code, scoped to the subsystem namespace
//
// Success is decided by the subsystem code alone. A non-zero error field next
// to a zero code is still a success.
//
// Inside Go code failures travel as *Error values carrying the subsystem and
// its typed code. FromError and Result.Err convert between the two forms:
//
//	r := result.FromError(err) // wire form for C callers
//	if !r.IsSuccess() {
//	    return r.Err()           // back to *result.Error
//	}
//
// Subsystem codes:
//   - Mist (1): bridge level failures (lifecycle, transport, timeouts)
//   - Apps (100), Friends (105), Input (111), RemoteStorage (123), Utils (128)
package result
