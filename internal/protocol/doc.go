// Package protocol defines what travels inside transport frames: operation
// tags, control tags, and the CBOR request/reply messages shared by the
// bridge and the helper process.
//
// Operation tags encode their subsystem in the high half:
//
//	Op = uint32(result.Subsystem) << 16 | index
//
// so a helper can route by subsystem and logs can name the namespace without
// a lookup table.
package protocol
