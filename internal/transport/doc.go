// Package transport frames messages between the bridge and the helper
// process.
//
// Wire format (both directions):
//
//	+----------------+--------------------------------------------+
//	| length (u32 LE)| body: protobuf wire encoded Frame           |
//	+----------------+--------------------------------------------+
//
// Body fields:
//   - 1 kind (varint): request, response, event, control
//   - 2 correlation id (varint): 0 for events and control frames
//   - 3 tag (varint): operation, callback or control tag
//   - 4 payload (bytes): opaque CBOR payload
//
// Payloads are length delimited, so binary content never needs escaping.
// Writes are serialized; reads are expected from a single goroutine.
package transport
