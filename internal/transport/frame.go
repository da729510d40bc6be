package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// NoCorrelation is the reserved correlation id of unsolicited frames.
const NoCorrelation uint64 = 0

// DefaultMaxFrameSize bounds a single frame body.
const DefaultMaxFrameSize = 16 << 20

const headerSize = 4

var (
	ErrFrameTooLarge  = errors.New("frame exceeds maximum size")
	ErrMalformedFrame = errors.New("malformed frame")
)

// Kind separates the logical streams sharing the channel.
type Kind uint8

const (
	KindRequest  Kind = 1
	KindResponse Kind = 2
	KindEvent    Kind = 3
	KindControl  Kind = 4
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	case KindControl:
		return "control"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Frame is one message on the channel.
type Frame struct {
	Kind    Kind
	ID      uint64
	Tag     uint32
	Payload []byte
}

// Correlated reports whether the frame belongs to a pending call.
func (f Frame) Correlated() bool {
	return f.ID != NoCorrelation
}

const (
	fieldKind    protowire.Number = 1
	fieldID      protowire.Number = 2
	fieldTag     protowire.Number = 3
	fieldPayload protowire.Number = 4
)

// AppendFrame appends the length prefixed encoding of f to b.
func AppendFrame(b []byte, f Frame) []byte {
	start := len(b)
	b = append(b, 0, 0, 0, 0)

	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Kind))
	if f.ID != NoCorrelation {
		b = protowire.AppendTag(b, fieldID, protowire.VarintType)
		b = protowire.AppendVarint(b, f.ID)
	}
	b = protowire.AppendTag(b, fieldTag, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Tag))
	if len(f.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, f.Payload)
	}

	binary.LittleEndian.PutUint32(b[start:], uint32(len(b)-start-headerSize))
	return b
}

// DecodeBody parses a frame body (without the length prefix).
func DecodeBody(body []byte) (Frame, error) {
	var f Frame
	var sawKind bool

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return Frame{}, errors.Mark(protowire.ParseError(n), ErrMalformedFrame)
		}
		body = body[n:]

		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return Frame{}, errors.Mark(protowire.ParseError(n), ErrMalformedFrame)
			}
			f.Kind = Kind(v)
			sawKind = true
			body = body[n:]
		case num == fieldID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return Frame{}, errors.Mark(protowire.ParseError(n), ErrMalformedFrame)
			}
			f.ID = v
			body = body[n:]
		case num == fieldTag && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return Frame{}, errors.Mark(protowire.ParseError(n), ErrMalformedFrame)
			}
			if v > 0xFFFFFFFF {
				return Frame{}, errors.Wrapf(ErrMalformedFrame, "tag %d overflows", v)
			}
			f.Tag = uint32(v)
			body = body[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Frame{}, errors.Mark(protowire.ParseError(n), ErrMalformedFrame)
			}
			// Copy so the frame does not alias the read buffer
			f.Payload = append([]byte(nil), v...)
			body = body[n:]
		default:
			// Skip unknown fields for forward compatibility
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return Frame{}, errors.Mark(protowire.ParseError(n), ErrMalformedFrame)
			}
			body = body[n:]
		}
	}

	if !sawKind || f.Kind < KindRequest || f.Kind > KindControl {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "invalid kind %d", f.Kind)
	}

	return f, nil
}
