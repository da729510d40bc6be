package protocol

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core deterministic encoding keeps payloads byte-stable for tests and logs
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes v as CBOR.
func Marshal(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %T", v)
	}
	return b, nil
}

// Unmarshal decodes CBOR data into v. Empty data leaves v untouched.
func Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := decMode.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %T", v)
	}
	return nil
}

// Reply is the payload of every response frame.
type Reply struct {
	Result uint32          `cbor:"r"`
	Detail string          `cbor:"m,omitempty"`
	Data   cbor.RawMessage `cbor:"d,omitempty"`
}

// OK builds a successful reply carrying data. A nil data produces an empty
// reply.
func OK(data any) (Reply, error) {
	if data == nil {
		return Reply{}, nil
	}
	b, err := Marshal(data)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Data: b}, nil
}

// Failed builds a failing reply.
func Failed(res uint32, detail string) Reply {
	return Reply{Result: res, Detail: detail}
}

// Decode unmarshals the reply data into v.
func (r Reply) Decode(v any) error {
	return Unmarshal(r.Data, v)
}
