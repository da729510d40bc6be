package transport

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{
			name:  "request",
			frame: Frame{Kind: KindRequest, ID: 7, Tag: 100<<16 | 3, Payload: []byte{0xa1, 0x61, 0x61, 0x01}},
		},
		{
			name:  "event without correlation",
			frame: Frame{Kind: KindEvent, Tag: 1005, Payload: []byte{1, 2, 3}},
		},
		{
			name:  "control without payload",
			frame: Frame{Kind: KindControl, Tag: 3},
		},
		{
			// Payload that looks like a length prefix and contains newlines
			name:  "binary payload",
			frame: Frame{Kind: KindResponse, ID: 1 << 40, Tag: 1, Payload: []byte{0xff, 0xff, 0xff, 0x7f, '\n', 0, '\r', 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConn(&buf, &buf)

			require.NoError(t, c.WriteFrame(tt.frame))
			got, err := c.ReadFrame()
			require.NoError(t, err)

			assert.Equal(t, tt.frame.Kind, got.Kind)
			assert.Equal(t, tt.frame.ID, got.ID)
			assert.Equal(t, tt.frame.Tag, got.Tag)
			assert.Equal(t, len(tt.frame.Payload), len(got.Payload))
			if len(tt.frame.Payload) > 0 {
				assert.Equal(t, tt.frame.Payload, got.Payload)
			}
		})
	}
}

func TestLengthPrefixIsLittleEndian(t *testing.T) {
	b := AppendFrame(nil, Frame{Kind: KindRequest, ID: 1, Tag: 2, Payload: []byte("abc")})
	size := binary.LittleEndian.Uint32(b[:4])
	assert.Equal(t, len(b)-4, int(size))
}

func TestReadSequence(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, c.WriteFrame(Frame{Kind: KindResponse, ID: i, Tag: 9}))
	}

	for i := uint64(1); i <= 3; i++ {
		f, err := c.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, i, f.ID)
	}

	_, err := c.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestTruncatedFrame(t *testing.T) {
	b := AppendFrame(nil, Frame{Kind: KindRequest, ID: 1, Tag: 2, Payload: []byte("hello")})
	c := NewConn(bytes.NewReader(b[:len(b)-2]), io.Discard)

	_, err := c.ReadFrame()
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestFrameTooLarge(t *testing.T) {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], 1<<30)
	c := NewConn(bytes.NewReader(hdr[:]), io.Discard, WithMaxFrameSize(1024))

	_, err := c.ReadFrame()
	assert.True(t, errors.Is(err, ErrFrameTooLarge))

	w := NewConn(bytes.NewReader(nil), io.Discard, WithMaxFrameSize(8))
	err = w.WriteFrame(Frame{Kind: KindRequest, Tag: 1, Payload: make([]byte, 64)})
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
}

func TestMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "missing kind", body: []byte{0x18, 0x01}},
		{name: "bad kind", body: []byte{0x08, 0x09}},
		{name: "truncated varint", body: []byte{0x08, 0x80}},
		{name: "truncated bytes", body: []byte{0x08, 0x01, 0x22, 0x05, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBody(tt.body)
			assert.True(t, errors.Is(err, ErrMalformedFrame), "got %v", err)
		})
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	b := AppendFrame(nil, Frame{Kind: KindEvent, Tag: 704})
	// Append field 9 (varint) to the body and fix the prefix
	b = append(b, 0x48, 0x2a)
	binary.LittleEndian.PutUint32(b[:4], uint32(len(b)-4))

	c := NewConn(bytes.NewReader(b), io.Discard)
	f, err := c.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, uint32(704), f.Tag)
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	pr, pw := io.Pipe()
	writer := NewConn(bytes.NewReader(nil), pw)
	reader := NewConn(pr, io.Discard)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := bytes.Repeat([]byte{byte(i)}, 100+i)
			assert.NoError(t, writer.WriteFrame(Frame{Kind: KindRequest, ID: uint64(i + 1), Tag: 1, Payload: payload}))
		}(i)
	}

	go func() {
		wg.Wait()
		pw.Close()
	}()

	seen := 0
	for {
		f, err := reader.ReadFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		i := int(f.ID - 1)
		assert.Equal(t, bytes.Repeat([]byte{byte(i)}, 100+i), f.Payload)
		seen++
	}
	assert.Equal(t, n, seen)
}

type closeRecorder struct {
	calls *[]string
	name  string
}

func (c closeRecorder) Close() error {
	*c.calls = append(*c.calls, c.name)
	return nil
}

func TestCloseOnce(t *testing.T) {
	var calls []string
	c := NewConn(bytes.NewReader(nil), io.Discard, WithClosers(
		closeRecorder{calls: &calls, name: "stdin"},
		closeRecorder{calls: &calls, name: "stdout"},
	))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, []string{"stdin", "stdout"}, calls)
}
