package transport

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

// Conn is a framed, bidirectional channel over a reader/writer pair, usually
// the helper's stdout and stdin.
type Conn struct {
	r        *bufio.Reader
	w        io.Writer
	closers  []io.Closer
	maxFrame int

	wmu  sync.Mutex
	wbuf []byte

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Conn
type Option func(*Conn)

// WithMaxFrameSize bounds the frame body size accepted and produced.
func WithMaxFrameSize(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.maxFrame = n
		}
	}
}

// WithClosers registers resources released by Close, in order.
func WithClosers(closers ...io.Closer) Option {
	return func(c *Conn) {
		c.closers = append(c.closers, closers...)
	}
}

// NewConn wraps r and w.
func NewConn(r io.Reader, w io.Writer, opts ...Option) *Conn {
	c := &Conn{
		r:        bufio.NewReaderSize(r, 64*1024),
		w:        w,
		maxFrame: DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WriteFrame encodes and writes f as a single write call.
func (c *Conn) WriteFrame(f Frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	c.wbuf = AppendFrame(c.wbuf[:0], f)
	if len(c.wbuf)-headerSize > c.maxFrame {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(c.wbuf)-headerSize)
	}

	if _, err := c.w.Write(c.wbuf); err != nil {
		return errors.Wrap(err, "writing frame")
	}
	if fl, ok := c.w.(interface{ Flush() error }); ok {
		if err := fl.Flush(); err != nil {
			return errors.Wrap(err, "flushing frame")
		}
	}
	return nil
}

// ReadFrame blocks until a full frame is available. It returns io.EOF when
// the peer closed the channel on a frame boundary.
func (c *Conn) ReadFrame() (Frame, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, errors.Wrap(err, "reading frame header")
	}

	size := int(binary.LittleEndian.Uint32(hdr[:]))
	if size > c.maxFrame {
		return Frame{}, errors.Wrapf(ErrFrameTooLarge, "%d bytes", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(c.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, errors.Wrap(err, "reading frame body")
	}

	return DecodeBody(body)
}

// Close releases the registered closers once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		for _, cl := range c.closers {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			c.closeErr = errors.Join(errs...)
		}
	})
	return c.closeErr
}
