// Package helper is the process side of the bridge: it performs the
// handshake, serves requests one at a time against a Platform, and pushes
// callback events.
package helper

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
	"github.com/GriffinCanCode/mist/internal/transport"
)

// ErrMissingToken is returned when the helper is started without the launch
// token.
var ErrMissingToken = errors.New("launch token missing; the helper must be started by the bridge")

type handlerFunc func(ctx context.Context, payload []byte) (any, error)

// Server serves one bridge connection.
type Server struct {
	conn     *transport.Conn
	token    string
	platform Platform
	logger   *logging.Logger
	handlers map[protocol.Op]handlerFunc

	honorExit func() bool
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger. It must not write to the frame channel.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExitFilter decides whether an Exit control frame ends Serve. Used to
// emulate helpers that ignore shutdown requests.
func WithExitFilter(fn func() bool) Option {
	return func(s *Server) {
		s.honorExit = fn
	}
}

// NewServer creates a server answering on conn with p.
func NewServer(conn *transport.Conn, token string, p Platform, opts ...Option) *Server {
	s := &Server{
		conn:      conn,
		token:     token,
		platform:  p,
		logger:    logging.NewNop(),
		handlers:  make(map[protocol.Op]handlerFunc),
		honorExit: func() bool { return true },
	}
	for _, opt := range opts {
		opt(s)
	}
	if p != nil {
		Mount(s, p)
	}
	return s
}

// Serve performs the handshake and handles frames until the bridge sends
// Exit or closes the channel. Requests are handled sequentially.
func (s *Server) Serve(ctx context.Context) error {
	if s.token == "" {
		return ErrMissingToken
	}
	if c, ok := s.platform.(Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				s.logger.Warn("closing platform", zap.Error(err))
			}
		}()
	}

	if in, ok := s.platform.(Initializer); ok {
		if err := in.Init(ctx, s); err != nil {
			if werr := s.sendControl(protocol.ControlInitError, []byte(err.Error())); werr != nil {
				s.logger.Error("reporting init failure", zap.Error(werr))
			}
			return errors.Wrap(err, "initializing platform")
		}
	}
	if err := s.sendControl(protocol.ControlInitialized, []byte(s.token)); err != nil {
		return errors.Wrap(err, "sending handshake")
	}
	s.logger.Info("helper initialized", zap.Int("operations", len(s.handlers)))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := s.conn.ReadFrame()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("bridge closed the channel")
				return nil
			}
			if errors.Is(err, transport.ErrMalformedFrame) {
				s.logger.Warn("skipping malformed frame", zap.Error(err))
				continue
			}
			return errors.Wrap(err, "reading request")
		}

		switch f.Kind {
		case transport.KindRequest:
			if err := s.serveRequest(ctx, f); err != nil {
				return err
			}
		case transport.KindControl:
			if protocol.Control(f.Tag) == protocol.ControlExit {
				if s.honorExit() {
					s.logger.Info("exit requested")
					return nil
				}
				s.logger.Warn("ignoring exit request")
				continue
			}
			s.logger.Warn("unknown control frame", zap.Uint32("tag", f.Tag))
		default:
			s.logger.Warn("unexpected frame", zap.Stringer("kind", f.Kind))
		}
	}
}

func (s *Server) serveRequest(ctx context.Context, f transport.Frame) error {
	op := protocol.Op(f.Tag)

	var rep protocol.Reply
	h, ok := s.handlers[op]
	if !ok {
		rep = protocol.Failed(uint32(result.Pack(result.SubsystemMist, uint16(result.InternalError))), "unknown operation "+op.String())
	} else {
		v, err := s.invoke(ctx, op, h, f.Payload)
		if err != nil {
			rep = protocol.Failed(uint32(result.FromError(err)), detail(err))
		} else if rep, err = protocol.OK(v); err != nil {
			rep = protocol.Failed(uint32(result.Pack(result.SubsystemMist, uint16(result.InternalError))), err.Error())
		}
	}

	payload, err := protocol.Marshal(rep)
	if err != nil {
		return errors.Wrap(err, "encoding reply")
	}
	err = s.conn.WriteFrame(transport.Frame{
		Kind:    transport.KindResponse,
		ID:      f.ID,
		Tag:     f.Tag,
		Payload: payload,
	})
	return errors.Wrap(err, "writing reply")
}

func (s *Server) invoke(ctx context.Context, op protocol.Op, h handlerFunc, payload []byte) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", zap.Stringer("op", op), zap.Any("panic", r))
			err = result.Mistf(result.InternalError, "%s panicked: %v", op, r)
		}
	}()
	return h(ctx, payload)
}

// Emit writes an event frame. It is safe to call from handlers and from
// other goroutines.
func (s *Server) Emit(ev callbacks.Event) error {
	tag, payload, err := callbacks.Encode(ev)
	if err != nil {
		return err
	}
	return s.conn.WriteFrame(transport.Frame{
		Kind:    transport.KindEvent,
		Tag:     tag,
		Payload: payload,
	})
}

func (s *Server) sendControl(c protocol.Control, payload []byte) error {
	return s.conn.WriteFrame(transport.Frame{
		Kind:    transport.KindControl,
		Tag:     uint32(c),
		Payload: payload,
	})
}

// detail extracts the message sent alongside a failing result.
func detail(err error) string {
	var re *result.Error
	if errors.As(err, &re) {
		if re.Cause != nil && re.Detail == "" {
			return re.Cause.Error()
		}
		return re.Detail
	}
	return err.Error()
}

func handle[Req, Resp any](s *Server, op protocol.Op, fn func(context.Context, Req) (Resp, error)) {
	s.handlers[op] = func(ctx context.Context, payload []byte) (any, error) {
		var req Req
		if err := protocol.Unmarshal(payload, &req); err != nil {
			return nil, result.Wrap(result.InternalError, err, fmt.Sprintf("decoding %s arguments", op))
		}
		v, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func query[Resp any](s *Server, op protocol.Op, fn func(context.Context) (Resp, error)) {
	s.handlers[op] = func(ctx context.Context, _ []byte) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func command[Req any](s *Server, op protocol.Op, fn func(context.Context, Req) error) {
	handle(s, op, func(ctx context.Context, req Req) (any, error) {
		return nil, fn(ctx, req)
	})
}

func action(s *Server, op protocol.Op, fn func(context.Context) error) {
	s.handlers[op] = func(ctx context.Context, _ []byte) (any, error) {
		return nil, fn(ctx)
	}
}
