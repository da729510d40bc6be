// Package dispatch turns typed calls into correlated request frames and routes
// everything the helper sends back.
//
// One reader goroutine owns the receiving side of the channel. Responses are
// handed to the call waiting on their correlation id, events go to the
// callback sink, and control frames to Control. Callers block in Call until
// their response arrives, the per call timeout elapses, or the channel is
// lost. Abandoned calls are removed from the registry; a response that shows
// up later is counted and dropped.
package dispatch

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
	"github.com/GriffinCanCode/mist/internal/transport"
)

// DefaultTimeout bounds a single call.
const DefaultTimeout = 100 * time.Millisecond

// EventSink receives decoded callback events. callbacks.Queue implements it.
type EventSink interface {
	Push(callbacks.Event)
}

// Dispatcher multiplexes calls over one transport connection.
type Dispatcher struct {
	conn    *transport.Conn
	events  EventSink
	timeout time.Duration
	logger  *logging.Logger
	metrics *monitoring.Metrics

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan transport.Frame

	control chan transport.Frame

	lostOnce sync.Once
	lost     chan struct{}
	lostErr  error

	done chan struct{}
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTimeout sets the per call timeout.
func WithTimeout(d time.Duration) Option {
	return func(x *Dispatcher) {
		if d > 0 {
			x.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(x *Dispatcher) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(x *Dispatcher) {
		x.metrics = m
	}
}

// New creates a dispatcher. Run must be started for calls to complete.
func New(conn *transport.Conn, events EventSink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		conn:    conn,
		events:  events,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
		pending: make(map[uint64]chan transport.Frame),
		control: make(chan transport.Frame, 4),
		lost:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run reads frames until the channel fails, then marks the dispatcher lost.
func (d *Dispatcher) Run() {
	defer close(d.done)

	for {
		f, err := d.conn.ReadFrame()
		if err != nil {
			if errors.Is(err, transport.ErrMalformedFrame) {
				// Length prefix was intact so the stream is still in sync
				d.drop("malformed", zap.Error(err))
				continue
			}
			detail := "reading from helper"
			if err == io.EOF {
				detail = "helper closed the channel"
			}
			d.Abort(result.Wrap(result.SubprocessLost, err, detail))
			return
		}
		d.route(f)
	}
}

func (d *Dispatcher) route(f transport.Frame) {
	switch f.Kind {
	case transport.KindResponse:
		d.mu.Lock()
		ch, ok := d.pending[f.ID]
		if ok {
			delete(d.pending, f.ID)
		}
		n := len(d.pending)
		d.mu.Unlock()

		if !ok {
			d.metrics.IncLateResponses()
			d.logger.Debug("dropping response for abandoned call", zap.Uint64("id", f.ID), zap.Stringer("op", protocol.Op(f.Tag)))
			return
		}
		d.metrics.SetPending(n)
		ch <- f

	case transport.KindEvent:
		ev, err := callbacks.Decode(f.Tag, f.Payload)
		if err != nil {
			d.drop("bad_event", zap.Uint32("tag", f.Tag), zap.Error(err))
			return
		}
		d.metrics.RecordEvent(ev.Callback().String())
		if d.events != nil {
			d.events.Push(ev)
		}

	case transport.KindControl:
		select {
		case d.control <- f:
		default:
			d.drop("control_overflow", zap.Uint32("tag", f.Tag))
		}

	default:
		d.drop("unexpected_kind", zap.Stringer("kind", f.Kind))
	}
}

func (d *Dispatcher) drop(reason string, fields ...zap.Field) {
	d.metrics.RecordDroppedFrame(reason)
	d.logger.Warn("dropping frame", append([]zap.Field{zap.String("reason", reason)}, fields...)...)
}

// Call sends op with args and waits for the correlated reply. args may be
// nil for operations without arguments.
func (d *Dispatcher) Call(ctx context.Context, op protocol.Op, args any) (protocol.Reply, error) {
	timer := monitoring.NewTimer(d.metrics, op.String())

	reply, outcome, err := d.call(ctx, op, args)
	elapsed := timer.Stop(outcome)
	if err != nil && outcome != monitoring.OutcomeSuccess {
		d.logger.Debug("call failed", zap.Stringer("op", op), zap.Duration("elapsed", elapsed), zap.Error(err))
	}
	return reply, err
}

func (d *Dispatcher) call(ctx context.Context, op protocol.Op, args any) (protocol.Reply, string, error) {
	if err := d.Err(); err != nil {
		return protocol.Reply{}, monitoring.OutcomeLost, err
	}

	var payload []byte
	if args != nil {
		b, err := protocol.Marshal(args)
		if err != nil {
			return protocol.Reply{}, monitoring.OutcomeError, result.Wrap(result.InternalError, err, "encoding request")
		}
		payload = b
	}

	id := d.nextID.Add(1)
	ch := d.register(id)
	defer d.unregister(id)

	err := d.conn.WriteFrame(transport.Frame{
		Kind:    transport.KindRequest,
		ID:      id,
		Tag:     uint32(op),
		Payload: payload,
	})
	if err != nil {
		if errors.Is(err, transport.ErrFrameTooLarge) {
			return protocol.Reply{}, monitoring.OutcomeError, result.Wrap(result.InternalError, err, "request too large")
		}
		return protocol.Reply{}, monitoring.OutcomeLost, result.Wrap(result.SubprocessLost, err, "sending request")
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case f := <-ch:
		var reply protocol.Reply
		if err := protocol.Unmarshal(f.Payload, &reply); err != nil {
			return protocol.Reply{}, monitoring.OutcomeError, result.Wrap(result.InternalError, err, "decoding response")
		}
		if reply.Result != uint32(result.Success) {
			return reply, monitoring.OutcomeError, nil
		}
		return reply, monitoring.OutcomeSuccess, nil
	case <-d.lost:
		return protocol.Reply{}, monitoring.OutcomeLost, d.Err()
	case <-ctx.Done():
		return protocol.Reply{}, monitoring.OutcomeTimeout, result.Wrap(result.Timeout, ctx.Err(), "calling "+op.String())
	case <-timer.C:
		return protocol.Reply{}, monitoring.OutcomeTimeout, result.Mistf(result.Timeout, "no response to %s within %s", op, d.timeout)
	}
}

// Invoke performs Call and converts the reply: a failing result becomes its
// typed error, and successful data is decoded into out when out is not nil.
func (d *Dispatcher) Invoke(ctx context.Context, op protocol.Op, args, out any) error {
	reply, err := d.Call(ctx, op, args)
	if err != nil {
		return err
	}
	if err := ReplyError(reply); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := reply.Decode(out); err != nil {
		return result.Wrap(result.InternalError, err, "decoding "+op.String()+" data")
	}
	return nil
}

// ReplyError returns the typed error carried by a failing reply.
func ReplyError(reply protocol.Reply) error {
	r := result.Result(reply.Result)
	if r.IsSuccess() {
		return nil
	}
	return &result.Error{Subsystem: r.Code(), Code: r.DomainError(), Detail: reply.Detail}
}

// Send writes an uncorrelated control frame.
func (d *Dispatcher) Send(ctrl protocol.Control, payload []byte) error {
	err := d.conn.WriteFrame(transport.Frame{
		Kind:    transport.KindControl,
		Tag:     uint32(ctrl),
		Payload: payload,
	})
	if err != nil {
		return result.Wrap(result.SubprocessLost, err, "sending control frame")
	}
	return nil
}

func (d *Dispatcher) register(id uint64) chan transport.Frame {
	ch := make(chan transport.Frame, 1)

	d.mu.Lock()
	d.pending[id] = ch
	n := len(d.pending)
	d.mu.Unlock()

	d.metrics.SetPending(n)
	return ch
}

func (d *Dispatcher) unregister(id uint64) {
	d.mu.Lock()
	delete(d.pending, id)
	n := len(d.pending)
	d.mu.Unlock()

	d.metrics.SetPending(n)
}

// Control delivers control frames sent by the helper.
func (d *Dispatcher) Control() <-chan transport.Frame {
	return d.control
}

// Abort marks the channel lost. Waiting and future calls fail with err, which
// should be a SubprocessLost error. Only the first Abort takes effect.
func (d *Dispatcher) Abort(err error) {
	d.lostOnce.Do(func() {
		if err == nil {
			err = result.Mist(result.SubprocessLost, "channel aborted")
		}
		d.mu.Lock()
		d.lostErr = err
		d.mu.Unlock()
		close(d.lost)
	})
}

// Lost is closed once the channel is unusable.
func (d *Dispatcher) Lost() <-chan struct{} {
	return d.lost
}

// Done is closed when Run returns.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Err returns the loss cause, or nil while the channel is healthy.
func (d *Dispatcher) Err() error {
	select {
	case <-d.lost:
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.lostErr
	default:
		return nil
	}
}

// Pending returns the number of registered calls.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}

// HasPending reports whether id is still registered.
func (d *Dispatcher) HasPending(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.pending[id]
	return ok
}
