// Package bridge is the synchronous Go API over the helper process.
//
// A Bridge owns one supervised helper together with the string arena, the
// callback queue and the write batch guard that make up the caller visible
// state. It is meant to be driven from a single goroutine; the C facade
// serializes access with one mutex.
//
// Every method returns nil or an error holding a *result.Error, so
// result.FromError always yields the packed result the C facade hands out.
// The message of the last failure is kept in the arena and available through
// LastError until the next failure.
package bridge

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/batch"
	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/infrastructure/config"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
	"github.com/GriffinCanCode/mist/internal/shared/id"
	"github.com/GriffinCanCode/mist/internal/supervisor"
)

// Bridge is one connection to a helper process.
type Bridge struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	launcher supervisor.Launcher
	alloc    arena.Allocator

	sup     *supervisor.Supervisor
	queue   *callbacks.Queue
	strings *arena.Arena
	batch   batch.Guard
	input   inputState
}

// Option configures a Bridge
type Option func(*Bridge)

// WithLauncher replaces the os/exec launcher.
func WithLauncher(l supervisor.Launcher) Option {
	return func(b *Bridge) {
		if l != nil {
			b.launcher = l
		}
	}
}

// WithLogger sets the logger. Defaults to the one described by the config.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithAllocator sets how string slot buffers are allocated.
func WithAllocator(alloc arena.Allocator) Option {
	return func(b *Bridge) {
		if alloc != nil {
			b.alloc = alloc
		}
	}
}

// New creates a bridge. A nil cfg uses config.Default. No process is started
// until Init.
func New(cfg *config.Config, opts ...Option) *Bridge {
	if cfg == nil {
		cfg = config.Default()
	}
	b := &Bridge{
		cfg:      cfg,
		launcher: supervisor.ExecLauncher{},
		alloc:    arena.GoAllocator,
		queue:    callbacks.NewQueue(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = cfg.Logger()
	}
	if b.metrics == nil {
		b.metrics = monitoring.NewMetrics(nil)
	}

	b.strings = arena.New(b.alloc)
	b.sup = supervisor.New(supervisor.ConfigFrom(cfg), b.launcher, b.queue,
		supervisor.WithLogger(b.logger.Named("supervisor")),
		supervisor.WithMetrics(b.metrics),
	)
	return b
}

// Init starts the helper and waits for its handshake.
func (b *Bridge) Init(ctx context.Context) error {
	if err := b.sup.Start(ctx); err != nil {
		return b.fail(err)
	}
	return nil
}

// Poll returns the events received since the last poll, in arrival order,
// then checks that the helper is still alive. Events that arrived before a
// crash are returned together with the SubprocessLost error.
func (b *Bridge) Poll(_ context.Context) ([]callbacks.Event, error) {
	if b.sup.State() == supervisor.NotStarted {
		return nil, b.fail(result.Mist(result.SubprocessNotInitialized, "poll before init"))
	}
	events := b.queue.Drain()
	if err := b.sup.HealthCheck(); err != nil {
		return events, b.fail(err)
	}
	return events, nil
}

// Deinit stops the helper and drops all caller visible state: string slots,
// queued events, input state and any open write batch. It is idempotent;
// without a running helper only the local state is cleared.
func (b *Bridge) Deinit(ctx context.Context) error {
	var err error
	if b.sup.State() != supervisor.NotStarted {
		err = b.sup.Stop(ctx)
	}
	b.batch.Reset()
	b.queue.Clear()
	b.input.reset()
	b.strings.Reset(arena.SlotLastError)
	if err != nil {
		return b.fail(err)
	}
	return nil
}

// LastError returns the message of the most recent failure, or "" if none
// was recorded. The message survives Deinit and is replaced by the next
// failure.
func (b *Bridge) LastError() string {
	buf := b.strings.Current(arena.SlotLastError)
	if buf == nil {
		return ""
	}
	return buf.String()
}

// Strings exposes the string arena so the C facade can hand out the buffers
// behind the handles it returns.
func (b *Bridge) Strings() *arena.Arena {
	return b.strings
}

// Metrics returns the metrics of this bridge.
func (b *Bridge) Metrics() *monitoring.Metrics {
	return b.metrics
}

// State returns the helper lifecycle state.
func (b *Bridge) State() supervisor.State {
	return b.sup.State()
}

// Session returns the id of the running helper launch, or "" when none.
func (b *Bridge) Session() id.SessionID {
	return b.sup.Session()
}

// BatchOpen reports whether a file write batch is open.
func (b *Bridge) BatchOpen() bool {
	return b.batch.Open()
}

// fail records err as the last error and returns it as a typed error.
func (b *Bridge) fail(err error) error {
	if err == nil {
		return nil
	}
	rerr := result.AsError(err)
	msg := rerr.Error()
	b.strings.WriteString(arena.SlotLastError, msg)
	b.logger.Debug("call failed", zap.Stringer("result", rerr.Result()), zap.String("error", msg))
	return rerr
}

func (b *Bridge) invoke(ctx context.Context, op protocol.Op, args, out any) error {
	return b.fail(b.sup.Invoke(ctx, op, args, out))
}

func call[T any](ctx context.Context, b *Bridge, op protocol.Op, args any) (T, error) {
	var out T
	if err := b.invoke(ctx, op, args, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// checkStrings rejects caller strings that are not valid UTF-8.
func (b *Bridge) checkStrings(what string, values ...string) error {
	for _, v := range values {
		if !utf8.ValidString(v) {
			return b.fail(result.Mistf(result.InvalidString, "%s is not valid UTF-8", what))
		}
	}
	return nil
}
