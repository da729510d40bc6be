// Package supervisor owns the helper process: it launches it, checks the
// handshake, watches for crashes and tears it down.
package supervisor

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/mist/internal/dispatch"
	"github.com/GriffinCanCode/mist/internal/infrastructure/config"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
	"github.com/GriffinCanCode/mist/internal/shared/id"
	"github.com/GriffinCanCode/mist/internal/transport"
)

// EnvFixture forwards the simulation fixture path to the helper.
const EnvFixture = "MIST_FIXTURE"

// Exit causes recorded in metrics.
const (
	exitGraceful   = "graceful"
	exitKilled     = "killed"
	exitCrashed    = "crashed"
	exitUnkillable = "unkillable"
)

// Config bounds one supervised helper.
type Config struct {
	Path         string
	Dir          string
	Fixture      string
	InitTimeout  time.Duration
	StopGrace    time.Duration
	KillTimeout  time.Duration
	CallTimeout  time.Duration
	MaxFrameSize int
}

// ConfigFrom extracts the supervisor settings from the bridge configuration.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Path:         c.HelperPath(),
		Dir:          c.Helper.Dir,
		Fixture:      c.Helper.Fixture,
		InitTimeout:  c.Helper.InitTimeout,
		StopGrace:    c.Helper.StopGrace,
		KillTimeout:  c.Helper.KillTimeout,
		CallTimeout:  c.Calls.Timeout,
		MaxFrameSize: c.Calls.MaxFrameSize,
	}
}

// Supervisor manages at most one helper at a time.
type Supervisor struct {
	cfg      Config
	launcher Launcher
	events   dispatch.EventSink
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	mu    sync.Mutex
	state State
	cur   *instance
}

// instance is one launched helper.
type instance struct {
	session id.SessionID
	proc    Process
	conn    *transport.Conn
	disp    *dispatch.Dispatcher
	logger  *logging.Logger

	exited  chan struct{}
	exitErr error // valid once exited is closed
}

func (in *instance) exitError() error {
	select {
	case <-in.exited:
		return in.exitErr
	default:
		return nil
	}
}

// Option configures a Supervisor
type Option func(*Supervisor)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

// New creates a supervisor. Events received from the helper are pushed to
// events.
func New(cfg Config, launcher Launcher, events dispatch.EventSink, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:      cfg,
		launcher: launcher,
		events:   events,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Supervisor) setState(st State) {
	s.state = st
	s.metrics.SetHelperState(int(st))
}

// Pid returns the helper's process id, or 0 when none is running.
func (s *Supervisor) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return 0
	}
	return s.cur.proc.Pid()
}

// Session returns the id of the current helper launch.
func (s *Supervisor) Session() id.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return ""
	}
	return s.cur.session
}

// Start launches the helper and waits for its handshake. On failure the
// supervisor stays NotStarted and any launched process is killed.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != NotStarted {
		return result.Mistf(result.SubprocessAlreadyInitialized, "helper is %s", s.state)
	}

	token := uuid.NewString()
	session := id.NewSessionID()
	logger := s.logger.With(zap.Stringer("session", session))

	spec := LaunchSpec{
		Path: s.cfg.Path,
		Dir:  s.cfg.Dir,
		Args: []string{token},
		Env:  []string{id.EnvSession + "=" + session.String()},
	}
	if s.cfg.Fixture != "" {
		spec.Env = append(spec.Env, EnvFixture+"="+s.cfg.Fixture)
	}

	proc, err := s.launcher.Launch(ctx, spec)
	if err != nil {
		rerr := result.AsError(err)
		if rerr.Subsystem == result.SubsystemMist && rerr.Code == uint16(result.InternalError) {
			rerr = result.Wrap(result.SubprocessSpawnError, err, spec.Path)
		}
		s.metrics.RecordHelperStart(startOutcome(rerr))
		logger.Error("launching helper", zap.String("path", spec.Path), zap.Error(rerr))
		return rerr
	}

	conn := transport.NewConn(proc.Stdout(), proc.Stdin(),
		transport.WithMaxFrameSize(s.cfg.MaxFrameSize),
		transport.WithClosers(proc.Stdin(), proc.Stdout()),
	)
	disp := dispatch.New(conn, s.events,
		dispatch.WithTimeout(s.cfg.CallTimeout),
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithMetrics(s.metrics),
	)
	go disp.Run()

	in := &instance{
		session: session,
		proc:    proc,
		conn:    conn,
		disp:    disp,
		logger:  logger,
		exited:  make(chan struct{}),
	}
	go in.watch()

	if err := s.handshake(ctx, in, token); err != nil {
		s.metrics.RecordHelperStart("init_error")
		logger.Error("helper failed to initialize", zap.Error(err))
		if kerr := s.kill(in); kerr != nil {
			logger.Error("killing helper after failed initialization", zap.Error(kerr))
		}
		conn.Close()
		return err
	}

	s.cur = in
	s.setState(Running)
	s.metrics.RecordHelperStart(monitoring.OutcomeSuccess)
	logger.Info("helper started", zap.Int("pid", proc.Pid()))
	return nil
}

func startOutcome(err *result.Error) string {
	if err.Code == uint16(result.SubprocessNotFound) {
		return "not_found"
	}
	return "spawn_error"
}

// watch waits for the process to exit and fails every outstanding call.
func (in *instance) watch() {
	err := in.proc.Wait()
	in.logger.Debug("helper process ended", zap.Error(err))

	if err != nil {
		in.disp.Abort(result.Wrap(result.SubprocessLost, err, "helper exited"))
	} else {
		in.disp.Abort(result.Mist(result.SubprocessLost, "helper exited"))
	}
	in.exitErr = err
	close(in.exited)
}

func (s *Supervisor) handshake(ctx context.Context, in *instance, token string) error {
	disp := in.disp

	timer := time.NewTimer(s.cfg.InitTimeout)
	defer timer.Stop()

	for {
		select {
		case f := <-disp.Control():
			switch protocol.Control(f.Tag) {
			case protocol.ControlInitialized:
				if !bytes.Equal(f.Payload, []byte(token)) {
					return result.Mist(result.SubprocessInitializationError, "handshake token mismatch")
				}
				return nil
			case protocol.ControlInitError:
				return result.Mistf(result.SubprocessInitializationError, "helper reported: %s", f.Payload)
			default:
				in.logger.Warn("unexpected control frame during handshake", zap.Uint32("tag", f.Tag))
			}
		case <-disp.Lost():
			// An InitError sent right before exiting is more useful than EOF,
			// so let the reader route whatever is still in flight.
			select {
			case <-disp.Done():
			case <-timer.C:
			}
			select {
			case f := <-disp.Control():
				if protocol.Control(f.Tag) == protocol.ControlInitError {
					return result.Mistf(result.SubprocessInitializationError, "helper reported: %s", f.Payload)
				}
			default:
			}
			return result.Wrap(result.SubprocessInitializationError, disp.Err(), "helper exited during initialization")
		case <-timer.C:
			return result.Mistf(result.SubprocessInitializationError, "no handshake within %s", s.cfg.InitTimeout)
		case <-ctx.Done():
			return result.Wrap(result.SubprocessInitializationError, ctx.Err(), "waiting for handshake")
		}
	}
}

// kill terminates the helper and waits for it to be reaped.
func (s *Supervisor) kill(in *instance) error {
	if err := in.proc.Kill(); err != nil {
		in.logger.Warn("kill failed", zap.Error(err))
	}
	select {
	case <-in.exited:
		return nil
	case <-time.After(s.cfg.KillTimeout):
		return result.Mistf(result.SubprocessUnkillable, "helper did not die within %s", s.cfg.KillTimeout)
	}
}

// Invoke performs one call against the running helper.
func (s *Supervisor) Invoke(ctx context.Context, op protocol.Op, args, out any) error {
	s.mu.Lock()
	state, in := s.state, s.cur
	s.mu.Unlock()

	switch state {
	case NotStarted, Killed:
		return result.ErrNotInitialized
	case Exited:
		return in.lostErr()
	}

	err := in.disp.Invoke(ctx, op, args, out)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != in {
		return err
	}
	switch {
	case errors.Is(err, result.ErrSubprocessLost):
		s.markExited()
	case errors.Is(err, result.ErrTimeout):
		if s.state == Running {
			in.logger.Warn("helper unresponsive", zap.Stringer("op", op), zap.Error(err))
			s.setState(Unresponsive)
		}
	default:
		if s.state == Unresponsive {
			in.logger.Info("helper responsive again", zap.Stringer("op", op))
			s.setState(Running)
		}
	}
	return err
}

// Send writes a control frame to the running helper.
func (s *Supervisor) Send(ctrl protocol.Control, payload []byte) error {
	s.mu.Lock()
	state, in := s.state, s.cur
	s.mu.Unlock()

	if !state.Alive() {
		return result.ErrNotInitialized
	}
	return in.disp.Send(ctrl, payload)
}

func (in *instance) lostErr() error {
	if err := in.disp.Err(); err != nil {
		return err
	}
	return result.Mist(result.SubprocessLost, "helper exited")
}

// markExited must be called with mu held.
func (s *Supervisor) markExited() {
	if s.state == Exited {
		return
	}
	s.setState(Exited)
	s.metrics.RecordHelperExit(exitCrashed)
	s.cur.logger.Warn("helper lost", zap.Error(s.cur.disp.Err()), zap.NamedError("exit", s.cur.exitError()))
}

// HealthCheck reports SubprocessLost once the helper has exited or closed the
// channel, and SubprocessNotInitialized when no helper was started.
func (s *Supervisor) HealthCheck() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case NotStarted, Killed:
		return result.ErrNotInitialized
	case Exited:
		return s.cur.lostErr()
	}

	select {
	case <-s.cur.exited:
	case <-s.cur.disp.Lost():
	default:
		return nil
	}
	s.markExited()
	return s.cur.lostErr()
}

// Stop asks the helper to exit, kills it after the grace period and always
// leaves the supervisor NotStarted. Stopping a stopped supervisor is a no-op.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == NotStarted {
		return nil
	}
	in := s.cur

	crashed := s.state == Exited
	if !crashed {
		if err := in.disp.Send(protocol.ControlExit, nil); err != nil {
			in.logger.Debug("exit request not delivered", zap.Error(err))
		}
	}

	var err error
	grace := time.NewTimer(s.cfg.StopGrace)
	defer grace.Stop()

	select {
	case <-in.exited:
		if !crashed {
			s.metrics.RecordHelperExit(exitGraceful)
		}
		in.logger.Info("helper stopped")
	case <-ctx.Done():
		err = s.forceKill(in)
	case <-grace.C:
		err = s.forceKill(in)
	}

	in.conn.Close()
	s.cur = nil
	s.setState(NotStarted)
	return err
}

func (s *Supervisor) forceKill(in *instance) error {
	s.setState(Killed)
	in.logger.Warn("helper ignored exit request, killing", zap.Int("pid", in.proc.Pid()))

	if err := s.kill(in); err != nil {
		s.metrics.RecordHelperExit(exitUnkillable)
		in.logger.Error("helper survived kill", zap.Error(err))
		return err
	}
	s.metrics.RecordHelperExit(exitKilled)
	return nil
}
