// Package helpertest runs the helper in process so the supervisor and the
// bridge can be tested without building the helper binary.
package helpertest

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/GriffinCanCode/mist/internal/helper"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/platform/sim"
	"github.com/GriffinCanCode/mist/internal/supervisor"
	"github.com/GriffinCanCode/mist/internal/transport"
)

var (
	errKilled  = errors.New("signal: killed")
	errCrashed = errors.New("exit status 101")
)

var _ supervisor.Launcher = (*Launcher)(nil)

// Launcher starts in-process helpers served over io.Pipe.
type Launcher struct {
	// Platform builds the backend for each launch. Defaults to a simulated
	// platform with the default fixture.
	Platform func() helper.Platform
	// Err is returned by Launch instead of starting a helper.
	Err error
	// IgnoreExit makes the helper ignore exit requests.
	IgnoreExit bool
	// Unkillable makes Kill a no-op.
	Unkillable bool
	// SkipHandshake makes the helper never answer.
	SkipHandshake bool
	// WrongToken makes the helper echo a different token.
	WrongToken bool
	// Logger receives the helper's logs.
	Logger *logging.Logger

	launches atomic.Int32
	nextPid  atomic.Int32

	mu    sync.Mutex
	procs []*Process
	specs []supervisor.LaunchSpec
}

// Launch implements supervisor.Launcher
func (l *Launcher) Launch(_ context.Context, spec supervisor.LaunchSpec) (supervisor.Process, error) {
	l.launches.Add(1)
	if l.Err != nil {
		return nil, l.Err
	}

	var p helper.Platform
	if l.Platform != nil {
		p = l.Platform()
	} else {
		p = sim.New(sim.DefaultFixture())
	}

	token := ""
	if len(spec.Args) > 0 {
		token = spec.Args[0]
	}
	if l.WrongToken {
		token = "not-" + token
	}

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	proc := &Process{
		pid:        int(10000 + l.nextPid.Add(1)),
		platform:   p,
		stdinR:     stdinR,
		stdinW:     stdinW,
		stdoutR:    stdoutR,
		stdoutW:    stdoutW,
		unkillable: l.Unkillable,
		done:       make(chan struct{}),
	}

	logger := l.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	conn := transport.NewConn(stdinR, stdoutW, transport.WithClosers(stdoutW, stdinR))
	ignore := l.IgnoreExit
	srv := helper.NewServer(conn, token, p,
		helper.WithLogger(logger.Named("helper")),
		helper.WithExitFilter(func() bool { return !ignore }),
	)

	go func() {
		var err error
		if l.SkipHandshake {
			// Drain requests so the bridge never blocks on the pipe
			_, err = io.Copy(io.Discard, stdinR)
		} else {
			err = srv.Serve(context.Background())
		}
		conn.Close()
		proc.exit(err)
	}()

	l.mu.Lock()
	l.procs = append(l.procs, proc)
	l.specs = append(l.specs, spec)
	l.mu.Unlock()

	return proc, nil
}

// Launches returns how many times Launch was called.
func (l *Launcher) Launches() int {
	return int(l.launches.Load())
}

// Last returns the most recently launched process.
func (l *Launcher) Last() *Process {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.procs) == 0 {
		return nil
	}
	return l.procs[len(l.procs)-1]
}

// LastSpec returns the spec of the most recent launch.
func (l *Launcher) LastSpec() supervisor.LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.specs) == 0 {
		return supervisor.LaunchSpec{}
	}
	return l.specs[len(l.specs)-1]
}

// Process is an in-process helper.
type Process struct {
	pid      int
	platform helper.Platform

	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter

	unkillable bool

	once   sync.Once
	reason atomic.Pointer[error]
	done   chan struct{}
	err    error
}

func (p *Process) Stdin() io.WriteCloser { return p.stdinW }
func (p *Process) Stdout() io.ReadCloser { return p.stdoutR }
func (p *Process) Pid() int              { return p.pid }

// Wait implements supervisor.Process
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Kill implements supervisor.Process
func (p *Process) Kill() error {
	if p.unkillable {
		return nil
	}
	p.terminate(errKilled)
	return nil
}

// Crash makes the helper die as if it had faulted.
func (p *Process) Crash() {
	p.terminate(errCrashed)
}

// Exited reports whether the helper has ended.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Platform returns the backend serving this helper.
func (p *Process) Platform() helper.Platform {
	return p.platform
}

// Sim returns the simulated backend, or nil for other platforms.
func (p *Process) Sim() *sim.Platform {
	s, _ := p.platform.(*sim.Platform)
	return s
}

func (p *Process) terminate(reason error) {
	p.reason.CompareAndSwap(nil, &reason)
	p.stdinR.CloseWithError(reason)
	p.stdoutW.CloseWithError(reason)
}

func (p *Process) exit(err error) {
	p.once.Do(func() {
		if r := p.reason.Load(); r != nil {
			err = *r
		}
		p.err = err
		close(p.done)
	})
}
