package supervisor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/helper"
	"github.com/GriffinCanCode/mist/internal/helper/helpertest"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/mist/internal/platform/sim"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
	"github.com/GriffinCanCode/mist/internal/shared/id"
	"github.com/GriffinCanCode/mist/internal/supervisor"
)

func testConfig() supervisor.Config {
	return supervisor.Config{
		Path:         "mist/mist",
		Dir:          "mist",
		InitTimeout:  time.Second,
		StopGrace:    200 * time.Millisecond,
		KillTimeout:  200 * time.Millisecond,
		CallTimeout:  500 * time.Millisecond,
		MaxFrameSize: 1 << 20,
	}
}

type fixture struct {
	sup      *supervisor.Supervisor
	launcher *helpertest.Launcher
	queue    *callbacks.Queue
	metrics  *monitoring.Metrics
}

func newFixture(t *testing.T, cfg supervisor.Config, l *helpertest.Launcher) *fixture {
	t.Helper()

	logger := logging.Wrap(zaptest.NewLogger(t))
	if l.Logger == nil {
		l.Logger = logger
	}
	f := &fixture{
		launcher: l,
		queue:    callbacks.NewQueue(),
		metrics:  monitoring.NewMetrics(nil),
	}
	f.sup = supervisor.New(cfg, l, f.queue,
		supervisor.WithLogger(logger),
		supervisor.WithMetrics(f.metrics),
	)
	t.Cleanup(func() { _ = f.sup.Stop(context.Background()) })
	return f
}

func withFixture(fx sim.Fixture) func() helper.Platform {
	return func() helper.Platform { return sim.New(fx) }
}

func TestStartAndInvoke(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	assert.Equal(t, supervisor.Running, f.sup.State())
	assert.NotZero(t, f.sup.Pid())
	assert.True(t, f.sup.Session().Valid())

	var appID uint32
	require.NoError(t, f.sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, &appID))
	assert.Equal(t, uint32(480), appID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperStarts.WithLabelValues(monitoring.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperState))
}

func TestLaunchSpec(t *testing.T) {
	cfg := testConfig()
	cfg.Fixture = "/tmp/fixture.yaml"
	f := newFixture(t, cfg, &helpertest.Launcher{})

	require.NoError(t, f.sup.Start(context.Background()))
	spec := f.launcher.LastSpec()

	assert.Equal(t, "mist/mist", spec.Path)
	assert.Equal(t, "mist", spec.Dir)
	require.Len(t, spec.Args, 1)
	_, err := uuid.Parse(spec.Args[0])
	assert.NoError(t, err, "token is a random uuid")
	assert.Contains(t, spec.Env, id.EnvSession+"="+f.sup.Session().String())
	assert.Contains(t, spec.Env, supervisor.EnvFixture+"=/tmp/fixture.yaml")
}

func TestTokenDiffersPerLaunch(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	first := f.launcher.LastSpec().Args[0]
	require.NoError(t, f.sup.Stop(ctx))
	require.NoError(t, f.sup.Start(ctx))

	assert.NotEqual(t, first, f.launcher.LastSpec().Args[0])
	assert.Equal(t, 2, f.launcher.Launches())
}

func TestStartTwice(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	err := f.sup.Start(ctx)
	assert.True(t, errors.Is(err, result.ErrAlreadyInitialized))
	assert.Equal(t, 1, f.launcher.Launches())
}

func TestLaunchErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		outcome string
	}{
		{"not found", result.Mist(result.SubprocessNotFound, "mist/mist"), result.ErrNotFound, "not_found"},
		{"spawn", result.Mist(result.SubprocessSpawnError, "permission denied"), result.ErrSpawn, "spawn_error"},
		{"untyped", errors.New("fork failed"), result.ErrSpawn, "spawn_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testConfig(), &helpertest.Launcher{Err: tt.err})

			err := f.sup.Start(context.Background())
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, supervisor.NotStarted, f.sup.State())
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperStarts.WithLabelValues(tt.outcome)))
		})
	}
}

func TestInitErrorReported(t *testing.T) {
	fx := sim.DefaultFixture()
	fx.FailInit = "platform client not running"
	f := newFixture(t, testConfig(), &helpertest.Launcher{Platform: withFixture(fx)})

	err := f.sup.Start(context.Background())
	require.True(t, errors.Is(err, result.ErrInitialization), "got %v", err)
	assert.Contains(t, err.Error(), "platform client not running")
	assert.Equal(t, supervisor.NotStarted, f.sup.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperStarts.WithLabelValues("init_error")))
}

func TestWrongToken(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{WrongToken: true})

	err := f.sup.Start(context.Background())
	require.True(t, errors.Is(err, result.ErrInitialization))
	assert.Contains(t, err.Error(), "token")
	assert.Equal(t, supervisor.NotStarted, f.sup.State())
	assert.Eventually(t, f.launcher.Last().Exited, time.Second, 5*time.Millisecond, "helper is killed")
}

func TestHandshakeTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.InitTimeout = 50 * time.Millisecond
	f := newFixture(t, cfg, &helpertest.Launcher{SkipHandshake: true})

	start := time.Now()
	err := f.sup.Start(context.Background())
	require.True(t, errors.Is(err, result.ErrInitialization))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, supervisor.NotStarted, f.sup.State())
	assert.True(t, f.launcher.Last().Exited())
}

func TestHandshakeContextCancelled(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{SkipHandshake: true})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := f.sup.Start(ctx)
	require.True(t, errors.Is(err, result.ErrInitialization))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestInvokeBeforeStart(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})

	err := f.sup.Invoke(context.Background(), protocol.OpUtilsGetAppID, nil, nil)
	assert.True(t, errors.Is(err, result.ErrNotInitialized))
	assert.True(t, errors.Is(f.sup.HealthCheck(), result.ErrNotInitialized))
	assert.True(t, errors.Is(f.sup.Send(protocol.ControlExit, nil), result.ErrNotInitialized))
}

func TestStartupEventsQueued(t *testing.T) {
	fx := sim.DefaultFixture()
	fx.StartupEvents = []sim.EventSpec{{Callback: "AppResumingFromSuspend"}}
	f := newFixture(t, testConfig(), &helpertest.Launcher{Platform: withFixture(fx)})

	require.NoError(t, f.sup.Start(context.Background()))
	assert.Equal(t, []callbacks.Event{callbacks.AppResumingFromSuspend{}}, f.queue.Drain())
}

func TestCrashDetection(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	require.NoError(t, f.sup.HealthCheck())

	f.launcher.Last().Crash()

	require.Eventually(t, func() bool {
		return errors.Is(f.sup.HealthCheck(), result.ErrSubprocessLost)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, supervisor.Exited, f.sup.State())

	err := f.sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, nil)
	assert.True(t, errors.Is(err, result.ErrSubprocessLost))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperExits.WithLabelValues("crashed")))

	// Recoverable by stop and start
	require.NoError(t, f.sup.Stop(ctx))
	require.NoError(t, f.sup.Start(ctx))
	require.NoError(t, f.sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, nil))
}

// stalled blocks AppID until released.
type stalled struct {
	helper.Platform
	entered chan struct{}
	release chan struct{}
}

func newStalled() *stalled {
	return &stalled{
		Platform: sim.New(sim.DefaultFixture()),
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
}

func (s *stalled) AppID(ctx context.Context) (uint32, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.Platform.AppID(ctx)
}

func TestCrashDuringCallFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.CallTimeout = 5 * time.Second
	p := newStalled()
	f := newFixture(t, cfg, &helpertest.Launcher{Platform: func() helper.Platform { return p }})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))

	go func() {
		<-p.entered
		f.launcher.Last().Crash()
	}()

	start := time.Now()
	err := f.sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, nil)
	assert.True(t, errors.Is(err, result.ErrSubprocessLost), "got %v", err)
	assert.Less(t, time.Since(start), cfg.CallTimeout)
	assert.Equal(t, supervisor.Exited, f.sup.State())

	close(p.release)
}

func TestTimeoutMarksUnresponsive(t *testing.T) {
	cfg := testConfig()
	cfg.CallTimeout = 50 * time.Millisecond
	p := newStalled()
	f := newFixture(t, cfg, &helpertest.Launcher{Platform: func() helper.Platform { return p }})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))

	err := f.sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, nil)
	require.True(t, errors.Is(err, result.ErrTimeout), "got %v", err)
	assert.Equal(t, supervisor.Unresponsive, f.sup.State())
	assert.NoError(t, f.sup.HealthCheck(), "a slow helper is still alive")

	close(p.release)

	var overlay bool
	require.NoError(t, f.sup.Invoke(ctx, protocol.OpUtilsIsOverlayEnabled, nil, &overlay))
	assert.True(t, overlay)
	assert.Equal(t, supervisor.Running, f.sup.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LateResponses))
}

func TestDomainErrorKeepsRunning(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	err := f.sup.Invoke(ctx, protocol.OpAppsGetDlcDataByIndex, protocol.DlcIndexArgs{Index: 9}, nil)
	assert.True(t, errors.Is(err, result.ErrInvalidDlcIndex))
	assert.Equal(t, supervisor.Running, f.sup.State())
}

func TestStopGraceful(t *testing.T) {
	f := newFixture(t, testConfig(), &helpertest.Launcher{})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	proc := f.launcher.Last()

	require.NoError(t, f.sup.Stop(ctx))
	assert.Equal(t, supervisor.NotStarted, f.sup.State())
	assert.True(t, proc.Exited())
	assert.NoError(t, proc.Wait())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperExits.WithLabelValues("graceful")))
	assert.Zero(t, f.sup.Pid())

	// Idempotent
	require.NoError(t, f.sup.Stop(ctx))
	err := f.sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, nil)
	assert.True(t, errors.Is(err, result.ErrNotInitialized))
}

func TestStopKillsHelperIgnoringExit(t *testing.T) {
	cfg := testConfig()
	cfg.StopGrace = 20 * time.Millisecond
	f := newFixture(t, cfg, &helpertest.Launcher{IgnoreExit: true})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))
	proc := f.launcher.Last()

	require.NoError(t, f.sup.Stop(ctx))
	assert.Equal(t, supervisor.NotStarted, f.sup.State())
	assert.True(t, proc.Exited())
	assert.Contains(t, proc.Wait().Error(), "killed")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperExits.WithLabelValues("killed")))
}

func TestStopUnkillable(t *testing.T) {
	cfg := testConfig()
	cfg.StopGrace = 20 * time.Millisecond
	cfg.KillTimeout = 30 * time.Millisecond
	// The helper outlives Stop here, so it must not log through the test
	f := newFixture(t, cfg, &helpertest.Launcher{IgnoreExit: true, Unkillable: true, Logger: logging.NewNop()})
	ctx := context.Background()

	require.NoError(t, f.sup.Start(ctx))

	err := f.sup.Stop(ctx)
	assert.True(t, errors.Is(err, result.ErrUnkillable), "got %v", err)
	assert.Equal(t, supervisor.NotStarted, f.sup.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HelperExits.WithLabelValues("unkillable")))
}

func TestStateString(t *testing.T) {
	names := make([]string, 0, 5)
	for _, s := range []supervisor.State{supervisor.NotStarted, supervisor.Running, supervisor.Unresponsive, supervisor.Exited, supervisor.Killed} {
		names = append(names, s.String())
	}
	assert.Equal(t, "not_started,running,unresponsive,exited,killed", strings.Join(names, ","))
	assert.Equal(t, "unknown", supervisor.State(42).String())
	assert.True(t, supervisor.Unresponsive.Alive())
	assert.False(t, supervisor.Exited.Alive())
}
