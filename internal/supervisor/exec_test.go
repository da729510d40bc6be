package supervisor_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/helper"
	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
	"github.com/GriffinCanCode/mist/internal/platform/sim"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
	"github.com/GriffinCanCode/mist/internal/shared/id"
	"github.com/GriffinCanCode/mist/internal/supervisor"
	"github.com/GriffinCanCode/mist/internal/transport"
)

// envRunHelper turns the test binary into a helper process.
const envRunHelper = "MIST_SUPERVISOR_TEST_HELPER"

func TestMain(m *testing.M) {
	if os.Getenv(envRunHelper) == "1" {
		os.Exit(runHelper())
	}
	os.Exit(m.Run())
}

func runHelper() int {
	token := ""
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if !id.SessionID(os.Getenv(id.EnvSession)).Valid() {
		fmt.Fprintln(os.Stderr, "missing session id")
		return 2
	}

	conn := transport.NewConn(os.Stdin, os.Stdout)
	srv := helper.NewServer(conn, token, sim.New(sim.DefaultFixture()))
	if err := srv.Serve(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func execSupervisor(t *testing.T) *supervisor.Supervisor {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)
	t.Setenv(envRunHelper, "1")

	cfg := testConfig()
	cfg.Path = exe
	cfg.Dir = t.TempDir()
	cfg.InitTimeout = 10 * time.Second
	cfg.CallTimeout = 5 * time.Second
	cfg.StopGrace = 2 * time.Second
	cfg.KillTimeout = 5 * time.Second

	sup := supervisor.New(cfg, supervisor.ExecLauncher{}, callbacks.NewQueue(),
		supervisor.WithLogger(logging.Wrap(zaptest.NewLogger(t))),
	)
	t.Cleanup(func() { _ = sup.Stop(context.Background()) })
	return sup
}

func TestExecLauncherRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a process")
	}
	sup := execSupervisor(t)
	ctx := context.Background()

	require.NoError(t, sup.Start(ctx))
	assert.NotEqual(t, os.Getpid(), sup.Pid())

	var appID uint32
	require.NoError(t, sup.Invoke(ctx, protocol.OpUtilsGetAppID, nil, &appID))
	assert.Equal(t, uint32(480), appID)

	require.NoError(t, sup.Stop(ctx))
	assert.Equal(t, supervisor.NotStarted, sup.State())
}

func TestExecLauncherDetectsKilledHelper(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a process")
	}
	sup := execSupervisor(t)
	ctx := context.Background()

	require.NoError(t, sup.Start(ctx))
	proc, err := os.FindProcess(sup.Pid())
	require.NoError(t, err)
	require.NoError(t, proc.Kill())

	require.Eventually(t, func() bool {
		return errors.Is(sup.HealthCheck(), result.ErrSubprocessLost)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestExecLauncherNotFound(t *testing.T) {
	_, err := supervisor.ExecLauncher{}.Launch(context.Background(), supervisor.LaunchSpec{
		Path: filepath.Join(t.TempDir(), "missing"),
	})
	assert.True(t, errors.Is(err, result.ErrNotFound), "got %v", err)

	_, err = supervisor.ExecLauncher{}.Launch(context.Background(), supervisor.LaunchSpec{
		Path: t.TempDir(),
	})
	assert.True(t, errors.Is(err, result.ErrNotFound), "got %v", err)
}
