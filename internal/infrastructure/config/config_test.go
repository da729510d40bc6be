package config

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Helper config
	assert.Equal(t, "mist", cfg.Helper.Dir)
	assert.Equal(t, 4*time.Second, cfg.Helper.InitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Helper.StopGrace)
	assert.Equal(t, 2*time.Second, cfg.Helper.KillTimeout)

	// Call config
	assert.Equal(t, 100*time.Millisecond, cfg.Calls.Timeout)
	assert.Equal(t, 16<<20, cfg.Calls.MaxFrameSize)

	// Logging config
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"MIST_HELPER_DIR":   "/opt/game/mist",
		"MIST_HELPER_EXE":   "helper",
		"MIST_INIT_TIMEOUT": "10s",
		"MIST_STOP_GRACE":   "1s",
		"MIST_KILL_TIMEOUT": "3s",
		"MIST_FIXTURE":      "fixture.yaml",
		"MIST_CALL_TIMEOUT": "250ms",
		"MIST_MAX_FRAME":    "65536",
		"MIST_LOG_LEVEL":    "debug",
		"MIST_LOG_DEV":      "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/game/mist", cfg.Helper.Dir)
	assert.Equal(t, "helper", cfg.Helper.Executable)
	assert.Equal(t, 10*time.Second, cfg.Helper.InitTimeout)
	assert.Equal(t, time.Second, cfg.Helper.StopGrace)
	assert.Equal(t, 3*time.Second, cfg.Helper.KillTimeout)
	assert.Equal(t, "fixture.yaml", cfg.Helper.Fixture)
	assert.Equal(t, 250*time.Millisecond, cfg.Calls.Timeout)
	assert.Equal(t, 65536, cfg.Calls.MaxFrameSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unparseable duration", key: "MIST_CALL_TIMEOUT", val: "soon"},
		{name: "zero call timeout", key: "MIST_CALL_TIMEOUT", val: "0s"},
		{name: "zero init timeout", key: "MIST_INIT_TIMEOUT", val: "0s"},
		{name: "negative grace", key: "MIST_STOP_GRACE", val: "-1s"},
		{name: "tiny frame", key: "MIST_MAX_FRAME", val: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestHelperPath(t *testing.T) {
	exe := "mist"
	if runtime.GOOS == "windows" {
		exe = "mist.exe"
	}

	cfg := Default()
	assert.Equal(t, filepath.Join("mist", exe), cfg.HelperPath())

	cfg.Helper.Executable = "custom"
	assert.Equal(t, filepath.Join("mist", "custom"), cfg.HelperPath())

	abs, err := filepath.Abs("helper-bin")
	require.NoError(t, err)
	cfg.Helper.Executable = abs
	assert.Equal(t, abs, cfg.HelperPath())
}

func TestLoggerFallsBackOnBadLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "shouting"
	assert.NotNil(t, cfg.Logger())
}
