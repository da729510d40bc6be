package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/mist/internal/infrastructure/logging"
)

// Config holds all bridge configuration.
type Config struct {
	Helper  HelperConfig
	Calls   CallConfig
	Logging LogConfig
}

// HelperConfig locates and bounds the helper process.
type HelperConfig struct {
	Dir         string        `envconfig:"MIST_HELPER_DIR" default:"mist"`
	Executable  string        `envconfig:"MIST_HELPER_EXE"`
	InitTimeout time.Duration `envconfig:"MIST_INIT_TIMEOUT" default:"4s"`
	StopGrace   time.Duration `envconfig:"MIST_STOP_GRACE" default:"500ms"`
	KillTimeout time.Duration `envconfig:"MIST_KILL_TIMEOUT" default:"2s"`
	// Fixture is forwarded to the helper as MIST_FIXTURE.
	Fixture string `envconfig:"MIST_FIXTURE"`
}

// CallConfig bounds request/response traffic.
type CallConfig struct {
	Timeout      time.Duration `envconfig:"MIST_CALL_TIMEOUT" default:"100ms"`
	MaxFrameSize int           `envconfig:"MIST_MAX_FRAME" default:"16777216"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"MIST_LOG_LEVEL" default:"warn"`
	Development bool   `envconfig:"MIST_LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Helper: HelperConfig{
			Dir:         "mist",
			InitTimeout: 4 * time.Second,
			StopGrace:   500 * time.Millisecond,
			KillTimeout: 2 * time.Second,
		},
		Calls: CallConfig{
			Timeout:      100 * time.Millisecond,
			MaxFrameSize: 16 << 20,
		},
		Logging: LogConfig{
			Level:       "warn",
			Development: false,
		},
	}
}

// Validate rejects values that would make the bridge unusable.
func (c *Config) Validate() error {
	switch {
	case c.Helper.InitTimeout <= 0:
		return errors.Newf("MIST_INIT_TIMEOUT must be positive, got %s", c.Helper.InitTimeout)
	case c.Calls.Timeout <= 0:
		return errors.Newf("MIST_CALL_TIMEOUT must be positive, got %s", c.Calls.Timeout)
	case c.Helper.StopGrace < 0:
		return errors.Newf("MIST_STOP_GRACE must not be negative, got %s", c.Helper.StopGrace)
	case c.Helper.KillTimeout <= 0:
		return errors.Newf("MIST_KILL_TIMEOUT must be positive, got %s", c.Helper.KillTimeout)
	case c.Calls.MaxFrameSize < 1024:
		return errors.Newf("MIST_MAX_FRAME must be at least 1024, got %d", c.Calls.MaxFrameSize)
	}
	return nil
}

// HelperPath returns the helper executable path. Without an explicit
// executable it is "mist" (or "mist.exe") inside Dir.
func (c *Config) HelperPath() string {
	exe := c.Helper.Executable
	if exe == "" {
		exe = "mist"
		if runtime.GOOS == "windows" {
			exe += ".exe"
		}
	}
	if filepath.IsAbs(exe) {
		return exe
	}
	return filepath.Join(c.Helper.Dir, exe)
}

// Logger builds the configured logger, falling back to a no-op logger.
func (c *Config) Logger() *logging.Logger {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Development = c.Logging.Development

	l, err := logging.New(lc)
	if err != nil {
		return logging.NewNop()
	}
	return l
}
