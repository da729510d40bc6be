// Package config provides 12-factor configuration for the bridge and the
// helper process.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Helper: where the helper lives and how long its lifecycle steps may take
//   - Calls: per call timeout and frame size bound
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	b := bridge.New(cfg)
//
// Environment Variables:
//   - MIST_HELPER_DIR, MIST_HELPER_EXE, MIST_FIXTURE
//   - MIST_INIT_TIMEOUT, MIST_STOP_GRACE, MIST_KILL_TIMEOUT
//   - MIST_CALL_TIMEOUT, MIST_MAX_FRAME
//   - MIST_LOG_LEVEL, MIST_LOG_DEV
package config
