// Package main is the platform services helper launched by the bridge.
//
// The helper speaks the framed protocol on stdin and stdout. Its first
// argument is the handshake token chosen by the bridge, which it echoes once
// the platform is initialized. Logs go to stderr.
//
// Environment:
//   - MIST_SESSION: session id assigned by the bridge, attached to every log line
//   - MIST_FIXTURE: YAML or TOML file describing the simulated platform
//   - MIST_LOG_LEVEL, MIST_LOG_DEV: logging, as for the bridge
//
// Usage:
//
//	mist <token>
//
// Signals:
//   - SIGINT, SIGTERM: stop serving and exit
package main
