// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output, warn level by default
//   - Development: colored console output at debug level
//
// Logs always go to stderr unless OutputPaths says otherwise. The helper
// process writes frames on stdout, so nothing else may write there.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Warn("helper exited", zap.Int("pid", pid), zap.Error(err))
package logging
