// Package logging provides structured logging for the OpenSprinkler tools.
//
// This package wraps a global zap logger with convenience functions and a few
// domain helpers for controller request/response logging.
//
// # Log Levels
//
//   - Debug: request paths, redacted queries, response sizes and timings
//   - Info: exporter lifecycle, discovery results
//   - Warn: rejected commands (non-success return codes)
//   - Error: startup failures, failed scrapes
//
// # Configuration
//
// CLI commands initialize from the environment and are silent by default:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Set OPENSPRINKLER_LOG_LEVEL=debug to see every controller round trip.
//
// # Password Handling
//
// LogRequest expects a query that has already been passed through
// transport.Query.Redacted, so pw, npw and cpw never reach the log.
package logging
