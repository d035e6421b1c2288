// Package logging provides structured logging for sonoffctl and the device simulator.
//
// This package wraps a global zap logger. The logger is silent (zap.NewNop)
// unless a level is passed to Initialize or set through the SONOFF_LOG_LEVEL
// environment variable, so the CLI's curated output stays clean by default.
//
// # Log Levels
//
//   - Debug: request and response envelopes exchanged with a device
//   - Info: simulator requests, address resolution results
//   - Warn: non-fatal issues
//   - Error: startup failures
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.LogExchange("request", url, 0, body)
//
// Logs are written to stderr in console format so they never mix with
// command output on stdout.
package logging
