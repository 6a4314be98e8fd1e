// Package logging provides a simple leveled logging interface for
// media-stage, backed by logrus.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (plan commits, state transitions)
//   - INFO: General operational messages
//   - WARN: Warning conditions (rejected presentations, invalid configuration)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. LOG_FORMAT=json switches to JSON lines.
// Timestamps are always written in UTC.
package logging
