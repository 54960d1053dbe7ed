// Package logging assembles structured slog loggers and formatting helpers used
// across the bilingual pipeline.
//
// It owns the console and JSON handlers, tees records into the log file, and
// exposes context-aware helpers so stage code automatically tags log lines
// with run IDs, stages, and chunk indexes. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
