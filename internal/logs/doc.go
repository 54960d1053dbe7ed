// Package logs reads the CLI log file for the "bilingual logs" command.
//
// Tail returns the last lines (or everything after an offset) and can wait
// for new lines to arrive. Follow loops on Tail until the context ends.
// Both can keep only lines that mention a given run ID.
package logs
