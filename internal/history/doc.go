// Package history keeps a SQLite log of pipeline runs.
//
// Every run, successful or not, is recorded with its counts and failure
// classification so `bilingual history` can show what happened after the
// terminal output is gone. The database lives in the state directory and
// uses WAL mode with a short busy retry, since a CLI invocation may read it
// while another run is writing.
package history
