// Package transcribe turns audio chunks into segments on the source timeline.
//
// A Service produces chunk-relative segments for a single file. The
// Transcriber drives a Service across every chunk, rebases each segment by
// its chunk offset, and concatenates results in chunk order. A failing chunk
// leaves a gap and is reported rather than aborting the run.
package transcribe
