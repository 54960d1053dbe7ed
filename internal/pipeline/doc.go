// Package pipeline runs one source through every stage and produces the
// bilingual transcript.
//
// Runner.Run validates the request, takes an exclusive lock on the output
// path, and works inside a per-run scratch arena that is removed on every
// exit path. Acquisition, decoding, chunking and alignment failures are
// fatal. Chunk transcription and segment translation failures leave gaps
// that are listed in the JSON report written next to the artifact. When the
// context is canceled after at least one segment exists, the partial
// transcript is still written and the run is reported as canceled.
package pipeline
