// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result whose helpers expose the audio
// codec and duration used to decide transcoding and chunk boundaries.
package ffprobe
