// Package acquire turns a source locator into a decodable audio file.
//
// Acquirer downloads remote media with yt-dlp (or accepts a local file) and
// Normalizer probes the result, transcoding Opus/Vorbis/WebM audio to MP3 so
// chunk offsets can be cut exactly. Failures are returned as
// AcquisitionError and DecodeError, both of which stop a run.
package acquire
