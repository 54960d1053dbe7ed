// Package whisperx runs local WhisperX transcription through uvx.
//
// Service.Transcribe invokes the configured model tier on one audio file,
// reads the JSON output, and returns segments with file-relative timestamps.
// Configuration options (model, CUDA, VAD method) are passed via Config.
package whisperx
