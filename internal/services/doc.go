// Package services defines shared utilities consumed by the pipeline stages and
// the external integrations they drive.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, chunk indexes, and
//     correlation identifiers for logging.
//   - Sentinel error markers plus the Wrap helper that keep failures
//     classifiable (configuration vs external tool vs timeout) as they travel
//     up to the run report.
//
// Subpackages hold the transcription service clients (whisperx, openai).
package services
