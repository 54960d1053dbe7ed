// Package config loads, normalizes, and validates bilingual configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PAPAGO_CLIENT_ID, NAVER_CLIENT_SECRET, and OPENAI_API_KEY. Validation
// failures are marked as configuration errors so the CLI can stop before
// any download or transcription work begins.
package config
