// Package deps reports which external binaries (yt-dlp, ffmpeg, ffprobe,
// uvx) are available on PATH so the CLI can fail fast with a clear message.
package deps
