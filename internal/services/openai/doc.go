// Package openai transcribes audio through an OpenAI-compatible
// /audio/transcriptions endpoint using verbose_json segment timestamps.
package openai
