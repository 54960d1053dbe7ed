// Package transcript aligns source segments with their translations and
// renders the bilingual text artifact.
//
// Each block is a time range followed by a source line and a target line:
//
//	[605.00 - 607.00]
//	일본어: こんにちは
//	한국어: 안녕하세요
//
// Blocks keep the order they were given; the writer refuses sequences that
// went out of chunk order instead of sorting them.
package transcript
