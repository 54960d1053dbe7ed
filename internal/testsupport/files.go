package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// mp3Frame is one MPEG-1 Layer III frame (128 kbps, 44.1 kHz) of silence.
var mp3Frame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

// WriteAudio writes size bytes of repeated MP3 frames to path, creating
// parent directories. Stubbed tools never decode it, but the bytes look
// like audio to anything that sniffs the header.
func WriteAudio(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	frames := int(size)/len(mp3Frame) + 1
	data := bytes.Repeat(mp3Frame, frames)[:size]
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
