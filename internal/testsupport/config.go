package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"bilingual/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The output path points into the temp dir so runs never touch the CWD.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Pipeline.OutputPath = filepath.Join(base, "translated.txt")
	cfgVal.Translation.Backend = config.BackendGoogle

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithChunkLength overrides pipeline.chunk_length_seconds.
func WithChunkLength(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.ChunkLengthSeconds = seconds
	}
}

// WithPapago selects the Papago backend with the given credentials.
func WithPapago(id, secret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Backend = config.BackendPapago
		b.cfg.Translation.PapagoClientID = id
		b.cfg.Translation.PapagoClientSecret = secret
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external tools are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "yt-dlp", "uvx"}
		}
		for _, name := range names {
			WriteStub(b.t, b.baseDir, name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WriteStub writes an executable script named name into <base>/bin and
// prepends that directory to PATH for the rest of the test.
func WriteStub(t testing.TB, base, name, script string) string {
	t.Helper()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	path := os.Getenv("PATH")
	if filepath.SplitList(path)[0] != binDir {
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+path)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
