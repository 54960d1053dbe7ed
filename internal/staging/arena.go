package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const arenaPrefix = "run-"

// Arena is the scratch directory owned by one pipeline run. Every
// intermediate file (downloaded source, normalized audio, chunks, model
// output) lives inside it and is removed by Cleanup.
type Arena struct {
	root string
	once sync.Once
	err  error
}

// NewArena creates <root>/run-<runID>.
func NewArena(root, runID string) (*Arena, error) {
	root = strings.TrimSpace(root)
	runID = strings.TrimSpace(runID)
	if root == "" {
		return nil, fmt.Errorf("staging: work directory not configured")
	}
	if runID == "" {
		return nil, fmt.Errorf("staging: run id required")
	}
	dir := filepath.Join(root, arenaPrefix+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create arena: %w", err)
	}
	return &Arena{root: dir}, nil
}

// Root returns the arena directory.
func (a *Arena) Root() string {
	return a.root
}

// Path joins name onto the arena directory.
func (a *Arena) Path(name ...string) string {
	return filepath.Join(append([]string{a.root}, name...)...)
}

// Dir returns a subdirectory of the arena, creating it when needed.
func (a *Arena) Dir(name string) (string, error) {
	dir := a.Path(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("staging: create %s: %w", name, err)
	}
	return dir, nil
}

// Cleanup removes the arena and everything in it. Safe to call more than once.
func (a *Arena) Cleanup() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		a.err = os.RemoveAll(a.root)
	})
	return a.err
}
