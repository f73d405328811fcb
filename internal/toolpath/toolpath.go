// Package toolpath locates the external programs kalign drives.
package toolpath

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
	HCopy   = "HCopy"
	HVite   = "HVite"
)

// NotFoundError reports a tool missing from both its env var and PATH.
type NotFoundError struct {
	Tool string
	Env  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: install it or set %s", e.Tool, e.Env)
}

type result struct {
	path string
	err  error
}

// Resolver caches one lookup per tool.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]result
}

func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]result)}
}

var defaultResolver = NewResolver()

// Path resolves tool with the shared resolver.
func Path(tool string) (string, error) {
	return defaultResolver.Path(tool)
}

// EnvVar names the override variable for tool, e.g. KALIGN_HVITE_PATH.
func EnvVar(tool string) string {
	return "KALIGN_" + strings.ToUpper(tool) + "_PATH"
}

// Path returns the override from the environment when set, otherwise the
// first match on PATH. tool may itself be a path.
func (r *Resolver) Path(tool string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[tool]; ok {
		return res.path, res.err
	}
	path, err := lookup(tool)
	r.cache[tool] = result{path: path, err: err}
	return path, err
}

func lookup(tool string) (string, error) {
	if value := strings.TrimSpace(os.Getenv(EnvVar(tool))); value != "" {
		if _, err := os.Stat(value); err != nil {
			return "", fmt.Errorf("%s: %w", EnvVar(tool), err)
		}
		return value, nil
	}
	found, err := exec.LookPath(tool)
	if err != nil {
		return "", &NotFoundError{Tool: tool, Env: EnvVar(tool)}
	}
	return found, nil
}
