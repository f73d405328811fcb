// Package htk drives the HTK feature extractor and Viterbi aligner.
package htk

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/kalign/internal/logging"
	"github.com/mgpai22/kalign/internal/toolpath"
)

// work directory file names
const (
	CodeScript  = "codetr.scp"
	TestScript  = "test.scp"
	FeatureFile = "tmp.mfc"
	ResultsFile = "aligned.results"
)

// model directory file names
const (
	ConfigFile  = "config"
	MacrosFile  = "macros"
	HMMDefsFile = "hmmdefs"
)

// one alignment run
type Job struct {
	WorkDir  string
	Audio    string
	Labels   string
	Output   string
	ModelDir string
	Dict     string
	Phones   string
}

// ToolError carries the output of a failed decoder tool.
type ToolError struct {
	Tool   string
	Err    error
	Output string
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s failed: %v: %s", e.Tool, e.Err, lastLines(e.Output, 5))
}

func (e *ToolError) Unwrap() error { return e.Err }

type execFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Runner invokes HCopy and HVite. Zero Prune and Beam are passed through.
type Runner struct {
	HCopy  string
	HVite  string
	Prune  float64
	Beam   float64
	Logger *logging.Logger

	exec execFunc
}

func NewRunner(hcopy, hvite string, prune, beam float64, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{
		HCopy:  hcopy,
		HVite:  hvite,
		Prune:  prune,
		Beam:   beam,
		Logger: logger,
		exec:   runCommand,
	}
}

// Align extracts features for job.Audio and force-aligns job.Labels,
// leaving the raw alignment in job.Output. The decoder is not retried.
func (r *Runner) Align(ctx context.Context, job Job) error {
	if err := WriteScripts(job); err != nil {
		return err
	}

	hcopy, err := toolpath.Path(r.HCopy)
	if err != nil {
		return err
	}
	hvite, err := toolpath.Path(r.HVite)
	if err != nil {
		return err
	}

	r.Logger.Debugw("extracting features", "audio", job.Audio, "model", job.ModelDir)
	if out, err := r.exec(ctx, hcopy, r.HCopyArgs(job)...); err != nil {
		return &ToolError{Tool: "HCopy", Err: err, Output: string(out)}
	}

	r.Logger.Debugw("running aligner", "labels", job.Labels, "dict", job.Dict)
	out, err := r.exec(ctx, hvite, r.HViteArgs(job)...)
	if writeErr := os.WriteFile(filepath.Join(job.WorkDir, ResultsFile), out, 0644); writeErr != nil {
		r.Logger.Warnw("failed to save aligner log", "error", writeErr)
	}
	if err != nil {
		return &ToolError{Tool: "HVite", Err: err, Output: string(out)}
	}

	if _, err := os.Stat(job.Output); err != nil {
		return &ToolError{Tool: "HVite", Err: fmt.Errorf("no alignment written: %w", err), Output: string(out)}
	}
	return nil
}

// WriteScripts writes the HCopy and HVite script files into the work dir.
func WriteScripts(job Job) error {
	if err := os.MkdirAll(job.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	mfc := filepath.Join(job.WorkDir, FeatureFile)

	code := job.Audio + " " + mfc + "\n"
	if err := os.WriteFile(filepath.Join(job.WorkDir, CodeScript), []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", CodeScript, err)
	}
	if err := os.WriteFile(filepath.Join(job.WorkDir, TestScript), []byte(mfc+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", TestScript, err)
	}
	return nil
}

func (r *Runner) HCopyArgs(job Job) []string {
	return []string{
		"-T", "1",
		"-C", filepath.Join(job.ModelDir, ConfigFile),
		"-S", filepath.Join(job.WorkDir, CodeScript),
	}
}

func (r *Runner) HViteArgs(job Job) []string {
	return []string{
		"-T", "1",
		"-a", "-m",
		"-I", job.Labels,
		"-H", filepath.Join(job.ModelDir, MacrosFile),
		"-H", filepath.Join(job.ModelDir, HMMDefsFile),
		"-S", filepath.Join(job.WorkDir, TestScript),
		"-i", job.Output,
		"-p", formatFloat(r.Prune),
		"-s", formatFloat(r.Beam),
		job.Dict,
		job.Phones,
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
