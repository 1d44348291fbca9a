package probe

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"dnx-transcoder/internal/tools"
)

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts prober execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Prober reads container-level media duration via ffprobe.
type Prober struct {
	ffprobePath string
	runner      commandRunner
}

// NewProber constructs a prober resolving ffprobe through the standard lookup order.
func NewProber() *Prober {
	return &Prober{
		ffprobePath: tools.NewResolver().Find("ffprobe"),
		runner:      &execRunner{},
	}
}

// Duration returns the input's total duration in seconds. ok is false when
// the prober fails, exits non-zero, or reports anything but a finite
// positive number; callers then switch to indeterminate progress.
func (p *Prober) Duration(ctx context.Context, inputPath string) (float64, bool) {
	result, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nw=1:nk=1",
		inputPath,
	)
	if err != nil || result.ExitCode != 0 {
		return 0, false
	}

	value, parseErr := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if parseErr != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}
	return value, true
}

// NewProberForTests constructs a prober with injectable dependencies.
func NewProberForTests(ffprobePath string, runner commandRunner) *Prober {
	return &Prober{
		ffprobePath: ffprobePath,
		runner:      runner,
	}
}
