package transcode

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts buffered process execution for testability.
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

// startedProcess is a handle on a launched encoder process.
type startedProcess interface {
	Stdout() io.Reader
	Wait() (int, error)
}

// processStarter launches commands whose stdout is consumed while they run.
type processStarter interface {
	Start(ctx context.Context, name string, args ...string) (startedProcess, error)
}

// execStarter launches commands via os/exec with piped stdout.
type execStarter struct{}

// Start launches one command with stdout piped and stderr discarded.
func (s *execStarter) Start(ctx context.Context, name string, args ...string) (startedProcess, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &execProcess{cmd: cmd, stdout: stdout}, nil
}

// execProcess wraps a running exec.Cmd and its stdout stream.
type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Stdout exposes the live stdout stream; read it to EOF before Wait.
func (p *execProcess) Stdout() io.Reader {
	return p.stdout
}

// Wait blocks until process exit and maps the exit code.
func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return code, err
}
