package transcode

import (
	"context"
	"fmt"

	"dnx-transcoder/internal/probe"
	"dnx-transcoder/internal/tools"
)

// Request describes one encode job and its progress callback.
type Request struct {
	InputPath         string
	OutputPath        string
	Profile           string
	AudioBits         int
	AudioChannels     int
	PreserveFrameRate bool
	TargetFrameRate   float64
	Timecode          string
	Normalize         bool
	OnProgress        func(fraction float64)
}

// PassError reports a failed encoder invocation.
type PassError struct {
	Pass     string
	ExitCode int
	Err      error
}

// Error formats encode failures for logs and UI.
func (e *PassError) Error() string {
	if e == nil {
		return ""
	}
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s pass exited with code %d", e.Pass, e.ExitCode)
	}
	return fmt.Sprintf("%s pass failed to run: %v", e.Pass, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PassError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// durationProber reads media duration for progress computation.
type durationProber interface {
	Duration(ctx context.Context, inputPath string) (float64, bool)
}

// loudnessMeasurer runs the loudnorm analysis pass.
type loudnessMeasurer interface {
	Measure(ctx context.Context, inputPath string) (LoudnessParams, bool)
}

// Pipeline orchestrates the probe, analysis, and encode passes for one job.
type Pipeline struct {
	ffmpegPath string
	prober     durationProber
	measurer   loudnessMeasurer
	starter    processStarter
}

// NewPipeline constructs the production pipeline with resolved binaries.
func NewPipeline() *Pipeline {
	return &Pipeline{
		ffmpegPath: tools.NewResolver().Find("ffmpeg"),
		prober:     probe.NewProber(),
		measurer:   NewMeasurer(),
		starter:    &execStarter{},
	}
}

// Run encodes one input to its output path, reporting progress through
// req.OnProgress. A nil return means the encoder exited cleanly.
func (p *Pipeline) Run(ctx context.Context, req Request) error {
	duration := 0.0
	if value, ok := p.prober.Duration(ctx, req.InputPath); ok {
		duration = value
	}

	var params *LoudnessParams
	if req.Normalize {
		if measured, ok := p.measurer.Measure(ctx, req.InputPath); ok {
			params = &measured
		}
	}

	process, err := p.starter.Start(ctx, p.ffmpegPath, buildEncodeArgs(req, params)...)
	if err != nil {
		return &PassError{Pass: "encode", ExitCode: -1, Err: err}
	}

	// Exit status decides the outcome; a broken progress stream alone
	// does not fail the job.
	_ = scanProgress(process.Stdout(), duration, req.OnProgress)

	if code, waitErr := process.Wait(); waitErr != nil {
		return &PassError{Pass: "encode", ExitCode: code, Err: waitErr}
	}
	return nil
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	ffmpegPath string,
	prober durationProber,
	measurer loudnessMeasurer,
	starter processStarter,
) *Pipeline {
	return &Pipeline{
		ffmpegPath: ffmpegPath,
		prober:     prober,
		measurer:   measurer,
		starter:    starter,
	}
}
