package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"dnx-transcoder/internal/domain"
	"dnx-transcoder/internal/transcode"
)

// ErrNoInputFiles is returned when a batch is started with no usable paths.
var ErrNoInputFiles = errors.New("no input files selected")

// Job status labels surfaced verbatim in progress events. Error statuses
// are composed as "error: " plus the failure message.
const (
	StatusStarting   = "starting"
	StatusInProgress = "in progress"
	StatusDone       = "done"

	statusErrorPrefix = "error: "
)

// startingFraction is the nominal progress shown before the encoder
// produces its first update.
const startingFraction = 0.01

// eventBuffer sizes the delivery channel so short bursts never stall the worker.
const eventBuffer = 64

// EncodeJob pairs one input file with its derived output path.
type EncodeJob struct {
	Index      int    `json:"index"`
	InputPath  string `json:"inputPath"`
	OutputPath string `json:"outputPath"`
}

// Plan is an ordered batch of encode jobs sharing one output directory.
type Plan struct {
	OutputDir string      `json:"outputDir"`
	Jobs      []EncodeJob `json:"jobs"`
}

// BuildPlan derives one job per usable input. Outputs land in a
// "transcoded" directory under the configured output dir, or next to the
// first input when no dir is configured.
func BuildPlan(files []string, settings domain.Settings) (Plan, error) {
	inputs := make([]string, 0, len(files))
	for _, file := range files {
		if trimmed := strings.TrimSpace(file); trimmed != "" {
			inputs = append(inputs, trimmed)
		}
	}
	if len(inputs) == 0 {
		return Plan{}, ErrNoInputFiles
	}

	base := strings.TrimSpace(settings.OutputDir)
	if base == "" {
		base = filepath.Dir(inputs[0])
	}
	outputDir := filepath.Join(base, "transcoded")

	ext := containerExtension(settings.Container)
	planned := make([]EncodeJob, 0, len(inputs))
	for i, input := range inputs {
		planned = append(planned, EncodeJob{
			Index:      i,
			InputPath:  input,
			OutputPath: filepath.Join(outputDir, outputStem(input)+ext),
		})
	}

	return Plan{OutputDir: outputDir, Jobs: planned}, nil
}

// containerExtension maps the configured container to an output extension.
func containerExtension(container string) string {
	if container == "mxf" {
		return ".mxf"
	}
	return ".mov"
}

// outputStem builds the output filename stem from the input media name.
func outputStem(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "output"
	}
	return stem
}

// pipelineRunner runs one encode job.
type pipelineRunner interface {
	Run(ctx context.Context, req transcode.Request) error
}

// Runner executes a plan sequentially on one worker goroutine.
type Runner struct {
	pipeline pipelineRunner
	mkdirAll func(path string, perm os.FileMode) error
}

// NewRunner constructs a runner backed by the production pipeline.
func NewRunner() *Runner {
	return &Runner{
		pipeline: transcode.NewPipeline(),
		mkdirAll: os.MkdirAll,
	}
}

// Start launches the worker goroutine and returns its event stream. The
// channel closes after the last job's terminal event; an empty plan closes
// it immediately. Cancelling ctx stops the batch between jobs; an in-flight
// encode always runs to completion.
func (r *Runner) Start(ctx context.Context, plan Plan, settings domain.Settings) <-chan Event {
	events := make(chan Event, eventBuffer)

	go func() {
		defer close(events)

		// Best effort; the encoder reports unwritable destinations itself.
		_ = r.mkdirAll(plan.OutputDir, 0o755)

		for _, job := range plan.Jobs {
			if ctx.Err() != nil {
				return
			}
			r.runJob(ctx, job, settings, events)
		}
	}()

	return events
}

// runJob emits the starting, progress, and terminal events for one job.
func (r *Runner) runJob(ctx context.Context, job EncodeJob, settings domain.Settings, events chan<- Event) {
	file := filepath.Base(job.InputPath)
	events <- Event{
		Type:     EventTypeProgress,
		JobIndex: job.Index,
		File:     file,
		Status:   StatusStarting,
		Fraction: startingFraction,
	}

	timecode := ""
	if settings.SetTimecode {
		timecode = strings.TrimSpace(settings.Timecode)
	}

	err := r.pipeline.Run(ctx, transcode.Request{
		InputPath:         job.InputPath,
		OutputPath:        job.OutputPath,
		Profile:           settings.Profile,
		AudioBits:         settings.AudioBits,
		AudioChannels:     settings.AudioChannels,
		PreserveFrameRate: settings.PreserveFrameRate,
		TargetFrameRate:   settings.TargetFrameRate,
		Timecode:          timecode,
		Normalize:         settings.NormalizeAudio,
		OnProgress: func(fraction float64) {
			events <- Event{
				Type:     EventTypeProgress,
				JobIndex: job.Index,
				Status:   StatusInProgress,
				Fraction: fraction,
			}
		},
	})
	if err != nil {
		events <- Event{
			Type:     EventTypeError,
			JobIndex: job.Index,
			File:     file,
			Status:   statusErrorPrefix + err.Error(),
			Fraction: 0,
		}
		return
	}

	events <- Event{
		Type:     EventTypeResult,
		JobIndex: job.Index,
		File:     file,
		Status:   StatusDone,
		Fraction: 1,
	}
}

// NewRunnerForTests constructs a runner with injectable dependencies.
func NewRunnerForTests(pipeline pipelineRunner, mkdirAll func(path string, perm os.FileMode) error) *Runner {
	return &Runner{
		pipeline: pipeline,
		mkdirAll: mkdirAll,
	}
}
