package transcode

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeRunner simulates buffered command execution outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// fakeProber returns a fixed probe outcome.
type fakeProber struct {
	duration float64
	ok       bool
}

func (f *fakeProber) Duration(ctx context.Context, inputPath string) (float64, bool) {
	return f.duration, f.ok
}

// fakeMeasurer returns a fixed analysis outcome and counts invocations.
type fakeMeasurer struct {
	params LoudnessParams
	ok     bool
	calls  int
}

func (f *fakeMeasurer) Measure(ctx context.Context, inputPath string) (LoudnessParams, bool) {
	f.calls++
	return f.params, f.ok
}

// fakeProcess plays back a canned stdout stream and exit outcome.
type fakeProcess struct {
	stdout  io.Reader
	exit    int
	waitErr error
	waited  bool
}

func (p *fakeProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *fakeProcess) Wait() (int, error) {
	p.waited = true
	return p.exit, p.waitErr
}

// fakeStarter records the launch and hands back the canned process.
type fakeStarter struct {
	process  *fakeProcess
	startErr error
	gotName  string
	gotArgs  []string
}

func (s *fakeStarter) Start(ctx context.Context, name string, args ...string) (startedProcess, error) {
	s.gotName = name
	s.gotArgs = append([]string(nil), args...)
	if s.startErr != nil {
		return nil, s.startErr
	}
	return s.process, nil
}

// TestPipelineRunSuccessStreamsProgress checks the known-duration happy path.
func TestPipelineRunSuccessStreamsProgress(t *testing.T) {
	starter := &fakeStarter{
		process: &fakeProcess{
			stdout: strings.NewReader("out_time_us=2500000\nout_time_us=5000000\nprogress=end\n"),
		},
	}
	measurer := &fakeMeasurer{}
	pipeline := NewPipelineForTests("ffmpeg-custom", &fakeProber{duration: 10, ok: true}, measurer, starter)

	var fractions []float64
	err := pipeline.Run(context.Background(), Request{
		InputPath:         "/media/clip.mp4",
		OutputPath:        "/media/transcoded/clip.mov",
		Profile:           "dnxhr_hq",
		AudioBits:         16,
		AudioChannels:     2,
		PreserveFrameRate: true,
		OnProgress:        func(fraction float64) { fractions = append(fractions, fraction) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []float64{0.25, 0.5, 1.0}
	if len(fractions) != len(want) {
		t.Fatalf("fractions = %v, want %v", fractions, want)
	}
	for i := range want {
		if fractions[i] != want[i] {
			t.Fatalf("fractions[%d] = %v, want %v", i, fractions[i], want[i])
		}
	}
	if starter.gotName != "ffmpeg-custom" {
		t.Fatalf("command = %q, want ffmpeg-custom", starter.gotName)
	}
	if got := argValue(starter.gotArgs, "-i"); got != "/media/clip.mp4" {
		t.Fatalf("input arg = %q", got)
	}
	if got := starter.gotArgs[len(starter.gotArgs)-1]; got != "/media/transcoded/clip.mov" {
		t.Fatalf("output arg = %q", got)
	}
	if measurer.calls != 0 {
		t.Fatalf("measurer calls = %d, want 0 when normalization is off", measurer.calls)
	}
	if !starter.process.waited {
		t.Fatal("expected Wait on the encoder process")
	}
}

// TestPipelineRunUnknownDurationReportsIndeterminate checks the probe-failure path.
func TestPipelineRunUnknownDurationReportsIndeterminate(t *testing.T) {
	starter := &fakeStarter{
		process: &fakeProcess{
			stdout: strings.NewReader("out_time_us=1000000\nout_time_us=2000000\nprogress=end\n"),
		},
	}
	pipeline := NewPipelineForTests("ffmpeg", &fakeProber{}, &fakeMeasurer{}, starter)

	var fractions []float64
	err := pipeline.Run(context.Background(), Request{
		InputPath:  "clip.mp4",
		OutputPath: "clip.mov",
		OnProgress: func(fraction float64) { fractions = append(fractions, fraction) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(fractions) != 2 || fractions[0] != IndeterminateProgress || fractions[1] != 1.0 {
		t.Fatalf("fractions = %v, want [-1 1]", fractions)
	}
}

// TestPipelineRunNormalizationAddsMeasuredFilter checks the two-pass chain.
func TestPipelineRunNormalizationAddsMeasuredFilter(t *testing.T) {
	starter := &fakeStarter{
		process: &fakeProcess{stdout: strings.NewReader("progress=end\n")},
	}
	measurer := &fakeMeasurer{
		params: LoudnessParams{
			IntegratedLoudness: -27.61,
			LoudnessRange:      18.06,
			TruePeak:           -4.47,
			Threshold:          -39.2,
		},
		ok: true,
	}
	pipeline := NewPipelineForTests("ffmpeg", &fakeProber{duration: 4, ok: true}, measurer, starter)

	err := pipeline.Run(context.Background(), Request{
		InputPath:  "clip.mp4",
		OutputPath: "clip.mov",
		Normalize:  true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if measurer.calls != 1 {
		t.Fatalf("measurer calls = %d, want 1", measurer.calls)
	}

	filter := argValue(starter.gotArgs, "-af")
	want := "loudnorm=I=-23:TP=-2:LRA=7" +
		":measured_I=-27.61:measured_LRA=18.06:measured_TP=-4.47:measured_thresh=-39.2" +
		":print_format=summary"
	if filter != want {
		t.Fatalf("filter = %q, want %q", filter, want)
	}
}

// TestPipelineRunMeasureFailureSkipsFilter checks analysis degradation.
func TestPipelineRunMeasureFailureSkipsFilter(t *testing.T) {
	starter := &fakeStarter{
		process: &fakeProcess{stdout: strings.NewReader("progress=end\n")},
	}
	measurer := &fakeMeasurer{ok: false}
	pipeline := NewPipelineForTests("ffmpeg", &fakeProber{duration: 4, ok: true}, measurer, starter)

	err := pipeline.Run(context.Background(), Request{
		InputPath:  "clip.mp4",
		OutputPath: "clip.mov",
		Normalize:  true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if measurer.calls != 1 {
		t.Fatalf("measurer calls = %d, want 1", measurer.calls)
	}
	if hasArg(starter.gotArgs, "-af") {
		t.Fatalf("did not expect -af after failed analysis, args=%v", starter.gotArgs)
	}
}

// TestPipelineRunEncoderExitFailure checks non-zero exit mapping.
func TestPipelineRunEncoderExitFailure(t *testing.T) {
	waitErr := errors.New("exit status 1")
	starter := &fakeStarter{
		process: &fakeProcess{
			stdout:  strings.NewReader("out_time_us=1000000\n"),
			exit:    1,
			waitErr: waitErr,
		},
	}
	pipeline := NewPipelineForTests("ffmpeg", &fakeProber{duration: 4, ok: true}, &fakeMeasurer{}, starter)

	err := pipeline.Run(context.Background(), Request{InputPath: "clip.mp4", OutputPath: "clip.mov"})
	if err == nil {
		t.Fatal("expected error")
	}

	var passErr *PassError
	if !errors.As(err, &passErr) {
		t.Fatalf("error type = %T, want *PassError", err)
	}
	if passErr.Pass != "encode" {
		t.Fatalf("pass = %q, want encode", passErr.Pass)
	}
	if passErr.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", passErr.ExitCode)
	}
	if !errors.Is(err, waitErr) {
		t.Fatalf("expected wrapped wait error, got %v", err)
	}
	if !strings.Contains(err.Error(), "exited with code 1") {
		t.Fatalf("error message = %q", err.Error())
	}
}

// TestPipelineRunSpawnFailure checks launch errors surface without progress.
func TestPipelineRunSpawnFailure(t *testing.T) {
	startErr := errors.New("no such file or directory")
	starter := &fakeStarter{startErr: startErr}
	pipeline := NewPipelineForTests("ffmpeg", &fakeProber{duration: 4, ok: true}, &fakeMeasurer{}, starter)

	var fractions []float64
	err := pipeline.Run(context.Background(), Request{
		InputPath:  "clip.mp4",
		OutputPath: "clip.mov",
		OnProgress: func(fraction float64) { fractions = append(fractions, fraction) },
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var passErr *PassError
	if !errors.As(err, &passErr) {
		t.Fatalf("error type = %T, want *PassError", err)
	}
	if passErr.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", passErr.ExitCode)
	}
	if !errors.Is(err, startErr) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
	if len(fractions) != 0 {
		t.Fatalf("fractions = %v, want none before launch", fractions)
	}
}

// TestPipelineRunNilProgressCallback checks the callback is optional.
func TestPipelineRunNilProgressCallback(t *testing.T) {
	starter := &fakeStarter{
		process: &fakeProcess{stdout: strings.NewReader("out_time_us=1000000\nprogress=end\n")},
	}
	pipeline := NewPipelineForTests("ffmpeg", &fakeProber{duration: 4, ok: true}, &fakeMeasurer{}, starter)

	if err := pipeline.Run(context.Background(), Request{InputPath: "clip.mp4", OutputPath: "clip.mov"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

// argValue returns value for key-style CLI args.
func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args include the target flag.
func hasArg(args []string, key string) bool {
	for _, arg := range args {
		if arg == key {
			return true
		}
	}
	return false
}
