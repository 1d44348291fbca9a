package transcode

import (
	"context"
	"strconv"
	"strings"

	"dnx-transcoder/internal/tools"
)

// EBU R128 broadcast targets shared by the analysis and encode passes, plus
// per-field fallbacks used when the analysis output omits a value.
const (
	targetIntegratedLoudness  = -23.0
	targetTruePeak            = -2.0
	targetLoudnessRange       = 7.0
	fallbackLoudnessThreshold = -34.0
)

// LoudnessParams carries first-pass measured values for two-pass loudnorm.
type LoudnessParams struct {
	IntegratedLoudness float64
	LoudnessRange      float64
	TruePeak           float64
	Threshold          float64
}

// Measurer runs the loudnorm analysis pass and extracts measured values.
type Measurer struct {
	ffmpegPath string
	runner     commandRunner
}

// NewMeasurer constructs a measurer with the resolved encoder binary.
func NewMeasurer() *Measurer {
	return &Measurer{
		ffmpegPath: tools.NewResolver().Find("ffmpeg"),
		runner:     &execRunner{},
	}
}

// Measure analyzes the input's loudness for the two-pass normalization
// chain. ok is false when the analysis pass cannot run or produces no
// readable summary; callers then encode without normalization.
func (m *Measurer) Measure(ctx context.Context, inputPath string) (LoudnessParams, bool) {
	result, err := m.runner.Run(ctx, m.ffmpegPath,
		"-hide_banner",
		"-i", inputPath,
		"-af", analysisFilter(),
		"-f", "null",
		"-",
	)
	if err != nil || result.ExitCode != 0 {
		return LoudnessParams{}, false
	}

	// The summary may land on stdout or stderr depending on the build.
	block, found := summaryBlock(result.Stdout + result.Stderr)
	if !found {
		return LoudnessParams{}, false
	}

	return LoudnessParams{
		IntegratedLoudness: scanNumberField(block, "input_i", "measured_I", targetIntegratedLoudness),
		LoudnessRange:      scanNumberField(block, "input_lra", "measured_LRA", targetLoudnessRange),
		TruePeak:           scanNumberField(block, "input_tp", "measured_TP", targetTruePeak),
		Threshold:          scanNumberField(block, "input_thresh", "measured_thresh", fallbackLoudnessThreshold),
	}, true
}

// NewMeasurerForTests constructs a measurer with injectable dependencies.
func NewMeasurerForTests(ffmpegPath string, runner commandRunner) *Measurer {
	return &Measurer{
		ffmpegPath: ffmpegPath,
		runner:     runner,
	}
}

// summaryBlock isolates the loudnorm summary from mixed process output.
func summaryBlock(output string) (string, bool) {
	start := strings.IndexByte(output, '{')
	end := strings.LastIndexByte(output, '}')
	if start < 0 || end < start {
		return "", false
	}
	return output[start : end+1], true
}

// scanNumberField extracts one numeric value by key, trying the primary then
// the alternate spelling, falling back when neither yields a number.
func scanNumberField(block, primary, alternate string, fallback float64) float64 {
	if value, ok := numberAfterKey(block, primary); ok {
		return value
	}
	if value, ok := numberAfterKey(block, alternate); ok {
		return value
	}
	return fallback
}

// numberAfterKey finds the quoted key, skips to the following colon, and
// accumulates the first run of numeric characters after it. The loudnorm
// summary layout is not a stable contract, so no strict JSON parse.
func numberAfterKey(block, key string) (float64, bool) {
	idx := strings.Index(block, `"`+key+`"`)
	if idx < 0 {
		return 0, false
	}
	rest := block[idx+len(key)+2:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return 0, false
	}

	var number strings.Builder
	for _, r := range rest[colon+1:] {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			number.WriteRune(r)
			continue
		}
		if number.Len() > 0 {
			break
		}
	}

	value, err := strconv.ParseFloat(number.String(), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// loudnessValue renders a loudnorm numeric argument in shortest form.
func loudnessValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// analysisFilter builds the measurement pass audio filter.
func analysisFilter() string {
	return "loudnorm=I=" + loudnessValue(targetIntegratedLoudness) +
		":TP=" + loudnessValue(targetTruePeak) +
		":LRA=" + loudnessValue(targetLoudnessRange) +
		":print_format=json"
}

// normalizationFilter builds the encode pass filter from measured values.
func normalizationFilter(params LoudnessParams) string {
	return "loudnorm=I=" + loudnessValue(targetIntegratedLoudness) +
		":TP=" + loudnessValue(targetTruePeak) +
		":LRA=" + loudnessValue(targetLoudnessRange) +
		":measured_I=" + loudnessValue(params.IntegratedLoudness) +
		":measured_LRA=" + loudnessValue(params.LoudnessRange) +
		":measured_TP=" + loudnessValue(params.TruePeak) +
		":measured_thresh=" + loudnessValue(params.Threshold) +
		":print_format=summary"
}
