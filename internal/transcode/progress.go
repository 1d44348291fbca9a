package transcode

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// IndeterminateProgress is reported once per job when the source duration is
// unknown and elapsed time cannot be turned into a completed fraction.
const IndeterminateProgress = -1.0

const (
	// maxStreamFraction caps live progress below 1.0, which is reserved for
	// the encoder's explicit end marker.
	maxStreamFraction = 0.999
	progressEndMarker = "progress=end"
)

// scanProgress consumes the encoder's line-oriented key=value progress
// stream until EOF and reports completed fractions. A duration of zero or
// less switches reporting to a single indeterminate signal.
func scanProgress(r io.Reader, duration float64, report func(fraction float64)) error {
	if report == nil {
		report = func(float64) {}
	}

	scanner := bufio.NewScanner(r)
	sentIndeterminate := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == progressEndMarker {
			report(1.0)
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found || (key != "out_time_us" && key != "out_time_ms") {
			continue
		}

		// Both keys carry microseconds; the _ms spelling is historical.
		elapsedUS, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}

		if duration <= 0 {
			if !sentIndeterminate {
				sentIndeterminate = true
				report(IndeterminateProgress)
			}
			continue
		}

		report(clampFraction(float64(elapsedUS) / 1e6 / duration))
	}

	return scanner.Err()
}

// clampFraction bounds a live fraction to [0, maxStreamFraction].
func clampFraction(fraction float64) float64 {
	if fraction < 0 {
		return 0
	}
	if fraction > maxStreamFraction {
		return maxStreamFraction
	}
	return fraction
}
