package config

import "dnx-transcoder/internal/domain"

// DefaultSettings returns baseline encode configuration for first launch.
// An empty OutputDir means outputs land in a transcoded folder next to the
// first input of each run.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Profile:           "dnxhr_hq",
		Container:         "mov",
		AudioBits:         16,
		AudioChannels:     2,
		PreserveFrameRate: true,
		TargetFrameRate:   25.0,
		SetTimecode:       false,
		Timecode:          "00:00:00:00",
		NormalizeAudio:    false,
		OutputDir:         "",
	}
}
