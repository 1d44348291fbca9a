package transcode

import "strconv"

// buildEncodeArgs builds the encoder CLI for one job. params is nil when
// normalization is off or the analysis pass produced nothing usable.
func buildEncodeArgs(req Request, params *LoudnessParams) []string {
	args := []string{
		"-y",
		"-i", req.InputPath,
		"-c:v", "dnxhd",
		"-profile:v", req.Profile,
		"-pix_fmt", pixelFormat(req.Profile),
		"-c:a", audioCodec(req.AudioBits),
		"-ac", strconv.Itoa(req.AudioChannels),
	}

	if !req.PreserveFrameRate {
		args = append(args, "-r", strconv.FormatFloat(req.TargetFrameRate, 'f', 3, 64))
	}
	if req.Timecode != "" {
		args = append(args, "-timecode", req.Timecode)
	}
	if params != nil {
		args = append(args, "-af", normalizationFilter(*params))
	}

	return append(args,
		"-progress", "pipe:1",
		"-nostats",
		req.OutputPath,
	)
}

// pixelFormat selects chroma subsampling and bit depth for the profile.
func pixelFormat(profile string) string {
	switch profile {
	case "dnxhr_hqx":
		return "yuv422p10le"
	case "dnxhr_444":
		return "yuv444p10le"
	default:
		return "yuv422p"
	}
}

// audioCodec selects the PCM sample format from the configured bit depth.
func audioCodec(bits int) string {
	if bits == 24 {
		return "pcm_s24le"
	}
	return "pcm_s16le"
}
