package domain

// BatchStatus tracks the lifecycle of one transcode run.
type BatchStatus string

const (
	BatchStatusIdle    BatchStatus = "idle"
	BatchStatusRunning BatchStatus = "running"
	BatchStatusDone    BatchStatus = "done"
)

// Settings contains user-selectable encode configuration.
type Settings struct {
	Profile           string  `json:"profile"`
	Container         string  `json:"container"`
	AudioBits         int     `json:"audioBits"`
	AudioChannels     int     `json:"audioChannels"`
	PreserveFrameRate bool    `json:"preserveFrameRate"`
	TargetFrameRate   float64 `json:"targetFrameRate"`
	SetTimecode       bool    `json:"setTimecode"`
	Timecode          string  `json:"timecode"`
	NormalizeAudio    bool    `json:"normalizeAudio"`
	OutputDir         string  `json:"outputDir"`
}

// Batch stores identity and aggregate counts for the current run.
type Batch struct {
	ID        string      `json:"id"`
	Status    BatchStatus `json:"status"`
	Total     int         `json:"total"`
	Completed int         `json:"completed"`
	Failed    int         `json:"failed"`
}
