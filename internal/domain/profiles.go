package domain

// ProfileOption describes one selectable DNxHR encode preset.
type ProfileOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PixelFormat string `json:"pixelFormat"`
	Description string `json:"description,omitempty"`
}
