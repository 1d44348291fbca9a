package bootstrap

import "dnx-transcoder/internal/domain"

var profileCatalog = []domain.ProfileOption{
	{
		ID:          "dnxhr_lb",
		Name:        "DNxHR LB (Low Bandwidth)",
		PixelFormat: "yuv422p",
		Description: "Proxy-grade 8-bit 4:2:2 for offline editing.",
	},
	{
		ID:          "dnxhr_sq",
		Name:        "DNxHR SQ (Standard Quality)",
		PixelFormat: "yuv422p",
		Description: "Standard 8-bit 4:2:2 delivery quality.",
	},
	{
		ID:          "dnxhr_hq",
		Name:        "DNxHR HQ (High Quality)",
		PixelFormat: "yuv422p",
		Description: "High quality 8-bit 4:2:2, the default profile.",
	},
	{
		ID:          "dnxhr_hqx",
		Name:        "DNxHR HQX (High Quality 10-bit)",
		PixelFormat: "yuv422p10le",
		Description: "10-bit 4:2:2 for grading workflows.",
	},
	{
		ID:          "dnxhr_444",
		Name:        "DNxHR 444 (4:4:4 10-bit)",
		PixelFormat: "yuv444p10le",
		Description: "Full chroma 10-bit mastering profile.",
	},
}

// GetProfiles returns the built-in DNxHR encoder presets.
func (a *App) GetProfiles() []domain.ProfileOption {
	profiles := make([]domain.ProfileOption, len(profileCatalog))
	copy(profiles, profileCatalog)
	return profiles
}

func getProfileByID(id string) (domain.ProfileOption, bool) {
	for _, profile := range profileCatalog {
		if profile.ID == id {
			return profile, true
		}
	}
	return domain.ProfileOption{}, false
}
