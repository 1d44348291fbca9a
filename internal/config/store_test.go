package config

import (
	"os"
	"path/filepath"
	"testing"

	"dnx-transcoder/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Profile != "dnxhr_hq" {
		t.Fatalf("profile = %q, want dnxhr_hq", cfg.Profile)
	}
	if cfg.Container != "mov" {
		t.Fatalf("container = %q, want mov", cfg.Container)
	}
	if cfg.AudioBits != 16 {
		t.Fatalf("audio bits = %d, want 16", cfg.AudioBits)
	}
	if !cfg.PreserveFrameRate {
		t.Fatal("expected preserve frame rate on by default")
	}
	if cfg.TargetFrameRate != 25.0 {
		t.Fatalf("target fps = %v, want 25", cfg.TargetFrameRate)
	}
	if cfg.Timecode != "00:00:00:00" {
		t.Fatalf("timecode = %q, want 00:00:00:00", cfg.Timecode)
	}
	if cfg.OutputDir != "" {
		t.Fatalf("output dir = %q, want empty", cfg.OutputDir)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Profile != "dnxhr_hq" {
		t.Fatalf("profile = %q, want dnxhr_hq", got.Profile)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		Profile:           "dnxhr_444",
		Container:         "mxf",
		AudioBits:         24,
		AudioChannels:     8,
		PreserveFrameRate: false,
		TargetFrameRate:   23.976,
		SetTimecode:       true,
		Timecode:          "01:00:00:00",
		NormalizeAudio:    true,
		OutputDir:         "/out",
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
