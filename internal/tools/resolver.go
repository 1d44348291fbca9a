package tools

import (
	"os"
	"os/exec"
	"path/filepath"
)

// bundleBinDir holds the encoder binaries inside a packaged (Flatpak) build.
const bundleBinDir = "/app/bin"

// Resolver locates encoder executables using a fixed lookup order.
type Resolver struct {
	bundleDir  string
	executable func() (string, error)
	stat       func(string) (os.FileInfo, error)
	lookPath   func(string) (string, error)
}

// NewResolver builds a resolver using real OS dependencies.
func NewResolver() *Resolver {
	return &Resolver{
		bundleDir:  bundleBinDir,
		executable: os.Executable,
		stat:       os.Stat,
		lookPath:   exec.LookPath,
	}
}

// Find returns the path handed to the process spawner for a tool name.
// Priority: packaged bundle directory, then alongside the running
// executable, then the bare name so PATH lookup applies at spawn time.
// It never fails; an unusable result surfaces as a spawn error downstream.
func (r *Resolver) Find(name string) string {
	candidate := filepath.Join(r.bundleDir, name)
	if info, err := r.stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}

	if exe, err := r.executable(); err == nil {
		candidate = filepath.Join(filepath.Dir(exe), name)
		if info, err := r.stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return name
}

// Locate resolves the absolute executable location for diagnostics display.
func (r *Resolver) Locate(name string) (string, error) {
	found := r.Find(name)
	if filepath.IsAbs(found) {
		return found, nil
	}
	return r.lookPath(found)
}

// NewResolverForTests creates a resolver with injectable dependencies.
func NewResolverForTests(
	bundleDir string,
	executable func() (string, error),
	stat func(string) (os.FileInfo, error),
	lookPath func(string) (string, error),
) *Resolver {
	return &Resolver{
		bundleDir:  bundleDir,
		executable: executable,
		stat:       stat,
		lookPath:   lookPath,
	}
}
