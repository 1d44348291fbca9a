package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"dnx-transcoder/internal/config"
	"dnx-transcoder/internal/diagnostics"
	"dnx-transcoder/internal/domain"
	"dnx-transcoder/internal/jobs"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.MP4;*.mov;*.MOV",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, batches, the encode runner, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Runner      batchRunner
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker

	mu            sync.Mutex
	lastOutputDir string
	events        *jobs.EventBus
	runtimeCtx    context.Context
}

// batchRunner isolates the encode runner behind an interface.
type batchRunner interface {
	Start(ctx context.Context, plan jobs.Plan, settings domain.Settings) <-chan jobs.Event
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".dnx-transcoder", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	return &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Runner:      jobs.NewRunner(),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		events:      jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "DNxHR Transcoder",
		Width:       1060,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop: true,
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context and registers file drop handling.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	wailsruntime.OnFileDrop(ctx, func(x, y int, paths []string) {
		accepted := filterDroppedFiles(paths)
		if len(accepted) == 0 {
			return
		}
		wailsruntime.EventsEmit(ctx, "files:dropped", accepted)
	})
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// PickInputFiles opens a native multi-select dialog for source videos.
func (a *App) PickInputFiles() ([]string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return nil, err
	}

	paths, err := wailsruntime.OpenMultipleFilesDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select video files",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(paths))
	for _, path := range paths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			selected = append(selected, trimmed)
		}
	}
	return selected, nil
}

// PickOutputDirectory opens a native directory picker for encoded outputs.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path, the last batch's output folder, or
// the configured output directory in the platform file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.lastOutputDir
		if target == "" {
			target = a.Settings.OutputDir
		}
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	report := a.checker.Run(settings)

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = report
	a.mu.Unlock()

	return report, nil
}

// StartBatch plans one encode job per file and runs the batch asynchronously.
func (a *App) StartBatch(files []string) (domain.Batch, error) {
	if a.Jobs.IsRunning() {
		return domain.Batch{}, jobs.ErrBatchAlreadyRunning
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Batch{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	plan, err := jobs.BuildPlan(files, settings)
	if err != nil {
		return domain.Batch{}, err
	}

	batchID := uuid.New().String()
	if err := a.Jobs.Begin(batchID, len(plan.Jobs)); err != nil {
		return domain.Batch{}, err
	}

	a.mu.Lock()
	a.Settings = settings
	a.lastOutputDir = plan.OutputDir
	a.mu.Unlock()

	events := a.Runner.Start(context.Background(), plan, settings)
	go a.pumpBatchEvents(batchID, events)

	return a.Jobs.Current(), nil
}

// CurrentBatch returns current batch metadata and counters.
func (a *App) CurrentBatch() domain.Batch {
	return a.Jobs.Current()
}

// BatchEvents returns all events with sequence greater than sinceSeq.
func (a *App) BatchEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// pumpBatchEvents relays worker events to subscribers and closes the batch.
func (a *App) pumpBatchEvents(batchID string, events <-chan jobs.Event) {
	for event := range events {
		event.BatchID = batchID
		switch event.Type {
		case jobs.EventTypeResult:
			a.Jobs.RecordOutcome(false)
		case jobs.EventTypeError:
			a.Jobs.RecordOutcome(true)
		}
		a.publishEvent(event)
	}

	a.Jobs.Finish()
	a.publishEvent(jobs.Event{
		BatchID:  batchID,
		Type:     jobs.EventTypeBatch,
		JobIndex: -1,
		Status:   "finished",
		Fraction: 1,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "batch:event", published)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// filterDroppedFiles keeps dropped paths that exist as regular files.
func filterDroppedFiles(paths []string) []string {
	accepted := make([]string, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		info, err := os.Stat(trimmed)
		if err != nil || info.IsDir() {
			continue
		}
		accepted = append(accepted, trimmed)
	}
	return accepted
}

// normalizeSettings trims user inputs and snaps fields to supported values.
func normalizeSettings(settings domain.Settings) domain.Settings {
	defaults := config.DefaultSettings()

	settings.Profile = strings.TrimSpace(settings.Profile)
	if _, ok := getProfileByID(settings.Profile); !ok {
		settings.Profile = defaults.Profile
	}

	settings.Container = strings.TrimSpace(settings.Container)
	if settings.Container != "mxf" {
		settings.Container = "mov"
	}

	if settings.AudioBits != 24 {
		settings.AudioBits = 16
	}
	switch settings.AudioChannels {
	case 2, 4, 8:
	default:
		settings.AudioChannels = 2
	}

	if settings.TargetFrameRate <= 0 {
		settings.TargetFrameRate = defaults.TargetFrameRate
	} else if settings.TargetFrameRate < 1 {
		settings.TargetFrameRate = 1
	} else if settings.TargetFrameRate > 120 {
		settings.TargetFrameRate = 120
	}

	settings.Timecode = strings.TrimSpace(settings.Timecode)
	if settings.Timecode == "" {
		settings.Timecode = defaults.Timecode
	}

	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
