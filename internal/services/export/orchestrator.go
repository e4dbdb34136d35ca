package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"go.uber.org/zap"
)

var (
	ErrExportInProgress = errors.New("an export is already running for this session")
	ErrNoImages         = errors.New("no images provided for export")
	ErrConversionFailed = errors.New("image conversion failed")
	// ErrNoSelection is returned by a FolderPicker when the user cancels.
	ErrNoSelection = errors.New("no folder selected")
)

// Engine performs the actual conversion. One call converts every image in
// imagePaths and either succeeds or fails as a whole.
type Engine interface {
	Convert(ctx context.Context, imagePaths []string, settings models.ExportSettings) error
}

// Revealer shows a path in the platform file manager.
type Revealer interface {
	Reveal(ctx context.Context, path string) error
}

// FolderPicker asks the user for an export folder. Cancelling returns
// ErrNoSelection.
type FolderPicker interface {
	PickFolder(ctx context.Context) (string, error)
}

// EngineError wraps the error reported by the conversion engine.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%v: %v", ErrConversionFailed, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrConversionFailed, e.Err}
}

// Orchestrator runs exports for a single editing session. At most one export
// is in flight at a time; overlapping calls are refused.
type Orchestrator struct {
	engine   Engine
	schema   *schema.Schema
	revealer Revealer
	logger   *zap.Logger
	inFlight atomic.Bool
	now      func() time.Time
}

func NewOrchestrator(engine Engine, sch *schema.Schema, revealer Revealer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		engine:   engine,
		schema:   sch,
		revealer: revealer,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitExport validates settings, then calls the engine exactly once. It
// blocks until the engine returns. A *schema.ValidationError means the engine
// was never called; an *EngineError carries the engine's failure as is.
func (o *Orchestrator) SubmitExport(ctx context.Context, settings models.ExportSettings, imagePaths []string) (*models.ExportOutcome, error) {
	if len(imagePaths) == 0 {
		return nil, ErrNoImages
	}
	if err := o.schema.Validate(settings).Err(); err != nil {
		return nil, err
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Warn("Export refused, another export is running",
			zap.Int("image_count", len(imagePaths)))
		return nil, ErrExportInProgress
	}
	defer o.inFlight.Store(false)

	outputDir := OutputLocation(settings, imagePaths)
	started := o.now()

	o.logger.Info("Export started",
		zap.Int("image_count", len(imagePaths)),
		zap.String("format", string(settings.FileSettings.ImageFormat)),
		zap.String("output_dir", outputDir))

	if err := o.engine.Convert(ctx, imagePaths, settings); err != nil {
		o.logger.Error("Export failed",
			zap.Int("image_count", len(imagePaths)),
			zap.Duration("elapsed", o.now().Sub(started)),
			zap.Error(err))
		return nil, &EngineError{Err: err}
	}

	outcome := &models.ExportOutcome{
		Status:      models.StatusCompleted,
		OutputDir:   outputDir,
		ImageCount:  len(imagePaths),
		StartedAt:   started,
		CompletedAt: o.now(),
	}

	o.logger.Info("Export completed",
		zap.String("output_dir", outputDir),
		zap.Duration("elapsed", outcome.CompletedAt.Sub(started)))
	return outcome, nil
}

// ExportWithPicker asks picker for the export folder, stores it in settings
// and submits. A cancelled pick yields a cancelled outcome and no error.
func (o *Orchestrator) ExportWithPicker(ctx context.Context, picker FolderPicker, settings models.ExportSettings, imagePaths []string) (*models.ExportOutcome, error) {
	folder, err := picker.PickFolder(ctx)
	if errors.Is(err, ErrNoSelection) || (err == nil && folder == "") {
		o.logger.Info("Export folder selection cancelled")
		return &models.ExportOutcome{Status: models.StatusCancelled}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select export folder: %w", err)
	}

	settings.ExportLocation.FolderPath = folder
	return o.SubmitExport(ctx, settings, imagePaths)
}

// Busy reports whether an export is running.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

// Reveal shows path in the file manager. Failures are logged and dropped.
func (o *Orchestrator) Reveal(ctx context.Context, path string) {
	if o.revealer == nil || path == "" {
		return
	}
	if err := o.revealer.Reveal(ctx, path); err != nil {
		o.logger.Warn("Failed to reveal path", zap.String("path", path), zap.Error(err))
	}
}

// OutputLocation is the folder exported files land in: the configured folder,
// or the first source image's folder when none is set.
func OutputLocation(settings models.ExportSettings, imagePaths []string) string {
	if settings.ExportLocation.FolderPath != "" {
		return settings.ExportLocation.FolderPath
	}
	if len(imagePaths) == 0 {
		return ""
	}
	return filepath.Dir(imagePaths[0])
}
