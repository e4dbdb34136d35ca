package handlers

import (
	"context"

	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/export"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"github.com/phambaophuc/image-export/internal/services/settings"
	"go.uber.org/zap"
)

// Previewer decodes a source image into a bounded preview.
type Previewer interface {
	LoadPreview(ctx context.Context, imagePath string) (*models.PreviewImage, error)
}

// JobQueue runs exports in the background.
type JobQueue interface {
	PublishJob(ctx context.Context, job *models.ExportJob) error
	GetJob(ctx context.Context, id string) (*models.ExportJob, error)
	GetQueueStats() (map[string]interface{}, error)
	HealthCheck() string
}

// Storage is the cache and mirror backend.
type Storage interface {
	HealthCheck(ctx context.Context) map[string]string
	GetCacheStats(ctx context.Context) (map[string]interface{}, error)
	ClearPreviewCache(ctx context.Context) (int, error)
}

// Deps are the collaborators of the API. Previewer, Storage, Queue, Picker and
// Revealer are optional.
type Deps struct {
	Sessions  *settings.Store
	Schema    *schema.Schema
	Exports   *export.Registry
	Previewer Previewer
	Storage   Storage
	Queue     JobQueue
	Picker    export.FolderPicker
	Revealer  export.Revealer
	Logger    *zap.Logger
}

type Handler struct {
	sessions  *settings.Store
	schema    *schema.Schema
	exports   *export.Registry
	previewer Previewer
	storage   Storage
	queue     JobQueue
	picker    export.FolderPicker
	revealer  export.Revealer
	logger    *zap.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		sessions:  deps.Sessions,
		schema:    deps.Schema,
		exports:   deps.Exports,
		previewer: deps.Previewer,
		storage:   deps.Storage,
		queue:     deps.Queue,
		picker:    deps.Picker,
		revealer:  deps.Revealer,
		logger:    deps.Logger,
	}
}
