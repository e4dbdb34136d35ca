package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/http/handlers"
	"github.com/phambaophuc/image-export/internal/http/middleware"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/export"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"github.com/phambaophuc/image-export/internal/services/settings"
	"github.com/phambaophuc/image-export/internal/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEngine struct {
	mu    sync.Mutex
	calls int
	last  models.ExportSettings
	err   error
}

func (f *fakeEngine) Convert(ctx context.Context, imagePaths []string, s models.ExportSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = s
	return f.err
}

type fakePreviewer struct{}

func (fakePreviewer) LoadPreview(ctx context.Context, imagePath string) (*models.PreviewImage, error) {
	if strings.HasSuffix(imagePath, ".txt") {
		return nil, errors.New("unsupported source image type")
	}
	return &models.PreviewImage{ImagePath: imagePath, ContentType: "image/jpeg", Data: "AAAA", Width: 10, Height: 5}, nil
}

type fakeQueue struct {
	jobs map[string]*models.ExportJob
}

func (q *fakeQueue) PublishJob(ctx context.Context, job *models.ExportJob) error {
	q.jobs[job.ID] = job
	return nil
}

func (q *fakeQueue) GetJob(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := q.jobs[id]
	if !ok {
		return nil, storage.ErrJobNotFound
	}
	return job, nil
}

func (q *fakeQueue) GetQueueStats() (map[string]interface{}, error) {
	return map[string]interface{}{"messages": len(q.jobs)}, nil
}

func (q *fakeQueue) HealthCheck() string {
	return "healthy"
}

type fakeRevealer struct {
	paths []string
}

func (r *fakeRevealer) Reveal(ctx context.Context, path string) error {
	r.paths = append(r.paths, path)
	if path == "/missing" {
		return errors.New("no such file")
	}
	return nil
}

type fakePicker struct{ folder string }

func (p fakePicker) PickFolder(ctx context.Context) (string, error) {
	return p.folder, nil
}

type testAPI struct {
	router   *gin.Engine
	engine   *fakeEngine
	revealer *fakeRevealer
	queue    *fakeQueue
}

func newTestAPI(t *testing.T, withQueue bool) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	engine := &fakeEngine{}
	revealer := &fakeRevealer{}
	sch := schema.New()

	deps := handlers.Deps{
		Sessions:  settings.NewStore(logger),
		Schema:    sch,
		Exports:   export.NewRegistry(engine, sch, revealer, logger),
		Previewer: fakePreviewer{},
		Picker:    fakePicker{folder: "/picked"},
		Revealer:  revealer,
		Logger:    logger,
	}
	api := &testAPI{engine: engine, revealer: revealer}
	if withQueue {
		api.queue = &fakeQueue{jobs: map[string]*models.ExportJob{}}
		deps.Queue = api.queue
	}

	api.router = NewRouter(handlers.NewHandler(deps), logger).SetupRoutes()
	return api
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

type session struct {
	ID         string                `json:"id"`
	Settings   models.ExportSettings `json:"settings"`
	Dirty      bool                  `json:"dirty"`
	CanUndo    bool                  `json:"can_undo"`
	Violations []schema.Violation    `json:"violations"`
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (a *testAPI) openSession(t *testing.T) session {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[session](t, env.Data)
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestCreateSession_StartsFromDefaults(t *testing.T) {
	api := newTestAPI(t, false)

	sess := api.openSession(t)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, models.DefaultExportSettings(), sess.Settings)
	assert.False(t, sess.Dirty)
	assert.False(t, sess.CanUndo)
	assert.Empty(t, sess.Violations)
}

func TestUpdateSession_StoresInvalidValuesAndReportsThem(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	w, env := api.do(t, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{"quality": 150})

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session](t, env.Data)
	assert.Equal(t, 150.0, got.Settings.FileSettings.Quality)
	assert.True(t, got.Dirty)
	assert.True(t, got.CanUndo)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, "fileSettings.quality", got.Violations[0].Field)
}

func TestUpdateSession_UnitSwitchConverts(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	_, env := api.do(t, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{"resizeIn": "inches"})

	got := decode[session](t, env.Data)
	assert.Equal(t, models.UnitInches, got.Settings.ImageSizing.ResizeIn)
	assert.InDelta(t, 1000.0/240.0, got.Settings.ImageSizing.ResizeWidth, 1e-9)
}

func TestUpdateSession_UnitSwitchNeedsValidResolution(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID

	w, _ := api.do(t, http.MethodPatch, path, map[string]interface{}{"resizeResolution": 0})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := api.do(t, http.MethodPatch, path, map[string]interface{}{"resizeIn": "cms"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Details), "imageSizing.resizeResolution")

	_, env = api.do(t, http.MethodGet, path, nil)
	assert.Equal(t, models.UnitPixels, decode[session](t, env.Data).Settings.ImageSizing.ResizeIn)
}

func TestUpdateSession_RejectsUnknownUnits(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID

	w, _ := api.do(t, http.MethodPatch, path, map[string]interface{}{"resizeIn": "furlongs"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = api.do(t, http.MethodPatch, path, map[string]interface{}{"resizeResolutionIn": "dpi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env := api.do(t, http.MethodPatch, path, map[string]interface{}{"resizeIn": "inches"})
	got := decode[session](t, env.Data)
	assert.Equal(t, models.UnitInches, got.Settings.ImageSizing.ResizeIn)
	assert.InDelta(t, 1000.0/240.0, got.Settings.ImageSizing.ResizeWidth, 1e-9)
	assert.Equal(t, models.PixelsPerInch, got.Settings.ImageSizing.ResizeResolutionIn)
}

func TestUpdateSession_RejectsMalformedBody(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	w, _ := api.do(t, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{"quality": "high"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUndoSession(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID

	w, _ := api.do(t, http.MethodPost, path+"/undo", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	api.do(t, http.MethodPatch, path, map[string]interface{}{"imageFormat": "png"})
	w, env := api.do(t, http.MethodPost, path+"/undo", nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session](t, env.Data)
	assert.Equal(t, models.FormatJPEG, got.Settings.FileSettings.ImageFormat)
	assert.False(t, got.Dirty)
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID

	w, _ := api.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env := api.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, settings.ErrSessionNotFound.Error(), env.Error)

	w, _ = api.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateSession_RequiresFolder(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	_, env := api.do(t, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/validate", nil)

	got := decode[struct {
		Valid      bool               `json:"valid"`
		Violations []schema.Violation `json:"violations"`
	}](t, env.Data)
	assert.False(t, got.Valid)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, schema.FolderPathField, got.Violations[0].Field)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportSession_InvalidSettingsNeverReachEngine(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	w, env := api.do(t, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/export",
		map[string]interface{}{"image_paths": []string{"/photos/a.jpg"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Details), schema.FolderPathField)
	assert.Equal(t, 0, api.engine.calls)
}

func TestExportSession_RunsEngineAndReveals(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID
	api.do(t, http.MethodPatch, path, map[string]interface{}{"folderPath": "/exports"})

	w, env := api.do(t, http.MethodPost, path+"/export", map[string]interface{}{
		"image_paths": []string{"/photos/a.jpg", "/photos/b.jpg"},
		"reveal":      true,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	outcome := decode[models.ExportOutcome](t, env.Data)
	assert.Equal(t, models.StatusCompleted, outcome.Status)
	assert.Equal(t, "/exports", outcome.OutputDir)
	assert.Equal(t, 2, outcome.ImageCount)
	assert.Equal(t, 1, api.engine.calls)
	assert.Equal(t, []string{"/exports"}, api.revealer.paths)
}

func TestExportSession_NoImages(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	w, _ := api.do(t, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/export", map[string]interface{}{"image_paths": []string{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, api.engine.calls)
}

func TestExportSession_EngineFailureIsGeneric(t *testing.T) {
	api := newTestAPI(t, false)
	api.engine.err = errors.New("disk full")
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID
	api.do(t, http.MethodPatch, path, map[string]interface{}{"folderPath": "/exports"})

	w, env := api.do(t, http.MethodPost, path+"/export", map[string]interface{}{"image_paths": []string{"/a.jpg"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, export.ErrConversionFailed.Error(), env.Error)
	assert.Contains(t, string(env.Details), "disk full")
	assert.Equal(t, 1, api.engine.calls)
}

func TestExportSession_PickFolderStoresChoice(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID

	w, _ := api.do(t, http.MethodPost, path+"/export", map[string]interface{}{
		"image_paths": []string{"/a.jpg"},
		"pick_folder": true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/picked", api.engine.last.ExportLocation.FolderPath)

	_, env := api.do(t, http.MethodGet, path, nil)
	assert.Equal(t, "/picked", decode[session](t, env.Data).Settings.ExportLocation.FolderPath)
}

func TestExportSession_AsyncWithoutQueue(t *testing.T) {
	api := newTestAPI(t, false)
	sess := api.openSession(t)

	w, _ := api.do(t, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/export",
		map[string]interface{}{"image_paths": []string{"/a.jpg"}, "async": true})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportSession_AsyncJobCanBePolled(t *testing.T) {
	api := newTestAPI(t, true)
	sess := api.openSession(t)
	path := "/api/v1/sessions/" + sess.ID
	api.do(t, http.MethodPatch, path, map[string]interface{}{"folderPath": "/exports"})

	w, env := api.do(t, http.MethodPost, path+"/export",
		map[string]interface{}{"image_paths": []string{"/a.jpg"}, "async": true})

	require.Equal(t, http.StatusAccepted, w.Code)
	job := decode[models.ExportJob](t, env.Data)
	assert.Equal(t, models.StatusPending, job.Status)
	assert.Equal(t, sess.ID, job.SessionID)
	assert.Equal(t, 0, api.engine.calls)

	w, env = api.do(t, http.MethodGet, "/api/v1/exports/"+job.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, job.ID, decode[models.ExportJob](t, env.Data).ID)

	w, _ = api.do(t, http.MethodGet, "/api/v1/exports/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportSession_AsyncValidatesBeforeQueueing(t *testing.T) {
	api := newTestAPI(t, true)
	sess := api.openSession(t)

	w, _ := api.do(t, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/export",
		map[string]interface{}{"image_paths": []string{"/a.jpg"}, "async": true})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, api.queue.jobs)
}

// =============================================================================
// SETTINGS AND UNITS
// =============================================================================

func TestValidateSettings_DraftSkipsFolder(t *testing.T) {
	api := newTestAPI(t, false)
	body := models.DefaultExportSettings()

	_, env := api.do(t, http.MethodPost, "/api/v1/settings/validate", body)
	assert.Contains(t, string(env.Data), `"valid":false`)

	_, env = api.do(t, http.MethodPost, "/api/v1/settings/validate?draft=true", body)
	assert.Contains(t, string(env.Data), `"valid":true`)
}

func TestConvertLength(t *testing.T) {
	api := newTestAPI(t, false)
	sizing := models.DefaultExportSettings().ImageSizing
	sizing.ResizeWidth, sizing.ResizeHeight, sizing.ResizeSize = 300, 200, 100
	sizing.ResizeResolution = 300

	w, env := api.do(t, http.MethodPost, "/api/v1/units/length", map[string]interface{}{"sizing": sizing, "to": "inches"})

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.ImageSizing](t, env.Data)
	assert.InDelta(t, 1.0, got.ResizeWidth, 1e-9)
	assert.InDelta(t, 200.0/300.0, got.ResizeHeight, 1e-9)
	assert.Equal(t, models.UnitInches, got.ResizeIn)
}

func TestConvertLength_RejectsBadInput(t *testing.T) {
	api := newTestAPI(t, false)
	sizing := models.DefaultExportSettings().ImageSizing

	w, _ := api.do(t, http.MethodPost, "/api/v1/units/length", map[string]interface{}{"sizing": sizing, "to": "feet"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sizing.ResizeResolution = 0
	w, _ = api.do(t, http.MethodPost, "/api/v1/units/length", map[string]interface{}{"sizing": sizing, "to": "cms"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestConvertResolution(t *testing.T) {
	api := newTestAPI(t, false)
	sizing := models.DefaultExportSettings().ImageSizing
	sizing.ResizeResolution = 254

	_, env := api.do(t, http.MethodPost, "/api/v1/units/resolution", map[string]interface{}{"sizing": sizing, "to": "pixels_per_cm"})

	got := decode[models.ImageSizing](t, env.Data)
	assert.InDelta(t, 100.0, got.ResizeResolution, 1e-9)
	assert.Equal(t, models.PixelsPerCm, got.ResizeResolutionIn)
	assert.Equal(t, sizing.ResizeWidth, got.ResizeWidth)
}

// =============================================================================
// IMAGES, REVEAL, HEALTH, MIDDLEWARE
// =============================================================================

func TestPreview(t *testing.T) {
	api := newTestAPI(t, false)

	w, env := api.do(t, http.MethodPost, "/api/v1/images/preview", map[string]string{"image_path": "/photos/a.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decode[models.PreviewImage](t, env.Data).Width)

	w, _ = api.do(t, http.MethodPost, "/api/v1/images/preview", map[string]string{"image_path": "/notes.txt"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/v1/images/preview", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReveal_IsBestEffort(t *testing.T) {
	api := newTestAPI(t, false)

	w, env := api.do(t, http.MethodPost, "/api/v1/reveal", map[string]string{"path": "/exports"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"revealed":true}`, string(env.Data))

	w, env = api.do(t, http.MethodPost, "/api/v1/reveal", map[string]string{"path": "/missing"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"revealed":false}`, string(env.Data))
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t, true)

	w, env := api.do(t, http.MethodGet, "/api/v1/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	health := decode[models.HealthCheck](t, env.Data)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Services["rabbitmq"])
}

func TestHealthCheck_WithoutRedisIsDegradedNotDown(t *testing.T) {
	api := newTestAPI(t, false)

	w, env := api.do(t, http.MethodGet, "/api/v1/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	health := decode[models.HealthCheck](t, env.Data)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "disabled", health.Services["redis"])
	assert.Equal(t, "not configured", health.Services["rabbitmq"])
}

func TestStats(t *testing.T) {
	api := newTestAPI(t, true)
	api.openSession(t)

	w, env := api.do(t, http.MethodGet, "/api/v1/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, 1.0, stats["sessions"])
	assert.Contains(t, stats, "queue")
	assert.NotContains(t, stats, "cache")
}

func TestClearPreviewCache_WithoutStorage(t *testing.T) {
	api := newTestAPI(t, false)

	w, _ := api.do(t, http.MethodDelete, "/api/v1/images/preview/cache", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMiddleware(t *testing.T) {
	api := newTestAPI(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("quality=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
