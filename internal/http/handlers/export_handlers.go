package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/queue"
	"github.com/phambaophuc/image-export/internal/services/settings"
	"github.com/phambaophuc/image-export/internal/services/storage"
	"go.uber.org/zap"
)

type exportRequest struct {
	ImagePaths []string `json:"image_paths"`
	// PickFolder asks for the export folder with the native dialog first.
	PickFolder bool `json:"pick_folder"`
	Async      bool `json:"async"`
	Reveal     bool `json:"reveal"`
}

type revealRequest struct {
	Path string `json:"path" binding:"required"`
}

// ExportSession exports the given images with the session's current
// settings. Synchronous exports answer with the outcome; async exports answer
// 202 with a job to poll.
func (h *Handler) ExportSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid export request: "+err.Error())
		return
	}

	if req.Async {
		h.enqueueExport(c, sess, req)
		return
	}

	orchestrator := h.exports.For(sess.ID)
	ctx := c.Request.Context()

	var (
		outcome *models.ExportOutcome
		err     error
	)
	if req.PickFolder {
		if h.picker == nil {
			h.respondError(c, http.StatusNotImplemented, "Folder picker is not available")
			return
		}
		outcome, err = orchestrator.ExportWithPicker(ctx, h.picker, sess.Current(), req.ImagePaths)
		if err == nil && outcome.Status == models.StatusCompleted {
			sess.Apply(settings.WithFolderPath(outcome.OutputDir))
		}
	} else {
		outcome, err = orchestrator.SubmitExport(ctx, sess.Current(), req.ImagePaths)
	}
	if err != nil {
		h.respondExportError(c, err)
		return
	}

	if req.Reveal && outcome.Status == models.StatusCompleted {
		orchestrator.Reveal(ctx, outcome.OutputDir)
	}
	h.respondOK(c, http.StatusOK, outcome)
}

func (h *Handler) enqueueExport(c *gin.Context, sess *settings.Session, req exportRequest) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Export queue is not available")
		return
	}
	if req.PickFolder {
		h.respondError(c, http.StatusBadRequest, "Folder picking is not supported for async exports")
		return
	}

	current := sess.Current()
	if len(req.ImagePaths) == 0 {
		h.respondError(c, http.StatusBadRequest, "no images provided for export")
		return
	}
	if err := h.schema.Validate(current).Err(); err != nil {
		h.respondExportError(c, err)
		return
	}

	job := queue.NewJob(sess.ID, current, req.ImagePaths, time.Now())
	if err := h.queue.PublishJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to queue export", zap.String("session_id", sess.ID), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to queue export")
		return
	}
	h.respondOK(c, http.StatusAccepted, job)
}

func (h *Handler) GetExportJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Export queue is not available")
		return
	}

	job, err := h.queue.GetJob(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrJobNotFound) {
		h.respondError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Failed to load export job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load export job")
		return
	}
	h.respondOK(c, http.StatusOK, job)
}

// Reveal shows a path in the file manager. It never fails the request once
// the path is given; the result says whether the file manager was reached.
func (h *Handler) Reveal(c *gin.Context) {
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid reveal request: "+err.Error())
		return
	}

	revealed := false
	if h.revealer != nil {
		if err := h.revealer.Reveal(c.Request.Context(), req.Path); err != nil {
			h.logger.Warn("Failed to reveal path", zap.String("path", req.Path), zap.Error(err))
		} else {
			revealed = true
		}
	}
	h.respondOK(c, http.StatusOK, gin.H{"revealed": revealed})
}
