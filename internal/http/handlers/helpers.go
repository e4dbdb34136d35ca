package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/export"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"github.com/phambaophuc/image-export/internal/services/settings"
	"go.uber.org/zap"
)

const sessionIDParam = "id"

type sessionView struct {
	ID         string                `json:"id"`
	CreatedAt  time.Time             `json:"created_at"`
	Settings   models.ExportSettings `json:"settings"`
	Dirty      bool                  `json:"dirty"`
	CanUndo    bool                  `json:"can_undo"`
	Exporting  bool                  `json:"exporting"`
	Violations []schema.Violation    `json:"violations,omitempty"`
}

func (h *Handler) viewOf(sess *settings.Session) sessionView {
	current := sess.Current()
	return sessionView{
		ID:         sess.ID,
		CreatedAt:  sess.CreatedAt,
		Settings:   current,
		Dirty:      sess.Dirty(),
		CanUndo:    sess.CanUndo(),
		Exporting:  h.exports.For(sess.ID).Busy(),
		Violations: h.schema.ValidateDraft(current).Violations,
	}
}

func (h *Handler) session(c *gin.Context) (*settings.Session, bool) {
	sess, err := h.sessions.Get(c.Param(sessionIDParam))
	if err != nil {
		h.respondError(c, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

func (h *Handler) respondOK(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondExportError maps orchestrator errors onto status codes. Engine
// failures are reported as one generic failure with the cause as detail.
func (h *Handler) respondExportError(c *gin.Context, err error) {
	var verr *schema.ValidationError
	var eerr *export.EngineError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
			Success: false,
			Error:   "Invalid export settings",
			Details: verr.Violations,
		})
	case errors.Is(err, export.ErrNoImages):
		h.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, export.ErrExportInProgress):
		h.respondError(c, http.StatusConflict, err.Error())
	case errors.As(err, &eerr):
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   export.ErrConversionFailed.Error(),
			Details: eerr.Err.Error(),
		})
	default:
		h.logger.Error("Export request failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to export images")
	}
}
