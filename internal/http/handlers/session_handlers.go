package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"github.com/phambaophuc/image-export/internal/services/settings"
	"go.uber.org/zap"
)

const resolutionField = "imageSizing.resizeResolution"

func (h *Handler) CreateSession(c *gin.Context) {
	sess := h.sessions.Open()
	// queued exports only run for sessions registered here
	h.exports.For(sess.ID)
	h.respondOK(c, http.StatusCreated, h.viewOf(sess))
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respondOK(c, http.StatusOK, h.viewOf(sess))
}

func (h *Handler) CloseSession(c *gin.Context) {
	id := c.Param(sessionIDParam)
	if err := h.sessions.Close(id); err != nil {
		h.respondError(c, http.StatusNotFound, err.Error())
		return
	}
	h.exports.Forget(id)
	c.Status(http.StatusNoContent)
}

// UpdateSession applies a partial edit. Edits are stored even when they make
// the settings invalid; the response lists the violations. A unit switch is
// refused while the resolution cannot be used for conversion.
func (h *Handler) UpdateSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid settings patch: "+err.Error())
		return
	}

	// the resolution is checked against the same value the conversion runs on
	resolutionUsable := func(current models.ExportSettings) error {
		if !patch.ChangesUnits() {
			return nil
		}
		if draft := h.schema.ValidateDraft(current); draft.Has(resolutionField) {
			return &schema.ValidationError{Violations: draft.Violations}
		}
		return nil
	}

	_, changed, err := sess.ApplyIf(resolutionUsable, patch.Updates()...)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
				Success: false,
				Error:   "Resolution must be valid before changing units",
				Details: verr.Violations,
			})
			return
		}
		h.respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if changed {
		h.logger.Info("Settings updated", zap.String("session_id", sess.ID))
	}
	h.respondOK(c, http.StatusOK, h.viewOf(sess))
}

func (h *Handler) UndoSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	if _, undone := sess.Undo(); !undone {
		h.respondError(c, http.StatusConflict, "Nothing to undo")
		return
	}
	h.respondOK(c, http.StatusOK, h.viewOf(sess))
}

// ValidateSession runs the full export-time validation on the session's
// current settings.
func (h *Handler) ValidateSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	result := h.schema.Validate(sess.Current())
	h.respondOK(c, http.StatusOK, validationView{Valid: result.Valid(), Violations: result.Violations})
}
