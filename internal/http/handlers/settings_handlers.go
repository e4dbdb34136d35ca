package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"github.com/phambaophuc/image-export/internal/services/units"
)

type validationView struct {
	Valid      bool               `json:"valid"`
	Violations []schema.Violation `json:"violations"`
}

type lengthRequest struct {
	Sizing models.ImageSizing `json:"sizing"`
	To     models.LengthUnit  `json:"to" binding:"required,oneof=pixels inches cms"`
}

type resolutionRequest struct {
	Sizing models.ImageSizing    `json:"sizing"`
	To     models.ResolutionUnit `json:"to" binding:"required,oneof=pixels_per_inch pixels_per_cm"`
}

// ValidateSettings validates a settings value sent by the caller. With
// ?draft=true the folder path is not required.
func (h *Handler) ValidateSettings(c *gin.Context) {
	var s models.ExportSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid settings: "+err.Error())
		return
	}

	result := h.schema.Validate(s)
	if c.Query("draft") == "true" {
		result = h.schema.ValidateDraft(s)
	}
	h.respondOK(c, http.StatusOK, validationView{Valid: result.Valid(), Violations: result.Violations})
}

func (h *Handler) ConvertLength(c *gin.Context) {
	var req lengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid conversion request: "+err.Error())
		return
	}
	if !h.sizingConvertible(c, req.Sizing) {
		return
	}
	h.respondOK(c, http.StatusOK, units.ConvertLength(req.Sizing, req.To))
}

func (h *Handler) ConvertResolution(c *gin.Context) {
	var req resolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid conversion request: "+err.Error())
		return
	}
	if !h.sizingConvertible(c, req.Sizing) {
		return
	}
	h.respondOK(c, http.StatusOK, units.ConvertResolution(req.Sizing, req.To))
}

// sizingConvertible validates the sizing block on its own. Conversion is only
// defined for valid sizing.
func (h *Handler) sizingConvertible(c *gin.Context, sizing models.ImageSizing) bool {
	draft := models.DefaultExportSettings()
	draft.ImageSizing = sizing

	result := h.schema.ValidateDraft(draft)
	if result.Valid() {
		return true
	}
	c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
		Success: false,
		Error:   "Invalid image sizing",
		Details: result.Violations,
	})
	return false
}
