package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/models"
	"go.uber.org/zap"
)

type previewRequest struct {
	ImagePath string `json:"image_path" binding:"required"`
}

func (h *Handler) Preview(c *gin.Context) {
	if h.previewer == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Preview is not available")
		return
	}

	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid preview request: "+err.Error())
		return
	}

	preview, err := h.previewer.LoadPreview(c.Request.Context(), req.ImagePath)
	if err != nil {
		h.logger.Warn("Preview failed", zap.String("image_path", req.ImagePath), zap.Error(err))
		h.respondError(c, http.StatusUnprocessableEntity, "Invalid image: "+err.Error())
		return
	}
	h.respondOK(c, http.StatusOK, preview)
}

// ClearPreviewCache drops every cached preview.
func (h *Handler) ClearPreviewCache(c *gin.Context) {
	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Preview cache is not available")
		return
	}

	removed, err := h.storage.ClearPreviewCache(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to clear preview cache", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to clear preview cache")
		return
	}
	h.respondOK(c, http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"sessions":  h.sessions.Len(),
		"timestamp": time.Now(),
	}

	if h.storage != nil {
		cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get cache stats", zap.Error(err))
		} else {
			stats["cache"] = cacheStats
		}
	}
	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		} else {
			stats["queue"] = queueStats
		}
	}

	h.respondOK(c, http.StatusOK, stats)
}

// HealthCheck
func (h *Handler) HealthCheck(c *gin.Context) {
	services := map[string]string{}
	if h.storage != nil {
		for name, status := range h.storage.HealthCheck(c.Request.Context()) {
			services[name] = status
		}
	} else {
		services["redis"] = "disabled"
	}
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	} else {
		services["rabbitmq"] = "not configured"
	}

	overall := calculateOverallHealth(services)
	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" && status != "disabled" {
			return "unhealthy"
		}
	}
	return "healthy"
}
