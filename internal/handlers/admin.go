package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"level-thumbnails/internal/models"
	"level-thumbnails/internal/services"
	"level-thumbnails/internal/storage"
)

type AdminHandler struct {
	settings *services.SettingsService
}

func NewAdminHandler(settings *services.SettingsService) *AdminHandler {
	return &AdminHandler{settings: settings}
}

// GetSettings handles GET /admin/settings (admin).
func (h *AdminHandler) GetSettings(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.settings.Get())
}

// UpdateSettings handles POST /admin/settings (admin). The new snapshot is
// persisted before it takes effect.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var payload models.Settings
	if err := c.ShouldBindJSON(&payload); err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.settings.Update(payload); err != nil {
		respondError(c, err)
		return
	}
	statusMessage(c, http.StatusOK, "Settings updated successfully")
}

type StatsHandler struct {
	files *storage.DiskStore
}

func NewStatsHandler(files *storage.DiskStore) *StatsHandler {
	return &StatsHandler{files: files}
}

// ServiceStats handles GET /stats (public).
func (h *StatsHandler) ServiceStats(c *gin.Context) {
	size, count, err := h.files.DirStats(h.files.ThumbnailsDir)
	if err != nil {
		size, count = 0, 0
	}

	// TODO: fetch the monthly visitor count from the Cloudflare analytics API
	const usersPerMonth = 3292188

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"storage":         size,
		"thumbnails":      count,
		"users_per_month": usersPerMonth,
	})
}
