// Package settings exposes the records service configuration screen.
package settings

import (
	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/internal/model"
	settingssvc "github.com/clinrec/console/internal/service/settings"
	apperrors "github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/httputil"
)

type Handler struct {
	service settingssvc.SettingsService
}

func NewHandler(service settingssvc.SettingsService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	settings := r.Group("/settings")
	{
		settings.GET("", h.GetSettings)
		settings.PUT("/:key", h.UpdateSetting)
		settings.POST("/test", h.TestExtraction)
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	current, err := h.service.Get(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, current)
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		httputil.RespondWithError(c, apperrors.Validation("setting key is required"))
		return
	}

	var req model.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.service.Update(c.Request.Context(), key, req.Value); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"key": key, "updated": true})
}

func (h *Handler) TestExtraction(c *gin.Context) {
	message, err := h.service.TestExtraction(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": message})
}
