// internal/interfaces/http/handlers/page_settings.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/settings"
)

// PageSettingsStore persists the admin page settings
type PageSettingsStore interface {
	Get(ctx context.Context) (*settings.PageSetting, error)
	Create(ctx context.Context, data settings.AdminSettings) (*settings.PageSetting, error)
	Update(ctx context.Context, id uuid.UUID, data settings.AdminSettings) (*settings.PageSetting, error)
}

// PageSettingsHandler handles page settings endpoints
type PageSettingsHandler struct {
	store PageSettingsStore
	log   logrus.FieldLogger
}

// NewPageSettingsHandler creates a new page settings handler
func NewPageSettingsHandler(store PageSettingsStore, log logrus.FieldLogger) *PageSettingsHandler {
	return &PageSettingsHandler{
		store: store,
		log:   log,
	}
}

// GetSettings handles GET /page-settings
func (h *PageSettingsHandler) GetSettings(c *gin.Context) {
	setting, err := h.store.Get(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to retrieve page settings")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve page settings")
		return
	}

	c.JSON(http.StatusOK, setting)
}

// CreateSettings handles POST /page-settings
func (h *PageSettingsHandler) CreateSettings(c *gin.Context) {
	var req settings.SaveRequest
	if !bindJSON(c, &req) {
		return
	}

	setting, err := h.store.Create(c.Request.Context(), req.Data)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, setting, nil)
}

// UpdateSettings handles PUT /page-settings/:id
func (h *PageSettingsHandler) UpdateSettings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid page setting ID")
		return
	}

	var req settings.SaveRequest
	if !bindJSON(c, &req) {
		return
	}

	setting, err := h.store.Update(c.Request.Context(), id, req.Data)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, setting, nil)
}

func (h *PageSettingsHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidSettings):
		respondInvalid(c, err.Error())
	case errors.Is(err, settings.ErrSettingsNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		h.log.WithError(err).Error("Failed to save page settings")
		respondError(c, http.StatusInternalServerError, "Failed to save page settings")
	}
}
