// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles cart analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	log              logrus.FieldLogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, log logrus.FieldLogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		log:              log,
	}
}

// TrackCartEvent handles POST /cart/analytics. Recording failures are
// logged and never reported to the client.
func (h *AnalyticsHandler) TrackCartEvent(c *gin.Context) {
	var event analytics.Event
	if !bindJSON(c, &event) {
		return
	}

	sessionUser, _ := middleware.GetUserIDFromContext(c)
	if event.UserID != sessionUser {
		respondError(c, http.StatusForbidden, "Forbidden")
		return
	}

	err := h.analyticsService.Record(c.Request.Context(), event)
	if errors.Is(err, analytics.ErrInvalidEvent) {
		respondInvalid(c, err.Error())
		return
	}
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"user_id": event.UserID,
			"action":  event.Action,
		}).Warn("Failed to record cart analytics event")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// GetCartSummary handles GET /admin/analytics/cart?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetCartSummary(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().UTC().Format(time.DateOnly))

	summary, err := h.analyticsService.Summary(c.Request.Context(), date)
	if errors.Is(err, analytics.ErrInvalidEvent) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("date", date).Error("Failed to read cart analytics")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve cart analytics")
		return
	}

	respondSuccess(c, http.StatusOK, summary, nil)
}
