package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/service"
)

// AnalyticsHandler serves per-link analytics.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// ===========================================
// GET /api/links/:id/analytics?interval=24h|7d|30d|90d
// ===========================================
// Response (200):
//
//	{
//	  "link_id": "...",
//	  "interval": "7d",
//	  "total_clicks": 3,
//	  "unique_clicks": 2,
//	  "countries": [["US", 2], ["CA", 1]],
//	  ...
//	}
func (h *AnalyticsHandler) Get(c *gin.Context) {
	owner, id, ok := ownerAndLinkID(c)
	if !ok {
		return
	}

	interval, err := service.ParseInterval(c.Query("interval"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	report, err := h.analytics.Aggregate(c.Request.Context(), owner, id, interval)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
