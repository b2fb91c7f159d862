package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-labs/kotoba-api/internal/service"
	"github.com/kotoba-labs/kotoba-api/pkg/response"
)

// DashboardHandler serves the student landing payload.
type DashboardHandler struct {
	service *service.DashboardService
	metrics *service.MetricsService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{service: svc, metrics: metrics}
}

// Load godoc
// @Summary Student dashboard
// @Description Recent learning activity, cached per user
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Load(c *gin.Context) {
	claims := claimsFromContext(c)
	dashboard, cached, err := h.service.Load(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordCacheLookup(cached)
	response.JSON(c, http.StatusOK, dashboard, nil, map[string]interface{}{"cache_hit": cached})
}
