package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/khatapp/khata_backend/internal/middleware"
)

// statsHandler serves the shop's daily analytics aggregates.
type statsHandler struct {
	analyticsService portssvc.AnalyticsSvc
}

func newStatsHandler(as portssvc.AnalyticsSvc) *statsHandler {
	return &statsHandler{
		analyticsService: as,
	}
}

// registerStatsRoutes registers the analytics routes nested under a shop.
func registerStatsRoutes(shopGroup *gin.RouterGroup, analyticsService portssvc.AnalyticsSvc) {
	h := newStatsHandler(analyticsService)
	shopGroup.GET("/stats/daily", h.getDailyStats)
}

// getDailyStats godoc
// @Summary Daily shop analytics
// @Description Retrieves the per-day order and revenue aggregates for the shop. Defaults to the trailing 30 days.
// @Tags stats
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} dto.DailyStatResponse
// @Failure 400 {object} ErrorResponse "Invalid date range"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/stats/daily [get]
func (h *statsHandler) getDailyStats(c *gin.Context) {
	shopID := c.Param("shop_id")

	var params dto.StatsRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	from, to, err := params.ParseStatsRange(time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid date range: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	stats, err := h.analyticsService.GetDailyStats(c.Request.Context(), shopID, from, to, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDailyStatsResponse(stats))
}
