package handler

import (
	"log/slog"
	"net/http"

	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *slog.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", h.GetSummary)
}

// GetSummary handles GET /api/dashboard
// @Summary      Dashboard totals
// @Description  Active clients, groups and clients created this month, plus an optional legal name search
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        q    query     string  false  "Legal name contains"
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
