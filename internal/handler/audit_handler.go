package handler

import (
	"log/slog"
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	viewFallback string
	logger       *slog.Logger
}

func NewAuditHandler(auditService service.AuditService, viewFallback string, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, viewFallback: viewFallback, logger: logger}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(middleware.RedirectUnlessMutator(h.viewFallback))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves the history of mutations, newest first
// @Summary      Get audit logs
// @Description  Paginated audit history. Roles without admin rights are redirected to the dashboard.
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 100)"
// @Success      200    {object}  response.Response{data=pagination.Page[service.AuditLogResponse]}
// @Success      302
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.ParseWithDefault(c, service.AuditLogsDefaultLimit)

	logs, err := h.auditService.GetAuditLogs(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, logs)
}
