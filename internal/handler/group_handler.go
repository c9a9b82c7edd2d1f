package handler

import (
	"log/slog"
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groupService service.GroupService
	logger       *slog.Logger
}

func NewGroupHandler(groupService service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, logger: logger}
}

func (h *GroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/api/groups")
	{
		groups.GET("", h.ListGroups)
		groups.POST("", middleware.RequireMutator(), h.CreateGroup)
		groups.PUT("/:id", middleware.RequireMutator(), h.UpdateGroup)
		groups.DELETE("/:id", middleware.RequireMutator(), h.DeleteGroup)
	}
}

// ListGroups handles GET /api/groups
// @Summary      List economic groups
// @Description  Lists groups ordered by name with their member counts
// @Tags         groups
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.GroupResponse}
// @Router       /api/groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// CreateGroup handles POST /api/groups
// @Summary      Create economic group
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GroupRequest  true  "Group"
// @Success      201      {object}  response.Response{data=service.GroupResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req service.GroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, group)
}

// UpdateGroup handles PUT /api/groups/:id
// @Summary      Update economic group
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Group ID"
// @Param        payload  body      service.GroupRequest  true  "Group"
// @Success      200      {object}  response.Response{data=service.GroupResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/groups/{id} [put]
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.GroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.groupService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/:id
// @Summary      Delete economic group
// @Description  Detaches every member client and deletes the group
// @Tags         groups
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Group deleted"})
}
