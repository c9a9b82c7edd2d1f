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

type UserHandler struct {
	userService  service.UserService
	viewFallback string
	logger       *slog.Logger
}

// NewUserHandler sets up the routing dependencies for User endpoints.
// Roles without admin rights opening the list are redirected to viewFallback.
func NewUserHandler(userService service.UserService, viewFallback string, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, viewFallback: viewFallback, logger: logger}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/api/users")
	{
		users.GET("", middleware.RedirectUnlessMutator(h.viewFallback), h.ListUsers)
		users.POST("", middleware.RequireMutator(), h.CreateUser)
		users.DELETE("/:id", middleware.RequireMutator(), h.DeleteUser)
	}
}

// ListUsers handles GET /api/users
// @Summary      List users
// @Description  Newest first. Roles without admin rights are redirected to the dashboard.
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page[service.UserResponse]}
// @Success      302
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.userService.ListUsers(c.Request.Context(), pagination.Parse(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// CreateUser handles POST /api/users
// @Summary      Create a new user
// @Description  Creates a new user validating constraints and hashing password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, user)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary      Delete a user
// @Description  Deletes another user; the current user cannot delete itself
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}
