package handler

import (
	"log/slog"
	"net/http"

	"backoffice/internal/auth"
	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService service.UserService
	tokens      *auth.TokenIssuer
	cookie      middleware.CookieOptions
	loginLimit  gin.HandlerFunc
	logger      *slog.Logger
}

// NewAuthHandler wires the session endpoints. loginLimit throttles POST /login.
func NewAuthHandler(
	userService service.UserService,
	tokens *auth.TokenIssuer,
	cookie middleware.CookieOptions,
	loginLimit gin.HandlerFunc,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		cookie:      cookie,
		loginLimit:  loginLimit,
		logger:      logger,
	}
}

// RegisterRoutes binds login/logout on public and the profile routes on authed.
func (h *AuthHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/login", h.loginLimit, h.Login)
	public.POST("/logout", h.Logout)

	authed.GET("/me", h.GetMe)
	authed.PUT("/me/password", h.ChangePassword)
}

// Login handles POST /login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, setting the session cookie and returning the token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, h.tokens.TTL(), h.cookie)
	response.JSON(c, http.StatusOK, res)
}

// Logout clears the session cookie
// @Summary      Logout user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.cookie)
	response.JSON(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetMe returns the current profile and what it may do
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	me, err := h.userService.Me(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, me)
}

// ChangePassword updates the password of the current user
// @Summary      Change own password
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ChangePasswordRequest  true  "New password and confirmation"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /me/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Password updated"})
}
