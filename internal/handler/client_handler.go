package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientHandler struct {
	clientService service.ClientService
	importService service.ImportService
	logger        *slog.Logger
}

func NewClientHandler(clientService service.ClientService, importService service.ImportService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, importService: importService, logger: logger}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients")
	{
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)
		clients.POST("", middleware.RequireMutator(), h.CreateClient)
		clients.POST("/import", middleware.RequireMutator(), h.ImportClients)
		clients.PUT("/:id", middleware.RequireMutator(), h.UpdateClient)
		clients.DELETE("/:id", middleware.RequireMutator(), h.DeleteClient)

		clients.POST("/:id/partners", middleware.RequireMutator(), h.AddPartner)
		clients.DELETE("/:id/partners/:partnerId", middleware.RequireMutator(), h.RemovePartner)
	}
}

// ListClients handles GET /api/clients
// @Summary      List clients
// @Description  Lists clients ordered by legal name, optionally filtered by name substring and economic group
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        q         query     string  false  "Legal name contains (case-insensitive)"
// @Param        group_id  query     string  false  "Economic group ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=pagination.Page[service.ClientResponse]}
// @Router       /api/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	q := service.ClientListQuery{
		Query: strings.TrimSpace(c.Query("q")),
		Page:  pagination.Parse(c),
	}
	if raw := c.Query("group_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid group_id")
			return
		}
		q.GroupID = &id
	}

	page, err := h.clientService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// GetClient handles GET /api/clients/:id
// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=service.ClientResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// CreateClient handles POST /api/clients
// @Summary      Create client
// @Description  Creates a client with its responsibilities, contracted services and an optional first partner
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ClientRequest  true  "Client"
// @Success      201      {object}  response.Response{data=service.ClientResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, client)
}

// ImportClients handles POST /api/clients/import
// @Summary      Import clients from spreadsheet rows
// @Description  Normalizes loosely keyed rows and inserts them one by one. Duplicates are skipped, other failures counted.
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ImportRequest  true  "Spreadsheet rows"
// @Success      200      {object}  response.Response{data=service.ImportResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/clients/import [post]
func (h *ClientHandler) ImportClients(c *gin.Context) {
	var req service.ImportRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.importService.Import(c.Request.Context(), req.Clients)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// UpdateClient handles PUT /api/clients/:id
// @Summary      Update client
// @Description  Replaces the client fields and upserts its responsibilities and contracted services
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Client ID"
// @Param        payload  body      service.ClientRequest  true  "Client"
// @Success      200      {object}  response.Response{data=service.ClientResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// DeleteClient handles DELETE /api/clients/:id
// @Summary      Delete client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Client deleted"})
}

// AddPartner handles POST /api/clients/:id/partners
// @Summary      Add partner
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Client ID"
// @Param        payload  body      service.PartnerRequest  true  "Partner"
// @Success      201      {object}  response.Response{data=service.PartnerResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id}/partners [post]
func (h *ClientHandler) AddPartner(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.PartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	partner, err := h.clientService.AddPartner(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, partner)
}

// RemovePartner handles DELETE /api/clients/:id/partners/:partnerId
// @Summary      Remove partner
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id         path      string  true  "Client ID"
// @Param        partnerId  path      string  true  "Partner ID"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /api/clients/{id}/partners/{partnerId} [delete]
func (h *ClientHandler) RemovePartner(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	partnerID, ok := paramID(c, "partnerId")
	if !ok {
		return
	}
	if err := h.clientService.RemovePartner(c.Request.Context(), id, partnerID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Partner removed"})
}
