package handler

import (
	"log/slog"
	"net/http"

	"backoffice/internal/apperror"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// respondError maps err onto the error envelope. Unclassified errors are
// logged and reported without internals.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := apperror.HTTPStatus(err)
	message := err.Error()

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		message = "internal server error"
	}
	response.Fail(c, status, message)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
