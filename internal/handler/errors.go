package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issueboard/internal/auth"
	"issueboard/internal/board"
	"issueboard/internal/directory"
	"issueboard/internal/middleware"
	"issueboard/internal/model"
	"issueboard/internal/repository"
	"issueboard/internal/validate"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError maps a failure to a status. Backend messages pass through unchanged;
// fallback is used when the backend sent none.
func respondError(c *gin.Context, err error, fallback string) {
	var ferr validate.Errors
	switch {
	case errors.As(err, &ferr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ferr.Error(), Fields: ferr})
	case errors.Is(err, board.ErrViewNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "View not found"})
	case errors.Is(err, board.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Issue not found"})
	case errors.Is(err, directory.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Project not found"})
	case errors.Is(err, directory.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
	case errors.Is(err, model.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid status"})
	case errors.Is(err, repository.ErrNoToken), repository.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: validate.Message(err, "Invalid or expired token")})
	case repository.IsForbidden(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: validate.Message(err, "Forbidden")})
	case repository.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: validate.Message(err, "Not found")})
	case repository.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: validate.Message(err, fallback)})
	case errors.Is(err, repository.ErrTransport):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Backend unavailable"})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: fallback})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func currentClaims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return nil, false
	}
	return claims, true
}

func uuidParam(c *gin.Context, name, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, msg)
		return uuid.Nil, false
	}
	return id, true
}
