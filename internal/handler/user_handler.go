package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"issueboard/internal/access"
	"issueboard/internal/directory"
	"issueboard/internal/model"
	"issueboard/internal/repository"
)

type UserHandler struct {
	repo   repository.UserRepositoryInterface
	policy *access.Policy
	log    *slog.Logger
}

func NewUserHandler(repo repository.UserRepositoryInterface, policy *access.Policy, logger *slog.Logger) *UserHandler {
	return &UserHandler{repo: repo, policy: policy, log: logger}
}

type MeResponse struct {
	Profile      model.Profile       `json:"profile"`
	Capabilities access.Capabilities `json:"capabilities"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Me
// @Summary  Current user and what the UI should offer them
// @Tags     Users
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} MeResponse
// @Failure  401,502 {object} ErrorResponse
// @Router   /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.repo.Current(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, MeResponse{
		Profile:      *profile,
		Capabilities: h.policy.Resolve(profile.Role),
	})
}

// List
// @Summary  All user accounts
// @Tags     Users
// @Security BearerAuth
// @Produce  json
// @Success  200 {array}  model.User
// @Failure  403,502 {object} ErrorResponse
// @Router   /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users := directory.NewUsers(h.repo, h.log)
	if err := users.Load(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to load users")
		return
	}
	c.JSON(http.StatusOK, users.List())
}

// SetRole
// @Summary  Change a user's global role
// @Tags     Admin
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id      path string      true "User ID"
// @Param    request body roleRequest true "New role"
// @Success  200 {array}  model.User
// @Failure  400,403,404,422,502 {object} ErrorResponse
// @Router   /admin/users/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid user ID format")
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	ctx := c.Request.Context()
	users := directory.NewUsers(h.repo, h.log)
	if err := users.Load(ctx); err != nil {
		respondError(c, err, "Failed to load users")
		return
	}
	if err := users.SetRole(ctx, id, model.Role(req.Role)); err != nil {
		respondError(c, err, "Failed to update role")
		return
	}
	c.JSON(http.StatusOK, users.List())
}

// SetActive
// @Summary  Activate or deactivate a user
// @Tags     Admin
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id      path string        true "User ID"
// @Param    request body activeRequest true "Active flag"
// @Success  200 {array}  model.User
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /admin/users/{id}/active [put]
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid user ID format")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	ctx := c.Request.Context()
	users := directory.NewUsers(h.repo, h.log)
	if err := users.Load(ctx); err != nil {
		respondError(c, err, "Failed to load users")
		return
	}
	if err := users.SetActive(ctx, id, *req.Active); err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, users.List())
}
