package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issueboard/internal/directory"
	"issueboard/internal/model"
	"issueboard/internal/repository"
)

// ProjectHandler serves the project overview: projects, members, clients and catalog lookups.
type ProjectHandler struct {
	projects repository.ProjectRepositoryInterface
	members  repository.MemberRepositoryInterface
	catalog  repository.CatalogRepositoryInterface
	issues   repository.IssueRepositoryInterface
	log      *slog.Logger
}

func NewProjectHandler(
	projects repository.ProjectRepositoryInterface,
	members repository.MemberRepositoryInterface,
	catalog repository.CatalogRepositoryInterface,
	issues repository.IssueRepositoryInterface,
	logger *slog.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		members:  members,
		catalog:  catalog,
		issues:   issues,
		log:      logger,
	}
}

type memberRequest struct {
	UserID      uuid.UUID         `json:"user_id"`
	ProjectRole model.ProjectRole `json:"project_role"`
}

// List
// @Summary  Projects visible to the caller
// @Tags     Projects
// @Security BearerAuth
// @Produce  json
// @Success  200 {array}  model.Project
// @Failure  401,502 {object} ErrorResponse
// @Router   /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects := directory.NewProjects(h.projects, h.log)
	if err := projects.Load(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to load projects")
		return
	}
	c.JSON(http.StatusOK, projects.List())
}

// Create
// @Summary  Create a project; the key is upper-cased
// @Tags     Projects
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    request body model.NewProject true "Project"
// @Success  201 {object} model.Project
// @Failure  400,403,422,502 {object} ErrorResponse
// @Router   /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req model.NewProject
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	projects := directory.NewProjects(h.projects, h.log)
	created, err := projects.Create(c.Request.Context(), req)
	if created == nil {
		respondError(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update
// @Summary  Edit a project's overview fields
// @Tags     Projects
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id      path string             true "Project ID"
// @Param    request body model.ProjectPatch true "Fields"
// @Success  200 {object} model.Project
// @Failure  400,403,404,422,502 {object} ErrorResponse
// @Router   /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	var req model.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	projects := directory.NewProjects(h.projects, h.log)
	updated, err := projects.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Members
// @Summary  Members of a project
// @Tags     Projects
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "Project ID"
// @Success  200 {array}  model.ProjectMember
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /projects/{id}/members [get]
func (h *ProjectHandler) Members(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	members := directory.NewMembers(h.members, id, h.log)
	if err := members.Load(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to load members")
		return
	}
	c.JSON(http.StatusOK, members.List())
}

// AddMember
// @Summary  Grant a user a role in the project
// @Tags     Projects
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id      path string        true "Project ID"
// @Param    request body memberRequest true "Member"
// @Success  201 {array}  model.ProjectMember
// @Failure  400,403,422,502 {object} ErrorResponse
// @Router   /projects/{id}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	members := directory.NewMembers(h.members, id, h.log)
	if err := members.Add(c.Request.Context(), req.UserID, req.ProjectRole); err != nil {
		respondError(c, err, "Failed to add member")
		return
	}
	c.JSON(http.StatusCreated, members.List())
}

// RemoveMember
// @Summary  Revoke a user's membership
// @Tags     Projects
// @Security BearerAuth
// @Param    id      path string true "Project ID"
// @Param    user_id path string true "User ID"
// @Success  204
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /projects/{id}/members/{user_id} [delete]
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "user_id", "Invalid user ID format")
	if !ok {
		return
	}
	members := directory.NewMembers(h.members, id, h.log)
	if err := members.Remove(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

// WorkItems
// @Summary  Issues of the project assigned to the caller
// @Tags     Projects
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "Project ID"
// @Success  200 {array}  model.Issue
// @Failure  400,401,403,502 {object} ErrorResponse
// @Router   /projects/{id}/work-items [get]
func (h *ProjectHandler) WorkItems(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	me, err := uuid.Parse(claims.Subject)
	if err != nil {
		badRequest(c, "Token subject is not a user ID")
		return
	}
	items, err := directory.WorkItems(c.Request.Context(), h.issues, id, me)
	if err != nil {
		respondError(c, err, "Failed to load tasks")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Sprints
// @Summary  Sprints of a project
// @Tags     Catalog
// @Security BearerAuth
// @Produce  json
// @Param    id    path  string true  "Project ID"
// @Param    state query string false "planned, active or closed"
// @Success  200 {array}  model.Sprint
// @Failure  400,403,502 {object} ErrorResponse
// @Router   /projects/{id}/sprints [get]
func (h *ProjectHandler) Sprints(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	sprints, err := h.catalog.Sprints(c.Request.Context(), id, c.Query("state"))
	if err != nil {
		respondError(c, err, "Failed to load sprints")
		return
	}
	c.JSON(http.StatusOK, sprints)
}

// Releases
// @Summary  Releases of a project
// @Tags     Catalog
// @Security BearerAuth
// @Produce  json
// @Param    id     path  string true  "Project ID"
// @Param    active query bool   false "Only active releases"
// @Success  200 {array}  model.Release
// @Failure  400,403,502 {object} ErrorResponse
// @Router   /projects/{id}/releases [get]
func (h *ProjectHandler) Releases(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	releases, err := h.catalog.Releases(c.Request.Context(), id, c.Query("active") == "true")
	if err != nil {
		respondError(c, err, "Failed to load releases")
		return
	}
	c.JSON(http.StatusOK, releases)
}

// IssueTypes
// @Summary  Issue type taxonomy
// @Tags     Catalog
// @Security BearerAuth
// @Produce  json
// @Success  200 {array}  model.IssueType
// @Failure  502 {object} ErrorResponse
// @Router   /issue-types [get]
func (h *ProjectHandler) IssueTypes(c *gin.Context) {
	types, err := h.catalog.IssueTypes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load issue types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// Clients
// @Summary  Customer records
// @Tags     Clients
// @Security BearerAuth
// @Produce  json
// @Success  200 {array}  model.Client
// @Failure  403,502 {object} ErrorResponse
// @Router   /clients [get]
func (h *ProjectHandler) Clients(c *gin.Context) {
	clients := directory.NewClients(h.catalog, h.log)
	if err := clients.Load(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to load clients")
		return
	}
	c.JSON(http.StatusOK, clients.List())
}

// CreateClient
// @Summary  Create a customer record
// @Tags     Clients
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    request body model.NewClient true "Client"
// @Success  201 {object} model.Client
// @Failure  400,403,422,502 {object} ErrorResponse
// @Router   /clients [post]
func (h *ProjectHandler) CreateClient(c *gin.Context) {
	var req model.NewClient
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	clients := directory.NewClients(h.catalog, h.log)
	created, err := clients.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create client")
		return
	}
	c.JSON(http.StatusCreated, created)
}
