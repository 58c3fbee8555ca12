package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issueboard/internal/access"
	"issueboard/internal/board"
	"issueboard/internal/directory"
	"issueboard/internal/export"
	"issueboard/internal/model"
	"issueboard/internal/notify"
	"issueboard/internal/repository"
)

type ViewHandler struct {
	views    *board.Registry
	projects repository.ProjectRepositoryInterface
	catalog  repository.CatalogRepositoryInterface
	policy   *access.Policy
	location *time.Location
	log      *slog.Logger
}

func NewViewHandler(
	views *board.Registry,
	projects repository.ProjectRepositoryInterface,
	catalog repository.CatalogRepositoryInterface,
	policy *access.Policy,
	location *time.Location,
	logger *slog.Logger,
) *ViewHandler {
	return &ViewHandler{
		views:    views,
		projects: projects,
		catalog:  catalog,
		policy:   policy,
		location: location,
		log:      logger,
	}
}

// OpenViewRequest opens a board on a project, optionally narrowed to a sprint.
type OpenViewRequest struct {
	ProjectID    string  `json:"project_id" binding:"required,uuid"`
	SprintID     *string `json:"sprint_id" binding:"omitempty,uuid"`
	ActiveSprint bool    `json:"active_sprint"`
	AssigneeID   *string `json:"assignee_id" binding:"omitempty,uuid"`
}

type ViewResponse struct {
	ViewID       uuid.UUID           `json:"view_id"`
	Scope        board.Scope         `json:"scope"`
	Capabilities access.Capabilities `json:"capabilities"`
	CanAssign    bool                `json:"can_assign"`
}

// BoardResponse is everything a renderer needs for one frame of the board.
type BoardResponse struct {
	ViewID       uuid.UUID            `json:"view_id"`
	Scope        board.Scope          `json:"scope"`
	Board        board.View           `json:"board"`
	Loaded       bool                 `json:"loaded"`
	Loading      bool                 `json:"loading"`
	Pending      []uuid.UUID          `json:"pending"`
	LastError    string               `json:"last_error,omitempty"`
	Capabilities access.Capabilities  `json:"capabilities"`
	CanAssign    bool                 `json:"can_assign"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignRequest sets the assignee; a null or absent id unassigns.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

type ExportPreview struct {
	Summary  string       `json:"summary"`
	FileName string       `json:"file_name"`
	Header   []string     `json:"header"`
	Rows     []export.Row `json:"rows"`
}

func parseOptionalUUID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}

// Open
// @Summary  Open a board view
// @Tags     Views
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    request body OpenViewRequest true "Board scope"
// @Success  201 {object} ViewResponse
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /views [post]
func (h *ViewHandler) Open(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var req OpenViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	ctx := c.Request.Context()
	projectID := uuid.MustParse(req.ProjectID)

	projects := directory.NewProjects(h.projects, h.log)
	if err := projects.Load(ctx); err != nil {
		respondError(c, err, "Failed to load projects")
		return
	}
	project, err := projects.Find(projectID.String())
	if err != nil {
		respondError(c, err, "")
		return
	}

	scope := board.Scope{
		ProjectID:  project.ID,
		ProjectKey: project.Key,
		SprintID:   parseOptionalUUID(req.SprintID),
		AssigneeID: parseOptionalUUID(req.AssigneeID),
	}
	if req.ActiveSprint && scope.SprintID == nil {
		if scope, err = board.ResolveActiveSprint(ctx, h.catalog, scope); err != nil {
			respondError(c, err, "Failed to load sprints")
			return
		}
	}

	caps := h.policy.Resolve(model.Role(claims.Role))
	s, err := h.views.Open(ctx, claims.Subject, scope, caps)
	if err != nil {
		respondError(c, err, "Failed to load tasks")
		return
	}

	c.JSON(http.StatusCreated, ViewResponse{
		ViewID:       s.ID,
		Scope:        s.Controller.Scope(),
		Capabilities: s.Capabilities,
		CanAssign:    s.CanAssign,
	})
}

// Close
// @Summary  Close a board view
// @Tags     Views
// @Security BearerAuth
// @Param    id path string true "View ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /views/{id} [delete]
func (h *ViewHandler) Close(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Invalid view ID format")
	if !ok {
		return
	}
	if err := h.views.Close(id, claims.Subject); err != nil {
		respondError(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ViewHandler) session(c *gin.Context) (*board.Session, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return nil, false
	}
	id, ok := uuidParam(c, "id", "Invalid view ID format")
	if !ok {
		return nil, false
	}
	s, err := h.views.Get(id, claims.Subject)
	if err != nil {
		respondError(c, err, "")
		return nil, false
	}
	return s, true
}

func filterFromQuery(c *gin.Context) (board.Filter, bool) {
	f := board.Filter{Status: c.DefaultQuery("status", board.StatusAll), Search: c.Query("q")}
	if f.Status != board.StatusAll {
		if _, err := model.ParseStatus(f.Status); err != nil {
			badRequest(c, "Invalid status filter")
			return f, false
		}
	}
	return f, true
}

// Board
// @Summary  Filtered, grouped board of a view
// @Tags     Views
// @Security BearerAuth
// @Produce  json
// @Param    id     path  string true  "View ID"
// @Param    status query string false "to_do, in_progress, in_review, done or all"
// @Param    q      query string false "Search in summary and description"
// @Success  200 {object} BoardResponse
// @Failure  400,404 {object} ErrorResponse
// @Router   /views/{id}/board [get]
func (h *ViewHandler) Board(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	f, ok := filterFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.boardResponse(s, f))
}

func (h *ViewHandler) boardResponse(s *board.Session, f board.Filter) BoardResponse {
	snap := s.Controller.Snapshot()
	resp := BoardResponse{
		ViewID:       s.ID,
		Scope:        snap.Scope,
		Board:        board.NewView(snap.Issues, f),
		Loaded:       snap.Loaded,
		Loading:      snap.Loading,
		Pending:      snap.Pending,
		LastError:    snap.LastError,
		Capabilities: s.Capabilities,
		CanAssign:    s.CanAssign,
	}
	if n, ok := s.Notifier.Current(); ok {
		resp.Notification = &n
	}
	return resp
}

// Refresh
// @Summary  Reload the view's issues
// @Tags     Views
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "View ID"
// @Success  200 {object} BoardResponse
// @Failure  403,404,502 {object} ErrorResponse
// @Router   /views/{id}/refresh [post]
func (h *ViewHandler) Refresh(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Controller.Refresh(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to load tasks")
		return
	}
	c.JSON(http.StatusOK, h.boardResponse(s, board.Filter{}))
}

// ChangeStatus
// @Summary  Move an issue to another status
// @Tags     Issues
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id       path string        true "View ID"
// @Param    issue_id path string        true "Issue ID"
// @Param    request  body StatusRequest true "Target status"
// @Success  200 {object} BoardResponse
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /views/{id}/issues/{issue_id}/status [put]
func (h *ViewHandler) ChangeStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	issueID, ok := uuidParam(c, "issue_id", "Invalid issue ID format")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := s.Controller.ChangeStatus(c.Request.Context(), issueID, model.Status(req.Status)); err != nil {
		respondError(c, err, "Failed to update task status")
		return
	}
	c.JSON(http.StatusOK, h.boardResponse(s, board.Filter{}))
}

// Assign
// @Summary  Assign or unassign an issue
// @Tags     Issues
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id       path string        true "View ID"
// @Param    issue_id path string        true "Issue ID"
// @Param    request  body AssignRequest true "Assignee, null to unassign"
// @Success  200 {object} BoardResponse
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /views/{id}/issues/{issue_id}/assignee [put]
func (h *ViewHandler) Assign(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	issueID, ok := uuidParam(c, "issue_id", "Invalid issue ID format")
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	raw := ""
	if req.AssigneeID != nil {
		raw = *req.AssigneeID
	}
	assignee, err := board.ParseAssignee(raw)
	if err != nil {
		badRequest(c, "Invalid assignee ID format")
		return
	}
	if err := s.Controller.Assign(c.Request.Context(), issueID, assignee); err != nil {
		respondError(c, err, "Failed to assign issue")
		return
	}
	c.JSON(http.StatusOK, h.boardResponse(s, board.Filter{}))
}

// Edit
// @Summary  Save the full field set of an issue
// @Tags     Issues
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id       path string            true "View ID"
// @Param    issue_id path string            true "Issue ID"
// @Param    request  body model.IssueFields true "Issue fields"
// @Success  200 {object} model.Issue
// @Failure  400,403,404,422,502 {object} ErrorResponse
// @Router   /views/{id}/issues/{issue_id} [put]
func (h *ViewHandler) Edit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	issueID, ok := uuidParam(c, "issue_id", "Invalid issue ID format")
	if !ok {
		return
	}
	var fields model.IssueFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	updated, err := s.Controller.Edit(c.Request.Context(), issueID, fields)
	if err != nil {
		respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Create
// @Summary  Create an issue in the view's project
// @Tags     Issues
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id      path string          true "View ID"
// @Param    request body model.NewIssue  true "Issue"
// @Success  201 {object} model.Issue
// @Failure  400,403,404,422,502 {object} ErrorResponse
// @Router   /views/{id}/issues [post]
func (h *ViewHandler) Create(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req model.NewIssue
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.ProjectID = s.Controller.Scope().ProjectID
	created, err := s.Controller.Create(c.Request.Context(), req)
	if err != nil && created == nil {
		respondError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ViewHandler) exportRows(c *gin.Context) (*board.Session, board.Filter, []export.Row, bool) {
	s, ok := h.session(c)
	if !ok {
		return nil, board.Filter{}, nil, false
	}
	f, ok := filterFromQuery(c)
	if !ok {
		return nil, f, nil, false
	}
	issues := board.Apply(s.Controller.Snapshot().Issues, f)
	return s, f, export.Project(issues, h.location), true
}

// ExportPreview
// @Summary  Rows and confirmation text of an export
// @Tags     Export
// @Security BearerAuth
// @Produce  json
// @Param    id     path  string true  "View ID"
// @Param    status query string false "Status filter"
// @Param    q      query string false "Search text"
// @Success  200 {object} ExportPreview
// @Failure  400,404 {object} ErrorResponse
// @Router   /views/{id}/export/preview [get]
func (h *ViewHandler) ExportPreview(c *gin.Context) {
	s, f, rows, ok := h.exportRows(c)
	if !ok {
		return
	}
	key := s.Controller.Scope().ProjectKey
	c.JSON(http.StatusOK, ExportPreview{
		Summary:  export.Summary(len(rows), key, f),
		FileName: export.FileName(key),
		Header:   export.Header,
		Rows:     rows,
	})
}

// Export
// @Summary  Download the filtered tasks
// @Tags     Export
// @Security BearerAuth
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce  text/csv
// @Param    id     path  string true  "View ID"
// @Param    status query string false "Status filter"
// @Param    q      query string false "Search text"
// @Param    format query string false "xlsx (default) or csv"
// @Success  200 {file} binary
// @Failure  400,404 {object} ErrorResponse
// @Router   /views/{id}/export [get]
func (h *ViewHandler) Export(c *gin.Context) {
	s, _, rows, ok := h.exportRows(c)
	if !ok {
		return
	}
	name := export.FileName(s.Controller.Scope().ProjectKey)

	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := export.WriteXLSX(c.Writer, rows); err != nil {
			h.log.Error("xlsx export failed", "view_id", s.ID, "error", err)
		}
	case "csv":
		name = name[:len(name)-len(".xlsx")] + ".csv"
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, rows); err != nil {
			h.log.Error("csv export failed", "view_id", s.ID, "error", err)
		}
	default:
		badRequest(c, "Unsupported export format")
	}
}
