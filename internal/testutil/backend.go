// Package testutil runs an in-memory issue-tracking backend for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issueboard/internal/auth"
	"issueboard/internal/model"
	"issueboard/internal/repository"
)

// DropConnection as a failure status closes the connection without answering.
const DropConnection = -1

const Token = "test-access-token"

type failure struct {
	method  string
	path    string
	status  int
	message string
}

// Backend serves the /api endpoints from memory. Exported slices may be seeded
// before the first request; afterwards use the locking helpers.
type Backend struct {
	mu         sync.Mutex
	server     *httptest.Server
	failures   []failure
	requests   []string
	Profile    model.Profile
	Users      []model.User
	Projects   []model.Project
	Members    map[uuid.UUID][]model.ProjectMember
	Issues     []model.Issue
	Comments   map[uuid.UUID][]model.Comment
	Sprints    []model.Sprint
	Releases   []model.Release
	IssueTypes []model.IssueType
	Clients    []model.Client
	// UsersForbidden makes GET /api/users answer 403, as it does for non-privileged roles.
	UsersForbidden bool
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		Profile:  model.Profile{ID: uuid.New(), Email: "lead@example.com", Role: model.RoleTeamLeader},
		Members:  map[uuid.UUID][]model.ProjectMember{},
		Comments: map[uuid.UUID][]model.Comment{},
	}
	b.server = httptest.NewUnstartedServer(b.routes())
	// a reused connection lets net/http silently replay a dropped GET
	b.server.Config.SetKeepAlivesEnabled(false)
	b.server.Start()
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// Client returns a repository client authenticated with Token.
func (b *Backend) Client() *repository.Client {
	return repository.NewClient(b.server.URL, auth.StaticToken(Token), nil)
}

// Fail makes the next request matching method and path fail with status and message.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method, path, status, message})
}

// Requests lists "METHOD /path" for every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *Backend) AddIssue(issue model.Issue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Issues = append(b.Issues, issue)
}

func (b *Backend) Issue(id uuid.UUID) (model.Issue, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, is := range b.Issues {
		if is.ID == id {
			return is.Clone(), true
		}
	}
	return model.Issue{}, false
}

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(b.record, b.injectFailures, b.requireToken)

	r.GET("/api/user", func(c *gin.Context) { c.JSON(http.StatusOK, b.Profile) })
	r.GET("/api/users", b.listUsers)
	r.PUT("/api/admin/users/:id/role", b.setRole)
	r.PUT("/api/admin/users/:id/active", b.setActive)

	r.GET("/api/jira/projects", b.listProjects)
	r.POST("/api/jira/projects", b.createProject)
	r.PUT("/api/jira/projects/:id", b.updateProject)
	r.GET("/api/jira/projects/:id/members", b.listMembers)
	r.POST("/api/jira/projects/:id/members", b.addMember)
	r.DELETE("/api/jira/projects/:id/members/:user_id", b.removeMember)

	r.GET("/api/jira/issues", b.listIssues)
	r.POST("/api/jira/issues", b.createIssue)
	r.PUT("/api/jira/issues/:id", b.updateIssue)
	r.GET("/api/jira/issues/:id/comments", b.listComments)
	r.POST("/api/jira/issues/:id/comments", b.addComment)

	r.GET("/api/jira/issue-types", func(c *gin.Context) { b.locked(func() { c.JSON(http.StatusOK, b.IssueTypes) }) })
	r.GET("/api/jira/releases", b.listReleases)
	r.GET("/api/jira/sprints", b.listSprints)
	r.GET("/api/jira/clients", func(c *gin.Context) { b.locked(func() { c.JSON(http.StatusOK, b.Clients) }) })
	r.POST("/api/jira/clients", b.createClient)
	return r
}

func (b *Backend) locked(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

func (b *Backend) record(c *gin.Context) {
	b.locked(func() { b.requests = append(b.requests, c.Request.Method+" "+c.Request.URL.Path) })
	c.Next()
}

func (b *Backend) injectFailures(c *gin.Context) {
	var hit *failure
	b.locked(func() {
		for i, f := range b.failures {
			if f.method == c.Request.Method && f.path == c.Request.URL.Path {
				hit = &f
				b.failures = append(b.failures[:i], b.failures[i+1:]...)
				return
			}
		}
	})
	if hit == nil {
		c.Next()
		return
	}
	if hit.status == DropConnection {
		conn, _, err := c.Writer.Hijack()
		if err == nil {
			conn.Close()
		}
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(hit.status, gin.H{"error": hit.message})
}

func (b *Backend) requireToken(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.Next()
}

func (b *Backend) userRef(id uuid.UUID) *model.UserRef {
	for _, u := range b.Users {
		if u.ID == id {
			return &model.UserRef{ID: u.ID, Email: u.Email}
		}
	}
	return &model.UserRef{ID: id}
}

func (b *Backend) listUsers(c *gin.Context) {
	b.locked(func() {
		if b.UsersForbidden {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.JSON(http.StatusOK, b.Users)
	})
}

func (b *Backend) setRole(c *gin.Context) {
	var req struct {
		Role model.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}
	b.withUser(c, func(u *model.User) { u.Role = req.Role })
}

func (b *Backend) setActive(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	b.withUser(c, func(u *model.User) { u.Active = req.Active })
}

func (b *Backend) withUser(c *gin.Context, fn func(u *model.User)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}
	b.locked(func() {
		for i := range b.Users {
			if b.Users[i].ID == id {
				fn(&b.Users[i])
				c.JSON(http.StatusOK, b.Users[i])
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	})
}

func (b *Backend) listProjects(c *gin.Context) {
	b.locked(func() { c.JSON(http.StatusOK, b.Projects) })
}

func (b *Backend) createProject(c *gin.Context) {
	var req model.NewProject
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project key and name are required"})
		return
	}
	b.locked(func() {
		for _, p := range b.Projects {
			if p.Key == req.Key {
				c.JSON(http.StatusConflict, gin.H{"error": "Project key already exists"})
				return
			}
		}
		p := model.Project{ID: uuid.New(), Key: req.Key, Name: req.Name, Description: req.Description, ClientID: req.ClientID, CreatedAt: time.Now().UTC()}
		b.Projects = append(b.Projects, p)
		c.JSON(http.StatusCreated, p)
	})
}

func (b *Backend) updateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}
	var req model.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	b.locked(func() {
		for i := range b.Projects {
			if b.Projects[i].ID == id {
				b.Projects[i].Name = strings.TrimSpace(req.Name)
				b.Projects[i].Description = req.Description
				c.JSON(http.StatusOK, b.Projects[i])
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	})
}

func (b *Backend) listMembers(c *gin.Context) {
	id, _ := uuid.Parse(c.Param("id"))
	b.locked(func() { c.JSON(http.StatusOK, b.Members[id]) })
}

func (b *Backend) addMember(c *gin.Context) {
	id, _ := uuid.Parse(c.Param("id"))
	var req struct {
		UserID      uuid.UUID         `json:"user_id"`
		ProjectRole model.ProjectRole `json:"project_role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.ProjectRole.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project role"})
		return
	}
	b.locked(func() {
		m := model.ProjectMember{UserID: req.UserID, ProjectRole: req.ProjectRole}
		for _, u := range b.Users {
			if u.ID == req.UserID {
				m.Email = u.Email
				m.GlobalRole = u.Role
			}
		}
		b.Members[id] = append(b.Members[id], m)
		c.JSON(http.StatusCreated, m)
	})
}

func (b *Backend) removeMember(c *gin.Context) {
	id, _ := uuid.Parse(c.Param("id"))
	userID, _ := uuid.Parse(c.Param("user_id"))
	b.locked(func() {
		kept := b.Members[id][:0]
		for _, m := range b.Members[id] {
			if m.UserID != userID {
				kept = append(kept, m)
			}
		}
		b.Members[id] = kept
		c.Status(http.StatusNoContent)
	})
}

func (b *Backend) listIssues(c *gin.Context) {
	match := func(param string, id *uuid.UUID) bool {
		raw := c.Query(param)
		if raw == "" {
			return true
		}
		return id != nil && id.String() == raw
	}
	b.locked(func() {
		out := []model.Issue{}
		for _, is := range b.Issues {
			pid := is.ProjectID
			if match("project_id", &pid) && match("sprint_id", is.SprintID) && match("assignee_id", is.AssigneeID) {
				out = append(out, is)
			}
		}
		c.JSON(http.StatusOK, out)
	})
}

func (b *Backend) createIssue(c *gin.Context) {
	var req model.NewIssue
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Summary) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Summary is required"})
		return
	}
	b.locked(func() {
		is := model.Issue{
			ID:        uuid.New(),
			ProjectID: req.ProjectID,
			Status:    model.StatusToDo,
			CreatedAt: time.Now().UTC(),
		}
		if errMsg := b.applyFields(&is, req.IssueFields); errMsg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
			return
		}
		key := "PROJ"
		for _, p := range b.Projects {
			if p.ID == req.ProjectID {
				key = p.Key
			}
		}
		is.Key = key + "-" + strconv.Itoa(len(b.Issues)+1)
		is.ReporterID = b.Profile.ID
		b.Issues = append(b.Issues, is)
		c.JSON(http.StatusCreated, is)
	})
}

func (b *Backend) updateIssue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID format"})
		return
	}
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i := range b.Issues {
		if b.Issues[i].ID == id {
			idx = i
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}
	is := b.Issues[idx].Clone()

	if _, full := raw["summary"]; full {
		var fields model.IssueFields
		body, _ := json.Marshal(raw)
		if err := json.Unmarshal(body, &fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if errMsg := b.applyFields(&is, fields); errMsg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
			return
		}
	} else {
		if v, ok := raw["status"]; ok {
			var s string
			_ = json.Unmarshal(v, &s)
			st, err := model.ParseStatus(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
				return
			}
			is.Status = st
		}
		if v, ok := raw["assignee_id"]; ok {
			var a *uuid.UUID
			if err := json.Unmarshal(v, &a); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee"})
				return
			}
			is.AssigneeID = a
			is.Assignee = nil
			if a != nil {
				is.Assignee = b.userRef(*a)
			}
		}
	}

	b.Issues[idx] = is
	c.JSON(http.StatusOK, is)
}

// applyFields copies a full field set onto is, normalizing priorities the way the real backend does.
func (b *Backend) applyFields(is *model.Issue, f model.IssueFields) string {
	ip := model.PriorityP3
	if f.InternalPriority != "" {
		p, err := model.NormalizePriority(f.InternalPriority)
		if err != nil {
			return "Invalid internal priority"
		}
		ip = p
	}
	var cp *model.Priority
	if f.ClientPriority != nil && *f.ClientPriority != "" {
		p, err := model.NormalizePriority(*f.ClientPriority)
		if err != nil {
			return "Invalid client priority"
		}
		cp = &p
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return "Invalid status"
		}
		is.Status = f.Status
	}
	is.Summary = strings.TrimSpace(f.Summary)
	is.Description = f.Description
	is.IssueTypeID = f.IssueTypeID
	is.InternalPriority = ip
	is.ClientPriority = cp
	is.StoryPoints = f.StoryPoints
	is.Labels = f.Labels
	if is.Labels == nil {
		is.Labels = []string{}
	}
	is.DueDate = f.DueDate
	is.EstimatedDays = f.EstimatedDays
	is.ActualDays = f.ActualDays
	is.ReleaseID = f.ReleaseID
	is.ParentIssueID = f.ParentIssueID
	is.ExposedToClient = f.ExposedToClient
	is.AssigneeID = f.AssigneeID
	is.Assignee = nil
	if f.AssigneeID != nil {
		is.Assignee = b.userRef(*f.AssigneeID)
	}
	return ""
}

func (b *Backend) listComments(c *gin.Context) {
	id, _ := uuid.Parse(c.Param("id"))
	b.locked(func() {
		out := b.Comments[id]
		if out == nil {
			out = []model.Comment{}
		}
		c.JSON(http.StatusOK, out)
	})
}

func (b *Backend) addComment(c *gin.Context) {
	id, _ := uuid.Parse(c.Param("id"))
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment body is required"})
		return
	}
	b.locked(func() {
		cm := model.Comment{
			ID:        uuid.New(),
			IssueID:   id,
			AuthorID:  b.Profile.ID,
			Author:    &model.UserRef{ID: b.Profile.ID, Email: b.Profile.Email},
			Body:      req.Body,
			CreatedAt: time.Now().UTC(),
		}
		b.Comments[id] = append(b.Comments[id], cm)
		c.JSON(http.StatusCreated, cm)
	})
}

func (b *Backend) listReleases(c *gin.Context) {
	pid := c.Query("project_id")
	activeOnly := c.Query("is_active") == "true"
	b.locked(func() {
		out := []model.Release{}
		for _, r := range b.Releases {
			if r.ProjectID.String() == pid && (!activeOnly || r.IsActive) {
				out = append(out, r)
			}
		}
		c.JSON(http.StatusOK, out)
	})
}

func (b *Backend) listSprints(c *gin.Context) {
	pid := c.Query("project_id")
	state := c.Query("state")
	b.locked(func() {
		out := []model.Sprint{}
		for _, s := range b.Sprints {
			if s.ProjectID.String() == pid && (state == "" || s.State == state) {
				out = append(out, s)
			}
		}
		c.JSON(http.StatusOK, out)
	})
}

func (b *Backend) createClient(c *gin.Context) {
	var req model.NewClient
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client name is required"})
		return
	}
	b.locked(func() {
		cl := model.Client{ID: uuid.New(), Name: req.Name, Email: req.Email, Company: req.Company, Phone: req.Phone}
		b.Clients = append(b.Clients, cl)
		c.JSON(http.StatusCreated, cl)
	})
}
