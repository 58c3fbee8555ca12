package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"issueboard/internal/access"
	"issueboard/internal/board"
	"issueboard/internal/handler"
	"issueboard/internal/middleware"
	"issueboard/internal/model"
	"issueboard/internal/repository"
	"issueboard/internal/testutil"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// accessToken signs a token the way the backend would; the gateway only reads it.
func accessToken(subject string, role model.Role) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"exp":  jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, _ := token.SignedString([]byte("backend-secret"))
	return signed
}

type gateway struct {
	backend *testutil.Backend
	router  *gin.Engine
	views   *board.Registry
	project uuid.UUID
	issues  map[string]uuid.UUID
	token   string
	userID  uuid.UUID
}

// newGateway serves the view, comment and project routes over a fake backend seeded
// with project PROJ: PROJ-1 to_do, PROJ-2 in_progress, PROJ-3 done.
func newGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := testutil.NewBackend(t)
	project := uuid.New()
	b.Projects = []model.Project{{ID: project, Key: "PROJ", Name: "Project"}}
	g := &gateway{backend: b, project: project, issues: map[string]uuid.UUID{}, userID: b.Profile.ID}
	b.Users = []model.User{{ID: g.userID, Email: b.Profile.Email, Role: model.RoleTeamLeader, Active: true}}

	for i, seed := range []struct {
		key     string
		status  model.Status
		summary string
	}{
		{"PROJ-1", model.StatusToDo, "Login bug on Safari"},
		{"PROJ-2", model.StatusInProgress, "Dashboard layout"},
		{"PROJ-3", model.StatusDone, "Export to Excel"},
	} {
		id := uuid.New()
		b.AddIssue(model.Issue{
			ID:               id,
			Key:              seed.key,
			ProjectID:        project,
			Summary:          seed.summary,
			Status:           seed.status,
			InternalPriority: model.PriorityP3,
			Labels:           []string{},
			CreatedAt:        time.Date(2024, 3, 1+i, 9, 30, 0, 0, time.UTC),
		})
		g.issues[seed.key] = id
	}

	client := b.Client()
	issues := repository.NewIssueRepository(client)
	projects := repository.NewProjectRepository(client)
	catalog := repository.NewCatalogRepository(client)
	g.views = board.NewRegistry(issues, repository.NewUserRepository(client), quiet, time.Hour, time.Hour)
	t.Cleanup(g.views.CloseAll)

	views := handler.NewViewHandler(g.views, projects, catalog, access.Default(), time.UTC, quiet)
	notifications := handler.NewNotificationHandler(g.views, nil, quiet)
	comments := handler.NewCommentHandler(repository.NewCommentRepository(client), quiet)
	projectHandler := handler.NewProjectHandler(projects, repository.NewMemberRepository(client), catalog, issues, quiet)

	r := gin.New()
	api := r.Group("/")
	api.Use(middleware.BearerAuth())
	api.POST("/views", views.Open)
	api.DELETE("/views/:id", views.Close)
	api.GET("/views/:id/board", views.Board)
	api.POST("/views/:id/refresh", views.Refresh)
	api.GET("/views/:id/notifications", notifications.Stream)
	api.POST("/views/:id/issues", views.Create)
	api.PUT("/views/:id/issues/:issue_id", views.Edit)
	api.PUT("/views/:id/issues/:issue_id/status", views.ChangeStatus)
	api.PUT("/views/:id/issues/:issue_id/assignee", views.Assign)
	api.GET("/views/:id/export", views.Export)
	api.GET("/views/:id/export/preview", views.ExportPreview)
	api.GET("/issues/:issue_id/comments", comments.List)
	api.POST("/issues/:issue_id/comments", comments.Add)
	api.GET("/projects", projectHandler.List)
	api.POST("/projects", projectHandler.Create)
	api.PUT("/projects/:id", projectHandler.Update)
	api.GET("/projects/:id/members", projectHandler.Members)
	api.POST("/projects/:id/members", projectHandler.AddMember)
	api.DELETE("/projects/:id/members/:user_id", projectHandler.RemoveMember)
	api.GET("/projects/:id/work-items", projectHandler.WorkItems)
	api.GET("/projects/:id/sprints", projectHandler.Sprints)
	api.GET("/clients", projectHandler.Clients)
	api.POST("/clients", projectHandler.CreateClient)
	g.router = r

	g.token = accessToken(g.userID.String(), model.RoleTeamLeader)
	return g
}

func (g *gateway) do(method, path string, body any) *httptest.ResponseRecorder {
	return g.doAs(g.token, method, path, body)
}

func (g *gateway) doAs(token, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	g.router.ServeHTTP(resp, req)
	return resp
}

// openView opens a board on PROJ and returns its id.
func (g *gateway) openView(t *testing.T) uuid.UUID {
	t.Helper()
	resp := g.do(http.MethodPost, "/views", gin.H{"project_id": g.project.String()})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var view handler.ViewResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	return view.ViewID
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}
