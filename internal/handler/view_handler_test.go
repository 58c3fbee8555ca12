package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"issueboard/internal/handler"
	"issueboard/internal/model"
	"issueboard/internal/notify"
)

func TestOpenView_ReturnsScopeAndCapabilities(t *testing.T) {
	// Arrange
	g := newGateway(t)

	// Act
	resp := g.do(http.MethodPost, "/views", gin.H{"project_id": g.project.String()})

	// Assert
	require.Equal(t, http.StatusCreated, resp.Code)
	view := decode[handler.ViewResponse](t, resp)
	assert.NotEqual(t, uuid.Nil, view.ViewID)
	assert.Equal(t, g.project, view.Scope.ProjectID)
	assert.Equal(t, "PROJ", view.Scope.ProjectKey)
	assert.True(t, view.Capabilities.AssignIssues)
	assert.True(t, view.Capabilities.ChangeStatus)
	assert.False(t, view.Capabilities.ManageUsers)
	assert.True(t, view.CanAssign)
}

func TestOpenView_UnknownProject(t *testing.T) {
	g := newGateway(t)

	resp := g.do(http.MethodPost, "/views", gin.H{"project_id": uuid.NewString()})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Project not found")
}

func TestOpenView_InvalidBody(t *testing.T) {
	g := newGateway(t)

	resp := g.do(http.MethodPost, "/views", gin.H{"project_id": "PROJ"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, g.backend.Requests())
}

func TestOpenView_LoadFailureIsNotRegistered(t *testing.T) {
	g := newGateway(t)
	g.backend.Fail(http.MethodGet, "/api/jira/issues", http.StatusInternalServerError, "")

	resp := g.do(http.MethodPost, "/views", gin.H{"project_id": g.project.String()})

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), "Failed to load tasks")
	assert.Equal(t, 0, g.views.Len())
}

func TestBoard_GroupsAndFilters(t *testing.T) {
	// Arrange
	g := newGateway(t)
	id := g.openView(t)

	// Act
	resp := g.do(http.MethodGet, "/views/"+id.String()+"/board?status=to_do&q=LOGIN", nil)

	// Assert
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.BoardResponse](t, resp)
	assert.True(t, body.Loaded)
	assert.Equal(t, 1, body.Board.Matched)
	assert.Equal(t, 3, body.Board.Total)
	require.Len(t, body.Board.Columns, 4)
	require.Len(t, body.Board.Columns[0].Issues, 1)
	assert.Equal(t, "PROJ-1", body.Board.Columns[0].Issues[0].Key)
	assert.Equal(t, 0, body.Board.Counts[model.StatusDone])
}

func TestBoard_InvalidStatusFilter(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)

	resp := g.do(http.MethodGet, "/views/"+id.String()+"/board?status=blocked", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid status filter")
}

func TestView_BelongsToItsOwner(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	stranger := accessToken(uuid.NewString(), model.RoleAdmin)

	resp := g.doAs(stranger, http.MethodGet, "/views/"+id.String()+"/board", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = g.doAs(stranger, http.MethodDelete, "/views/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, 1, g.views.Len())
}

func TestCloseView(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)

	resp := g.do(http.MethodDelete, "/views/"+id.String(), nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = g.do(http.MethodGet, "/views/"+id.String()+"/board", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "View not found")
}

func TestChangeStatus_MovesIssue(t *testing.T) {
	// Arrange
	g := newGateway(t)
	id := g.openView(t)
	issue := g.issues["PROJ-1"]

	// Act
	resp := g.do(http.MethodPut, "/views/"+id.String()+"/issues/"+issue.String()+"/status", gin.H{"status": "in_review"})

	// Assert
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[handler.BoardResponse](t, resp)
	assert.Empty(t, body.Board.Columns[0].Issues)
	require.Len(t, body.Board.Columns[2].Issues, 1)
	assert.Equal(t, issue, body.Board.Columns[2].Issues[0].ID)
	require.NotNil(t, body.Notification)
	assert.Equal(t, notify.KindSuccess, body.Notification.Kind)
	assert.Equal(t, "Task status updated", body.Notification.Message)
	assert.Empty(t, body.Pending)
}

func TestChangeStatus_ForbiddenKeepsBoard(t *testing.T) {
	// Arrange
	g := newGateway(t)
	id := g.openView(t)
	issue := g.issues["PROJ-2"]
	g.backend.Fail(http.MethodPut, "/api/jira/issues/"+issue.String(), http.StatusForbidden, "Only assignees can move this issue")

	// Act
	resp := g.do(http.MethodPut, "/views/"+id.String()+"/issues/"+issue.String()+"/status", gin.H{"status": "done"})

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Only assignees can move this issue")

	board := decode[handler.BoardResponse](t, g.do(http.MethodGet, "/views/"+id.String()+"/board", nil))
	require.Len(t, board.Board.Columns[1].Issues, 1)
	assert.Equal(t, issue, board.Board.Columns[1].Issues[0].ID)
	require.NotNil(t, board.Notification)
	assert.Equal(t, "Failed to update task status", board.Notification.Message)
}

func TestChangeStatus_RejectedLocally(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	base := "/views/" + id.String() + "/issues/"
	before := len(g.backend.Requests())

	resp := g.do(http.MethodPut, base+g.issues["PROJ-1"].String()+"/status", gin.H{"status": "blocked"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = g.do(http.MethodPut, base+uuid.NewString()+"/status", gin.H{"status": "done"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Issue not found")

	resp = g.do(http.MethodPut, base+"not-a-uuid/status", gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	assert.Len(t, g.backend.Requests(), before)
}

func TestAssign_AndUnassign(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	path := "/views/" + id.String() + "/issues/" + g.issues["PROJ-2"].String() + "/assignee"

	resp := g.do(http.MethodPut, path, gin.H{"assignee_id": g.userID.String()})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	is, _ := g.backend.Issue(g.issues["PROJ-2"])
	require.NotNil(t, is.AssigneeID)
	assert.Equal(t, g.userID, *is.AssigneeID)

	resp = g.do(http.MethodPut, path, gin.H{"assignee_id": nil})
	require.Equal(t, http.StatusOK, resp.Code)
	is, _ = g.backend.Issue(g.issues["PROJ-2"])
	assert.Nil(t, is.AssigneeID)

	resp = g.do(http.MethodPut, path, gin.H{"assignee_id": "someone"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEdit_ValidationErrorsListFields(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	points := 500

	resp := g.do(http.MethodPut, "/views/"+id.String()+"/issues/"+g.issues["PROJ-1"].String(), model.IssueFields{
		Summary:     "  ",
		StoryPoints: &points,
	})

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	body := decode[handler.ErrorResponse](t, resp)
	assert.Equal(t, "is required", body.Fields["summary"])
	assert.Equal(t, "must be at most 100", body.Fields["story_points"])
}

func TestEdit_StoresServerVersion(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	typeID := uuid.New()

	resp := g.do(http.MethodPut, "/views/"+id.String()+"/issues/"+g.issues["PROJ-1"].String(), model.IssueFields{
		IssueTypeID:      &typeID,
		Summary:          "Login bug on Safari 17",
		Status:           model.StatusInProgress,
		InternalPriority: "P1",
		Labels:           []string{"web"},
	})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[model.Issue](t, resp)
	assert.Equal(t, "Login bug on Safari 17", updated.Summary)
	board := decode[handler.BoardResponse](t, g.do(http.MethodGet, "/views/"+id.String()+"/board?status=in_progress", nil))
	assert.Equal(t, 2, board.Board.Matched)
}

func TestCreate_AddsToBoard(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	typeID := uuid.New()

	resp := g.do(http.MethodPost, "/views/"+id.String()+"/issues", model.NewIssue{IssueFields: model.IssueFields{
		IssueTypeID: &typeID,
		Summary:     "Dark mode",
	}})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[model.Issue](t, resp)
	assert.Equal(t, g.project, created.ProjectID)
	board := decode[handler.BoardResponse](t, g.do(http.MethodGet, "/views/"+id.String()+"/board", nil))
	assert.Equal(t, 4, board.Board.Total)
}

func TestExportPreview(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)

	resp := g.do(http.MethodGet, "/views/"+id.String()+"/export/preview?status=done", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	preview := decode[handler.ExportPreview](t, resp)
	assert.Equal(t, "Exporting 1 task for project PROJ with status Completed.", preview.Summary)
	assert.Equal(t, "tasks_PROJ.xlsx", preview.FileName)
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, "PROJ-3", preview.Rows[0].Key)
}

func TestExport_XLSXAttachment(t *testing.T) {
	// Arrange
	g := newGateway(t)
	id := g.openView(t)

	// Act
	resp := g.do(http.MethodGet, "/views/"+id.String()+"/export", nil)

	// Assert
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, `attachment; filename="tasks_PROJ.xlsx"`, resp.Header().Get("Content-Disposition"))
	f, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Issue Key", rows[0][0])
	assert.Equal(t, "PROJ-1", rows[1][0])
}

func TestExport_CSVAndUnknownFormat(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)

	resp := g.do(http.MethodGet, "/views/"+id.String()+"/export?format=csv&q=dashboard", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, `attachment; filename="tasks_PROJ.csv"`, resp.Header().Get("Content-Disposition"))
	assert.Contains(t, resp.Body.String(), "PROJ-2")
	assert.NotContains(t, resp.Body.String(), "PROJ-1")

	resp = g.do(http.MethodGet, "/views/"+id.String()+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRefresh_PicksUpBackendChanges(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	g.backend.AddIssue(model.Issue{ID: uuid.New(), Key: "PROJ-9", ProjectID: g.project, Summary: "Added elsewhere", Status: model.StatusToDo})

	resp := g.do(http.MethodPost, "/views/"+id.String()+"/refresh", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.BoardResponse](t, resp)
	assert.Equal(t, 4, body.Board.Total)
}
