package repository_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"issueboard/internal/auth"
	"issueboard/internal/model"
	"issueboard/internal/repository"
	"issueboard/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIssue(projectID uuid.UUID, key string, status model.Status) model.Issue {
	return model.Issue{
		ID:               uuid.New(),
		Key:              key,
		ProjectID:        projectID,
		Summary:          key + " summary",
		Status:           status,
		InternalPriority: model.PriorityP3,
		Labels:           []string{},
		CreatedAt:        time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestIssueRepository_ListFiltersByProjectAndSprint(t *testing.T) {
	// Arrange
	backend := testutil.NewBackend(t)
	projectID, otherProject, sprintID := uuid.New(), uuid.New(), uuid.New()
	inSprint := seedIssue(projectID, "PROJ-1", model.StatusToDo)
	inSprint.SprintID = &sprintID
	backend.AddIssue(inSprint)
	backend.AddIssue(seedIssue(projectID, "PROJ-2", model.StatusDone))
	backend.AddIssue(seedIssue(otherProject, "OTHER-1", model.StatusDone))
	repo := repository.NewIssueRepository(backend.Client())

	// Act
	all, err := repo.List(context.Background(), repository.IssueFilter{ProjectID: &projectID})
	require.NoError(t, err)
	sprintOnly, err := repo.List(context.Background(), repository.IssueFilter{ProjectID: &projectID, SprintID: &sprintID})
	require.NoError(t, err)

	// Assert
	assert.Len(t, all, 2)
	assert.Equal(t, "PROJ-1", all[0].Key)
	assert.Equal(t, "PROJ-2", all[1].Key)
	require.Len(t, sprintOnly, 1)
	assert.Equal(t, inSprint.ID, sprintOnly[0].ID)
}

func TestIssueRepository_SetAssigneeSendsNullToUnassign(t *testing.T) {
	// Arrange
	backend := testutil.NewBackend(t)
	projectID, userID := uuid.New(), uuid.New()
	backend.Users = []model.User{{ID: userID, Email: "dev@example.com", Role: model.RoleTeamMember, Active: true}}
	is := seedIssue(projectID, "PROJ-1", model.StatusToDo)
	backend.AddIssue(is)
	repo := repository.NewIssueRepository(backend.Client())

	// Act + Assert
	require.NoError(t, repo.SetAssignee(context.Background(), is.ID, &userID))
	stored, _ := backend.Issue(is.ID)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, userID, *stored.AssigneeID)
	assert.Equal(t, "dev@example.com", stored.AssigneeEmail())

	require.NoError(t, repo.SetAssignee(context.Background(), is.ID, nil))
	stored, _ = backend.Issue(is.ID)
	assert.Nil(t, stored.AssigneeID)
}

func TestClient_DecodesServerErrorVerbatim(t *testing.T) {
	// Arrange
	backend := testutil.NewBackend(t)
	is := seedIssue(uuid.New(), "PROJ-1", model.StatusToDo)
	backend.AddIssue(is)
	backend.Fail(http.MethodPut, "/api/jira/issues/"+is.ID.String(), http.StatusForbidden, "Only team leaders can assign issues")
	repo := repository.NewIssueRepository(backend.Client())

	// Act
	err := repo.SetStatus(context.Background(), is.ID, model.StatusDone)

	// Assert
	require.Error(t, err)
	assert.True(t, repository.IsForbidden(err))
	assert.False(t, repository.IsValidation(err))
	msg, ok := repository.ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Only team leaders can assign issues", msg)
}

func TestClient_ValidationError(t *testing.T) {
	backend := testutil.NewBackend(t)
	is := seedIssue(uuid.New(), "PROJ-1", model.StatusToDo)
	backend.AddIssue(is)
	repo := repository.NewIssueRepository(backend.Client())

	err := repo.SetStatus(context.Background(), is.ID, model.Status("blocked"))

	assert.True(t, repository.IsValidation(err))
	msg, _ := repository.ServerMessage(err)
	assert.Equal(t, "Invalid status", msg)
}

func TestClient_TransportFailure(t *testing.T) {
	backend := testutil.NewBackend(t)
	projectID := uuid.New()
	backend.Fail(http.MethodGet, "/api/jira/issues", testutil.DropConnection, "")
	repo := repository.NewIssueRepository(backend.Client())

	_, err := repo.List(context.Background(), repository.IssueFilter{ProjectID: &projectID})

	assert.ErrorIs(t, err, repository.ErrTransport)
	_, ok := repository.ServerMessage(err)
	assert.False(t, ok)
}

func TestClient_RejectsWrongToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := repository.NewClient(backend.URL(), auth.StaticToken("stale"), nil)

	_, err := repository.NewUserRepository(client).Current(context.Background())

	assert.True(t, repository.IsUnauthorized(err))
}

func TestClient_NoToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := repository.NewClient(backend.URL(), auth.ContextToken{}, nil)

	_, err := repository.NewProjectRepository(client).List(context.Background())

	assert.True(t, errors.Is(err, repository.ErrNoToken))
	assert.Empty(t, backend.Requests())
}

func TestCatalogRepository_ActiveSprint(t *testing.T) {
	// Arrange
	backend := testutil.NewBackend(t)
	projectID := uuid.New()
	active := model.Sprint{ID: uuid.New(), ProjectID: projectID, Name: "Sprint 4", State: model.SprintStateActive}
	backend.Sprints = []model.Sprint{
		{ID: uuid.New(), ProjectID: projectID, Name: "Sprint 3", State: "closed"},
		active,
	}
	repo := repository.NewCatalogRepository(backend.Client())

	// Act
	got, err := repo.ActiveSprint(context.Background(), projectID)
	require.NoError(t, err)
	none, err := repo.ActiveSprint(context.Background(), uuid.New())
	require.NoError(t, err)

	// Assert
	require.NotNil(t, got)
	assert.Equal(t, active.ID, got.ID)
	assert.Nil(t, none)
}

func TestUserRepository_AdminChanges(t *testing.T) {
	backend := testutil.NewBackend(t)
	userID := uuid.New()
	backend.Users = []model.User{{ID: userID, Email: "u@example.com", Role: model.RoleUser, Active: true}}
	repo := repository.NewUserRepository(backend.Client())

	require.NoError(t, repo.SetRole(context.Background(), userID, model.RoleTeamMember))
	require.NoError(t, repo.SetActive(context.Background(), userID, false))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleTeamMember, users[0].Role)
	assert.False(t, users[0].Active)
}
