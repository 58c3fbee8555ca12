package comments_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issueboard/internal/comments"
	"issueboard/internal/model"
	"issueboard/internal/repository"
	"issueboard/internal/testutil"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newThread(t *testing.T) (*testutil.Backend, *comments.Thread, uuid.UUID) {
	t.Helper()
	b := testutil.NewBackend(t)
	issueID := uuid.New()
	b.Comments[issueID] = []model.Comment{{
		ID: uuid.New(), IssueID: issueID, AuthorID: uuid.New(), Body: "First **look**",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	th := comments.NewThread(repository.NewCommentRepository(b.Client()), issueID, quiet)
	require.NoError(t, th.Load(context.Background()))
	return b, th, issueID
}

func TestThread_AddAppendsAndReloads(t *testing.T) {
	// Arrange
	b, th, issueID := newThread(t)

	// Act
	added, err := th.Add(context.Background(), "Second")

	// Assert
	require.NoError(t, err)
	assert.True(t, added)
	got := th.Comments()
	require.Len(t, got, 2)
	assert.Equal(t, "First **look**", got[0].Body)
	assert.Equal(t, "Second", got[1].Body)
	assert.Equal(t, "lead@example.com", got[1].Author.Email)
	reqs := b.Requests()
	assert.Equal(t, "GET /api/jira/issues/"+issueID.String()+"/comments", reqs[len(reqs)-1])
}

func TestThread_BlankIgnored(t *testing.T) {
	b, th, _ := newThread(t)
	served := len(b.Requests())

	added, err := th.Add(context.Background(), "  \n\t")

	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, b.Requests(), served)
}

func TestThread_FailedLoadKeepsComments(t *testing.T) {
	b, th, issueID := newThread(t)
	b.Fail(http.MethodGet, "/api/jira/issues/"+issueID.String()+"/comments", http.StatusInternalServerError, "")

	err := th.Load(context.Background())

	assert.Error(t, err)
	assert.Len(t, th.Comments(), 1)
}

func TestThread_AddRejected(t *testing.T) {
	b, th, issueID := newThread(t)
	b.Fail(http.MethodPost, "/api/jira/issues/"+issueID.String()+"/comments", http.StatusForbidden, "Clients cannot comment here")

	_, err := th.Add(context.Background(), "hello")

	msg, ok := repository.ServerMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Clients cannot comment here", msg)
	assert.Len(t, th.Comments(), 1)
}

func TestRender(t *testing.T) {
	html, err := comments.Render("Ship it **today** ~~tomorrow~~ https://example.com")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>today</strong>")
	assert.Contains(t, html, "<del>tomorrow</del>")
	assert.Contains(t, html, `<a href="https://example.com">`)

	html, err = comments.Render("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestThread_Rendered(t *testing.T) {
	_, th, _ := newThread(t)

	r := th.Rendered()

	require.Len(t, r, 1)
	assert.Equal(t, "<p>First <strong>look</strong></p>\n", r[0].HTML)
	assert.Equal(t, "First **look**", r[0].Body)
}
