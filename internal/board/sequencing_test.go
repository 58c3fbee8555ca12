package board_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issueboard/internal/board"
	"issueboard/internal/model"
	"issueboard/internal/notify"
	"issueboard/internal/repository"
)

type listReply struct {
	issues []model.Issue
	err    error
}

// heldIssues parks every List call until the test answers it, so reload
// completions can be delivered in any order.
type heldIssues struct {
	repository.IssueRepositoryInterface
	calls chan chan listReply
}

func (h *heldIssues) List(ctx context.Context, filter repository.IssueFilter) ([]model.Issue, error) {
	reply := make(chan listReply)
	h.calls <- reply
	r := <-reply
	return r.issues, r.err
}

func issuesNamed(summaries ...string) []model.Issue {
	out := make([]model.Issue, len(summaries))
	for i, s := range summaries {
		out[i] = model.Issue{ID: uuid.New(), Summary: s, Status: model.StatusToDo}
	}
	return out
}

func summaries(s board.Snapshot) []string {
	out := make([]string, len(s.Issues))
	for i, is := range s.Issues {
		out[i] = is.Summary
	}
	return out
}

func startLoad(ctrl *board.Controller) <-chan error {
	done := make(chan error, 1)
	go func() { done <- ctrl.Load(context.Background()) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("load did not complete")
	}
}

func newHeld(t *testing.T) (*heldIssues, *board.Controller) {
	h := &heldIssues{calls: make(chan chan listReply)}
	n := notify.New(time.Hour, time.Hour)
	t.Cleanup(n.Close)
	return h, board.New(h, n, quiet, board.Scope{ProjectID: uuid.New()})
}

func TestLoad_LaterIssuedReloadWins(t *testing.T) {
	// Arrange
	h, ctrl := newHeld(t)
	first := startLoad(ctrl)
	firstReply := <-h.calls
	second := startLoad(ctrl)
	secondReply := <-h.calls

	// Act: the later-issued reload answers first, the earlier one arrives stale
	secondReply <- listReply{issues: issuesNamed("new")}
	waitDone(t, second)
	firstReply <- listReply{issues: issuesNamed("old")}
	waitDone(t, first)

	// Assert
	assert.Equal(t, []string{"new"}, summaries(ctrl.Snapshot()))
}

func TestLoad_InOrderCompletionsApply(t *testing.T) {
	h, ctrl := newHeld(t)
	first := startLoad(ctrl)
	firstReply := <-h.calls
	second := startLoad(ctrl)
	secondReply := <-h.calls

	assert.True(t, ctrl.Snapshot().Loading)

	firstReply <- listReply{issues: issuesNamed("old")}
	waitDone(t, first)
	assert.Equal(t, []string{"old"}, summaries(ctrl.Snapshot()))

	secondReply <- listReply{issues: issuesNamed("new", "newer")}
	waitDone(t, second)
	snap := ctrl.Snapshot()
	assert.Equal(t, []string{"new", "newer"}, summaries(snap))
	assert.False(t, snap.Loading)
}

// editingIssues answers Update with a fixed server representation; List stays held.
type editingIssues struct {
	*heldIssues
	saved model.Issue
}

func (e *editingIssues) Update(ctx context.Context, id uuid.UUID, fields model.IssueFields) (*model.Issue, error) {
	out := e.saved
	return &out, nil
}

func TestEdit_SurvivesReloadIssuedBeforeIt(t *testing.T) {
	// Arrange
	h := &heldIssues{calls: make(chan chan listReply)}
	original := issuesNamed("old")
	saved := original[0]
	saved.Summary = "edited"
	repo := &editingIssues{heldIssues: h, saved: saved}
	n := notify.New(time.Hour, time.Hour)
	t.Cleanup(n.Close)
	ctrl := board.New(repo, n, quiet, board.Scope{ProjectID: uuid.New()})

	initial := startLoad(ctrl)
	(<-h.calls) <- listReply{issues: original}
	waitDone(t, initial)

	inFlight := startLoad(ctrl)
	inFlightReply := <-h.calls

	// Act
	typeID := uuid.New()
	_, err := ctrl.Edit(context.Background(), saved.ID, model.IssueFields{IssueTypeID: &typeID, Summary: "edited"})
	require.NoError(t, err)
	inFlightReply <- listReply{issues: original}
	waitDone(t, inFlight)

	// Assert
	assert.Equal(t, []string{"edited"}, summaries(ctrl.Snapshot()))

	// a reload issued after the edit applies normally
	next := startLoad(ctrl)
	(<-h.calls) <- listReply{issues: issuesNamed("fresh")}
	waitDone(t, next)
	assert.Equal(t, []string{"fresh"}, summaries(ctrl.Snapshot()))
}

func TestLoad_SupersededFailureIsQuiet(t *testing.T) {
	// Arrange
	h := &heldIssues{calls: make(chan chan listReply)}
	n := notify.New(time.Hour, time.Hour)
	t.Cleanup(n.Close)
	ctrl := board.New(h, n, quiet, board.Scope{ProjectID: uuid.New()})
	first := startLoad(ctrl)
	firstReply := <-h.calls
	second := startLoad(ctrl)
	secondReply := <-h.calls

	// Act
	secondReply <- listReply{issues: issuesNamed("new")}
	waitDone(t, second)
	firstReply <- listReply{err: &repository.APIError{Status: 500, Message: "boom"}}
	waitDone(t, first)

	// Assert
	snap := ctrl.Snapshot()
	assert.Equal(t, []string{"new"}, summaries(snap))
	assert.Empty(t, snap.LastError)
	_, shown := n.Current()
	assert.False(t, shown)
}
