// Package board keeps one view's issue collection consistent with the backend.
//
// Mutations are fire-and-confirm: nothing is written locally until the backend
// accepts the change, after which the collection is reloaded. The full edit is the
// one path that merges, and it stores the server's representation verbatim.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"issueboard/internal/model"
	"issueboard/internal/notify"
	"issueboard/internal/repository"
	"issueboard/internal/validate"
)

var ErrIssueNotFound = errors.New("issue not found")

const (
	msgStatusPending = "Updating task status..."
	msgStatusDone    = "Task status updated"
	msgStatusFailed  = "Failed to update task status"
	msgAssignPending = "Assigning task..."
	msgAssignDone    = "Task assignee updated"
	msgAssignFailed  = "Failed to assign issue"
	msgEditPending   = "Saving task..."
	msgEditDone      = "Task updated"
	msgEditFailed    = "Failed to update task"
	msgCreateDone    = "Task created"
	msgCreateFailed  = "Failed to create task"
	msgLoadFailed    = "Failed to load tasks"
)

// Notifier receives the user-visible outcome of every action.
type Notifier interface {
	Pending(message string) notify.Notification
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

// Scope selects the issues a board shows. ProjectKey is descriptive only.
type Scope struct {
	ProjectID  uuid.UUID  `json:"project_id"`
	ProjectKey string     `json:"project_key,omitempty"`
	SprintID   *uuid.UUID `json:"sprint_id,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}

func (s Scope) filter() repository.IssueFilter {
	pid := s.ProjectID
	return repository.IssueFilter{ProjectID: &pid, SprintID: s.SprintID, AssigneeID: s.AssigneeID}
}

// Snapshot is a copy of the controller state; callers may keep or modify it freely.
type Snapshot struct {
	Scope     Scope         `json:"scope"`
	Issues    []model.Issue `json:"issues"`
	Loaded    bool          `json:"loaded"`
	Loading   bool          `json:"loading"`
	Pending   []uuid.UUID   `json:"pending"`
	LastError string        `json:"last_error,omitempty"`
}

type Controller struct {
	issues   repository.IssueRepositoryInterface
	notifier Notifier
	log      *slog.Logger
	scope    Scope

	mu      sync.Mutex
	items   []model.Issue
	loaded  bool
	loading int
	issued  uint64 // generation of the most recently issued reload
	applied uint64 // generation of the collection currently held
	pending map[uuid.UUID]int
	lastErr error
}

func New(issues repository.IssueRepositoryInterface, notifier Notifier, logger *slog.Logger, scope Scope) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		issues:   issues,
		notifier: notifier,
		log:      logger.With("project_id", scope.ProjectID),
		scope:    scope,
		items:    []model.Issue{},
		pending:  make(map[uuid.UUID]int),
	}
}

func (c *Controller) Scope() Scope {
	return c.scope
}

// Load fetches the scope's issues and replaces the collection as a whole.
// A failure leaves the held collection untouched. A response, or a failure, is
// discarded when a reload issued after it, or a confirmed edit, has already applied.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	c.loading++
	c.mu.Unlock()

	list, err := c.issues.List(ctx, c.scope.filter())

	c.mu.Lock()
	c.loading--
	stale := gen <= c.applied
	if err != nil && stale {
		applied := c.applied
		c.mu.Unlock()
		c.log.Debug("ignoring failure of superseded reload", "generation", gen, "applied", applied, "error", err)
		return nil
	}
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		c.log.Warn("load issues failed", "generation", gen, "error", err)
		c.notifier.Error(validate.Message(err, msgLoadFailed))
		return fmt.Errorf("load issues: %w", err)
	}
	defer c.mu.Unlock()
	if stale {
		c.log.Debug("discarding stale reload", "generation", gen, "applied", c.applied)
		return nil
	}
	items := make([]model.Issue, len(list))
	for i := range list {
		items[i] = list[i].Clone()
	}
	c.items = items
	c.applied = gen
	c.loaded = true
	c.lastErr = nil
	return nil
}

// Refresh is the invalidate-and-reload step run after every confirmed mutation.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// ChangeStatus moves an issue to any of the four statuses once the backend confirms it.
func (c *Controller) ChangeStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("change status to %q: %w", status, model.ErrInvalidStatus)
	}
	if _, ok := c.Issue(id); !ok {
		return fmt.Errorf("change status of %s: %w", id, ErrIssueNotFound)
	}
	done := c.begin(id)
	defer done()

	c.notifier.Pending(msgStatusPending)
	if err := c.issues.SetStatus(ctx, id, status); err != nil {
		c.fail(err, "change status failed", id)
		c.notifier.Error(msgStatusFailed)
		return fmt.Errorf("change status of %s: %w", id, err)
	}
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.notifier.Success(msgStatusDone)
	return nil
}

// Assign sets or clears (nil) the assignee. A rejection shows the backend's message when it sent one.
func (c *Controller) Assign(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	if _, ok := c.Issue(id); !ok {
		return fmt.Errorf("assign %s: %w", id, ErrIssueNotFound)
	}
	done := c.begin(id)
	defer done()

	c.notifier.Pending(msgAssignPending)
	if err := c.issues.SetAssignee(ctx, id, userID); err != nil {
		c.fail(err, "assign failed", id)
		c.notifier.Error(validate.Message(err, msgAssignFailed))
		return fmt.Errorf("assign %s: %w", id, err)
	}
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.notifier.Success(msgAssignDone)
	return nil
}

// Edit submits the complete field set and replaces the held issue with what the
// backend returns, not with the submitted values.
func (c *Controller) Edit(ctx context.Context, id uuid.UUID, fields model.IssueFields) (*model.Issue, error) {
	if _, ok := c.Issue(id); !ok {
		return nil, fmt.Errorf("edit %s: %w", id, ErrIssueNotFound)
	}
	if err := validate.Issue(fields); err != nil {
		c.notifier.Error(validate.Message(err, msgEditFailed))
		return nil, err
	}
	done := c.begin(id)
	defer done()

	c.notifier.Pending(msgEditPending)
	updated, err := c.issues.Update(ctx, id, fields)
	if err != nil {
		c.fail(err, "edit failed", id)
		c.notifier.Error(validate.Message(err, msgEditFailed))
		return nil, fmt.Errorf("edit %s: %w", id, err)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == updated.ID {
			c.items[i] = updated.Clone()
			break
		}
	}
	// reloads issued before this point may predate the edit
	c.applied = c.issued
	c.lastErr = nil
	c.mu.Unlock()

	c.notifier.Success(msgEditDone)
	out := updated.Clone()
	return &out, nil
}

// Create submits a new issue in the board's project and reloads.
func (c *Controller) Create(ctx context.Context, issue model.NewIssue) (*model.Issue, error) {
	if issue.ProjectID == uuid.Nil {
		issue.ProjectID = c.scope.ProjectID
	}
	if err := validate.Issue(issue.IssueFields); err != nil {
		c.notifier.Error(validate.Message(err, msgCreateFailed))
		return nil, err
	}
	created, err := c.issues.Create(ctx, issue)
	if err != nil {
		c.fail(err, "create failed", uuid.Nil)
		c.notifier.Error(validate.Message(err, msgCreateFailed))
		return nil, fmt.Errorf("create issue: %w", err)
	}
	if err := c.Refresh(ctx); err != nil {
		return created, err
	}
	c.notifier.Success(msgCreateDone)
	return created, nil
}

// Issue returns a copy of one held issue.
func (c *Controller) Issue(id uuid.UUID) (model.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, is := range c.items {
		if is.ID == id {
			return is.Clone(), true
		}
	}
	return model.Issue{}, false
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Scope:   c.scope,
		Issues:  make([]model.Issue, len(c.items)),
		Loaded:  c.loaded,
		Loading: c.loading > 0,
		Pending: make([]uuid.UUID, 0, len(c.pending)),
	}
	for i := range c.items {
		s.Issues[i] = c.items[i].Clone()
	}
	for id := range c.pending {
		s.Pending = append(s.Pending, id)
	}
	sort.Slice(s.Pending, func(i, j int) bool { return s.Pending[i].String() < s.Pending[j].String() })
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// LastError is the failure of the most recent action, cleared by the next successful load or edit.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) begin(id uuid.UUID) func() {
	c.mu.Lock()
	c.pending[id]++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.pending[id]--; c.pending[id] <= 0 {
			delete(c.pending, id)
		}
	}
}

func (c *Controller) fail(err error, msg string, id uuid.UUID) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.log.Warn(msg, "issue_id", id, "error", err)
}
