package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"issueboard/internal/access"
	"issueboard/internal/notify"
	"issueboard/internal/repository"
)

var ErrViewNotFound = errors.New("view not found")

// Session is one open board view: its controller, its notifications, and what its
// owner may do there. Capabilities are resolved once, when the view opens.
type Session struct {
	ID           uuid.UUID
	Owner        string
	Controller   *Controller
	Notifier     *notify.Notifier
	Capabilities access.Capabilities
	CanAssign    bool
	OpenedAt     time.Time
}

// Registry owns the open views. A view is constructed and loaded on Open and discarded on Close.
type Registry struct {
	issues     repository.IssueRepositoryInterface
	users      repository.UserRepositoryInterface
	log        *slog.Logger
	pendingTTL time.Duration
	resultTTL  time.Duration

	mu    sync.Mutex
	views map[uuid.UUID]*Session
}

func NewRegistry(issues repository.IssueRepositoryInterface, users repository.UserRepositoryInterface, logger *slog.Logger, pendingTTL, resultTTL time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		issues:     issues,
		users:      users,
		log:        logger,
		pendingTTL: pendingTTL,
		resultTTL:  resultTTL,
		views:      make(map[uuid.UUID]*Session),
	}
}

// Open builds a view for owner and runs its first load. A view whose first load
// fails is discarded and the error returned.
func (r *Registry) Open(ctx context.Context, owner string, scope Scope, caps access.Capabilities) (*Session, error) {
	id := uuid.New()
	n := notify.New(r.pendingTTL, r.resultTTL)
	ctrl := New(r.issues, n, r.log.With("view_id", id), scope)

	if err := ctrl.Load(ctx); err != nil {
		n.Close()
		return nil, err
	}

	s := &Session{
		ID:           id,
		Owner:        owner,
		Controller:   ctrl,
		Notifier:     n,
		Capabilities: caps,
		OpenedAt:     time.Now(),
	}
	if caps.AssignIssues && r.users != nil {
		ok, err := CanAssign(ctx, r.users)
		if err != nil {
			r.log.Warn("assignee probe failed", "view_id", id, "error", err)
		}
		s.CanAssign = ok
	}

	r.mu.Lock()
	r.views[id] = s
	r.mu.Unlock()
	r.log.Info("view opened", "view_id", id, "project_id", scope.ProjectID)
	return s, nil
}

// Get returns the view if it exists and belongs to owner.
func (r *Registry) Get(id uuid.UUID, owner string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.views[id]
	if !ok || s.Owner != owner {
		return nil, ErrViewNotFound
	}
	return s, nil
}

func (r *Registry) Close(id uuid.UUID, owner string) error {
	r.mu.Lock()
	s, ok := r.views[id]
	if !ok || s.Owner != owner {
		r.mu.Unlock()
		return ErrViewNotFound
	}
	delete(r.views, id)
	r.mu.Unlock()

	s.Notifier.Close()
	r.log.Info("view closed", "view_id", id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// CloseAll discards every view, on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[uuid.UUID]*Session)
	r.mu.Unlock()
	for _, s := range views {
		s.Notifier.Close()
	}
}
