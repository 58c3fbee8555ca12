package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"issueboard/internal/model"
	"issueboard/internal/repository"
	"issueboard/internal/validate"
)

var ErrUserNotFound = errors.New("user not found")

// Users is the admin user list. Role and active changes touch the local copy only
// after the backend accepts them.
type Users struct {
	repo repository.UserRepositoryInterface
	log  *slog.Logger

	mu    sync.Mutex
	items []model.User
}

func NewUsers(repo repository.UserRepositoryInterface, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{repo: repo, log: logger, items: []model.User{}}
}

func (u *Users) Load(ctx context.Context) error {
	list, err := u.repo.List(ctx)
	if err != nil {
		u.log.Warn("load users failed", "error", err)
		return fmt.Errorf("load users: %w", err)
	}
	if list == nil {
		list = []model.User{}
	}
	u.mu.Lock()
	u.items = list
	u.mu.Unlock()
	return nil
}

func (u *Users) List() []model.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]model.User{}, u.items...)
}

func (u *Users) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	if err := validate.Role(role); err != nil {
		return err
	}
	if err := u.repo.SetRole(ctx, id, role); err != nil {
		u.log.Warn("set role failed", "user_id", id, "role", role, "error", err)
		return fmt.Errorf("set role: %w", err)
	}
	return u.update(id, func(usr *model.User) { usr.Role = role })
}

func (u *Users) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := u.repo.SetActive(ctx, id, active); err != nil {
		u.log.Warn("set active failed", "user_id", id, "active", active, "error", err)
		return fmt.Errorf("set active: %w", err)
	}
	return u.update(id, func(usr *model.User) { usr.Active = active })
}

func (u *Users) update(id uuid.UUID, fn func(*model.User)) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.items {
		if u.items[i].ID == id {
			fn(&u.items[i])
			return nil
		}
	}
	// the change went through; the list was just not loaded
	if len(u.items) == 0 {
		return nil
	}
	return ErrUserNotFound
}

// WorkItems lists the issues of a project assigned to the given user.
func WorkItems(ctx context.Context, issues repository.IssueRepositoryInterface, projectID, assigneeID uuid.UUID) ([]model.Issue, error) {
	list, err := issues.List(ctx, repository.IssueFilter{ProjectID: &projectID, AssigneeID: &assigneeID})
	if err != nil {
		return nil, fmt.Errorf("load work items: %w", err)
	}
	return list, nil
}
