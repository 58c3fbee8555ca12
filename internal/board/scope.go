package board

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"issueboard/internal/repository"
)

// ResolveActiveSprint narrows scope to the project's active sprint when there is one.
func ResolveActiveSprint(ctx context.Context, catalog repository.CatalogRepositoryInterface, scope Scope) (Scope, error) {
	sprint, err := catalog.ActiveSprint(ctx, scope.ProjectID)
	if err != nil {
		return scope, fmt.Errorf("resolve active sprint: %w", err)
	}
	if sprint != nil {
		id := sprint.ID
		scope.SprintID = &id
	}
	return scope, nil
}

// CanAssign probes the user list that feeds the assignee picker. A 403 means the
// picker is disabled; it is not an error.
func CanAssign(ctx context.Context, users repository.UserRepositoryInterface) (bool, error) {
	if _, err := users.List(ctx); err != nil {
		if repository.IsForbidden(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ParseAssignee reads an assignee parameter; "", "none" and "null" unassign.
func ParseAssignee(raw string) (*uuid.UUID, error) {
	switch raw {
	case "", "none", "null":
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid assignee %q: %w", raw, err)
	}
	return &id, nil
}
