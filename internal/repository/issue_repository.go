package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

// IssueFilter narrows GET /api/jira/issues. Nil fields are not sent.
type IssueFilter struct {
	ProjectID  *uuid.UUID
	SprintID   *uuid.UUID
	AssigneeID *uuid.UUID
}

func (f IssueFilter) values() url.Values {
	q := url.Values{}
	if f.ProjectID != nil {
		q.Set("project_id", f.ProjectID.String())
	}
	if f.SprintID != nil {
		q.Set("sprint_id", f.SprintID.String())
	}
	if f.AssigneeID != nil {
		q.Set("assignee_id", f.AssigneeID.String())
	}
	return q
}

type IssueRepositoryInterface interface {
	List(ctx context.Context, filter IssueFilter) ([]model.Issue, error)
	Create(ctx context.Context, issue model.NewIssue) (*model.Issue, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.Status) error
	SetAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, fields model.IssueFields) (*model.Issue, error)
}

var _ IssueRepositoryInterface = (*IssueRepository)(nil)

type IssueRepository struct {
	client *Client
}

func NewIssueRepository(client *Client) *IssueRepository {
	return &IssueRepository{client: client}
}

// List fetches every issue matching the filter, in the order the backend returns them
func (r *IssueRepository) List(ctx context.Context, filter IssueFilter) ([]model.Issue, error) {
	var issues []model.Issue
	if err := r.client.do(ctx, http.MethodGet, "/api/jira/issues", filter.values(), nil, &issues); err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	return issues, nil
}

// Create submits a new issue; id and key come back from the server
func (r *IssueRepository) Create(ctx context.Context, issue model.NewIssue) (*model.Issue, error) {
	var created model.Issue
	if err := r.client.do(ctx, http.MethodPost, "/api/jira/issues", nil, issue, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SetStatus updates only the status field
func (r *IssueRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	body := map[string]model.Status{"status": status}
	return r.client.do(ctx, http.MethodPut, issuePath(id), nil, body, nil)
}

// SetAssignee updates only the assignee; nil sends an explicit null to unassign
func (r *IssueRepository) SetAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error {
	body := map[string]*uuid.UUID{"assignee_id": assigneeID}
	return r.client.do(ctx, http.MethodPut, issuePath(id), nil, body, nil)
}

// Update submits the full field set and returns the server's representation
func (r *IssueRepository) Update(ctx context.Context, id uuid.UUID, fields model.IssueFields) (*model.Issue, error) {
	var updated model.Issue
	if err := r.client.do(ctx, http.MethodPut, issuePath(id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func issuePath(id uuid.UUID) string {
	return "/api/jira/issues/" + id.String()
}
