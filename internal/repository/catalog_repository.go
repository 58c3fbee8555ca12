package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

// CatalogRepositoryInterface covers the lookup collections used by forms and board scoping.
type CatalogRepositoryInterface interface {
	IssueTypes(ctx context.Context) ([]model.IssueType, error)
	Releases(ctx context.Context, projectID uuid.UUID, activeOnly bool) ([]model.Release, error)
	Sprints(ctx context.Context, projectID uuid.UUID, state string) ([]model.Sprint, error)
	ActiveSprint(ctx context.Context, projectID uuid.UUID) (*model.Sprint, error)
	Clients(ctx context.Context) ([]model.Client, error)
	CreateClient(ctx context.Context, client model.NewClient) (*model.Client, error)
}

var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

type CatalogRepository struct {
	client *Client
}

func NewCatalogRepository(client *Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

func (r *CatalogRepository) IssueTypes(ctx context.Context) ([]model.IssueType, error) {
	var types []model.IssueType
	if err := r.client.do(ctx, http.MethodGet, "/api/jira/issue-types", nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *CatalogRepository) Releases(ctx context.Context, projectID uuid.UUID, activeOnly bool) ([]model.Release, error) {
	q := url.Values{"project_id": {projectID.String()}}
	if activeOnly {
		q.Set("is_active", "true")
	}
	var releases []model.Release
	if err := r.client.do(ctx, http.MethodGet, "/api/jira/releases", q, nil, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// Sprints lists the project's sprints; an empty state lists all of them
func (r *CatalogRepository) Sprints(ctx context.Context, projectID uuid.UUID, state string) ([]model.Sprint, error) {
	q := url.Values{"project_id": {projectID.String()}}
	if state != "" {
		q.Set("state", state)
	}
	var sprints []model.Sprint
	if err := r.client.do(ctx, http.MethodGet, "/api/jira/sprints", q, nil, &sprints); err != nil {
		return nil, err
	}
	return sprints, nil
}

// ActiveSprint returns the first active sprint, or nil when the project has none
func (r *CatalogRepository) ActiveSprint(ctx context.Context, projectID uuid.UUID) (*model.Sprint, error) {
	sprints, err := r.Sprints(ctx, projectID, model.SprintStateActive)
	if err != nil {
		return nil, err
	}
	if len(sprints) == 0 {
		return nil, nil
	}
	return &sprints[0], nil
}

func (r *CatalogRepository) Clients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := r.client.do(ctx, http.MethodGet, "/api/jira/clients", nil, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *CatalogRepository) CreateClient(ctx context.Context, client model.NewClient) (*model.Client, error) {
	var created model.Client
	if err := r.client.do(ctx, http.MethodPost, "/api/jira/clients", nil, client, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
