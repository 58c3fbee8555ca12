package repository

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

type ProjectRepositoryInterface interface {
	List(ctx context.Context) ([]model.Project, error)
	Create(ctx context.Context, project model.NewProject) (*model.Project, error)
	Update(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) (*model.Project, error)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

type ProjectRepository struct {
	client *Client
}

func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.client.do(ctx, http.MethodGet, "/api/jira/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project model.NewProject) (*model.Project, error) {
	var created model.Project
	if err := r.client.do(ctx, http.MethodPost, "/api/jira/projects", nil, project, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update edits the overview fields and returns the stored project
func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) (*model.Project, error) {
	var updated model.Project
	if err := r.client.do(ctx, http.MethodPut, "/api/jira/projects/"+id.String(), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
