package repository

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

type MemberRepositoryInterface interface {
	List(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error)
	Add(ctx context.Context, projectID, userID uuid.UUID, role model.ProjectRole) error
	Remove(ctx context.Context, projectID, userID uuid.UUID) error
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)

// MemberRepository manages project membership
type MemberRepository struct {
	client *Client
}

func NewMemberRepository(client *Client) *MemberRepository {
	return &MemberRepository{client: client}
}

func (r *MemberRepository) List(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	if err := r.client.do(ctx, http.MethodGet, membersPath(projectID), nil, nil, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.ProjectMember{}
	}
	return members, nil
}

// Add grants a user a role in the project
func (r *MemberRepository) Add(ctx context.Context, projectID, userID uuid.UUID, role model.ProjectRole) error {
	body := struct {
		UserID      uuid.UUID         `json:"user_id"`
		ProjectRole model.ProjectRole `json:"project_role"`
	}{userID, role}
	return r.client.do(ctx, http.MethodPost, membersPath(projectID), nil, body, nil)
}

// Remove revokes a user's membership
func (r *MemberRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.client.do(ctx, http.MethodDelete, membersPath(projectID)+"/"+userID.String(), nil, nil, nil)
}

func membersPath(projectID uuid.UUID) string {
	return "/api/jira/projects/" + projectID.String() + "/members"
}
