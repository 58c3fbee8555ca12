package repository

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

type UserRepositoryInterface interface {
	Current(ctx context.Context) (*model.Profile, error)
	List(ctx context.Context) ([]model.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role model.Role) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

type UserRepository struct {
	client *Client
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Current returns the profile behind the access token
func (r *UserRepository) Current(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	if err := r.client.do(ctx, http.MethodGet, "/api/user", nil, nil, &profile); err != nil {
		return nil, err
	}
	if profile.Role == "" {
		profile.Role = model.RoleUser
	}
	return &profile, nil
}

// List returns all users. Non-privileged roles get a 403.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.client.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	body := map[string]model.Role{"role": role}
	return r.client.do(ctx, http.MethodPut, "/api/admin/users/"+id.String()+"/role", nil, body, nil)
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	body := map[string]bool{"active": active}
	return r.client.do(ctx, http.MethodPut, "/api/admin/users/"+id.String()+"/active", nil, body, nil)
}
