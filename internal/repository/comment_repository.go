package repository

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

type CommentRepositoryInterface interface {
	List(ctx context.Context, issueID uuid.UUID) ([]model.Comment, error)
	Add(ctx context.Context, issueID uuid.UUID, body string) error
}

var _ CommentRepositoryInterface = (*CommentRepository)(nil)

type CommentRepository struct {
	client *Client
}

func NewCommentRepository(client *Client) *CommentRepository {
	return &CommentRepository{client: client}
}

func (r *CommentRepository) List(ctx context.Context, issueID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.client.do(ctx, http.MethodGet, commentsPath(issueID), nil, nil, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

func (r *CommentRepository) Add(ctx context.Context, issueID uuid.UUID, body string) error {
	return r.client.do(ctx, http.MethodPost, commentsPath(issueID), nil, map[string]string{"body": body}, nil)
}

func commentsPath(issueID uuid.UUID) string {
	return "/api/jira/issues/" + issueID.String() + "/comments"
}
