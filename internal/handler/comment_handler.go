package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"issueboard/internal/comments"
	"issueboard/internal/repository"
	"issueboard/internal/validate"
)

type CommentHandler struct {
	repo repository.CommentRepositoryInterface
	log  *slog.Logger
}

func NewCommentHandler(repo repository.CommentRepositoryInterface, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{repo: repo, log: logger}
}

type CommentRequest struct {
	Body string `json:"body"`
}

type ThreadResponse struct {
	Comments []comments.Rendered `json:"comments"`
}

// List
// @Summary  Comments of an issue with rendered bodies
// @Tags     Comments
// @Security BearerAuth
// @Produce  json
// @Param    issue_id path string true "Issue ID"
// @Success  200 {object} ThreadResponse
// @Failure  400,403,404,502 {object} ErrorResponse
// @Router   /issues/{issue_id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	issueID, ok := uuidParam(c, "issue_id", "Invalid issue ID format")
	if !ok {
		return
	}
	thread := comments.NewThread(h.repo, issueID, h.log)
	if err := thread.Load(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to load comments")
		return
	}
	c.JSON(http.StatusOK, ThreadResponse{Comments: thread.Rendered()})
}

// Add
// @Summary  Post a comment and return the reloaded thread
// @Tags     Comments
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    issue_id path string         true "Issue ID"
// @Param    request  body CommentRequest true "Markdown body"
// @Success  201 {object} ThreadResponse
// @Failure  400,403,422,502 {object} ErrorResponse
// @Router   /issues/{issue_id}/comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	issueID, ok := uuidParam(c, "issue_id", "Invalid issue ID format")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := validate.Comment(req.Body); err != nil {
		respondError(c, err, "")
		return
	}

	thread := comments.NewThread(h.repo, issueID, h.log)
	if _, err := thread.Add(c.Request.Context(), req.Body); err != nil {
		respondError(c, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, ThreadResponse{Comments: thread.Rendered()})
}
