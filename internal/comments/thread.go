// Package comments keeps an issue's append-only comment thread and renders
// comment bodies from Markdown.
package comments

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"issueboard/internal/model"
	"issueboard/internal/repository"
)

// raw HTML in a body is dropped; goldmark only emits it with html.WithUnsafe
var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// Render converts a comment body to HTML.
func Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render comment: %w", err)
	}
	return buf.String(), nil
}

// Rendered is a comment with its body converted to HTML.
type Rendered struct {
	model.Comment
	HTML string `json:"html"`
}

type Thread struct {
	repo    repository.CommentRepositoryInterface
	issueID uuid.UUID
	log     *slog.Logger

	mu    sync.Mutex
	items []model.Comment
}

func NewThread(repo repository.CommentRepositoryInterface, issueID uuid.UUID, logger *slog.Logger) *Thread {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thread{repo: repo, issueID: issueID, log: logger, items: []model.Comment{}}
}

// Load replaces the held comments; on failure they are kept.
func (t *Thread) Load(ctx context.Context) error {
	list, err := t.repo.List(ctx, t.issueID)
	if err != nil {
		t.log.Warn("load comments failed", "issue_id", t.issueID, "error", err)
		return fmt.Errorf("load comments: %w", err)
	}
	t.mu.Lock()
	t.items = list
	t.mu.Unlock()
	return nil
}

// Add posts a comment and reloads the thread. A blank body is ignored and reports false.
func (t *Thread) Add(ctx context.Context, body string) (bool, error) {
	if strings.TrimSpace(body) == "" {
		return false, nil
	}
	if err := t.repo.Add(ctx, t.issueID, body); err != nil {
		t.log.Warn("add comment failed", "issue_id", t.issueID, "error", err)
		return false, fmt.Errorf("add comment: %w", err)
	}
	return true, t.Load(ctx)
}

func (t *Thread) Comments() []model.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Comment{}, t.items...)
}

// Rendered returns the comments with HTML bodies. A body that fails to render is shown escaped.
func (t *Thread) Rendered() []Rendered {
	items := t.Comments()
	out := make([]Rendered, len(items))
	for i, c := range items {
		body, err := Render(c.Body)
		if err != nil {
			body = "<p>" + html.EscapeString(c.Body) + "</p>"
		}
		out[i] = Rendered{Comment: c, HTML: body}
	}
	return out
}
