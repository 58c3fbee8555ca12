package validate

import (
	"strings"

	"github.com/google/uuid"

	"issueboard/internal/model"
)

type issueForm struct {
	IssueTypeID      *uuid.UUID `json:"issue_type_id" validate:"required"`
	Summary          string     `json:"summary" validate:"notblank"`
	Status           string     `json:"status" validate:"omitempty,status"`
	InternalPriority string     `json:"internal_priority" validate:"omitempty,priority"`
	ClientPriority   string     `json:"client_priority" validate:"omitempty,priority"`
	StoryPoints      *int       `json:"story_points" validate:"omitempty,min=0,max=100"`
	EstimatedDays    *int       `json:"estimated_days" validate:"omitempty,min=0,max=365"`
	ActualDays       *int       `json:"actual_days" validate:"omitempty,min=0,max=365"`
}

// Issue checks the create/edit issue form.
func Issue(f model.IssueFields) error {
	form := issueForm{
		IssueTypeID:      f.IssueTypeID,
		Summary:          f.Summary,
		Status:           string(f.Status),
		InternalPriority: f.InternalPriority,
		StoryPoints:      f.StoryPoints,
		EstimatedDays:    f.EstimatedDays,
		ActualDays:       f.ActualDays,
	}
	if f.ClientPriority != nil {
		form.ClientPriority = *f.ClientPriority
	}
	return Struct(form)
}

type projectForm struct {
	Key  string `json:"key" validate:"notblank,max=10"`
	Name string `json:"name" validate:"notblank"`
}

// Project checks the create-project form. The key is upper-cased in place first.
func Project(p *model.NewProject) error {
	p.Key = strings.ToUpper(strings.TrimSpace(p.Key))
	return Struct(projectForm{Key: p.Key, Name: p.Name})
}

type projectPatchForm struct {
	Name string `json:"name" validate:"notblank"`
}

func ProjectPatch(p model.ProjectPatch) error {
	return Struct(projectPatchForm{Name: p.Name})
}

type clientForm struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

func Client(c model.NewClient) error {
	return Struct(clientForm{Name: c.Name, Email: c.Email})
}

type memberForm struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	ProjectRole string    `json:"project_role" validate:"projectrole"`
}

func Member(userID uuid.UUID, role model.ProjectRole) error {
	return Struct(memberForm{UserID: userID, ProjectRole: string(role)})
}

type roleForm struct {
	Role string `json:"role" validate:"role"`
}

func Role(role model.Role) error {
	return Struct(roleForm{Role: string(role)})
}

type commentForm struct {
	Body string `json:"body" validate:"notblank"`
}

func Comment(body string) error {
	return Struct(commentForm{Body: body})
}
