package model

import (
	"time"

	"github.com/google/uuid"
)

// Issue is the server representation of a work item as returned by /api/jira/issues.
type Issue struct {
	ID               uuid.UUID   `json:"id"`
	Key              string      `json:"issue_key"`
	ProjectID        uuid.UUID   `json:"project_id"`
	IssueTypeID      *uuid.UUID  `json:"issue_type_id,omitempty"`
	Summary          string      `json:"summary"`
	Description      string      `json:"description"`
	Status           Status      `json:"status"`
	InternalPriority Priority    `json:"internal_priority"`
	ClientPriority   *Priority   `json:"client_priority"`
	StoryPoints      *int        `json:"story_points"`
	Labels           []string    `json:"labels"`
	DueDate          *time.Time  `json:"due_date"`
	EstimatedDays    *int        `json:"estimated_days"`
	ActualDays       *int        `json:"actual_days"`
	AssigneeID       *uuid.UUID  `json:"assignee_id"`
	Assignee         *UserRef    `json:"assignee,omitempty"`
	ReporterID       uuid.UUID   `json:"reporter_id"`
	Reporter         *UserRef    `json:"reporter,omitempty"`
	ExposedToClient  bool        `json:"exposed_to_client"`
	ParentIssueID    *uuid.UUID  `json:"parent_issue_id"`
	ReleaseID        *uuid.UUID  `json:"release_id,omitempty"`
	SprintID         *uuid.UUID  `json:"sprint_id,omitempty"`
	IssueType        *IssueType  `json:"issue_type,omitempty"`
	Project          *ProjectRef `json:"project,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// IsSubtask reports whether the issue hangs under a parent. Nesting depth is not checked here.
func (i *Issue) IsSubtask() bool {
	return i.ParentIssueID != nil
}

// AssigneeEmail is empty when the issue is unassigned or the backend did not expand the assignee.
func (i *Issue) AssigneeEmail() string {
	if i.Assignee == nil {
		return ""
	}
	return i.Assignee.Email
}

// Clone returns a copy sharing no pointers or slices with i.
func (i Issue) Clone() Issue {
	c := i
	c.IssueTypeID = cloneUUID(i.IssueTypeID)
	c.AssigneeID = cloneUUID(i.AssigneeID)
	c.ParentIssueID = cloneUUID(i.ParentIssueID)
	c.ReleaseID = cloneUUID(i.ReleaseID)
	c.SprintID = cloneUUID(i.SprintID)
	c.StoryPoints = cloneInt(i.StoryPoints)
	c.EstimatedDays = cloneInt(i.EstimatedDays)
	c.ActualDays = cloneInt(i.ActualDays)
	if i.ClientPriority != nil {
		p := *i.ClientPriority
		c.ClientPriority = &p
	}
	if i.DueDate != nil {
		d := *i.DueDate
		c.DueDate = &d
	}
	if i.Labels != nil {
		c.Labels = append([]string(nil), i.Labels...)
	}
	if i.Assignee != nil {
		a := *i.Assignee
		c.Assignee = &a
	}
	if i.Reporter != nil {
		r := *i.Reporter
		c.Reporter = &r
	}
	if i.IssueType != nil {
		t := *i.IssueType
		c.IssueType = &t
	}
	if i.Project != nil {
		p := *i.Project
		c.Project = &p
	}
	return c
}

// IssueFields is the complete field set submitted by the edit form.
type IssueFields struct {
	IssueTypeID      *uuid.UUID `json:"issue_type_id"`
	Summary          string     `json:"summary"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	InternalPriority string     `json:"internal_priority"`
	ClientPriority   *string    `json:"client_priority"`
	StoryPoints      *int       `json:"story_points"`
	Labels           []string   `json:"labels"`
	DueDate          *time.Time `json:"due_date"`
	EstimatedDays    *int       `json:"estimated_days"`
	ActualDays       *int       `json:"actual_days"`
	AssigneeID       *uuid.UUID `json:"assignee_id"`
	ReleaseID        *uuid.UUID `json:"release_id"`
	ParentIssueID    *uuid.UUID `json:"parent_issue_id"`
	ExposedToClient  bool       `json:"exposed_to_client"`
}

// NewIssue is the create-form payload; the backend assigns id and key.
type NewIssue struct {
	IssueFields
	ProjectID uuid.UUID `json:"project_id"`
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
