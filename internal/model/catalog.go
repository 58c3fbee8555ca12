package model

import (
	"time"

	"github.com/google/uuid"
)

// IssueType is one entry of the story/bug/task taxonomy.
type IssueType struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

type Release struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	IsActive  bool       `json:"is_active"`
	DueDate   *time.Time `json:"release_date,omitempty"`
}

type Sprint struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

const SprintStateActive = "active"
