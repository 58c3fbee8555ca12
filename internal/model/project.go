package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID  `json:"id"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ClientID    *uuid.UUID `json:"client_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProjectRef is the short project form embedded in issues.
type ProjectRef struct {
	ID   uuid.UUID `json:"id"`
	Key  string    `json:"key"`
	Name string    `json:"name"`
}

type NewProject struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ClientID    *uuid.UUID `json:"client_id"`
}

// ProjectPatch carries the overview fields editable after creation.
type ProjectPatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client is a customer record a project may be linked to.
type Client struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Company string    `json:"company,omitempty"`
	Phone   string    `json:"phone,omitempty"`
}

type NewClient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}
