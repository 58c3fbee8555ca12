package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectMember maps a user to a project-scoped role.
type ProjectMember struct {
	UserID      uuid.UUID   `json:"user_id"`
	Email       string      `json:"email"`
	GlobalRole  Role        `json:"global_role"`
	ProjectRole ProjectRole `json:"project_role"`
}

// ProjectRole is the membership level within a single project.
type ProjectRole string

const (
	ProjectRoleSuperadmin ProjectRole = "superadmin"
	ProjectRoleAdmin      ProjectRole = "admin"
	ProjectRoleTeamLeader ProjectRole = "team_leader"
	ProjectRoleTeamMember ProjectRole = "team_member"
	ProjectRoleClient     ProjectRole = "client"
	ProjectRoleViewer     ProjectRole = "viewer" // read-only
)

var ProjectRoles = []ProjectRole{
	ProjectRoleSuperadmin,
	ProjectRoleAdmin,
	ProjectRoleTeamLeader,
	ProjectRoleTeamMember,
	ProjectRoleClient,
	ProjectRoleViewer,
}

func (r ProjectRole) Valid() bool {
	for _, v := range ProjectRoles {
		if v == r {
			return true
		}
	}
	return false
}

// Comment belongs to exactly one issue and is never edited from this side.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	IssueID   uuid.UUID `json:"issue_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Author    *UserRef  `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
