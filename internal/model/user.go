package model

import (
	"github.com/google/uuid"
)

// Role is the global role of a user account.
type Role string

const (
	RoleUser           Role = "user"
	RoleTeamMember     Role = "team_member"
	RoleTeamLeader     Role = "team_leader"
	RoleClient         Role = "client"
	RoleRepresentative Role = "representative"
	RoleAdmin          Role = "admin"
	RoleSuperadmin     Role = "superadmin"
)

var Roles = []Role{RoleUser, RoleTeamMember, RoleTeamLeader, RoleClient, RoleRepresentative, RoleAdmin, RoleSuperadmin}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// User is an account as listed by /api/users. The backend keys users by user_id.
type User struct {
	ID     uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Active bool      `json:"active"`
}

// Profile is the current user as returned by /api/user.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// UserRef is the expanded user embedded in issues and comments.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
