// Package access resolves what a global role may do in the UI. The result only
// hides or disables actions; the backend enforces authorization.
package access

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"issueboard/internal/model"
)

//go:embed policy.yaml
var defaultPolicy []byte

type Capabilities struct {
	CreateProject   bool `yaml:"create_project" json:"create_project"`
	ManageUsers     bool `yaml:"manage_users" json:"manage_users"`
	ViewAllProjects bool `yaml:"view_all_projects" json:"view_all_projects"`
	ManageMembers   bool `yaml:"manage_members" json:"manage_members"`
	EditProject     bool `yaml:"edit_project" json:"edit_project"`
	AssignIssues    bool `yaml:"assign_issues" json:"assign_issues"`
	ChangeStatus    bool `yaml:"change_status" json:"change_status"`
	EditIssues      bool `yaml:"edit_issues" json:"edit_issues"`
	CreateIssues    bool `yaml:"create_issues" json:"create_issues"`
	Comment         bool `yaml:"comment" json:"comment"`
	Export          bool `yaml:"export" json:"export"`
}

type Policy struct {
	Roles map[model.Role]Capabilities `yaml:"roles"`
}

var builtin = mustParse(defaultPolicy)

func mustParse(data []byte) *Policy {
	p, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return p
}

func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse access policy: %w", err)
	}
	for role := range p.Roles {
		if !role.Valid() {
			return nil, fmt.Errorf("parse access policy: unknown role %q", role)
		}
	}
	if p.Roles == nil {
		p.Roles = map[model.Role]Capabilities{}
	}
	return &p, nil
}

// Default returns the built-in policy.
func Default() *Policy {
	roles := make(map[model.Role]Capabilities, len(builtin.Roles))
	for r, c := range builtin.Roles {
		roles[r] = c
	}
	return &Policy{Roles: roles}
}

// Load reads a policy file over the built-in one. Roles named in the file replace
// their built-in entry; others keep it. An empty path yields the built-in policy.
func Load(path string) (*Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read access policy: %w", err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for r, c := range override.Roles {
		p.Roles[r] = c
	}
	return p, nil
}

// Resolve returns the capabilities of role; unknown roles get those of "user".
func (p *Policy) Resolve(role model.Role) Capabilities {
	if c, ok := p.Roles[role]; ok {
		return c
	}
	return p.Roles[model.RoleUser]
}

// Resolve uses the built-in policy.
func Resolve(role model.Role) Capabilities {
	return builtin.Resolve(role)
}
