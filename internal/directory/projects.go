// Package directory holds the project overview and user management state: lists
// fetched from the backend and the confirm-then-update rules for changing them.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"issueboard/internal/model"
	"issueboard/internal/repository"
	"issueboard/internal/validate"
)

var ErrProjectNotFound = errors.New("project not found")

type Projects struct {
	repo repository.ProjectRepositoryInterface
	log  *slog.Logger

	mu    sync.Mutex
	items []model.Project
}

func NewProjects(repo repository.ProjectRepositoryInterface, logger *slog.Logger) *Projects {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projects{repo: repo, log: logger, items: []model.Project{}}
}

func (p *Projects) Load(ctx context.Context) error {
	list, err := p.repo.List(ctx)
	if err != nil {
		p.log.Warn("load projects failed", "error", err)
		return fmt.Errorf("load projects: %w", err)
	}
	p.mu.Lock()
	p.items = list
	p.mu.Unlock()
	return nil
}

func (p *Projects) List() []model.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Project{}, p.items...)
}

// Find looks a project up by id or by key.
func (p *Projects) Find(ref string) (model.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, idErr := uuid.Parse(ref)
	for _, pr := range p.items {
		if (idErr == nil && pr.ID == id) || pr.Key == ref {
			return pr, nil
		}
	}
	return model.Project{}, ErrProjectNotFound
}

// Create validates the form (upper-casing the key), creates the project and reloads the list.
func (p *Projects) Create(ctx context.Context, np model.NewProject) (*model.Project, error) {
	if err := validate.Project(&np); err != nil {
		return nil, err
	}
	created, err := p.repo.Create(ctx, np)
	if err != nil {
		p.log.Warn("create project failed", "key", np.Key, "error", err)
		return nil, fmt.Errorf("create project: %w", err)
	}
	if err := p.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Update saves the overview fields and stores the returned project.
func (p *Projects) Update(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) (*model.Project, error) {
	if err := validate.ProjectPatch(patch); err != nil {
		return nil, err
	}
	updated, err := p.repo.Update(ctx, id, patch)
	if err != nil {
		p.log.Warn("update project failed", "project_id", id, "error", err)
		return nil, fmt.Errorf("update project: %w", err)
	}
	p.mu.Lock()
	for i := range p.items {
		if p.items[i].ID == id {
			p.items[i] = *updated
		}
	}
	p.mu.Unlock()
	return updated, nil
}

// Members is the membership list of one project.
type Members struct {
	repo      repository.MemberRepositoryInterface
	projectID uuid.UUID
	log       *slog.Logger

	mu    sync.Mutex
	items []model.ProjectMember
}

func NewMembers(repo repository.MemberRepositoryInterface, projectID uuid.UUID, logger *slog.Logger) *Members {
	if logger == nil {
		logger = slog.Default()
	}
	return &Members{repo: repo, projectID: projectID, log: logger, items: []model.ProjectMember{}}
}

func (m *Members) Load(ctx context.Context) error {
	list, err := m.repo.List(ctx, m.projectID)
	if err != nil {
		m.log.Warn("load members failed", "project_id", m.projectID, "error", err)
		return fmt.Errorf("load members: %w", err)
	}
	m.mu.Lock()
	m.items = list
	m.mu.Unlock()
	return nil
}

func (m *Members) List() []model.ProjectMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ProjectMember{}, m.items...)
}

// Add grants userID a project role and reloads the list.
func (m *Members) Add(ctx context.Context, userID uuid.UUID, role model.ProjectRole) error {
	if err := validate.Member(userID, role); err != nil {
		return err
	}
	if err := m.repo.Add(ctx, m.projectID, userID, role); err != nil {
		m.log.Warn("add member failed", "project_id", m.projectID, "user_id", userID, "error", err)
		return fmt.Errorf("add member: %w", err)
	}
	return m.Load(ctx)
}

// Remove revokes membership and drops the member locally once the backend confirms.
func (m *Members) Remove(ctx context.Context, userID uuid.UUID) error {
	if err := m.repo.Remove(ctx, m.projectID, userID); err != nil {
		m.log.Warn("remove member failed", "project_id", m.projectID, "user_id", userID, "error", err)
		return fmt.Errorf("remove member: %w", err)
	}
	m.mu.Lock()
	kept := m.items[:0:0]
	for _, mem := range m.items {
		if mem.UserID != userID {
			kept = append(kept, mem)
		}
	}
	m.items = kept
	m.mu.Unlock()
	return nil
}

type Clients struct {
	repo repository.CatalogRepositoryInterface
	log  *slog.Logger

	mu    sync.Mutex
	items []model.Client
}

func NewClients(repo repository.CatalogRepositoryInterface, logger *slog.Logger) *Clients {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clients{repo: repo, log: logger, items: []model.Client{}}
}

func (c *Clients) Load(ctx context.Context) error {
	list, err := c.repo.Clients(ctx)
	if err != nil {
		c.log.Warn("load clients failed", "error", err)
		return fmt.Errorf("load clients: %w", err)
	}
	if list == nil {
		list = []model.Client{}
	}
	c.mu.Lock()
	c.items = list
	c.mu.Unlock()
	return nil
}

func (c *Clients) List() []model.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Client{}, c.items...)
}

// Create adds a customer record and appends the server's copy.
func (c *Clients) Create(ctx context.Context, nc model.NewClient) (*model.Client, error) {
	if err := validate.Client(nc); err != nil {
		return nil, err
	}
	created, err := c.repo.CreateClient(ctx, nc)
	if err != nil {
		c.log.Warn("create client failed", "error", err)
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.mu.Lock()
	c.items = append(c.items, *created)
	c.mu.Unlock()
	return created, nil
}
