// Package memory is an in-process implementation of every store interface,
// grounded on the teacher's internal/app/storage/memory.go pattern: a
// mutex-guarded set of maps, used by component tests and local dev runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// Store implements every per-domain store interface the core depends on.
type Store struct {
	mu sync.RWMutex

	portfolios map[string]domain.Portfolio
	projects   map[string]domain.Project

	resources   map[string]domain.Resource
	allocations map[string][]domain.Allocation

	actuals         map[string]domain.Actual // keyed by fi_doc_no
	commitments     map[string]domain.Commitment // keyed by po_number|po_line_nr

	rules  map[string]domain.ThresholdRule
	alerts map[string]domain.VarianceAlert

	roles     map[string]domain.Role
	userRoles map[string][]string // userID -> roleIDs

	embeddings    map[string]domain.Embedding // keyed by type|id
	conversations []domain.ConversationEntry

	aiOps     []domain.AIOperationRecord
	feedbacks []domain.Feedback

	schedules   map[string]domain.Schedule
	tasks       map[string]domain.Task
	wbsElements map[string]domain.WBSElement

	imports []domain.ImportAuditLog
	events  []auditEvent

	abTests map[string]domain.ABTest
}

type auditEvent struct {
	eventType string
	actorID   string
	details   map[string]interface{}
	at        time.Time
}

// defaultRoleNames seeds the six built-in role rows so ListUserRoles can
// resolve an assignment to a role even before any custom role is created;
// their permission subsets live in internal/authz's constant table, not here.
var defaultRoleNames = []string{
	"admin", "portfolio_manager", "project_manager", "resource_manager", "team_member", "viewer",
}

// New returns an in-memory store pre-seeded with the six built-in roles.
func New() *Store {
	s := &Store{
		portfolios:  make(map[string]domain.Portfolio),
		projects:    make(map[string]domain.Project),
		resources:   make(map[string]domain.Resource),
		allocations: make(map[string][]domain.Allocation),
		actuals:     make(map[string]domain.Actual),
		commitments: make(map[string]domain.Commitment),
		rules:       make(map[string]domain.ThresholdRule),
		alerts:      make(map[string]domain.VarianceAlert),
		roles:       make(map[string]domain.Role),
		userRoles:   make(map[string][]string),
		embeddings:  make(map[string]domain.Embedding),
		schedules:   make(map[string]domain.Schedule),
		tasks:       make(map[string]domain.Task),
		wbsElements: make(map[string]domain.WBSElement),
		abTests:     make(map[string]domain.ABTest),
	}
	for _, name := range defaultRoleNames {
		s.roles[name] = domain.Role{ID: name, Name: name, Active: true}
	}
	return s
}

var (
	_ store.PortfolioStore     = (*Store)(nil)
	_ store.ProjectStore       = (*Store)(nil)
	_ store.ResourceStore      = (*Store)(nil)
	_ store.FinancialStore     = (*Store)(nil)
	_ store.ThresholdRuleStore = (*Store)(nil)
	_ store.AlertStore         = (*Store)(nil)
	_ store.RoleStore          = (*Store)(nil)
	_ store.EmbeddingStore     = (*Store)(nil)
	_ store.ConversationStore  = (*Store)(nil)
	_ store.AIOperationStore   = (*Store)(nil)
	_ store.ScheduleStore      = (*Store)(nil)
	_ store.AuditStore         = (*Store)(nil)
	_ store.ABTestStore        = (*Store)(nil)
)

// --- PortfolioStore ---

func (s *Store) CreatePortfolio(_ context.Context, p domain.Portfolio) (domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolios[p.ID] = p
	return p, nil
}

func (s *Store) GetPortfolio(_ context.Context, id string) (domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.portfolios[id]
	if !ok {
		return domain.Portfolio{}, apperr.NotFound("portfolio", id)
	}
	return p, nil
}

func (s *Store) ListPortfolios(_ context.Context) ([]domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- ProjectStore ---

func (s *Store) CreateProject(_ context.Context, p domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.projects {
		if existing.Name == p.Name {
			return domain.Project{}, apperr.Duplicate("project", p.Name)
		}
	}
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, apperr.NotFound("project", id)
	}
	return p, nil
}

func (s *Store) GetProjectByName(_ context.Context, name string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Project{}, apperr.NotFound("project", name)
}

func (s *Store) ListProjects(_ context.Context, portfolioID string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Project
	for _, p := range s.projects {
		if portfolioID == "" || p.PortfolioID == portfolioID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListProjectNamesAndIDs(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.projects))
	for _, p := range s.projects {
		out[p.Name] = p.ID
	}
	return out, nil
}

func (s *Store) UpdateProjectActualCost(_ context.Context, projectID string, actualCost string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return apperr.NotFound("project", projectID)
	}
	dec, err := parseDecimal(actualCost)
	if err != nil {
		return apperr.ValidationMessage("invalid actual cost")
	}
	p.ActualCost = dec
	s.projects[projectID] = p
	return nil
}

// --- ResourceStore ---

func (s *Store) CreateResource(_ context.Context, r domain.Resource) (domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
	return r, nil
}

func (s *Store) GetResource(_ context.Context, id string) (domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[id]
	if !ok {
		return domain.Resource{}, apperr.NotFound("resource", id)
	}
	return r, nil
}

func (s *Store) ListResources(_ context.Context) ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListAllocations(_ context.Context, resourceID string) ([]domain.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Allocation(nil), s.allocations[resourceID]...), nil
}

// AddAllocation is a test helper absent from the store interface.
func (s *Store) AddAllocation(a domain.Allocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations[a.ResourceID] = append(s.allocations[a.ResourceID], a)
}
