// Package authz resolves user permissions through a TTL-cached
// roles-to-permissions lookup, grounded on the teacher's permission-gate
// pattern in infrastructure/middleware/serviceauth.go generalized to this
// domain's closed permission enumeration.
package authz

import (
	"context"
	"sync"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// CacheTTL is how long a resolved permission set stays valid per user.
const CacheTTL = 300 * time.Second

// defaultRoles is the constant permission table for the six built-in
// roles. Custom roles are read from the store instead.
var defaultRoles = map[string]map[domain.Permission]struct{}{
	"admin": permSet(
		domain.PermPortfolioRead, domain.PermPortfolioCreate, domain.PermPortfolioUpdate, domain.PermPortfolioDelete,
		domain.PermProjectRead, domain.PermProjectCreate, domain.PermProjectUpdate, domain.PermProjectDelete,
		domain.PermResourceRead, domain.PermResourceManage,
		domain.PermFinancialRead, domain.PermFinancialImport, domain.PermFinancialManage,
		domain.PermRiskManage, domain.PermIssueManage,
		domain.PermScheduleRead, domain.PermScheduleManage,
		domain.PermAIQuery, domain.PermAIFeedback,
		domain.PermAdminRoles, domain.PermAdminUsers, domain.PermAdminAudit,
	),
	"portfolio_manager": permSet(
		domain.PermPortfolioRead, domain.PermPortfolioCreate, domain.PermPortfolioUpdate,
		domain.PermProjectRead, domain.PermProjectCreate, domain.PermProjectUpdate,
		domain.PermResourceRead, domain.PermResourceManage,
		domain.PermFinancialRead, domain.PermFinancialImport, domain.PermFinancialManage,
		domain.PermRiskManage, domain.PermIssueManage,
		domain.PermScheduleRead, domain.PermScheduleManage,
		domain.PermAIQuery, domain.PermAIFeedback,
	),
	"project_manager": permSet(
		domain.PermPortfolioRead,
		domain.PermProjectRead, domain.PermProjectUpdate,
		domain.PermResourceRead,
		domain.PermFinancialRead, domain.PermFinancialImport,
		domain.PermRiskManage, domain.PermIssueManage,
		domain.PermScheduleRead, domain.PermScheduleManage,
		domain.PermAIQuery, domain.PermAIFeedback,
	),
	"resource_manager": permSet(
		domain.PermPortfolioRead, domain.PermProjectRead,
		domain.PermResourceRead, domain.PermResourceManage,
		domain.PermFinancialRead,
		domain.PermScheduleRead,
		domain.PermAIQuery,
	),
	"team_member": permSet(
		domain.PermPortfolioRead, domain.PermProjectRead,
		domain.PermResourceRead,
		domain.PermScheduleRead,
		domain.PermAIQuery, domain.PermAIFeedback,
	),
	"viewer": permSet(
		domain.PermPortfolioRead, domain.PermProjectRead,
		domain.PermResourceRead, domain.PermFinancialRead, domain.PermScheduleRead,
	),
}

func permSet(perms ...domain.Permission) map[domain.Permission]struct{} {
	out := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}

type cacheEntry struct {
	perms     map[domain.Permission]struct{}
	insertedAt time.Time
}

// Resolver computes and caches a user's effective permission set.
type Resolver struct {
	roles store.RoleStore

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New constructs a Resolver backed by roles.
func New(roles store.RoleStore) *Resolver {
	return &Resolver{
		roles: roles,
		cache: make(map[string]cacheEntry),
	}
}

// GetUserPermissions returns the union of every permission granted by the
// user's assigned roles, falling back to the viewer set when unassigned.
func (r *Resolver) GetUserPermissions(ctx context.Context, userID string) (map[domain.Permission]struct{}, error) {
	if entry, ok := r.cached(userID); ok {
		return entry, nil
	}

	roles, err := r.roles.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms := make(map[domain.Permission]struct{})
	if len(roles) == 0 {
		for p := range defaultRoles["viewer"] {
			perms[p] = struct{}{}
		}
	} else {
		for _, role := range roles {
			for p := range r.permissionsForRole(role) {
				perms[p] = struct{}{}
			}
		}
	}

	r.mu.Lock()
	r.cache[userID] = cacheEntry{perms: perms, insertedAt: time.Now()}
	r.mu.Unlock()

	return perms, nil
}

func (r *Resolver) permissionsForRole(role domain.Role) map[domain.Permission]struct{} {
	if builtin, ok := defaultRoles[role.Name]; ok {
		return builtin
	}
	return role.Permissions
}

func (r *Resolver) cached(userID string) (map[domain.Permission]struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[userID]
	if !ok {
		return nil, false
	}
	if time.Since(entry.insertedAt) > CacheTTL {
		delete(r.cache, userID)
		return nil, false
	}
	return entry.perms, true
}

// HasPermission reports whether the user holds perm.
func (r *Resolver) HasPermission(ctx context.Context, userID string, perm domain.Permission) (bool, error) {
	perms, err := r.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := perms[perm]
	return ok, nil
}

// HasAnyPermission reports whether the user holds at least one of perms.
func (r *Resolver) HasAnyPermission(ctx context.Context, userID string, perms []domain.Permission) (bool, error) {
	granted, err := r.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if _, ok := granted[p]; ok {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateUser drops the cache entry for one user; called after role
// assignment/removal so the next check re-resolves.
func (r *Resolver) InvalidateUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, userID)
}

// InvalidateAll clears every cache entry; called after role
// create/update/delete since any user might hold the changed role.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]cacheEntry)
}

// AssignRole assigns a role to a user and invalidates that user's cache.
func (r *Resolver) AssignRole(ctx context.Context, userID, roleID string) error {
	if err := r.roles.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	r.InvalidateUser(userID)
	return nil
}

// RemoveRole removes a role from a user and invalidates that user's cache.
func (r *Resolver) RemoveRole(ctx context.Context, userID, roleID string) error {
	if err := r.roles.RemoveRole(ctx, userID, roleID); err != nil {
		return err
	}
	r.InvalidateUser(userID)
	return nil
}

// UpsertRole creates or updates a custom role and invalidates every cache
// entry, since any number of users may hold it.
func (r *Resolver) UpsertRole(ctx context.Context, role domain.Role) (domain.Role, error) {
	saved, err := r.roles.UpsertRole(ctx, role)
	if err != nil {
		return domain.Role{}, err
	}
	r.InvalidateAll()
	return saved, nil
}

// DeleteRole removes a custom role and invalidates every cache entry.
func (r *Resolver) DeleteRole(ctx context.Context, id string) error {
	if err := r.roles.DeleteRole(ctx, id); err != nil {
		return err
	}
	r.InvalidateAll()
	return nil
}

// Require is the permission gate attached to every gated operation: it
// returns a forbidden ServiceError without touching business logic when
// the user lacks perm.
func (r *Resolver) Require(ctx context.Context, userID string, perm domain.Permission) error {
	ok, err := r.HasPermission(ctx, userID, perm)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(string(perm))
	}
	return nil
}
