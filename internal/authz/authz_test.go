package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestGetUserPermissionsFallsBackToViewer(t *testing.T) {
	ms := memory.New()
	r := New(ms)

	perms, err := r.GetUserPermissions(context.Background(), "user-unassigned")
	require.NoError(t, err)
	_, hasProjectRead := perms[domain.PermProjectRead]
	assert.True(t, hasProjectRead)
	_, hasFinancialManage := perms[domain.PermFinancialManage]
	assert.False(t, hasFinancialManage)
}

func TestGetUserPermissionsUnionsAssignedRoles(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	r := New(ms)

	require.NoError(t, r.AssignRole(ctx, "user-1", "project_manager"))

	perms, err := r.GetUserPermissions(ctx, "user-1")
	require.NoError(t, err)
	_, ok := perms[domain.PermScheduleManage]
	assert.True(t, ok)
}

func TestHasPermission(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	r := New(ms)
	require.NoError(t, r.AssignRole(ctx, "user-1", "admin"))

	ok, err := r.HasPermission(ctx, "user-1", domain.PermAdminRoles)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequireReturnsForbidden(t *testing.T) {
	ms := memory.New()
	r := New(ms)
	err := r.Require(context.Background(), "user-unassigned", domain.PermAdminRoles)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrCodeForbidden))
}

// Cache consistency: role assignment invalidates only that user's cache
// entry, and the next lookup reflects the new role immediately.
func TestAssignRoleInvalidatesUserCache(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	r := New(ms)

	_, err := r.GetUserPermissions(ctx, "user-1") // populate viewer-fallback cache entry
	require.NoError(t, err)

	require.NoError(t, r.AssignRole(ctx, "user-1", "admin"))

	perms, err := r.GetUserPermissions(ctx, "user-1")
	require.NoError(t, err)
	_, ok := perms[domain.PermAdminRoles]
	assert.True(t, ok, "cache must reflect the newly assigned role, not the stale viewer fallback")
}

// Role update/delete is a global invalidation: a user's cached entry for a
// role that changed must be recomputed on the next lookup.
func TestUpsertRoleInvalidatesAllCaches(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	r := New(ms)

	custom := domain.Role{ID: "custom-1", Name: "custom-1", Permissions: map[domain.Permission]struct{}{
		domain.PermProjectRead: {},
	}}
	_, err := r.UpsertRole(ctx, custom)
	require.NoError(t, err)
	require.NoError(t, r.AssignRole(ctx, "user-1", "custom-1"))

	_, err = r.GetUserPermissions(ctx, "user-1")
	require.NoError(t, err)

	updated := custom
	updated.Permissions = map[domain.Permission]struct{}{domain.PermFinancialManage: {}}
	_, err = r.UpsertRole(ctx, updated)
	require.NoError(t, err)

	perms, err := r.GetUserPermissions(ctx, "user-1")
	require.NoError(t, err)
	_, hasOld := perms[domain.PermProjectRead]
	_, hasNew := perms[domain.PermFinancialManage]
	assert.False(t, hasOld)
	assert.True(t, hasNew)
}
