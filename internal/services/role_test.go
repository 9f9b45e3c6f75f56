package services

import (
	"context"
	"testing"
	"time"

	"openmic/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleFixture(t *testing.T) (*authFixture, domain.RoleService, *domain.User) {
	t.Helper()
	f := newAuthFixture()
	user, err := f.svc.Register(context.Background(), "ada@example.com", "password1", "Ada", "")
	require.NoError(t, err)
	return f, NewRoleService(f.roles, f.users, time.Second), user
}

func TestRoleService_EffectivePermissions(t *testing.T) {
	ctx := context.Background()
	f, svc, user := newRoleFixture(t)
	organizer := f.seeded[domain.RoleOrganizer]
	performer := f.seeded[domain.RolePerformer]
	require.NoError(t, f.users.SetRoles(ctx, user.ID, []string{performer.ID, organizer.ID}, performer.ID))

	perms, err := svc.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, perms.Has(domain.PermVenuesView))
	assert.True(t, perms.Has(domain.PermTimeslotsManage))
	assert.False(t, perms.Has(domain.PermUsersManage))

	ok, err := svc.HasPermission(ctx, user.ID, domain.PermEventsCreate)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("inactive role contributes nothing", func(t *testing.T) {
		organizer.IsActive = false
		defer func() { organizer.IsActive = true }()
		ok, err := svc.HasPermission(ctx, user.ID, domain.PermEventsCreate)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("disabled user has none", func(t *testing.T) {
		require.NoError(t, f.users.SetActive(ctx, user.ID, false))
		defer func() { _ = f.users.SetActive(ctx, user.ID, true) }()
		perms, err := svc.EffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, perms)
	})

	t.Run("unknown user has none", func(t *testing.T) {
		perms, err := svc.EffectivePermissions(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, perms)
	})
}

func TestRoleService_CreateRole(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newRoleFixture(t)

	role, err := svc.CreateRole(ctx, " Host ", "runs the night", []string{"events.edit", "signups.view", "events.edit"})
	require.NoError(t, err)
	assert.Equal(t, "host", role.Name)
	assert.Equal(t, []domain.Permission{domain.PermEventsEdit, domain.PermSignupsView}, role.Permissions)
	assert.True(t, role.IsActive)

	_, err = svc.CreateRole(ctx, "bad", "", []string{"events.*"})
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)

	_, err = svc.CreateRole(ctx, "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateRole(ctx, "HOST", "", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateRoleName)
}

func TestRoleService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	f, svc, _ := newRoleFixture(t)
	role, err := svc.CreateRole(ctx, "host", "", []string{"events.edit"})
	require.NoError(t, err)

	got, err := svc.UpdateRole(ctx, role.ID, strPtr("MC"), strPtr("master of ceremonies"), nil, boolPtr(false))
	require.NoError(t, err)
	assert.Equal(t, "mc", got.Name)
	assert.Equal(t, []domain.Permission{domain.PermEventsEdit}, got.Permissions)
	assert.False(t, got.IsActive)

	got, err = svc.UpdateRole(ctx, role.ID, nil, nil, []string{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)

	_, err = svc.UpdateRole(ctx, f.seeded[domain.RoleAdmin].ID, strPtr("root"), nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.UpdateRole(ctx, role.ID, nil, nil, []string{"nope"}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)

	_, err = svc.UpdateRole(ctx, "missing", nil, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoleService_DeleteRole(t *testing.T) {
	ctx := context.Background()
	f, svc, _ := newRoleFixture(t)
	role, err := svc.CreateRole(ctx, "host", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	_, err = svc.GetRole(ctx, role.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteRole(ctx, f.seeded[domain.RolePerformer].ID), domain.ErrConflict)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}
