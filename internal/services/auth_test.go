package services

import (
	"context"
	"testing"
	"time"

	"openmic/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users  *fakeUserRepo
	roles  *fakeRoleRepo
	seeded map[string]*domain.Role
	issuer *fakeIssuer
	mail   *fakeEmailService
	svc    domain.AuthService
}

func newAuthFixture() *authFixture {
	roles := newFakeRoleRepo()
	f := &authFixture{
		roles:  roles,
		seeded: roles.seed(),
		users:  newFakeUserRepo(roles),
		issuer: &fakeIssuer{},
		mail:   &fakeEmailService{},
	}
	f.svc = NewAuthService(f.users, f.roles, fakeHasher{}, f.issuer, time.Hour, f.mail, discardLogger(), time.Second)
	return f
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates performer", func(t *testing.T) {
		f := newAuthFixture()
		user, err := f.svc.Register(ctx, " Ada@Example.COM ", "password1", " Ada ", "555")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "hash:saltpassword1", user.PasswordHash)
		assert.True(t, user.IsActive)

		performer := f.seeded[domain.RolePerformer]
		require.NotNil(t, user.PrimaryRoleID)
		assert.Equal(t, performer.ID, *user.PrimaryRoleID)
		assert.Equal(t, []string{performer.ID}, f.users.roleIDs[user.ID])

		require.Len(t, f.mail.welcome, 1)
		assert.Equal(t, "ada@example.com", f.mail.welcome[0].Email)
	})

	t.Run("welcome failure is ignored", func(t *testing.T) {
		f := newAuthFixture()
		f.mail.err = errBoom
		_, err := f.svc.Register(ctx, "ada@example.com", "password1", "Ada", "")
		require.NoError(t, err)
	})

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{name: "bad email", email: "ada", password: "password1", userName: "Ada", wantErr: domain.ErrInvalidInput},
		{name: "short password", email: "ada@example.com", password: "short", userName: "Ada", wantErr: domain.ErrInvalidInput},
		{name: "missing name", email: "ada@example.com", password: "password1", userName: " ", wantErr: domain.ErrInvalidInput},
		{name: "duplicate email", email: "TAKEN@example.com", password: "password1", userName: "Ada", wantErr: domain.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			_, err := f.svc.Register(ctx, "taken@example.com", "password1", "Taken", "")
			require.NoError(t, err)

			_, err = f.svc.Register(ctx, tt.email, tt.password, tt.userName, "")
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.users.byID, 1)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, err := f.svc.Register(ctx, "ada@example.com", "password1", "Ada", "")
	require.NoError(t, err)

	token, got, err := f.svc.Login(ctx, "ADA@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID, token)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, []string{domain.RolePerformer}, f.issuer.roles)

	_, _, err = f.svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = f.svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, f.users.SetActive(ctx, user.ID, false))
	_, _, err = f.svc.Login(ctx, "ada@example.com", "password1")
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthService_LoginSkipsInactiveRoles(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, err := f.svc.Register(ctx, "ada@example.com", "password1", "Ada", "")
	require.NoError(t, err)
	organizer := f.seeded[domain.RoleOrganizer]
	organizer.IsActive = false
	require.NoError(t, f.users.SetRoles(ctx, user.ID, []string{f.seeded[domain.RolePerformer].ID, organizer.ID}, organizer.ID))

	_, _, err = f.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RolePerformer}, f.issuer.roles)
}
