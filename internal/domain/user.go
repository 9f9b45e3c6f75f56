package domain

import (
	"context"
	"time"
)

// Seeded role names.
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RolePerformer = "performer"
)

// User represents a registered account.
// swagger:model User
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Salt          string    `json:"-"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	PrimaryRoleID *string   `json:"primary_role_id"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser returns a new active User. ID is set by the repository on create.
func NewUser(email, name, phone string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		Phone:     phone,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// UserWithRoles bundles a user with every role assigned to it.
type UserWithRoles struct {
	User        *User        `json:"user"`
	Roles       []*Role      `json:"roles"`
	PrimaryRole *Role        `json:"primary_role"`
	Permissions []Permission `json:"permissions"`
}

// Role is a named, flat set of permissions.
// swagger:model Role
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Search string
	Page   PaginationParams
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenClaims is what a verified bearer token says about its holder.
type TokenClaims struct {
	UserID string
	Email  string
	Roles  []string
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, hash, salt string) error
	SetActive(ctx context.Context, userID string, active bool) error
	// SetRoles replaces the user's role assignments and primary role in one transaction.
	SetRoles(ctx context.Context, userID string, roleIDs []string, primaryRoleID string) error
}

// RoleRepository defines the interface for role storage.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID string) ([]*Role, error)
}

// AuthService covers registration and login.
type AuthService interface {
	Register(ctx context.Context, email, password, name, phone string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// UserService covers profile and admin user management.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*UserWithRoles, error)
	UpdateProfile(ctx context.Context, userID string, name, phone, email *string) (*User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context, filter UserFilter) ([]*User, int, error)
	GetUser(ctx context.Context, userID string) (*UserWithRoles, error)
	SetUserRoles(ctx context.Context, userID string, roleIDs []string, primaryRoleID string) (*UserWithRoles, error)
	SetUserActive(ctx context.Context, userID string, active bool) (*User, error)
}

// PermissionChecker answers permission questions at request time.
type PermissionChecker interface {
	EffectivePermissions(ctx context.Context, userID string) (PermissionSet, error)
	HasPermission(ctx context.Context, userID string, perm Permission) (bool, error)
}

// RoleService manages roles and resolves permissions.
type RoleService interface {
	PermissionChecker
	ListRoles(ctx context.Context) ([]*Role, error)
	GetRole(ctx context.Context, id string) (*Role, error)
	CreateRole(ctx context.Context, name, description string, permissions []string) (*Role, error)
	UpdateRole(ctx context.Context, id string, name, description *string, permissions []string, isActive *bool) (*Role, error)
	DeleteRole(ctx context.Context, id string) error
}
