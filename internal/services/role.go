package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"openmic/internal/domain"
)

var builtinRoles = map[string]struct{}{
	domain.RoleAdmin:     {},
	domain.RoleOrganizer: {},
	domain.RolePerformer: {},
}

type roleService struct {
	roleRepo       domain.RoleRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewRoleService creates a RoleService that also answers permission checks.
func NewRoleService(roleRepo domain.RoleRepository, userRepo domain.UserRepository, timeout time.Duration) domain.RoleService {
	return &roleService{
		roleRepo:       roleRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

// EffectivePermissions is the union of the user's active roles. Disabled or
// unknown users have no permissions.
func (s *roleService) EffectivePermissions(ctx context.Context, userID string) (domain.PermissionSet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.PermissionSet{}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return domain.PermissionSet{}, nil
	}
	roles, err := s.roleRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return domain.EffectivePermissions(roles), nil
}

func (s *roleService) HasPermission(ctx context.Context, userID string, perm domain.Permission) (bool, error) {
	perms, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return perms.Has(perm), nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.roleRepo.List(ctx)
}

func (s *roleService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.roleRepo.GetByID(ctx, id)
}

func (s *roleService) CreateRole(ctx context.Context, name, description string, permissions []string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", domain.ErrInvalidInput)
	}
	perms, err := domain.ParsePermissions(permissions)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	role := &domain.Role{
		Name:        name,
		Description: strings.TrimSpace(description),
		Permissions: perms,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// UpdateRole applies the given changes. A nil permissions slice leaves the set unchanged;
// an empty one clears it.
func (s *roleService) UpdateRole(ctx context.Context, id string, name, description *string, permissions []string, isActive *bool) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		n := strings.TrimSpace(strings.ToLower(*name))
		if n == "" {
			return nil, fmt.Errorf("%w: role name cannot be empty", domain.ErrInvalidInput)
		}
		if _, builtin := builtinRoles[role.Name]; builtin && n != role.Name {
			return nil, fmt.Errorf("%w: built-in role %q cannot be renamed", domain.ErrConflict, role.Name)
		}
		role.Name = n
	}
	if description != nil {
		role.Description = strings.TrimSpace(*description)
	}
	if permissions != nil {
		perms, err := domain.ParsePermissions(permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}
	if isActive != nil {
		role.IsActive = *isActive
	}
	role.UpdatedAt = time.Now()
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

func (s *roleService) DeleteRole(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, builtin := builtinRoles[role.Name]; builtin {
		return fmt.Errorf("%w: built-in role %q cannot be deleted", domain.ErrConflict, role.Name)
	}
	return s.roleRepo.Delete(ctx, id)
}
