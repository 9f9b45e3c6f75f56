package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"openmic/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	hasher         domain.PasswordHasher
	contextTimeout time.Duration
}

// NewUserService creates a UserService covering profiles and admin user management.
func NewUserService(userRepo domain.UserRepository, roleRepo domain.RoleRepository, hasher domain.PasswordHasher, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		hasher:         hasher,
		contextTimeout: timeout,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.UserWithRoles, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.withRoles(ctx, userID)
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.UserWithRoles, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.withRoles(ctx, userID)
}

func (s *userService) withRoles(ctx context.Context, userID string) (*domain.UserWithRoles, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	out := &domain.UserWithRoles{
		User:        user,
		Roles:       roles,
		Permissions: domain.EffectivePermissions(roles).Sorted(),
	}
	if user.PrimaryRoleID != nil {
		for _, r := range roles {
			if r.ID == *user.PrimaryRoleID {
				out.PrimaryRole = r
				break
			}
		}
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, name, phone, email *string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		user.Name = n
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
	}
	if email != nil {
		e := normalizeEmail(*email)
		if err := validateEmail(e); err != nil {
			return nil, err
		}
		user.Email = e
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, currentPassword); err != nil {
		return domain.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(salt, newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash, salt)
}

func (s *userService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Search = strings.TrimSpace(filter.Search)
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) SetUserRoles(ctx context.Context, userID string, roleIDs []string, primaryRoleID string) (*domain.UserWithRoles, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids := dedupe(roleIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one role is required", domain.ErrInvalidInput)
	}
	if primaryRoleID == "" {
		primaryRoleID = ids[0]
	}
	primaryAssigned := false
	for _, id := range ids {
		if _, err := s.roleRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, id)
			}
			return nil, fmt.Errorf("get role: %w", err)
		}
		if id == primaryRoleID {
			primaryAssigned = true
		}
	}
	if !primaryAssigned {
		return nil, fmt.Errorf("%w: primary role must be one of the assigned roles", domain.ErrInvalidInput)
	}

	if err := s.userRepo.SetRoles(ctx, userID, ids, primaryRoleID); err != nil {
		return nil, err
	}
	return s.withRoles(ctx, userID)
}

func (s *userService) SetUserActive(ctx context.Context, userID string, active bool) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
