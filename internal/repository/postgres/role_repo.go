package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"openmic/internal/domain"
)

const roleColumns = `id, name, description, permissions, is_active, created_at, updated_at`

type roleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{DB: db}
}

func scanRole(row rowScanner) (*domain.Role, error) {
	role := &domain.Role{}
	var perms []string
	if err := row.Scan(&role.ID, &role.Name, &role.Description, pq.Array(&perms),
		&role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	role.Permissions = make([]domain.Permission, 0, len(perms))
	for _, p := range perms {
		role.Permissions = append(role.Permissions, domain.Permission(p))
	}
	return role, nil
}

func permissionStrings(perms []domain.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (name, description, permissions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, role.Name, role.Description, pq.Array(permissionStrings(role.Permissions)),
		role.IsActive, role.CreatedAt, role.UpdatedAt).Scan(&role.ID)
	if isUniqueViolation(err, constraintRolesName) {
		return domain.ErrDuplicateRoleName
	}
	return err
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	role, err := scanRole(r.DB.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return role, err
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := scanRole(r.DB.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return role, err
}

func (r *roleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	return r.list(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
}

func (r *roleRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	query := `
		SELECT r.id, r.name, r.description, r.permissions, r.is_active, r.created_at, r.updated_at
		FROM roles r
		INNER JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`
	return r.list(ctx, query, userID)
}

func (r *roleRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Role, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `
		UPDATE roles
		SET name = $2, description = $3, permissions = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, role.ID, role.Name, role.Description,
		pq.Array(permissionStrings(role.Permissions)), role.IsActive, role.UpdatedAt)
	if isUniqueViolation(err, constraintRolesName) {
		return domain.ErrDuplicateRoleName
	}
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}
