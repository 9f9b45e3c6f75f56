package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"openmic/internal/domain"
)

const userColumns = `id, email, password_hash, salt, name, phone, primary_role_id, is_active, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var primaryRole sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &u.Phone,
		&primaryRole, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.PrimaryRoleID = stringPtr(primaryRole)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, name, phone, primary_role_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Salt, u.Name, u.Phone,
		nullString(u.PrimaryRoleID), u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if isUniqueViolation(err, constraintUsersEmail) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func (r *userRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	where := ``
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = ` WHERE name ILIKE $1 OR email ILIKE $1`
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at DESC`
	if limit := filter.Page.Limit(); limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, limit, filter.Page.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, phone = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.Phone, u.UpdatedAt)
	if isUniqueViolation(err, constraintUsersEmail) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, hash, salt string) error {
	query := `UPDATE users SET password_hash = $2, salt = $3, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, hash, salt)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrUserNotFound)
}

func (r *userRepository) SetActive(ctx context.Context, userID string, active bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, active)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrUserNotFound)
}

func (r *userRepository) SetRoles(ctx context.Context, userID string, roleIDs []string, primaryRoleID string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET primary_role_id = $2, updated_at = NOW() WHERE id = $1`,
			userID, primaryRoleID)
		if err != nil {
			return err
		}
		if err := rowsAffectedOrNotFound(res, domain.ErrUserNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, pq.Array(roleIDs))
		return err
	})
}
