package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"openmic/internal/domain"
)

const configColumns = `key, value, description, is_public, updated_by, created_at, updated_at`

type configRepository struct {
	DB *sql.DB
}

func NewConfigRepository(db *sql.DB) domain.ConfigRepository {
	return &configRepository{DB: db}
}

func scanConfig(row rowScanner) (*domain.Configuration, error) {
	c := &domain.Configuration{}
	var raw []byte
	var updatedBy sql.NullString
	if err := row.Scan(&c.Key, &raw, &c.Description, &c.IsPublic, &updatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	value, err := domain.DecodeConfigValue(c.Key, raw)
	if err != nil {
		return nil, fmt.Errorf("decode stored config %q: %w", c.Key, err)
	}
	c.Value = value
	c.UpdatedBy = stringPtr(updatedBy)
	return c, nil
}

func (r *configRepository) List(ctx context.Context, publicOnly bool) ([]*domain.Configuration, error) {
	query := `SELECT ` + configColumns + ` FROM configurations`
	if publicOnly {
		query += ` WHERE is_public`
	}
	query += ` ORDER BY key`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make([]*domain.Configuration, 0)
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (r *configRepository) Get(ctx context.Context, key domain.ConfigKey) (*domain.Configuration, error) {
	c, err := scanConfig(r.DB.QueryRowContext(ctx, `SELECT `+configColumns+` FROM configurations WHERE key = $1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

func (r *configRepository) Upsert(ctx context.Context, c *domain.Configuration) error {
	raw, err := json.Marshal(c.Value)
	if err != nil {
		return fmt.Errorf("encode config value: %w", err)
	}
	query := `
		INSERT INTO configurations (key, value, description, is_public, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, description = EXCLUDED.description, is_public = EXCLUDED.is_public,
			updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	return r.DB.QueryRowContext(ctx, query, c.Key, raw, c.Description, c.IsPublic,
		nullString(c.UpdatedBy), c.UpdatedAt).Scan(&c.CreatedAt)
}

func (r *configRepository) Delete(ctx context.Context, key domain.ConfigKey) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM configurations WHERE key = $1`, key)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}
