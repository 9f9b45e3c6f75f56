package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"openmic/internal/domain"
)

const venueColumns = `id, name, address, city, state, zip_code, phone, email, website, capacity, description, is_active, created_by, created_at, updated_at`

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{DB: db}
}

func scanVenue(row rowScanner) (*domain.Venue, error) {
	v := &domain.Venue{}
	var capacity sql.NullInt64
	var createdBy sql.NullString
	if err := row.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.State, &v.ZipCode, &v.Phone, &v.Email,
		&v.Website, &capacity, &v.Description, &v.IsActive, &createdBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Capacity = intPtr(capacity)
	v.CreatedBy = createdBy.String
	return v, nil
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, address, city, state, zip_code, phone, email, website, capacity, description, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, v.Name, v.Address, v.City, v.State, v.ZipCode, v.Phone, v.Email,
		v.Website, nullInt(v.Capacity), v.Description, v.IsActive, nullString(emptyToNil(v.CreatedBy)),
		v.CreatedAt, v.UpdatedAt).Scan(&v.ID)
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	v, err := scanVenue(r.DB.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *venueRepository) List(ctx context.Context, filter domain.VenueFilter) ([]*domain.Venue, error) {
	var conds []string
	var args []any
	if !filter.IncludeInactive {
		conds = append(conds, "is_active")
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conds = append(conds, fmt.Sprintf("lower(city) = lower($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + venueColumns + ` FROM venues` + whereClause(conds) + ` ORDER BY name`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (r *venueRepository) Update(ctx context.Context, v *domain.Venue) error {
	query := `
		UPDATE venues
		SET name = $2, address = $3, city = $4, state = $5, zip_code = $6, phone = $7, email = $8,
			website = $9, capacity = $10, description = $11, updated_at = $12
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, v.ID, v.Name, v.Address, v.City, v.State, v.ZipCode, v.Phone,
		v.Email, v.Website, nullInt(v.Capacity), v.Description, v.UpdatedAt)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func (r *venueRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE venues SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
