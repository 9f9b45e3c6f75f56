package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"openmic/internal/domain"
)

const eventColumns = `id, title, description, venue_id, created_by, date, start_time, end_time, is_spotlight, max_attendees, event_code, qr_code_data, is_active, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var createdBy sql.NullString
	var maxAttendees sql.NullInt64
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.VenueID, &createdBy, &e.Date, &e.StartTime,
		&e.EndTime, &e.IsSpotlight, &maxAttendees, &e.EventCode, &e.QRCodeData, &e.IsActive,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.CreatedBy = createdBy.String
	e.MaxAttendees = intPtr(maxAttendees)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, venue_id, created_by, date, start_time, end_time, is_spotlight,
			max_attendees, event_code, qr_code_data, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, e.Title, e.Description, e.VenueID, nullString(emptyToNil(e.CreatedBy)),
		e.Date, e.StartTime, e.EndTime, e.IsSpotlight, nullInt(e.MaxAttendees), e.EventCode, e.QRCodeData,
		e.IsActive, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	if isUniqueViolation(err, constraintEventCode) {
		return fmt.Errorf("%w: event code %s", domain.ErrConflict, e.EventCode)
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *eventRepository) GetByEventCode(ctx context.Context, eventCode string) (*domain.Event, error) {
	code := strings.TrimSpace(eventCode)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE event_code = $1`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	var conds []string
	var args []any
	if !filter.IncludeInactive {
		conds = append(conds, "is_active")
	}
	if filter.VenueID != "" {
		args = append(args, filter.VenueID)
		conds = append(conds, fmt.Sprintf("venue_id = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conds = append(conds, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.Spotlight != nil {
		args = append(args, *filter.Spotlight)
		conds = append(conds, fmt.Sprintf("is_spotlight = $%d", len(args)))
	}
	where := whereClause(conds)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY date, start_time`
	if limit := filter.Page.Limit(); limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, limit, filter.Page.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, venue_id = $4, date = $5, start_time = $6, end_time = $7,
			is_spotlight = $8, max_attendees = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, e.ID, e.Title, e.Description, e.VenueID, e.Date, e.StartTime,
		e.EndTime, e.IsSpotlight, nullInt(e.MaxAttendees), e.UpdatedAt)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func (r *eventRepository) SetQRCode(ctx context.Context, id, qrCodeData string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE events SET qr_code_data = $2, updated_at = NOW() WHERE id = $1`, id, qrCodeData)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func (r *eventRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE events SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}
