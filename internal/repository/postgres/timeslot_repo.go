package postgres

import (
	"context"
	"database/sql"
	"errors"

	"openmic/internal/domain"
)

const timeslotColumns = `id, event_id, name, start_time, end_time, duration_minutes, max_performers, sort_order, is_available, created_at, updated_at`

const insertTimeslotQuery = `
	INSERT INTO timeslots (event_id, name, start_time, end_time, duration_minutes, max_performers, sort_order, is_available, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
`

type timeslotRepository struct {
	DB *sql.DB
}

func NewTimeslotRepository(db *sql.DB) domain.TimeslotRepository {
	return &timeslotRepository{DB: db}
}

func scanTimeslot(row rowScanner) (*domain.Timeslot, error) {
	t := &domain.Timeslot{}
	if err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.StartTime, &t.EndTime, &t.DurationMinutes,
		&t.MaxPerformers, &t.SortOrder, &t.IsAvailable, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertTimeslot(ctx context.Context, q queryRower, t *domain.Timeslot) error {
	return q.QueryRowContext(ctx, insertTimeslotQuery, t.EventID, t.Name, t.StartTime, t.EndTime,
		t.DurationMinutes, t.MaxPerformers, t.SortOrder, t.IsAvailable, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

func (r *timeslotRepository) Create(ctx context.Context, t *domain.Timeslot) error {
	return insertTimeslot(ctx, r.DB, t)
}

func (r *timeslotRepository) GetByID(ctx context.Context, id string) (*domain.Timeslot, error) {
	t, err := scanTimeslot(r.DB.QueryRowContext(ctx, `SELECT `+timeslotColumns+` FROM timeslots WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *timeslotRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Timeslot, error) {
	query := `SELECT ` + timeslotColumns + ` FROM timeslots WHERE event_id = $1 ORDER BY sort_order, start_time`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]*domain.Timeslot, 0)
	for rows.Next() {
		t, err := scanTimeslot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, t)
	}
	return slots, rows.Err()
}

func (r *timeslotRepository) Update(ctx context.Context, t *domain.Timeslot) error {
	query := `
		UPDATE timeslots
		SET name = $2, start_time = $3, end_time = $4, duration_minutes = $5, sort_order = $6,
			is_available = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, t.ID, t.Name, t.StartTime, t.EndTime, t.DurationMinutes,
		t.SortOrder, t.IsAvailable, t.UpdatedAt)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func (r *timeslotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM timeslots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}

func (r *timeslotRepository) InsertBatch(ctx context.Context, eventID string, slots []*domain.Timeslot, replace bool) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if replace {
			if _, err := tx.ExecContext(ctx, `DELETE FROM timeslots WHERE event_id = $1`, eventID); err != nil {
				return err
			}
		} else {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM timeslots WHERE event_id = $1)`, eventID).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return domain.ErrTimeslotsExist
			}
		}

		for _, t := range slots {
			t.EventID = eventID
			if err := insertTimeslot(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}
