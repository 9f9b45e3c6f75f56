package postgres

import (
	"context"
	"database/sql"
	"errors"

	"openmic/internal/domain"
)

const signupColumns = `id, event_id, timeslot_id, performer_name, email, phone, performance_type, notes, signup_date`

type signupRepository struct {
	DB *sql.DB
}

func NewSignupRepository(db *sql.DB) domain.SignupRepository {
	return &signupRepository{DB: db}
}

func scanSignup(row rowScanner) (*domain.PerformerSignup, error) {
	s := &domain.PerformerSignup{}
	if err := row.Scan(&s.ID, &s.EventID, &s.TimeslotID, &s.PerformerName, &s.Email, &s.Phone,
		&s.PerformanceType, &s.Notes, &s.SignupDate); err != nil {
		return nil, err
	}
	return s, nil
}

// Reserve locks the event row, snapshots occupancy, runs check and inserts the
// signup, all inside one transaction. Concurrent reservations for the same event
// serialise on the row lock; the unique indexes catch anything that slips past.
func (r *signupRepository) Reserve(ctx context.Context, s *domain.PerformerSignup, check domain.SignupCheck) error {
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		event, err := scanEvent(tx.QueryRowContext(ctx,
			`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, s.EventID))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		snap := &domain.SignupSnapshot{Event: event}

		slot, err := scanTimeslot(tx.QueryRowContext(ctx,
			`SELECT `+timeslotColumns+` FROM timeslots WHERE id = $1 AND event_id = $2`, s.TimeslotID, s.EventID))
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			snap.Timeslot = slot
		}

		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*),
				COUNT(*) FILTER (WHERE timeslot_id = $2),
				COALESCE(bool_or(lower(email) = lower($3)), false)
			FROM performer_signups
			WHERE event_id = $1
		`, s.EventID, s.TimeslotID, s.Email).Scan(&snap.EventSignupCount, &snap.TimeslotSignupCount, &snap.EmailAlreadySignedUp)
		if err != nil {
			return err
		}

		if err := check(snap); err != nil {
			return err
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO performer_signups (event_id, timeslot_id, performer_name, email, phone, performance_type, notes, signup_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, s.EventID, s.TimeslotID, s.PerformerName, s.Email, s.Phone, s.PerformanceType, s.Notes, s.SignupDate).Scan(&s.ID)
	})
	switch {
	case isUniqueViolation(err, constraintSignupEventEmail):
		return domain.ErrDuplicateSignup
	case isUniqueViolation(err, constraintSignupTimeslot):
		return domain.ErrTimeslotFull
	}
	return err
}

func (r *signupRepository) GetByID(ctx context.Context, id string) (*domain.PerformerSignup, error) {
	s, err := scanSignup(r.DB.QueryRowContext(ctx, `SELECT `+signupColumns+` FROM performer_signups WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func (r *signupRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.PerformerSignup, error) {
	query := `SELECT ` + signupColumns + ` FROM performer_signups WHERE event_id = $1 ORDER BY signup_date`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signups := make([]*domain.PerformerSignup, 0)
	for rows.Next() {
		s, err := scanSignup(rows)
		if err != nil {
			return nil, err
		}
		signups = append(signups, s)
	}
	return signups, rows.Err()
}

func (r *signupRepository) CountByTimeslot(ctx context.Context, eventID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT timeslot_id, COUNT(*) FROM performer_signups WHERE event_id = $1 GROUP BY timeslot_id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slotID string
		var n int
		if err := rows.Scan(&slotID, &n); err != nil {
			return nil, err
		}
		counts[slotID] = n
	}
	return counts, rows.Err()
}

func (r *signupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM performer_signups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res, domain.ErrNotFound)
}
