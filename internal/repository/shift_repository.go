package repository

import (
	"context"
	"strconv"
	"strings"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/shift"

	"github.com/google/uuid"
)

const shiftSelect = `SELECT s.id, s.venue_id, s.user_id, u.display_name, s.work_date, s.start_minute, s.end_minute,
	s.note, s.created_by, s.created_at, s.updated_at
	FROM shifts s
	JOIN users u ON u.id = s.user_id`

type PostgresShiftRepository struct {
	db database.DB
}

func NewPostgresShiftRepository(db database.DB) *PostgresShiftRepository {
	return &PostgresShiftRepository{db: db}
}

func (r *PostgresShiftRepository) Create(ctx context.Context, s shift.Shift) error {
	return insertShift(ctx, r.db, s)
}

func (r *PostgresShiftRepository) Update(ctx context.Context, s shift.Shift) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE shifts
		 SET user_id = $1, work_date = $2, start_minute = $3, end_minute = $4, note = $5, updated_at = now()
		 WHERE venue_id = $6 AND id = $7`,
		s.UserID, s.WorkDate, s.StartMinute, s.EndMinute, s.Note, s.VenueID, s.ID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return shift.ErrNotFound
	}
	return nil
}

func (r *PostgresShiftRepository) Delete(ctx context.Context, venueID, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM shifts WHERE venue_id = $1 AND id = $2`, venueID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return shift.ErrNotFound
	}
	return nil
}

func (r *PostgresShiftRepository) GetByID(ctx context.Context, venueID, id uuid.UUID) (shift.Shift, error) {
	s, err := scanShift(r.db.QueryRow(ctx, shiftSelect+` WHERE s.venue_id = $1 AND s.id = $2`, venueID, id))
	if err != nil {
		if database.IsNoRows(err) {
			return shift.Shift{}, shift.ErrNotFound
		}
		return shift.Shift{}, err
	}
	return s, nil
}

// List returns shifts whose work date falls in [From, To], both inclusive.
func (r *PostgresShiftRepository) List(ctx context.Context, f shift.Filter) ([]shift.Shift, error) {
	where := []string{"s.venue_id = $1", "s.work_date >= $2", "s.work_date <= $3"}
	args := []any{f.VenueID, f.From, f.To}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, "s.user_id = $"+strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx,
		shiftSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY s.work_date ASC, s.start_minute ASC, u.display_name ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shift.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertShift(ctx context.Context, q database.Querier, s shift.Shift) error {
	_, err := q.Exec(ctx,
		`INSERT INTO shifts (id, venue_id, user_id, work_date, start_minute, end_minute, note, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.VenueID, s.UserID, s.WorkDate, s.StartMinute, s.EndMinute, s.Note, s.CreatedBy,
	)
	return err
}

func scanShift(row database.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID, &s.VenueID, &s.UserID, &s.MemberName, &s.WorkDate, &s.StartMinute, &s.EndMinute,
		&s.Note, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
