package repository

import (
	"context"
	"strconv"
	"strings"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/shift"

	"github.com/google/uuid"
)

const shiftRequestSelect = `SELECT r.id, r.venue_id, r.user_id, u.display_name, r.work_date, r.start_minute, r.end_minute,
	r.note, r.status, r.decided_by, r.decision_note, r.decided_at, r.shift_id, r.created_at
	FROM shift_requests r
	JOIN users u ON u.id = r.user_id`

type PostgresShiftRequestRepository struct {
	db database.DB
}

func NewPostgresShiftRequestRepository(db database.DB) *PostgresShiftRequestRepository {
	return &PostgresShiftRequestRepository{db: db}
}

func (r *PostgresShiftRequestRepository) CreateBatch(ctx context.Context, reqs []shift.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		for _, req := range reqs {
			if _, err := q.Exec(ctx,
				`INSERT INTO shift_requests (id, venue_id, user_id, work_date, start_minute, end_minute, note, status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				req.ID, req.VenueID, req.UserID, req.WorkDate, req.StartMinute, req.EndMinute, req.Note,
				string(shift.RequestPending),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresShiftRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (shift.Request, error) {
	return getShiftRequest(ctx, r.db, id)
}

func (r *PostgresShiftRequestRepository) List(ctx context.Context, f shift.RequestFilter) ([]shift.Request, error) {
	where := []string{"r.venue_id = $1", "r.work_date >= $2", "r.work_date <= $3"}
	args := []any{f.VenueID, f.From, f.To}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, "r.user_id = $"+strconv.Itoa(len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, "r.status = $"+strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx,
		shiftRequestSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY r.work_date ASC, r.start_minute ASC, r.created_at ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shift.Request, 0)
	for rows.Next() {
		req, err := scanShiftRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresShiftRequestRepository) Approve(ctx context.Context, d shift.Decision, shiftID uuid.UUID) (shift.Request, shift.Shift, error) {
	var (
		req shift.Request
		s   shift.Shift
	)
	err := database.WithTx(ctx, r.db, func(q database.Querier) error {
		current, err := lockPendingShiftRequest(ctx, q, d.RequestID)
		if err != nil {
			return err
		}

		s = shift.Shift{
			ID:          shiftID,
			VenueID:     current.VenueID,
			UserID:      current.UserID,
			MemberName:  current.MemberName,
			WorkDate:    current.WorkDate,
			StartMinute: current.StartMinute,
			EndMinute:   current.EndMinute,
			Note:        current.Note,
			CreatedBy:   d.DecidedBy,
			CreatedAt:   d.At,
			UpdatedAt:   d.At,
		}
		if err := insertShift(ctx, q, s); err != nil {
			return err
		}

		if _, err := q.Exec(ctx,
			`UPDATE shift_requests
			 SET status = 'approved', decided_by = $1, decision_note = $2, decided_at = $3, shift_id = $4
			 WHERE id = $5`,
			d.DecidedBy, d.Note, d.At, shiftID, d.RequestID,
		); err != nil {
			return err
		}

		req, err = getShiftRequest(ctx, q, d.RequestID)
		return err
	})
	if err != nil {
		return shift.Request{}, shift.Shift{}, err
	}
	return req, s, nil
}

func (r *PostgresShiftRequestRepository) Decide(ctx context.Context, d shift.Decision, to shift.RequestStatus) (shift.Request, error) {
	var req shift.Request
	err := database.WithTx(ctx, r.db, func(q database.Querier) error {
		if _, err := lockPendingShiftRequest(ctx, q, d.RequestID); err != nil {
			return err
		}
		if _, err := q.Exec(ctx,
			`UPDATE shift_requests SET status = $1, decided_by = $2, decision_note = $3, decided_at = $4 WHERE id = $5`,
			string(to), d.DecidedBy, d.Note, d.At, d.RequestID,
		); err != nil {
			return err
		}
		var err error
		req, err = getShiftRequest(ctx, q, d.RequestID)
		return err
	})
	return req, err
}

func lockPendingShiftRequest(ctx context.Context, q database.Querier, id uuid.UUID) (shift.Request, error) {
	req, err := scanShiftRequest(q.QueryRow(ctx, shiftRequestSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return shift.Request{}, shift.ErrRequestNotFound
		}
		return shift.Request{}, err
	}
	if req.Status != shift.RequestPending {
		return shift.Request{}, shift.ErrNotPending
	}
	return req, nil
}

func getShiftRequest(ctx context.Context, q database.Querier, id uuid.UUID) (shift.Request, error) {
	req, err := scanShiftRequest(q.QueryRow(ctx, shiftRequestSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return shift.Request{}, shift.ErrRequestNotFound
		}
		return shift.Request{}, err
	}
	return req, nil
}

func scanShiftRequest(row database.Row) (shift.Request, error) {
	var (
		req    shift.Request
		status string
	)
	err := row.Scan(
		&req.ID, &req.VenueID, &req.UserID, &req.MemberName, &req.WorkDate, &req.StartMinute, &req.EndMinute,
		&req.Note, &status, &req.DecidedBy, &req.DecisionNote, &req.DecidedAt, &req.ShiftID, &req.CreatedAt,
	)
	if err != nil {
		return shift.Request{}, err
	}
	req.Status = shift.RequestStatus(status)
	return req, nil
}
