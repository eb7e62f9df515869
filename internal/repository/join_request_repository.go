package repository

import (
	"context"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/joinrequest"
	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
)

const joinRequestSelect = `SELECT jr.id, jr.venue_id, v.name, jr.user_id, u.email, u.display_name,
	jr.message, jr.status, jr.decided_by, jr.decision_note, jr.decided_at, jr.created_at
	FROM join_requests jr
	JOIN venues v ON v.id = jr.venue_id
	JOIN users u ON u.id = jr.user_id`

type PostgresJoinRequestRepository struct {
	db database.DB
}

func NewPostgresJoinRequestRepository(db database.DB) *PostgresJoinRequestRepository {
	return &PostgresJoinRequestRepository{db: db}
}

func (r *PostgresJoinRequestRepository) Create(ctx context.Context, jr joinrequest.JoinRequest) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO join_requests (id, venue_id, user_id, message, status) VALUES ($1, $2, $3, $4, $5)`,
		jr.ID, jr.VenueID, jr.UserID, jr.Message, string(joinrequest.StatusPending),
	)
	if err != nil && database.IsUniqueViolation(err) {
		return joinrequest.ErrDuplicate
	}
	return err
}

func (r *PostgresJoinRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (joinrequest.JoinRequest, error) {
	return getJoinRequest(ctx, r.db, id)
}

func (r *PostgresJoinRequestRepository) HasPending(ctx context.Context, venueID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM join_requests WHERE venue_id = $1 AND user_id = $2 AND status = 'pending')`,
		venueID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *PostgresJoinRequestRepository) ListForVenue(ctx context.Context, venueID uuid.UUID, status *joinrequest.Status) ([]joinrequest.JoinRequest, error) {
	if status != nil {
		return r.list(ctx, joinRequestSelect+` WHERE jr.venue_id = $1 AND jr.status = $2 ORDER BY jr.created_at ASC`, venueID, string(*status))
	}
	return r.list(ctx, joinRequestSelect+` WHERE jr.venue_id = $1 ORDER BY jr.created_at DESC`, venueID)
}

func (r *PostgresJoinRequestRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]joinrequest.JoinRequest, error) {
	return r.list(ctx, joinRequestSelect+` WHERE jr.user_id = $1 ORDER BY jr.created_at DESC`, userID)
}

func (r *PostgresJoinRequestRepository) Approve(ctx context.Context, d joinrequest.Decision, memberID uuid.UUID, role venue.Role) (joinrequest.JoinRequest, error) {
	var out joinrequest.JoinRequest
	err := database.WithTx(ctx, r.db, func(q database.Querier) error {
		var venueID, userID uuid.UUID
		if err := decideJoinRequest(ctx, q, d, joinrequest.StatusApproved).Scan(&venueID, &userID); err != nil {
			return joinRequestDecisionErr(ctx, q, d.RequestID, err)
		}

		// Already a member (e.g. added by hand meanwhile): keep the existing role.
		if _, err := q.Exec(ctx,
			`INSERT INTO venue_members (id, venue_id, user_id, role) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (venue_id, user_id) DO NOTHING`,
			memberID, venueID, userID, string(role),
		); err != nil {
			return err
		}

		jr, err := getJoinRequest(ctx, q, d.RequestID)
		if err != nil {
			return err
		}
		out = jr
		return nil
	})
	return out, err
}

func (r *PostgresJoinRequestRepository) Decide(ctx context.Context, d joinrequest.Decision, to joinrequest.Status) (joinrequest.JoinRequest, error) {
	var venueID, userID uuid.UUID
	if err := decideJoinRequest(ctx, r.db, d, to).Scan(&venueID, &userID); err != nil {
		return joinrequest.JoinRequest{}, joinRequestDecisionErr(ctx, r.db, d.RequestID, err)
	}
	return getJoinRequest(ctx, r.db, d.RequestID)
}

func (r *PostgresJoinRequestRepository) list(ctx context.Context, q string, args ...any) ([]joinrequest.JoinRequest, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]joinrequest.JoinRequest, 0)
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decideJoinRequest(ctx context.Context, q database.Querier, d joinrequest.Decision, to joinrequest.Status) database.Row {
	return q.QueryRow(ctx,
		`UPDATE join_requests
		 SET status = $1, decided_by = $2, decision_note = $3, decided_at = $4
		 WHERE id = $5 AND status = 'pending'
		 RETURNING venue_id, user_id`,
		string(to), d.DecidedBy, d.Note, d.At, d.RequestID,
	)
}

// joinRequestDecisionErr tells a missing request apart from one that was
// already decided when the conditional update matched nothing.
func joinRequestDecisionErr(ctx context.Context, q database.Querier, id uuid.UUID, err error) error {
	if !database.IsNoRows(err) {
		return err
	}
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM join_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return joinrequest.ErrNotPending
	}
	return joinrequest.ErrNotFound
}

func getJoinRequest(ctx context.Context, q database.Querier, id uuid.UUID) (joinrequest.JoinRequest, error) {
	jr, err := scanJoinRequest(q.QueryRow(ctx, joinRequestSelect+` WHERE jr.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return joinrequest.JoinRequest{}, joinrequest.ErrNotFound
		}
		return joinrequest.JoinRequest{}, err
	}
	return jr, nil
}

func scanJoinRequest(row database.Row) (joinrequest.JoinRequest, error) {
	var (
		jr     joinrequest.JoinRequest
		status string
	)
	err := row.Scan(
		&jr.ID, &jr.VenueID, &jr.VenueName, &jr.UserID, &jr.UserEmail, &jr.UserName,
		&jr.Message, &status, &jr.DecidedBy, &jr.DecisionNote, &jr.DecidedAt, &jr.CreatedAt,
	)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	jr.Status = joinrequest.Status(status)
	return jr, nil
}
