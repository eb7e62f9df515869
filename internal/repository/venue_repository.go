package repository

import (
	"context"
	"time"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
)

const venueColumns = `v.id, v.name, v.slug, v.join_code, v.timezone, v.week_start, v.created_by, v.created_at, v.updated_at`

type PostgresVenueRepository struct {
	db database.DB
}

func NewPostgresVenueRepository(db database.DB) *PostgresVenueRepository {
	return &PostgresVenueRepository{db: db}
}

func (r *PostgresVenueRepository) CreateWithOwner(ctx context.Context, v venue.Venue, ownerMemberID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO venues (id, name, slug, join_code, timezone, week_start, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			v.ID, v.Name, v.Slug, v.JoinCode, v.Timezone, int16(v.WeekStart), v.CreatedBy,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return venue.ErrSlugTaken
			}
			return err
		}

		_, err = q.Exec(ctx,
			`INSERT INTO venue_members (id, venue_id, user_id, role) VALUES ($1, $2, $3, $4)`,
			ownerMemberID, v.ID, v.CreatedBy, string(venue.RoleOwner),
		)
		return err
	})
}

func (r *PostgresVenueRepository) GetByID(ctx context.Context, id uuid.UUID) (venue.Venue, error) {
	return scanVenue(r.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues v WHERE v.id = $1`, id))
}

func (r *PostgresVenueRepository) GetBySlug(ctx context.Context, slug string) (venue.Venue, error) {
	return scanVenue(r.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues v WHERE v.slug = $1`, slug))
}

func (r *PostgresVenueRepository) GetByJoinCode(ctx context.Context, code string) (venue.Venue, error) {
	return scanVenue(r.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues v WHERE v.join_code = $1`, code))
}

func (r *PostgresVenueRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM venues WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresVenueRepository) Update(ctx context.Context, v venue.Venue) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE venues SET name = $1, timezone = $2, week_start = $3, updated_at = now() WHERE id = $4`,
		v.Name, v.Timezone, int16(v.WeekStart), v.ID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return venue.ErrNotFound
	}
	return nil
}

func (r *PostgresVenueRepository) UpdateJoinCode(ctx context.Context, id uuid.UUID, code string) error {
	affected, err := r.db.Exec(ctx, `UPDATE venues SET join_code = $1, updated_at = now() WHERE id = $2`, code, id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return venue.ErrJoinCodeTaken
		}
		return err
	}
	if affected == 0 {
		return venue.ErrNotFound
	}
	return nil
}

func (r *PostgresVenueRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]venue.Membership, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+venueColumns+`, m.role
		 FROM venue_members m
		 JOIN venues v ON v.id = m.venue_id
		 WHERE m.user_id = $1
		 ORDER BY v.name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]venue.Membership, 0)
	for rows.Next() {
		var (
			v    venue.Venue
			ws   int16
			role string
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.Slug, &v.JoinCode, &v.Timezone, &ws, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt, &role); err != nil {
			return nil, err
		}
		v.WeekStart = time.Weekday(ws)
		out = append(out, venue.Membership{Venue: v, Role: venue.Role(role)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanVenue(row database.Row) (venue.Venue, error) {
	var (
		v  venue.Venue
		ws int16
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.JoinCode, &v.Timezone, &ws, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return venue.Venue{}, venue.ErrNotFound
		}
		return venue.Venue{}, err
	}
	v.WeekStart = time.Weekday(ws)
	return v, nil
}

type PostgresMemberRepository struct {
	db database.DB
}

func NewPostgresMemberRepository(db database.DB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db}
}

const memberSelect = `SELECT m.id, m.venue_id, m.user_id, m.role, u.email, u.display_name, u.line_user_id, m.created_at
	FROM venue_members m
	JOIN users u ON u.id = m.user_id`

func (r *PostgresMemberRepository) GetMember(ctx context.Context, venueID, userID uuid.UUID) (venue.Member, error) {
	row := r.db.QueryRow(ctx, memberSelect+` WHERE m.venue_id = $1 AND m.user_id = $2`, venueID, userID)
	m, err := scanMember(row)
	if err != nil {
		if database.IsNoRows(err) {
			return venue.Member{}, venue.ErrMemberNotFound
		}
		return venue.Member{}, err
	}
	return m, nil
}

func (r *PostgresMemberRepository) ListMembers(ctx context.Context, venueID uuid.UUID) ([]venue.Member, error) {
	return r.list(ctx, memberSelect+` WHERE m.venue_id = $1
		ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'manager' THEN 1 ELSE 2 END, u.display_name ASC`, venueID)
}

func (r *PostgresMemberRepository) ListByRoles(ctx context.Context, venueID uuid.UUID, roles ...venue.Role) ([]venue.Member, error) {
	rs := make([]string, 0, len(roles))
	for _, role := range roles {
		rs = append(rs, string(role))
	}
	return r.list(ctx, memberSelect+` WHERE m.venue_id = $1 AND m.role = ANY($2::text[]) ORDER BY u.display_name ASC`, venueID, rs)
}

// UpdateRole fails with venue.ErrLastOwner when it would demote the venue's
// only owner.
func (r *PostgresMemberRepository) UpdateRole(ctx context.Context, venueID, userID uuid.UUID, role venue.Role) error {
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		if role != venue.RoleOwner {
			if err := keepAnOwner(ctx, q, venueID, userID); err != nil {
				return err
			}
		}
		affected, err := q.Exec(ctx,
			`UPDATE venue_members SET role = $1 WHERE venue_id = $2 AND user_id = $3`,
			string(role), venueID, userID,
		)
		if err != nil {
			return err
		}
		if affected == 0 {
			return venue.ErrMemberNotFound
		}
		return nil
	})
}

// Remove fails with venue.ErrLastOwner when userID is the venue's only owner.
func (r *PostgresMemberRepository) Remove(ctx context.Context, venueID, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		if err := keepAnOwner(ctx, q, venueID, userID); err != nil {
			return err
		}
		affected, err := q.Exec(ctx, `DELETE FROM venue_members WHERE venue_id = $1 AND user_id = $2`, venueID, userID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return venue.ErrMemberNotFound
		}
		return nil
	})
}

// keepAnOwner locks the venue's owner rows until the transaction ends, so two
// owners stepping down at once are serialised and the second one sees the
// first one's change.
func keepAnOwner(ctx context.Context, q database.Querier, venueID, userID uuid.UUID) error {
	rows, err := q.Query(ctx,
		`SELECT user_id FROM venue_members WHERE venue_id = $1 AND role = $2 ORDER BY id FOR UPDATE`,
		venueID, string(venue.RoleOwner),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	owners, isOwner := 0, false
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		owners++
		if id == userID {
			isOwner = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if isOwner && owners <= 1 {
		return venue.ErrLastOwner
	}
	return nil
}

func (r *PostgresMemberRepository) list(ctx context.Context, q string, args ...any) ([]venue.Member, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]venue.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMember(row database.Row) (venue.Member, error) {
	var (
		m    venue.Member
		role string
	)
	if err := row.Scan(&m.ID, &m.VenueID, &m.UserID, &role, &m.Email, &m.DisplayName, &m.LineUserID, &m.CreatedAt); err != nil {
		return venue.Member{}, err
	}
	m.Role = venue.Role(role)
	return m, nil
}
