package postgres

import (
	"context"
	"strconv"
	"strings"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/user"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, display_name, line_user_id, created_at, updated_at`

type UserRepository struct {
	db database.DB
}

func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, line_user_id) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.LineUserID,
	)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, in user.ProfileUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if in.DisplayName != nil {
		add("display_name", *in.DisplayName)
	}
	if in.LineUserID != nil {
		if strings.TrimSpace(*in.LineUserID) == "" {
			add("line_user_id", nil)
		} else {
			add("line_user_id", *in.LineUserID)
		}
	}
	if in.PasswordHash != nil {
		add("password_hash", *in.PasswordHash)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + `, updated_at = now() WHERE id = $` + strconv.Itoa(len(args))
	affected, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.LineUserID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
