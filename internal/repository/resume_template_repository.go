package repository

import (
	"context"
	"encoding/json"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/resume"

	"github.com/google/uuid"
)

const templateSelect = `SELECT id, venue_id, name, description, fields, is_active, created_at, updated_at FROM resume_templates`

type PostgresTemplateRepository struct {
	db database.DB
}

func NewPostgresTemplateRepository(db database.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{db: db}
}

func (r *PostgresTemplateRepository) Create(ctx context.Context, t resume.Template) error {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO resume_templates (id, venue_id, name, description, fields, is_active)
		 VALUES ($1, $2, $3, $4, $5::jsonb, false)`,
		t.ID, t.VenueID, t.Name, t.Description, string(fields),
	)
	return err
}

func (r *PostgresTemplateRepository) Update(ctx context.Context, t resume.Template) error {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return err
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE resume_templates SET name = $1, description = $2, fields = $3::jsonb, updated_at = now()
		 WHERE venue_id = $4 AND id = $5`,
		t.Name, t.Description, string(fields), t.VenueID, t.ID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return resume.ErrTemplateNotFound
	}
	return nil
}

func (r *PostgresTemplateRepository) Delete(ctx context.Context, venueID, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM resume_templates WHERE venue_id = $1 AND id = $2`, venueID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return resume.ErrTemplateNotFound
	}
	return nil
}

func (r *PostgresTemplateRepository) GetByID(ctx context.Context, venueID, id uuid.UUID) (resume.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx, templateSelect+` WHERE venue_id = $1 AND id = $2`, venueID, id))
	if err != nil {
		if database.IsNoRows(err) {
			return resume.Template{}, resume.ErrTemplateNotFound
		}
		return resume.Template{}, err
	}
	return t, nil
}

func (r *PostgresTemplateRepository) GetActive(ctx context.Context, venueID uuid.UUID) (resume.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx, templateSelect+` WHERE venue_id = $1 AND is_active`, venueID))
	if err != nil {
		if database.IsNoRows(err) {
			return resume.Template{}, resume.ErrNoActiveTemplate
		}
		return resume.Template{}, err
	}
	return t, nil
}

func (r *PostgresTemplateRepository) List(ctx context.Context, venueID uuid.UUID) ([]resume.Template, error) {
	rows, err := r.db.Query(ctx, templateSelect+` WHERE venue_id = $1 ORDER BY is_active DESC, created_at DESC`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]resume.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresTemplateRepository) Activate(ctx context.Context, venueID, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		var exists bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM resume_templates WHERE venue_id = $1 AND id = $2)`,
			venueID, id,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return resume.ErrTemplateNotFound
		}

		// The partial unique index allows one active row, so clear first.
		if _, err := q.Exec(ctx,
			`UPDATE resume_templates SET is_active = false, updated_at = now() WHERE venue_id = $1 AND is_active AND id <> $2`,
			venueID, id,
		); err != nil {
			return err
		}
		_, err := q.Exec(ctx,
			`UPDATE resume_templates SET is_active = true, updated_at = now() WHERE venue_id = $1 AND id = $2`,
			venueID, id,
		)
		return err
	})
}

func scanTemplate(row database.Row) (resume.Template, error) {
	var (
		t      resume.Template
		fields []byte
	)
	if err := row.Scan(&t.ID, &t.VenueID, &t.Name, &t.Description, &fields, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return resume.Template{}, err
	}
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return resume.Template{}, err
	}
	return t, nil
}
