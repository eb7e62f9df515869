package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/resume"

	"github.com/google/uuid"
)

const applicantColumns = `id, venue_id, template_id, full_name, email, phone, answers, status, notes,
	resume_object_key, resume_filename, resume_mime, resume_size, resume_text, created_at, updated_at`

type PostgresApplicantRepository struct {
	db database.DB
}

func NewPostgresApplicantRepository(db database.DB) *PostgresApplicantRepository {
	return &PostgresApplicantRepository{db: db}
}

func (r *PostgresApplicantRepository) Create(ctx context.Context, a resume.Applicant) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}

	var (
		key, filename, mime *string
		size                *int64
	)
	if a.Resume != nil {
		key, filename, mime, size = &a.Resume.ObjectKey, &a.Resume.Filename, &a.Resume.Mime, &a.Resume.Size
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO applicants (id, venue_id, template_id, full_name, email, phone, answers, status,
			resume_object_key, resume_filename, resume_mime, resume_size, resume_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.VenueID, a.TemplateID, a.FullName, a.Email, a.Phone, string(answers), string(resume.StatusNew),
		key, filename, mime, size, a.ResumeText,
	)
	return err
}

func (r *PostgresApplicantRepository) GetByID(ctx context.Context, venueID, id uuid.UUID) (resume.Applicant, error) {
	a, err := scanApplicant(r.db.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE venue_id = $1 AND id = $2`,
		venueID, id,
	))
	if err != nil {
		if database.IsNoRows(err) {
			return resume.Applicant{}, resume.ErrApplicantNotFound
		}
		return resume.Applicant{}, err
	}
	return a, nil
}

// List pages through a venue's applicants, newest first. Search matches name,
// email and the extracted resume text case-insensitively.
func (r *PostgresApplicantRepository) List(ctx context.Context, f resume.ApplicantFilter) ([]resume.Applicant, int, error) {
	where := []string{"venue_id = $1"}
	args := []any{f.VenueID}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		p := "$" + strconv.Itoa(len(args))
		where = append(where, "(full_name ILIKE "+p+" OR email ILIKE "+p+" OR resume_text ILIKE "+p+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM applicants WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE `+cond+
			` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]resume.Applicant, 0)
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus moves the applicant from -> to. It fails with
// ErrApplicantNotFound when the row is gone or its status is no longer from.
func (r *PostgresApplicantRepository) UpdateStatus(ctx context.Context, venueID, id uuid.UUID, from, to resume.ApplicantStatus) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE applicants SET status = $1, updated_at = now() WHERE venue_id = $2 AND id = $3 AND status = $4`,
		string(to), venueID, id, string(from),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return resume.ErrApplicantNotFound
	}
	return nil
}

func (r *PostgresApplicantRepository) UpdateNotes(ctx context.Context, venueID, id uuid.UUID, notes string) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE applicants SET notes = $1, updated_at = now() WHERE venue_id = $2 AND id = $3`,
		notes, venueID, id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return resume.ErrApplicantNotFound
	}
	return nil
}

func (r *PostgresApplicantRepository) Delete(ctx context.Context, venueID, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM applicants WHERE venue_id = $1 AND id = $2`, venueID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return resume.ErrApplicantNotFound
	}
	return nil
}

func scanApplicant(row database.Row) (resume.Applicant, error) {
	var (
		a                   resume.Applicant
		answers             []byte
		status              string
		key, filename, mime *string
		size                *int64
	)
	err := row.Scan(
		&a.ID, &a.VenueID, &a.TemplateID, &a.FullName, &a.Email, &a.Phone, &answers, &status, &a.Notes,
		&key, &filename, &mime, &size, &a.ResumeText, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return resume.Applicant{}, err
	}
	a.Status = resume.ApplicantStatus(status)
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return resume.Applicant{}, err
	}
	if key != nil {
		a.Resume = &resume.ResumeFile{ObjectKey: *key}
		if filename != nil {
			a.Resume.Filename = *filename
		}
		if mime != nil {
			a.Resume.Mime = *mime
		}
		if size != nil {
			a.Resume.Size = *size
		}
	}
	return a, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
