package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"venue-staff/internal/database"
	"venue-staff/internal/domain/resume"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoOwnerEmail = "owner@demo.venue"
	DemoVenueSlug  = "demo-lounge"
	demoJoinCode   = "DEMO2026"
)

// DemoVenueSeeder creates an owner account, a venue and an active application
// template so a fresh database has something to click through. Re-running it
// leaves existing rows alone.
type DemoVenueSeeder struct {
	Password string
}

func (DemoVenueSeeder) Name() string { return "demo_venue" }

func (s DemoVenueSeeder) Run(ctx context.Context, db database.DB) error {
	for table, cols := range map[string][]string{
		"users":            {"id", "email", "password_hash", "display_name"},
		"venues":           {"id", "name", "slug", "join_code", "timezone", "week_start", "created_by"},
		"venue_members":    {"id", "venue_id", "user_id", "role"},
		"resume_templates": {"id", "venue_id", "name", "description", "fields", "is_active"},
	} {
		if err := EnsureTableColumns(ctx, db, table, cols...); err != nil {
			return err
		}
	}

	password := s.Password
	if password == "" {
		password = "password123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fields, err := json.Marshal(defaultTemplateFields())
	if err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(q database.Querier) error {
		var ownerID uuid.UUID
		err := q.QueryRow(ctx,
			`INSERT INTO users (id, email, password_hash, display_name)
			 VALUES ($1, $2, $3, 'Demo Owner')
			 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
			 RETURNING id`,
			uuid.New(), DemoOwnerEmail, string(hash),
		).Scan(&ownerID)
		if err != nil {
			return fmt.Errorf("owner: %w", err)
		}

		var venueID uuid.UUID
		err = q.QueryRow(ctx,
			`INSERT INTO venues (id, name, slug, join_code, timezone, week_start, created_by)
			 VALUES ($1, 'Demo Lounge', $2, $3, 'Asia/Tokyo', 0, $4)
			 ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			 RETURNING id`,
			uuid.New(), DemoVenueSlug, demoJoinCode, ownerID,
		).Scan(&venueID)
		if err != nil {
			return fmt.Errorf("venue: %w", err)
		}

		if _, err := q.Exec(ctx,
			`INSERT INTO venue_members (id, venue_id, user_id, role)
			 VALUES ($1, $2, $3, 'owner')
			 ON CONFLICT (venue_id, user_id) DO NOTHING`,
			uuid.New(), venueID, ownerID,
		); err != nil {
			return fmt.Errorf("owner membership: %w", err)
		}

		if _, err := q.Exec(ctx,
			`INSERT INTO resume_templates (id, venue_id, name, description, fields, is_active)
			 SELECT $1, $2, 'Floor staff', 'Tell us a little about yourself.', $3::jsonb, true
			 WHERE NOT EXISTS (SELECT 1 FROM resume_templates WHERE venue_id = $2)`,
			uuid.New(), venueID, string(fields),
		); err != nil {
			return fmt.Errorf("template: %w", err)
		}
		return nil
	})
}

func defaultTemplateFields() []resume.Field {
	return []resume.Field{
		{Key: "age", Label: "Age", Type: resume.FieldNumber, Required: true},
		{Key: "experience", Label: "Nightlife experience", Type: resume.FieldTextarea},
		{Key: "availability", Label: "Preferred nights", Type: resume.FieldSelect, Required: true,
			Options: []string{"weekdays", "weekends", "any"}},
		{Key: "start_date", Label: "Earliest start date", Type: resume.FieldDate},
		{Key: "agree_terms", Label: "I agree to be contacted", Type: resume.FieldCheckbox, Required: true},
	}
}
