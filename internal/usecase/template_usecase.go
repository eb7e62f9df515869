package usecase

import (
	"context"
	"errors"

	"venue-staff/internal/domain/resume"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TemplateInput struct {
	Name        string
	Description string
	Fields      []resume.Field
}

type TemplateUsecase interface {
	List(ctx context.Context, userID, venueID uuid.UUID) ([]resume.Template, error)
	Get(ctx context.Context, userID, venueID, templateID uuid.UUID) (resume.Template, error)
	Create(ctx context.Context, userID, venueID uuid.UUID, in TemplateInput) (resume.Template, error)
	Update(ctx context.Context, userID, venueID, templateID uuid.UUID, in TemplateInput) (resume.Template, error)
	Delete(ctx context.Context, userID, venueID, templateID uuid.UUID) error
	Activate(ctx context.Context, userID, venueID, templateID uuid.UUID) (resume.Template, error)
}

type Templates struct {
	templates resume.TemplateRepository
	access    access
	log       *zap.Logger
}

func NewTemplateUsecase(templates resume.TemplateRepository, venues venue.Repository, members venue.MemberRepository, log *zap.Logger) *Templates {
	log = logging.OrNop(log).Named("template")
	return &Templates{
		templates: templates,
		access:    access{venues: venues, members: members, log: log},
		log:       log,
	}
}

func (u *Templates) List(ctx context.Context, userID, venueID uuid.UUID) ([]resume.Template, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return nil, err
	}
	out, err := u.templates.List(ctx, venueID)
	if err != nil {
		return nil, internalErr(u.log, "list templates", err)
	}
	return out, nil
}

func (u *Templates) Get(ctx context.Context, userID, venueID, templateID uuid.UUID) (resume.Template, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Template{}, err
	}
	return u.get(ctx, venueID, templateID)
}

// Create stores a new, inactive template.
func (u *Templates) Create(ctx context.Context, userID, venueID uuid.UUID, in TemplateInput) (resume.Template, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Template{}, err
	}
	t := resume.Template{
		ID:          uuid.New(),
		VenueID:     venueID,
		Name:        in.Name,
		Description: in.Description,
		Fields:      in.Fields,
	}
	if err := t.Normalize(); err != nil {
		return resume.Template{}, err
	}
	if err := u.templates.Create(ctx, t); err != nil {
		return resume.Template{}, internalErr(u.log, "create template", err)
	}
	return u.get(ctx, venueID, t.ID)
}

// Update replaces name, description and the ordered field list.
func (u *Templates) Update(ctx context.Context, userID, venueID, templateID uuid.UUID, in TemplateInput) (resume.Template, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Template{}, err
	}
	t, err := u.get(ctx, venueID, templateID)
	if err != nil {
		return resume.Template{}, err
	}
	t.Name = in.Name
	t.Description = in.Description
	t.Fields = in.Fields
	if err := t.Normalize(); err != nil {
		return resume.Template{}, err
	}
	if err := u.templates.Update(ctx, t); err != nil {
		if errors.Is(err, resume.ErrTemplateNotFound) {
			return resume.Template{}, ErrTemplateNotFound
		}
		return resume.Template{}, internalErr(u.log, "update template", err)
	}
	return u.get(ctx, venueID, templateID)
}

// Delete removes an inactive template. The active one must be replaced first
// so the public form never disappears by accident.
func (u *Templates) Delete(ctx context.Context, userID, venueID, templateID uuid.UUID) error {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return err
	}
	t, err := u.get(ctx, venueID, templateID)
	if err != nil {
		return err
	}
	if t.IsActive {
		return ErrTemplateActive
	}
	if err := u.templates.Delete(ctx, venueID, templateID); err != nil {
		if errors.Is(err, resume.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		return internalErr(u.log, "delete template", err)
	}
	return nil
}

func (u *Templates) Activate(ctx context.Context, userID, venueID, templateID uuid.UUID) (resume.Template, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Template{}, err
	}
	if err := u.templates.Activate(ctx, venueID, templateID); err != nil {
		if errors.Is(err, resume.ErrTemplateNotFound) {
			return resume.Template{}, ErrTemplateNotFound
		}
		return resume.Template{}, internalErr(u.log, "activate template", err)
	}
	u.log.Info("template activated", zap.Stringer("venue_id", venueID), zap.Stringer("template_id", templateID))
	return u.get(ctx, venueID, templateID)
}

func (u *Templates) get(ctx context.Context, venueID, id uuid.UUID) (resume.Template, error) {
	t, err := u.templates.GetByID(ctx, venueID, id)
	if err != nil {
		if errors.Is(err, resume.ErrTemplateNotFound) {
			return resume.Template{}, ErrTemplateNotFound
		}
		return resume.Template{}, internalErr(u.log, "get template", err)
	}
	return t, nil
}
