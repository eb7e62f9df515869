package resume

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type ApplicantStatus string

const (
	StatusNew       ApplicantStatus = "new"
	StatusReviewing ApplicantStatus = "reviewing"
	StatusInterview ApplicantStatus = "interview"
	StatusHired     ApplicantStatus = "hired"
	StatusRejected  ApplicantStatus = "rejected"
)

var transitions = map[ApplicantStatus][]ApplicantStatus{
	StatusNew:       {StatusReviewing, StatusRejected},
	StatusReviewing: {StatusInterview, StatusRejected},
	StatusInterview: {StatusHired, StatusRejected},
}

func (s ApplicantStatus) Valid() bool {
	switch s {
	case StatusNew, StatusReviewing, StatusInterview, StatusHired, StatusRejected:
		return true
	}
	return false
}

func (s ApplicantStatus) CanTransitionTo(next ApplicantStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ResumeFile struct {
	ObjectKey string
	Filename  string
	Mime      string
	Size      int64
}

type Applicant struct {
	ID         uuid.UUID
	VenueID    uuid.UUID
	TemplateID *uuid.UUID
	FullName   string
	Email      string
	Phone      string
	Answers    map[string]any
	Status     ApplicantStatus
	Notes      string
	Resume     *ResumeFile
	ResumeText string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	ErrTemplateNotFound  = errors.New("resume template not found")
	ErrNoActiveTemplate  = errors.New("no active resume template")
	ErrApplicantNotFound = errors.New("applicant not found")
)

type TemplateRepository interface {
	Create(ctx context.Context, t Template) error
	Update(ctx context.Context, t Template) error
	Delete(ctx context.Context, venueID, id uuid.UUID) error
	GetByID(ctx context.Context, venueID, id uuid.UUID) (Template, error)
	GetActive(ctx context.Context, venueID uuid.UUID) (Template, error)
	List(ctx context.Context, venueID uuid.UUID) ([]Template, error)
	// Activate makes id the venue's only active template.
	Activate(ctx context.Context, venueID, id uuid.UUID) error
}

type ApplicantFilter struct {
	VenueID uuid.UUID
	Status  *ApplicantStatus
	Search  string
	Limit   int
	Offset  int
}

type ApplicantRepository interface {
	Create(ctx context.Context, a Applicant) error
	GetByID(ctx context.Context, venueID, id uuid.UUID) (Applicant, error)
	List(ctx context.Context, f ApplicantFilter) ([]Applicant, int, error)
	UpdateStatus(ctx context.Context, venueID, id uuid.UUID, from, to ApplicantStatus) error
	UpdateNotes(ctx context.Context, venueID, id uuid.UUID, notes string) error
	Delete(ctx context.Context, venueID, id uuid.UUID) error
}
