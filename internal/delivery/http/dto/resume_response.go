package dto

import (
	"time"

	"venue-staff/internal/domain/resume"

	"github.com/google/uuid"
)

type TemplateResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Fields      []resume.Field `json:"fields"`
	IsActive    bool           `json:"is_active"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewTemplateResponse(t resume.Template) TemplateResponse {
	fields := t.Fields
	if fields == nil {
		fields = []resume.Field{}
	}
	return TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Fields:      fields,
		IsActive:    t.IsActive,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTemplateResponses(in []resume.Template) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(in))
	for _, t := range in {
		out = append(out, NewTemplateResponse(t))
	}
	return out
}

type ApplicationFormResponse struct {
	VenueName   string         `json:"venue_name"`
	VenueSlug   string         `json:"venue_slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []resume.Field `json:"fields"`
}

type ResumeFileResponse struct {
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Size     int64  `json:"size"`
}

type ApplicantResponse struct {
	ID         uuid.UUID           `json:"id"`
	TemplateID *uuid.UUID          `json:"template_id"`
	FullName   string              `json:"full_name"`
	Email      string              `json:"email"`
	Phone      string              `json:"phone"`
	Answers    map[string]any      `json:"answers"`
	Status     string              `json:"status"`
	Notes      string              `json:"notes"`
	Resume     *ResumeFileResponse `json:"resume"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func NewApplicantResponse(a resume.Applicant) ApplicantResponse {
	out := ApplicantResponse{
		ID:         a.ID,
		TemplateID: a.TemplateID,
		FullName:   a.FullName,
		Email:      a.Email,
		Phone:      a.Phone,
		Answers:    a.Answers,
		Status:     string(a.Status),
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if out.Answers == nil {
		out.Answers = map[string]any{}
	}
	if a.Resume != nil {
		out.Resume = &ResumeFileResponse{Filename: a.Resume.Filename, Mime: a.Resume.Mime, Size: a.Resume.Size}
	}
	return out
}

type ApplicantListResponse struct {
	Items []ApplicantResponse `json:"items"`
	Total int                 `json:"total"`
}

// ApplicationReceipt is what the public applicant sees after submitting.
type ApplicationReceipt struct {
	ID        uuid.UUID `json:"id"`
	HasResume bool      `json:"has_resume"`
	CreatedAt time.Time `json:"created_at"`
}
