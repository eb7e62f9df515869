package dto

import (
	"time"

	"venue-staff/internal/domain/shift"
	"venue-staff/internal/pkg/calendar"
	"venue-staff/internal/usecase"

	"github.com/google/uuid"
)

type ShiftResponse struct {
	ID              uuid.UUID `json:"id"`
	VenueID         uuid.UUID `json:"venue_id"`
	UserID          uuid.UUID `json:"user_id"`
	MemberName      string    `json:"member_name"`
	Date            string    `json:"date"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Overnight       bool      `json:"overnight"`
	Note            string    `json:"note"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewShiftResponse(s shift.Shift) ShiftResponse {
	span := s.Span()
	return ShiftResponse{
		ID:              s.ID,
		VenueID:         s.VenueID,
		UserID:          s.UserID,
		MemberName:      s.MemberName,
		Date:            calendar.FormatDate(s.WorkDate),
		Start:           calendar.FormatClock(s.StartMinute),
		End:             calendar.FormatClock(s.EndMinute),
		DurationMinutes: span.DurationMinutes(),
		Overnight:       span.Overnight(),
		Note:            s.Note,
		UpdatedAt:       s.UpdatedAt,
	}
}

func NewShiftResponses(in []shift.Shift) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(in))
	for _, s := range in {
		out = append(out, NewShiftResponse(s))
	}
	return out
}

type ShiftRequestResponse struct {
	ID              uuid.UUID  `json:"id"`
	VenueID         uuid.UUID  `json:"venue_id"`
	UserID          uuid.UUID  `json:"user_id"`
	MemberName      string     `json:"member_name"`
	Date            string     `json:"date"`
	Start           string     `json:"start"`
	End             string     `json:"end"`
	DurationMinutes int        `json:"duration_minutes"`
	Overnight       bool       `json:"overnight"`
	Note            string     `json:"note"`
	Status          string     `json:"status"`
	DecisionNote    string     `json:"decision_note"`
	DecidedAt       *time.Time `json:"decided_at"`
	ShiftID         *uuid.UUID `json:"shift_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewShiftRequestResponse(r shift.Request) ShiftRequestResponse {
	span := r.Span()
	return ShiftRequestResponse{
		ID:              r.ID,
		VenueID:         r.VenueID,
		UserID:          r.UserID,
		MemberName:      r.MemberName,
		Date:            calendar.FormatDate(r.WorkDate),
		Start:           calendar.FormatClock(r.StartMinute),
		End:             calendar.FormatClock(r.EndMinute),
		DurationMinutes: span.DurationMinutes(),
		Overnight:       span.Overnight(),
		Note:            r.Note,
		Status:          string(r.Status),
		DecisionNote:    r.DecisionNote,
		DecidedAt:       r.DecidedAt,
		ShiftID:         r.ShiftID,
		CreatedAt:       r.CreatedAt,
	}
}

func NewShiftRequestResponses(in []shift.Request) []ShiftRequestResponse {
	out := make([]ShiftRequestResponse, 0, len(in))
	for _, r := range in {
		out = append(out, NewShiftRequestResponse(r))
	}
	return out
}

type PreviewEntryResponse struct {
	Date            string   `json:"date"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	Note            string   `json:"note"`
	DurationMinutes int      `json:"duration_minutes"`
	Overnight       bool     `json:"overnight"`
	Problems        []string `json:"problems"`
}

// PreviewResponse is the wizard's confirmation step. It is also the error
// payload when a submission is rejected.
type PreviewResponse struct {
	Month        string                 `json:"month"`
	Entries      []PreviewEntryResponse `json:"entries"`
	TotalMinutes int                    `json:"total_minutes"`
	Valid        bool                   `json:"valid"`
}

func NewPreviewResponse(p usecase.ShiftPreview) PreviewResponse {
	out := PreviewResponse{
		Month:        p.Month.String(),
		Entries:      make([]PreviewEntryResponse, 0, len(p.Entries)),
		TotalMinutes: p.TotalMinutes,
		Valid:        p.Valid,
	}
	for _, e := range p.Entries {
		row := PreviewEntryResponse{
			Note:            e.Note,
			DurationMinutes: e.DurationMinutes,
			Overnight:       e.Overnight,
			Problems:        e.Problems,
		}
		if row.Problems == nil {
			row.Problems = []string{}
		}
		if !e.Date.IsZero() {
			row.Date = calendar.FormatDate(e.Date)
		}
		if e.DurationMinutes > 0 {
			row.Start = calendar.FormatClock(e.StartMinute)
			row.End = calendar.FormatClock(e.EndMinute)
		}
		out.Entries = append(out.Entries, row)
	}
	return out
}
