package dto

import (
	"time"

	"venue-staff/internal/domain/joinrequest"

	"github.com/google/uuid"
)

type JoinRequestResponse struct {
	ID           uuid.UUID  `json:"id"`
	VenueID      uuid.UUID  `json:"venue_id"`
	VenueName    string     `json:"venue_name"`
	UserID       uuid.UUID  `json:"user_id"`
	UserName     string     `json:"user_name"`
	UserEmail    string     `json:"user_email"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	DecidedBy    *uuid.UUID `json:"decided_by"`
	DecisionNote string     `json:"decision_note"`
	DecidedAt    *time.Time `json:"decided_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewJoinRequestResponse(r joinrequest.JoinRequest) JoinRequestResponse {
	return JoinRequestResponse{
		ID:           r.ID,
		VenueID:      r.VenueID,
		VenueName:    r.VenueName,
		UserID:       r.UserID,
		UserName:     r.UserName,
		UserEmail:    r.UserEmail,
		Message:      r.Message,
		Status:       string(r.Status),
		DecidedBy:    r.DecidedBy,
		DecisionNote: r.DecisionNote,
		DecidedAt:    r.DecidedAt,
		CreatedAt:    r.CreatedAt,
	}
}

func NewJoinRequestResponses(in []joinrequest.JoinRequest) []JoinRequestResponse {
	out := make([]JoinRequestResponse, 0, len(in))
	for _, r := range in {
		out = append(out, NewJoinRequestResponse(r))
	}
	return out
}
