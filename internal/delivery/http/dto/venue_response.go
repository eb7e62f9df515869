package dto

import (
	"time"

	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
)

type VenueResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	JoinCode  string    `json:"join_code,omitempty"`
	Timezone  string    `json:"timezone"`
	WeekStart int       `json:"week_start"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewVenueResponse(v venue.Venue, role venue.Role) VenueResponse {
	return VenueResponse{
		ID:        v.ID,
		Name:      v.Name,
		Slug:      v.Slug,
		JoinCode:  v.JoinCode,
		Timezone:  v.Timezone,
		WeekStart: int(v.WeekStart),
		Role:      string(role),
		CreatedAt: v.CreatedAt,
	}
}

func NewMembershipResponses(in []venue.Membership) []VenueResponse {
	out := make([]VenueResponse, 0, len(in))
	for _, m := range in {
		out = append(out, NewVenueResponse(m.Venue, m.Role))
	}
	return out
}

type MemberResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	LineLinked  bool      `json:"line_linked"`
	JoinedAt    time.Time `json:"joined_at"`
}

func NewMemberResponse(m venue.Member) MemberResponse {
	return MemberResponse{
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        string(m.Role),
		LineLinked:  m.LineUserID != nil && *m.LineUserID != "",
		JoinedAt:    m.CreatedAt,
	}
}

func NewMemberResponses(in []venue.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(in))
	for _, m := range in {
		out = append(out, NewMemberResponse(m))
	}
	return out
}
