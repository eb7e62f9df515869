package joinrequest

import (
	"context"
	"errors"
	"time"

	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type JoinRequest struct {
	ID           uuid.UUID
	VenueID      uuid.UUID
	VenueName    string
	UserID       uuid.UUID
	UserEmail    string
	UserName     string
	Message      string
	Status       Status
	DecidedBy    *uuid.UUID
	DecisionNote string
	DecidedAt    *time.Time
	CreatedAt    time.Time
}

var (
	ErrNotFound   = errors.New("join request not found")
	ErrNotPending = errors.New("join request is not pending")
	ErrDuplicate  = errors.New("pending join request already exists")
)

type Decision struct {
	RequestID uuid.UUID
	DecidedBy uuid.UUID
	Note      string
	At        time.Time
}

type Repository interface {
	Create(ctx context.Context, r JoinRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (JoinRequest, error)
	HasPending(ctx context.Context, venueID, userID uuid.UUID) (bool, error)
	ListForVenue(ctx context.Context, venueID uuid.UUID, status *Status) ([]JoinRequest, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]JoinRequest, error)
	// Approve marks the request approved and adds the requester to the venue
	// with role, atomically.
	Approve(ctx context.Context, d Decision, memberID uuid.UUID, role venue.Role) (JoinRequest, error)
	Decide(ctx context.Context, d Decision, to Status) (JoinRequest, error)
}
