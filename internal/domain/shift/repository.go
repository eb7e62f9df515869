package shift

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("shift not found")
	ErrRequestNotFound = errors.New("shift request not found")
	ErrNotPending      = errors.New("shift request is not pending")
)

type Filter struct {
	VenueID uuid.UUID
	From    time.Time
	To      time.Time
	UserID  *uuid.UUID
}

type RequestFilter struct {
	VenueID uuid.UUID
	From    time.Time
	To      time.Time
	UserID  *uuid.UUID
	Status  *RequestStatus
}

type Repository interface {
	Create(ctx context.Context, s Shift) error
	Update(ctx context.Context, s Shift) error
	Delete(ctx context.Context, venueID, id uuid.UUID) error
	GetByID(ctx context.Context, venueID, id uuid.UUID) (Shift, error)
	List(ctx context.Context, f Filter) ([]Shift, error)
}

type Decision struct {
	RequestID uuid.UUID
	DecidedBy uuid.UUID
	Note      string
	At        time.Time
}

type RequestRepository interface {
	// CreateBatch inserts every request or none.
	CreateBatch(ctx context.Context, reqs []Request) error
	GetByID(ctx context.Context, id uuid.UUID) (Request, error)
	List(ctx context.Context, f RequestFilter) ([]Request, error)
	// Approve marks the request approved and creates shift from it atomically.
	Approve(ctx context.Context, d Decision, shiftID uuid.UUID) (Request, Shift, error)
	Decide(ctx context.Context, d Decision, to RequestStatus) (Request, error)
}
