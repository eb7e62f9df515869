package shift

import (
	"time"

	"venue-staff/internal/pkg/calendar"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCancelled:
		return true
	}
	return false
}

// Shift is an assigned working slot. StartMinute/EndMinute are minutes after
// midnight on WorkDate; EndMinute <= StartMinute means it ends the next day.
type Shift struct {
	ID          uuid.UUID
	VenueID     uuid.UUID
	UserID      uuid.UUID
	MemberName  string
	WorkDate    time.Time
	StartMinute int
	EndMinute   int
	Note        string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s Shift) Span() calendar.Span {
	return calendar.Span{Date: s.WorkDate, Start: s.StartMinute, End: s.EndMinute}
}

type Request struct {
	ID           uuid.UUID
	VenueID      uuid.UUID
	UserID       uuid.UUID
	MemberName   string
	WorkDate     time.Time
	StartMinute  int
	EndMinute    int
	Note         string
	Status       RequestStatus
	DecidedBy    *uuid.UUID
	DecisionNote string
	DecidedAt    *time.Time
	ShiftID      *uuid.UUID
	CreatedAt    time.Time
}

func (r Request) Span() calendar.Span {
	return calendar.Span{Date: r.WorkDate, Start: r.StartMinute, End: r.EndMinute}
}
