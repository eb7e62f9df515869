package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Kind string

const (
	KindJoinRequestApproved  Kind = "join_request_approved"
	KindJoinRequestRejected  Kind = "join_request_rejected"
	KindShiftRequestApproved Kind = "shift_request_approved"
	KindShiftRequestRejected Kind = "shift_request_rejected"
	KindApplicantReceived    Kind = "applicant_received"
)

var ErrMalformed = errors.New("malformed notification")

func (k Kind) Valid() bool {
	switch k {
	case KindJoinRequestApproved, KindJoinRequestRejected, KindShiftRequestApproved, KindShiftRequestRejected, KindApplicantReceived:
		return true
	}
	return false
}

// Notification is addressed to one person; channels without an address are
// skipped by the dispatcher.
type Notification struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	LineUserID string    `json:"line_user_id,omitempty"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Validate rejects messages no channel could deliver.
func (n Notification) Validate() error {
	switch {
	case !n.Kind.Valid():
		return fmt.Errorf("%w: unknown kind %q", ErrMalformed, n.Kind)
	case n.Email == "" && n.LineUserID == "":
		return fmt.Errorf("%w: no address", ErrMalformed)
	case n.Subject == "" && n.Body == "":
		return fmt.Errorf("%w: empty message", ErrMalformed)
	}
	return nil
}
