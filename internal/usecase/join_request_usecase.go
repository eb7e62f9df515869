package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"venue-staff/internal/domain/joinrequest"
	"venue-staff/internal/domain/notification"
	"venue-staff/internal/domain/user"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLen = 500

type JoinRequestUsecase interface {
	Submit(ctx context.Context, userID uuid.UUID, joinCode, message string) (joinrequest.JoinRequest, error)
	ListForVenue(ctx context.Context, userID, venueID uuid.UUID, status *joinrequest.Status) ([]joinrequest.JoinRequest, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]joinrequest.JoinRequest, error)
	Approve(ctx context.Context, userID, requestID uuid.UUID, role venue.Role, note string) (joinrequest.JoinRequest, error)
	Reject(ctx context.Context, userID, requestID uuid.UUID, note string) (joinrequest.JoinRequest, error)
	Cancel(ctx context.Context, userID, requestID uuid.UUID) (joinrequest.JoinRequest, error)
}

type JoinRequests struct {
	requests joinrequest.Repository
	venues   venue.Repository
	members  venue.MemberRepository
	users    user.Repository
	access   access
	notify   notifier
	log      *zap.Logger

	now func() time.Time
}

func NewJoinRequestUsecase(
	requests joinrequest.Repository,
	venues venue.Repository,
	members venue.MemberRepository,
	users user.Repository,
	n notification.Notifier,
	log *zap.Logger,
) *JoinRequests {
	log = logging.OrNop(log).Named("join_request")
	return &JoinRequests{
		requests: requests,
		venues:   venues,
		members:  members,
		users:    users,
		access:   access{venues: venues, members: members, log: log},
		notify:   notifier{n: n, log: log},
		log:      log,
		now:      time.Now,
	}
}

func (u *JoinRequests) Submit(ctx context.Context, userID uuid.UUID, joinCode, message string) (joinrequest.JoinRequest, error) {
	code := NormalizeJoinCode(joinCode)
	message = strings.TrimSpace(message)
	if code == "" || utf8.RuneCountInString(message) > maxMessageLen {
		return joinrequest.JoinRequest{}, ErrInvalidInput
	}

	v, err := u.venues.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return joinrequest.JoinRequest{}, ErrVenueNotFound
		}
		return joinrequest.JoinRequest{}, internalErr(u.log, "get venue by code", err)
	}

	_, err = u.members.GetMember(ctx, v.ID, userID)
	if err == nil {
		return joinrequest.JoinRequest{}, ErrAlreadyMember
	}
	if !errors.Is(err, venue.ErrMemberNotFound) {
		return joinrequest.JoinRequest{}, internalErr(u.log, "get member", err)
	}

	pending, err := u.requests.HasPending(ctx, v.ID, userID)
	if err != nil {
		return joinrequest.JoinRequest{}, internalErr(u.log, "check pending join request", err)
	}
	if pending {
		return joinrequest.JoinRequest{}, ErrJoinRequestPending
	}

	jr := joinrequest.JoinRequest{
		ID:      uuid.New(),
		VenueID: v.ID,
		UserID:  userID,
		Message: message,
		Status:  joinrequest.StatusPending,
	}
	if err := u.requests.Create(ctx, jr); err != nil {
		if errors.Is(err, joinrequest.ErrDuplicate) {
			return joinrequest.JoinRequest{}, ErrJoinRequestPending
		}
		return joinrequest.JoinRequest{}, internalErr(u.log, "create join request", err)
	}
	return u.get(ctx, jr.ID)
}

func (u *JoinRequests) ListForVenue(ctx context.Context, userID, venueID uuid.UUID, status *joinrequest.Status) ([]joinrequest.JoinRequest, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidInput
	}
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return nil, err
	}
	out, err := u.requests.ListForVenue(ctx, venueID, status)
	if err != nil {
		return nil, internalErr(u.log, "list join requests", err)
	}
	return out, nil
}

func (u *JoinRequests) ListMine(ctx context.Context, userID uuid.UUID) ([]joinrequest.JoinRequest, error) {
	out, err := u.requests.ListForUser(ctx, userID)
	if err != nil {
		return nil, internalErr(u.log, "list my join requests", err)
	}
	return out, nil
}

// Approve admits the requester with role (staff when empty). Owners are only
// made through UpdateRole.
func (u *JoinRequests) Approve(ctx context.Context, userID, requestID uuid.UUID, role venue.Role, note string) (joinrequest.JoinRequest, error) {
	if role == "" {
		role = venue.RoleStaff
	}
	if !role.Valid() || role == venue.RoleOwner {
		return joinrequest.JoinRequest{}, ErrInvalidInput
	}

	jr, err := u.pendingForManager(ctx, userID, requestID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}

	d := joinrequest.Decision{RequestID: jr.ID, DecidedBy: userID, Note: strings.TrimSpace(note), At: u.now().UTC()}
	approved, err := u.requests.Approve(ctx, d, uuid.New(), role)
	if err != nil {
		return joinrequest.JoinRequest{}, u.decisionErr("approve join request", err)
	}

	u.log.Info("join request approved",
		zap.Stringer("request_id", jr.ID),
		zap.Stringer("venue_id", jr.VenueID),
		zap.String("role", string(role)),
	)
	u.notifyRequester(ctx, approved, notification.KindJoinRequestApproved,
		fmt.Sprintf("Welcome to %s", approved.VenueName),
		fmt.Sprintf("Your request to join %s was approved. You can now submit shift requests.", approved.VenueName),
	)
	return approved, nil
}

func (u *JoinRequests) Reject(ctx context.Context, userID, requestID uuid.UUID, note string) (joinrequest.JoinRequest, error) {
	jr, err := u.pendingForManager(ctx, userID, requestID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}

	note = strings.TrimSpace(note)
	d := joinrequest.Decision{RequestID: jr.ID, DecidedBy: userID, Note: note, At: u.now().UTC()}
	rejected, err := u.requests.Decide(ctx, d, joinrequest.StatusRejected)
	if err != nil {
		return joinrequest.JoinRequest{}, u.decisionErr("reject join request", err)
	}

	body := fmt.Sprintf("Your request to join %s was declined.", rejected.VenueName)
	if note != "" {
		body += "\n\n" + note
	}
	u.notifyRequester(ctx, rejected, notification.KindJoinRequestRejected,
		fmt.Sprintf("Your request to join %s", rejected.VenueName), body)
	return rejected, nil
}

func (u *JoinRequests) Cancel(ctx context.Context, userID, requestID uuid.UUID) (joinrequest.JoinRequest, error) {
	jr, err := u.get(ctx, requestID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if jr.UserID != userID {
		return joinrequest.JoinRequest{}, ErrForbidden
	}
	if jr.Status != joinrequest.StatusPending {
		return joinrequest.JoinRequest{}, ErrInvalidStatusTransition
	}

	d := joinrequest.Decision{RequestID: jr.ID, DecidedBy: userID, At: u.now().UTC()}
	cancelled, err := u.requests.Decide(ctx, d, joinrequest.StatusCancelled)
	if err != nil {
		return joinrequest.JoinRequest{}, u.decisionErr("cancel join request", err)
	}
	return cancelled, nil
}

func (u *JoinRequests) pendingForManager(ctx context.Context, userID, requestID uuid.UUID) (joinrequest.JoinRequest, error) {
	jr, err := u.get(ctx, requestID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if _, err := u.access.manager(ctx, jr.VenueID, userID); err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if jr.Status != joinrequest.StatusPending {
		return joinrequest.JoinRequest{}, ErrInvalidStatusTransition
	}
	return jr, nil
}

func (u *JoinRequests) get(ctx context.Context, id uuid.UUID) (joinrequest.JoinRequest, error) {
	jr, err := u.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, joinrequest.ErrNotFound) {
			return joinrequest.JoinRequest{}, ErrJoinRequestNotFound
		}
		return joinrequest.JoinRequest{}, internalErr(u.log, "get join request", err)
	}
	return jr, nil
}

func (u *JoinRequests) decisionErr(op string, err error) error {
	switch {
	case errors.Is(err, joinrequest.ErrNotPending):
		return ErrInvalidStatusTransition
	case errors.Is(err, joinrequest.ErrNotFound):
		return ErrJoinRequestNotFound
	}
	return internalErr(u.log, op, err)
}

func (u *JoinRequests) notifyRequester(ctx context.Context, jr joinrequest.JoinRequest, kind notification.Kind, subject, body string) {
	usr, err := u.users.GetByID(ctx, jr.UserID)
	if err != nil {
		u.log.Warn("notification recipient lookup failed", zap.Stringer("user_id", jr.UserID), zap.Error(err))
		return
	}
	u.notify.send(ctx, recipient{UserID: usr.ID, Email: usr.Email, LineUserID: usr.LineUserID}, kind, subject, body)
}
