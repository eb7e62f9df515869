package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venue-staff/internal/domain/notification"
	"venue-staff/internal/domain/shift"
	"venue-staff/internal/domain/user"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"
	"venue-staff/internal/pkg/calendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShiftRequestUsecase interface {
	Preview(ctx context.Context, userID, venueID uuid.UUID, month string, entries []ShiftEntryInput) (ShiftPreview, error)
	Submit(ctx context.Context, userID, venueID uuid.UUID, month string, entries []ShiftEntryInput) ([]shift.Request, error)
	ListForVenue(ctx context.Context, userID, venueID uuid.UUID, month string, status *shift.RequestStatus) ([]shift.Request, error)
	ListMine(ctx context.Context, userID, venueID uuid.UUID, month string) ([]shift.Request, error)
	Approve(ctx context.Context, userID, requestID uuid.UUID, note string) (shift.Request, error)
	Reject(ctx context.Context, userID, requestID uuid.UUID, note string) (shift.Request, error)
	Cancel(ctx context.Context, userID, requestID uuid.UUID) (shift.Request, error)
}

type ShiftRequests struct {
	requests shift.RequestRepository
	shifts   shift.Repository
	users    user.Repository
	access   access
	events   scheduleEvents
	notify   notifier
	log      *zap.Logger

	now func() time.Time
}

type ShiftRequestDeps struct {
	Requests    shift.RequestRepository
	Shifts      shift.Repository
	Venues      venue.Repository
	Members     venue.MemberRepository
	Users       user.Repository
	Cache       CalendarCache
	Broadcaster ScheduleBroadcaster
	Notifier    notification.Notifier
	Logger      *zap.Logger
}

func NewShiftRequestUsecase(d ShiftRequestDeps) *ShiftRequests {
	log := logging.OrNop(d.Logger).Named("shift_request")
	return &ShiftRequests{
		requests: d.Requests,
		shifts:   d.Shifts,
		users:    d.Users,
		access:   access{venues: d.Venues, members: d.Members, log: log},
		events:   scheduleEvents{cache: d.Cache, broadcaster: d.Broadcaster, log: log},
		notify:   notifier{n: d.Notifier, log: log},
		log:      log,
		now:      time.Now,
	}
}

// Preview runs every submission rule without writing anything.
func (u *ShiftRequests) Preview(ctx context.Context, userID, venueID uuid.UUID, month string, entries []ShiftEntryInput) (ShiftPreview, error) {
	if _, err := u.access.member(ctx, venueID, userID); err != nil {
		return ShiftPreview{}, err
	}
	return u.preview(ctx, userID, venueID, month, entries)
}

// Submit stores every entry as a pending request, or none of them when any
// entry has a problem.
func (u *ShiftRequests) Submit(ctx context.Context, userID, venueID uuid.UUID, month string, entries []ShiftEntryInput) ([]shift.Request, error) {
	if _, err := u.access.member(ctx, venueID, userID); err != nil {
		return nil, err
	}
	p, err := u.preview(ctx, userID, venueID, month, entries)
	if err != nil {
		return nil, err
	}
	if !p.Valid {
		return nil, &InvalidEntriesError{Preview: p}
	}

	now := u.now().UTC()
	reqs := make([]shift.Request, 0, len(p.Entries))
	for _, e := range p.Entries {
		reqs = append(reqs, shift.Request{
			ID:          uuid.New(),
			VenueID:     venueID,
			UserID:      userID,
			WorkDate:    e.Date,
			StartMinute: e.StartMinute,
			EndMinute:   e.EndMinute,
			Note:        e.Note,
			Status:      shift.RequestPending,
			CreatedAt:   now,
		})
	}
	if err := u.requests.CreateBatch(ctx, reqs); err != nil {
		return nil, internalErr(u.log, "create shift requests", err)
	}

	u.log.Info("shift requests submitted",
		zap.Stringer("venue_id", venueID),
		zap.Stringer("user_id", userID),
		zap.String("month", p.Month.String()),
		zap.Int("count", len(reqs)),
	)
	return reqs, nil
}

func (u *ShiftRequests) preview(ctx context.Context, userID, venueID uuid.UUID, month string, entries []ShiftEntryInput) (ShiftPreview, error) {
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return ShiftPreview{}, ErrInvalidInput
	}
	if len(entries) == 0 || len(entries) > maxEntriesPerSubmit {
		return ShiftPreview{}, ErrInvalidInput
	}

	v, err := u.access.venue(ctx, venueID)
	if err != nil {
		return ShiftPreview{}, err
	}
	today := calendar.DateIn(u.now(), v.Location())

	existing, err := u.busySpans(ctx, venueID, userID, m.First().AddDate(0, 0, -1), m.Last().AddDate(0, 0, 1))
	if err != nil {
		return ShiftPreview{}, err
	}
	return buildPreview(m, today, entries, existing), nil
}

// busySpans collects the member's pending and approved requests plus assigned
// shifts with a work date in [from, to].
func (u *ShiftRequests) busySpans(ctx context.Context, venueID, userID uuid.UUID, from, to time.Time) ([]calendar.Span, error) {
	reqs, err := u.requests.List(ctx, shift.RequestFilter{VenueID: venueID, From: from, To: to, UserID: &userID})
	if err != nil {
		return nil, internalErr(u.log, "list shift requests", err)
	}
	shifts, err := u.shifts.List(ctx, shift.Filter{VenueID: venueID, From: from, To: to, UserID: &userID})
	if err != nil {
		return nil, internalErr(u.log, "list shifts", err)
	}

	out := make([]calendar.Span, 0, len(reqs)+len(shifts))
	for _, r := range reqs {
		if r.Status == shift.RequestPending || r.Status == shift.RequestApproved {
			out = append(out, r.Span())
		}
	}
	for _, s := range shifts {
		out = append(out, s.Span())
	}
	return out, nil
}

func (u *ShiftRequests) ListForVenue(ctx context.Context, userID, venueID uuid.UUID, month string, status *shift.RequestStatus) ([]shift.Request, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidInput
	}
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return nil, err
	}

	out, err := u.requests.List(ctx, shift.RequestFilter{VenueID: venueID, From: m.First(), To: m.Last(), Status: status})
	if err != nil {
		return nil, internalErr(u.log, "list shift requests", err)
	}
	return out, nil
}

func (u *ShiftRequests) ListMine(ctx context.Context, userID, venueID uuid.UUID, month string) ([]shift.Request, error) {
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if _, err := u.access.member(ctx, venueID, userID); err != nil {
		return nil, err
	}

	out, err := u.requests.List(ctx, shift.RequestFilter{VenueID: venueID, From: m.First(), To: m.Last(), UserID: &userID})
	if err != nil {
		return nil, internalErr(u.log, "list my shift requests", err)
	}
	return out, nil
}

// Approve turns the request into a shift. It refuses when the member has
// since been given an overlapping shift.
func (u *ShiftRequests) Approve(ctx context.Context, userID, requestID uuid.UUID, note string) (shift.Request, error) {
	req, err := u.pendingForManager(ctx, userID, requestID)
	if err != nil {
		return shift.Request{}, err
	}

	shifts, err := u.shifts.List(ctx, shift.Filter{
		VenueID: req.VenueID,
		From:    req.WorkDate.AddDate(0, 0, -1),
		To:      req.WorkDate.AddDate(0, 0, 1),
		UserID:  &req.UserID,
	})
	if err != nil {
		return shift.Request{}, internalErr(u.log, "list shifts", err)
	}
	for _, s := range shifts {
		if s.Span().Overlaps(req.Span()) {
			return shift.Request{}, ErrShiftOverlap
		}
	}

	d := shift.Decision{RequestID: req.ID, DecidedBy: userID, Note: strings.TrimSpace(note), At: u.now().UTC()}
	approved, created, err := u.requests.Approve(ctx, d, uuid.New())
	if err != nil {
		return shift.Request{}, u.decisionErr("approve shift request", err)
	}

	u.events.changed(ctx, created.VenueID, created.WorkDate)
	u.log.Info("shift request approved",
		zap.Stringer("request_id", approved.ID),
		zap.Stringer("shift_id", created.ID),
		zap.Stringer("venue_id", created.VenueID),
	)
	u.notifyMember(ctx, approved, notification.KindShiftRequestApproved, "Shift approved",
		fmt.Sprintf("Your shift on %s was approved.", describeSpan(approved.Span())))
	return approved, nil
}

func (u *ShiftRequests) Reject(ctx context.Context, userID, requestID uuid.UUID, note string) (shift.Request, error) {
	req, err := u.pendingForManager(ctx, userID, requestID)
	if err != nil {
		return shift.Request{}, err
	}

	note = strings.TrimSpace(note)
	d := shift.Decision{RequestID: req.ID, DecidedBy: userID, Note: note, At: u.now().UTC()}
	rejected, err := u.requests.Decide(ctx, d, shift.RequestRejected)
	if err != nil {
		return shift.Request{}, u.decisionErr("reject shift request", err)
	}

	body := fmt.Sprintf("Your shift request for %s was declined.", describeSpan(rejected.Span()))
	if note != "" {
		body += "\n\n" + note
	}
	u.notifyMember(ctx, rejected, notification.KindShiftRequestRejected, "Shift request declined", body)
	return rejected, nil
}

func (u *ShiftRequests) Cancel(ctx context.Context, userID, requestID uuid.UUID) (shift.Request, error) {
	req, err := u.get(ctx, requestID)
	if err != nil {
		return shift.Request{}, err
	}
	if req.UserID != userID {
		return shift.Request{}, ErrForbidden
	}
	if req.Status != shift.RequestPending {
		return shift.Request{}, ErrInvalidStatusTransition
	}

	d := shift.Decision{RequestID: req.ID, DecidedBy: userID, At: u.now().UTC()}
	cancelled, err := u.requests.Decide(ctx, d, shift.RequestCancelled)
	if err != nil {
		return shift.Request{}, u.decisionErr("cancel shift request", err)
	}
	return cancelled, nil
}

func (u *ShiftRequests) pendingForManager(ctx context.Context, userID, requestID uuid.UUID) (shift.Request, error) {
	req, err := u.get(ctx, requestID)
	if err != nil {
		return shift.Request{}, err
	}
	if _, err := u.access.manager(ctx, req.VenueID, userID); err != nil {
		return shift.Request{}, err
	}
	if req.Status != shift.RequestPending {
		return shift.Request{}, ErrInvalidStatusTransition
	}
	return req, nil
}

func (u *ShiftRequests) get(ctx context.Context, id uuid.UUID) (shift.Request, error) {
	req, err := u.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shift.ErrRequestNotFound) {
			return shift.Request{}, ErrShiftRequestNotFound
		}
		return shift.Request{}, internalErr(u.log, "get shift request", err)
	}
	return req, nil
}

func (u *ShiftRequests) decisionErr(op string, err error) error {
	switch {
	case errors.Is(err, shift.ErrNotPending):
		return ErrInvalidStatusTransition
	case errors.Is(err, shift.ErrRequestNotFound):
		return ErrShiftRequestNotFound
	}
	return internalErr(u.log, op, err)
}

func (u *ShiftRequests) notifyMember(ctx context.Context, req shift.Request, kind notification.Kind, subject, body string) {
	usr, err := u.users.GetByID(ctx, req.UserID)
	if err != nil {
		u.log.Warn("notification recipient lookup failed", zap.Stringer("user_id", req.UserID), zap.Error(err))
		return
	}
	u.notify.send(ctx, recipient{UserID: usr.ID, Email: usr.Email, LineUserID: usr.LineUserID}, kind, subject, body)
}

// describeSpan renders "2026-11-03 (Tue) 21:00-04:00".
func describeSpan(s calendar.Span) string {
	return fmt.Sprintf("%s (%s) %s-%s",
		calendar.FormatDate(s.Date), s.Date.Weekday().String()[:3],
		calendar.FormatClock(s.Start), calendar.FormatClock(s.End),
	)
}
