package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"venue-staff/internal/domain/shift"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"
	"venue-staff/internal/pkg/calendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxListRangeDays = 62

type ShiftInput struct {
	UserID uuid.UUID
	Date   string
	Start  string
	End    string
	Note   string
}

type CalendarShift struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	MemberName      string    `json:"member_name"`
	StartMinute     int       `json:"start_minute"`
	EndMinute       int       `json:"end_minute"`
	DurationMinutes int       `json:"duration_minutes"`
	Overnight       bool      `json:"overnight"`
	Note            string    `json:"note"`
}

type CalendarDay struct {
	Date      time.Time       `json:"date"`
	InMonth   bool            `json:"in_month"`
	Headcount int             `json:"headcount"`
	Shifts    []CalendarShift `json:"shifts"`
}

// CalendarView is a month grid; it is cached as JSON.
type CalendarView struct {
	VenueID   uuid.UUID       `json:"venue_id"`
	Month     string          `json:"month"`
	WeekStart int             `json:"week_start"`
	Weeks     [][]CalendarDay `json:"weeks"`
}

// ScheduleExporter renders a month of shifts as a spreadsheet.
type ScheduleExporter interface {
	Export(v venue.Venue, m calendar.Month, shifts []shift.Shift) ([]byte, error)
}

type ShiftUsecase interface {
	Create(ctx context.Context, userID, venueID uuid.UUID, in ShiftInput) (shift.Shift, error)
	Update(ctx context.Context, userID, venueID, shiftID uuid.UUID, in ShiftInput) (shift.Shift, error)
	Delete(ctx context.Context, userID, venueID, shiftID uuid.UUID) error
	List(ctx context.Context, userID, venueID uuid.UUID, from, to string, memberID *uuid.UUID) ([]shift.Shift, error)
	Calendar(ctx context.Context, userID, venueID uuid.UUID, month string) (CalendarView, error)
	ExportMonth(ctx context.Context, userID, venueID uuid.UUID, month string) ([]byte, error)
}

type Shifts struct {
	shifts   shift.Repository
	members  venue.MemberRepository
	cache    CalendarCache
	exporter ScheduleExporter
	access   access
	events   scheduleEvents
	log      *zap.Logger

	now func() time.Time
}

type ShiftDeps struct {
	Shifts      shift.Repository
	Venues      venue.Repository
	Members     venue.MemberRepository
	Cache       CalendarCache
	Broadcaster ScheduleBroadcaster
	Exporter    ScheduleExporter
	Logger      *zap.Logger
}

func NewShiftUsecase(d ShiftDeps) *Shifts {
	log := logging.OrNop(d.Logger).Named("shift")
	return &Shifts{
		shifts:   d.Shifts,
		members:  d.Members,
		cache:    d.Cache,
		exporter: d.Exporter,
		access:   access{venues: d.Venues, members: d.Members, log: log},
		events:   scheduleEvents{cache: d.Cache, broadcaster: d.Broadcaster, log: log},
		log:      log,
		now:      time.Now,
	}
}

func (u *Shifts) Create(ctx context.Context, userID, venueID uuid.UUID, in ShiftInput) (shift.Shift, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return shift.Shift{}, err
	}
	e, err := u.checkAssignment(ctx, venueID, uuid.Nil, in)
	if err != nil {
		return shift.Shift{}, err
	}

	now := u.now().UTC()
	s := shift.Shift{
		ID:          uuid.New(),
		VenueID:     venueID,
		UserID:      in.UserID,
		WorkDate:    e.Date,
		StartMinute: e.StartMinute,
		EndMinute:   e.EndMinute,
		Note:        e.Note,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.shifts.Create(ctx, s); err != nil {
		return shift.Shift{}, internalErr(u.log, "create shift", err)
	}

	u.events.changed(ctx, venueID, s.WorkDate)
	return u.get(ctx, venueID, s.ID)
}

func (u *Shifts) Update(ctx context.Context, userID, venueID, shiftID uuid.UUID, in ShiftInput) (shift.Shift, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return shift.Shift{}, err
	}
	current, err := u.get(ctx, venueID, shiftID)
	if err != nil {
		return shift.Shift{}, err
	}
	if in.UserID == uuid.Nil {
		in.UserID = current.UserID
	}
	e, err := u.checkAssignment(ctx, venueID, shiftID, in)
	if err != nil {
		return shift.Shift{}, err
	}

	next := current
	next.UserID = in.UserID
	next.WorkDate = e.Date
	next.StartMinute = e.StartMinute
	next.EndMinute = e.EndMinute
	next.Note = e.Note
	if err := u.shifts.Update(ctx, next); err != nil {
		if errors.Is(err, shift.ErrNotFound) {
			return shift.Shift{}, ErrShiftNotFound
		}
		return shift.Shift{}, internalErr(u.log, "update shift", err)
	}

	u.events.changed(ctx, venueID, current.WorkDate, next.WorkDate)
	return u.get(ctx, venueID, shiftID)
}

func (u *Shifts) Delete(ctx context.Context, userID, venueID, shiftID uuid.UUID) error {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return err
	}
	current, err := u.get(ctx, venueID, shiftID)
	if err != nil {
		return err
	}
	if err := u.shifts.Delete(ctx, venueID, shiftID); err != nil {
		if errors.Is(err, shift.ErrNotFound) {
			return ErrShiftNotFound
		}
		return internalErr(u.log, "delete shift", err)
	}

	u.events.changed(ctx, venueID, current.WorkDate)
	return nil
}

// List returns shifts with a work date in [from, to]; the range may span at
// most two months.
func (u *Shifts) List(ctx context.Context, userID, venueID uuid.UUID, from, to string, memberID *uuid.UUID) ([]shift.Shift, error) {
	fromDate, err := calendar.ParseDate(from)
	if err != nil {
		return nil, ErrInvalidInput
	}
	toDate, err := calendar.ParseDate(to)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if toDate.Before(fromDate) || toDate.Sub(fromDate) > maxListRangeDays*24*time.Hour {
		return nil, ErrInvalidInput
	}
	if _, err := u.access.member(ctx, venueID, userID); err != nil {
		return nil, err
	}

	out, err := u.shifts.List(ctx, shift.Filter{VenueID: venueID, From: fromDate, To: toDate, UserID: memberID})
	if err != nil {
		return nil, internalErr(u.log, "list shifts", err)
	}
	return out, nil
}

// Calendar builds the month grid, serving it from cache when possible. Cache
// failures fall through to the database.
func (u *Shifts) Calendar(ctx context.Context, userID, venueID uuid.UUID, month string) (CalendarView, error) {
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return CalendarView{}, ErrInvalidInput
	}
	if _, err := u.access.member(ctx, venueID, userID); err != nil {
		return CalendarView{}, err
	}

	key := calendarKey(venueID, m)
	if u.cache != nil {
		var cached CalendarView
		if ok, err := u.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	v, err := u.access.venue(ctx, venueID)
	if err != nil {
		return CalendarView{}, err
	}
	from, to := calendar.GridBounds(m, v.WeekStart)
	shifts, err := u.shifts.List(ctx, shift.Filter{VenueID: venueID, From: from, To: to})
	if err != nil {
		return CalendarView{}, internalErr(u.log, "list shifts", err)
	}

	view := BuildCalendar(v, m, shifts)
	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, view, 0); err != nil {
			u.log.Debug("calendar cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return view, nil
}

func (u *Shifts) ExportMonth(ctx context.Context, userID, venueID uuid.UUID, month string) ([]byte, error) {
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return nil, err
	}
	v, err := u.access.venue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	shifts, err := u.shifts.List(ctx, shift.Filter{VenueID: venueID, From: m.First(), To: m.Last()})
	if err != nil {
		return nil, internalErr(u.log, "list shifts", err)
	}
	b, err := u.exporter.Export(v, m, shifts)
	if err != nil {
		return nil, internalErr(u.log, "export schedule", err)
	}
	return b, nil
}

// checkAssignment validates times, that the assignee belongs to the venue and
// that the shift does not overlap the assignee's other shifts. exclude is the
// shift being edited.
func (u *Shifts) checkAssignment(ctx context.Context, venueID, exclude uuid.UUID, in ShiftInput) (ShiftEntry, error) {
	if in.UserID == uuid.Nil {
		return ShiftEntry{}, ErrInvalidInput
	}
	e, err := checkShiftTimes(ShiftEntryInput{Date: in.Date, Start: in.Start, End: in.End, Note: in.Note})
	if err != nil {
		return ShiftEntry{}, err
	}

	if _, err := u.members.GetMember(ctx, venueID, in.UserID); err != nil {
		if errors.Is(err, venue.ErrMemberNotFound) {
			return ShiftEntry{}, ErrMemberNotFound
		}
		return ShiftEntry{}, internalErr(u.log, "get member", err)
	}

	others, err := u.shifts.List(ctx, shift.Filter{
		VenueID: venueID,
		From:    e.Date.AddDate(0, 0, -1),
		To:      e.Date.AddDate(0, 0, 1),
		UserID:  &in.UserID,
	})
	if err != nil {
		return ShiftEntry{}, internalErr(u.log, "list shifts", err)
	}
	for _, s := range others {
		if s.ID != exclude && s.Span().Overlaps(e.Span()) {
			return ShiftEntry{}, ErrShiftOverlap
		}
	}
	return e, nil
}

func (u *Shifts) get(ctx context.Context, venueID, id uuid.UUID) (shift.Shift, error) {
	s, err := u.shifts.GetByID(ctx, venueID, id)
	if err != nil {
		if errors.Is(err, shift.ErrNotFound) {
			return shift.Shift{}, ErrShiftNotFound
		}
		return shift.Shift{}, internalErr(u.log, "get shift", err)
	}
	return s, nil
}

// BuildCalendar places shifts on the month grid by work date. Shifts in a day
// are ordered by start time, then member name; headcount counts distinct
// members.
func BuildCalendar(v venue.Venue, m calendar.Month, shifts []shift.Shift) CalendarView {
	byDate := make(map[string][]shift.Shift)
	for _, s := range shifts {
		k := calendar.FormatDate(s.WorkDate)
		byDate[k] = append(byDate[k], s)
	}

	grid := calendar.Grid(m, v.WeekStart)
	view := CalendarView{
		VenueID:   v.ID,
		Month:     m.String(),
		WeekStart: int(v.WeekStart),
		Weeks:     make([][]CalendarDay, 0, len(grid)),
	}
	for _, week := range grid {
		days := make([]CalendarDay, 0, 7)
		for _, gd := range week {
			day := CalendarDay{Date: gd.Date, InMonth: gd.InMonth, Shifts: []CalendarShift{}}
			list := byDate[calendar.FormatDate(gd.Date)]
			sort.SliceStable(list, func(i, j int) bool {
				if list[i].StartMinute != list[j].StartMinute {
					return list[i].StartMinute < list[j].StartMinute
				}
				return list[i].MemberName < list[j].MemberName
			})

			people := make(map[uuid.UUID]struct{}, len(list))
			for _, s := range list {
				span := s.Span()
				day.Shifts = append(day.Shifts, CalendarShift{
					ID:              s.ID,
					UserID:          s.UserID,
					MemberName:      s.MemberName,
					StartMinute:     s.StartMinute,
					EndMinute:       s.EndMinute,
					DurationMinutes: span.DurationMinutes(),
					Overnight:       span.Overnight(),
					Note:            s.Note,
				})
				people[s.UserID] = struct{}{}
			}
			day.Headcount = len(people)
			days = append(days, day)
		}
		view.Weeks = append(view.Weeks, days)
	}
	return view
}
