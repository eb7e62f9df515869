package usecase

import (
	"context"
	"testing"

	"venue-staff/internal/domain/notification"
	"venue-staff/internal/domain/shift"
	"venue-staff/internal/domain/user"
	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftFixture struct {
	s       *fakeStore
	v       venue.Venue
	manager user.User
	staff   user.User
	cache   *fakeCache
	bc      *fakeBroadcaster
	n       *fakeNotifier
	reqs    *ShiftRequests
	shifts  *Shifts
	export  *fakeExporter
}

func newShiftFixture() shiftFixture {
	s := newFakeStore()
	v := s.addVenue("Club Moonlight")
	manager, staff := s.addUser("Mana"), s.addUser("Ken")
	s.addMember(v, manager, venue.RoleManager)
	s.addMember(v, staff, venue.RoleStaff)

	f := shiftFixture{s: s, v: v, manager: manager, staff: staff, cache: newFakeCache(), bc: &fakeBroadcaster{}, n: &fakeNotifier{}, export: &fakeExporter{}}
	f.reqs = NewShiftRequestUsecase(ShiftRequestDeps{
		Requests: fakeShiftRequests{s}, Shifts: fakeShifts{s}, Venues: fakeVenues{s}, Members: fakeMembers{s},
		Users: fakeUsers{s}, Cache: f.cache, Broadcaster: f.bc, Notifier: f.n,
	})
	f.shifts = NewShiftUsecase(ShiftDeps{
		Shifts: fakeShifts{s}, Venues: fakeVenues{s}, Members: fakeMembers{s},
		Cache: f.cache, Broadcaster: f.bc, Exporter: f.export,
	})
	// 12:00 on 2026-11-10 in Tokyo.
	f.reqs.now = fixedNow("2026-11-10T03:00:00Z")
	f.shifts.now = f.reqs.now
	return f
}

func TestShiftRequests_Preview_DoesNotWrite(t *testing.T) {
	f := newShiftFixture()
	p, err := f.reqs.Preview(context.Background(), f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-12", Start: "20:00", End: "02:00"},
		{Date: "2026-11-09", Start: "20:00", End: "23:00"},
	})
	require.NoError(t, err)
	assert.False(t, p.Valid)
	assert.Empty(t, p.Entries[0].Problems)
	assert.Equal(t, []string{ProblemInPast}, p.Entries[1].Problems)
	assert.Empty(t, f.s.requests)
}

func TestShiftRequests_Preview_TodayUsesVenueZone(t *testing.T) {
	f := newShiftFixture()
	// 23:30 UTC on the 9th is already the 10th in Tokyo.
	f.reqs.now = fixedNow("2026-11-09T23:30:00Z")
	p, err := f.reqs.Preview(context.Background(), f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-09", Start: "20:00", End: "23:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ProblemInPast}, p.Entries[0].Problems)
}

func TestShiftRequests_Preview_Validation(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()

	_, err := f.reqs.Preview(ctx, f.staff.ID, f.v.ID, "November", []ShiftEntryInput{{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.reqs.Preview(ctx, f.staff.ID, f.v.ID, "2026-11", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.reqs.Preview(ctx, uuid.New(), f.v.ID, "2026-11", []ShiftEntryInput{{}})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestShiftRequests_Submit_AllOrNothing(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()

	_, err := f.reqs.Submit(ctx, f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-12", Start: "20:00", End: "02:00"},
		{Date: "2026-11-13", Start: "08:00", End: "23:00"},
	})
	var invalid *InvalidEntriesError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{ProblemTooLong}, invalid.Preview.Entries[1].Problems)
	assert.Empty(t, f.s.requests)

	created, err := f.reqs.Submit(ctx, f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-12", Start: "20:00", End: "02:00", Note: "late"},
		{Date: "2026-11-13", Start: "20:00", End: "23:00"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, shift.RequestPending, created[0].Status)
	assert.Equal(t, 20*60, created[0].StartMinute)
	assert.Equal(t, 2*60, created[0].EndMinute)

	// The same night again overlaps the pending request.
	_, err = f.reqs.Submit(ctx, f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-13", Start: "01:00", End: "04:00"},
	})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{ProblemOverlapsExisting}, invalid.Preview.Entries[0].Problems)

	mine, err := f.reqs.ListMine(ctx, f.staff.ID, f.v.ID, "2026-11")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestShiftRequests_Approve(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	created, err := f.reqs.Submit(ctx, f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-30", Start: "21:00", End: "03:00"},
	})
	require.NoError(t, err)
	f.cache.data[calendarKey(f.v.ID, mustMonth("2026-11"))] = CalendarView{}

	_, err = f.reqs.Approve(ctx, f.staff.ID, created[0].ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := f.reqs.Approve(ctx, f.manager.ID, created[0].ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, shift.RequestApproved, approved.Status)
	require.NotNil(t, approved.ShiftID)

	sh, ok := f.s.shifts[*approved.ShiftID]
	require.True(t, ok)
	assert.Equal(t, f.staff.ID, sh.UserID)
	assert.Equal(t, date("2026-11-30"), sh.WorkDate)

	assert.Empty(t, f.cache.data)
	assert.Equal(t, []string{calendarPattern(f.v.ID)}, f.cache.patterns)
	assert.Equal(t, []string{f.v.ID.String() + "/2026-11"}, f.bc.events)
	assert.Equal(t, []notification.Kind{notification.KindShiftRequestApproved}, f.n.kinds())
	assert.Contains(t, f.n.sent[0].Body, "2026-11-30 (Mon) 21:00-03:00")

	_, err = f.reqs.Approve(ctx, f.manager.ID, created[0].ID, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestShiftRequests_Approve_RejectsOverlapWithAssignedShift(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	created, err := f.reqs.Submit(ctx, f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-20", Start: "21:00", End: "03:00"},
	})
	require.NoError(t, err)

	assigned := shift.Shift{
		ID: uuid.New(), VenueID: f.v.ID, UserID: f.staff.ID,
		WorkDate: date("2026-11-21"), StartMinute: 60, EndMinute: 300,
	}
	f.s.shifts[assigned.ID] = assigned

	_, err = f.reqs.Approve(ctx, f.manager.ID, created[0].ID, "")
	assert.ErrorIs(t, err, ErrShiftOverlap)
}

func TestShiftRequests_RejectAndCancel(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	created, err := f.reqs.Submit(ctx, f.staff.ID, f.v.ID, "2026-11", []ShiftEntryInput{
		{Date: "2026-11-20", Start: "21:00", End: "23:00"},
		{Date: "2026-11-21", Start: "21:00", End: "23:00"},
	})
	require.NoError(t, err)

	rejected, err := f.reqs.Reject(ctx, f.manager.ID, created[0].ID, "too many staff that night")
	require.NoError(t, err)
	assert.Equal(t, shift.RequestRejected, rejected.Status)
	assert.Equal(t, []notification.Kind{notification.KindShiftRequestRejected}, f.n.kinds())

	_, err = f.reqs.Cancel(ctx, f.manager.ID, created[1].ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.reqs.Cancel(ctx, f.staff.ID, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, shift.RequestCancelled, cancelled.Status)

	pending := shift.RequestPending
	list, err := f.reqs.ListForVenue(ctx, f.manager.ID, f.v.ID, "2026-11", &pending)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.reqs.ListForVenue(ctx, f.staff.ID, f.v.ID, "2026-11", nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
