package usecase

import (
	"context"
	"testing"

	"venue-staff/internal/domain/venue"
	ucuser "venue-staff/internal/usecase/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UpdateMe_RenameDropsCachedCalendars(t *testing.T) {
	f := newShiftFixture()
	other := f.s.addVenue("Bar Elsewhere")
	f.s.addMember(other, f.staff, venue.RoleStaff)
	uc := NewUserUsecase(fakeUsers{f.s}, fakeVenues{f.s}, f.cache, nil)
	ctx := context.Background()

	_, err := f.shifts.Create(ctx, f.manager.ID, f.v.ID, ShiftInput{UserID: f.staff.ID, Date: "2026-11-20", Start: "20:00", End: "23:00"})
	require.NoError(t, err)
	f.cache.patterns = nil

	view, err := f.shifts.Calendar(ctx, f.staff.ID, f.v.ID, "2026-11")
	require.NoError(t, err)
	assert.Equal(t, "Ken", findShift(t, view).MemberName)

	// Same name again is a no-op for the cache.
	same := "Ken"
	_, err = uc.UpdateMe(ctx, f.staff.ID, ucuser.UpdateMeInput{DisplayName: &same})
	require.NoError(t, err)
	assert.Empty(t, f.cache.patterns)

	name := "Kenji"
	got, err := uc.UpdateMe(ctx, f.staff.ID, ucuser.UpdateMeInput{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Kenji", got.DisplayName)
	assert.ElementsMatch(t, []string{calendarPattern(f.v.ID), calendarPattern(other.ID)}, f.cache.patterns)

	view, err = f.shifts.Calendar(ctx, f.staff.ID, f.v.ID, "2026-11")
	require.NoError(t, err)
	assert.Equal(t, "Kenji", findShift(t, view).MemberName)
}

func TestUser_UpdateMe_InvalidInput(t *testing.T) {
	s := newFakeStore()
	u := s.addUser("Ken")
	uc := NewUserUsecase(fakeUsers{s}, fakeVenues{s}, newFakeCache(), nil)

	blank := "  "
	_, err := uc.UpdateMe(context.Background(), u.ID, ucuser.UpdateMeInput{DisplayName: &blank})
	assert.ErrorIs(t, err, ucuser.ErrInvalidInput)
}

func findShift(t *testing.T, view CalendarView) CalendarShift {
	t.Helper()
	for _, week := range view.Weeks {
		for _, d := range week {
			if len(d.Shifts) > 0 {
				return d.Shifts[0]
			}
		}
	}
	t.Fatal("no shift in calendar")
	return CalendarShift{}
}
