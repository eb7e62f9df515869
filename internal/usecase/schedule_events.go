package usecase

import (
	"context"
	"sort"
	"time"

	"venue-staff/internal/pkg/calendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CalendarCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleBroadcaster pushes "schedule changed" events to connected members.
type ScheduleBroadcaster interface {
	ScheduleUpdated(venueID uuid.UUID, month string)
}

func calendarKey(venueID uuid.UUID, m calendar.Month) string {
	return "calendar:" + venueID.String() + ":" + m.String()
}

func calendarPattern(venueID uuid.UUID) string {
	return "calendar:" + venueID.String() + ":*"
}

// scheduleEvents revalidates cached calendars and notifies live clients after
// any shift write.
type scheduleEvents struct {
	cache       CalendarCache
	broadcaster ScheduleBroadcaster
	log         *zap.Logger
}

func (s scheduleEvents) changed(ctx context.Context, venueID uuid.UUID, dates ...time.Time) {
	if s.cache != nil {
		// Whole venue: overnight shifts and grid padding make one write visible
		// in up to three month views.
		if err := s.cache.DeleteByPattern(ctx, calendarPattern(venueID)); err != nil {
			s.log.Warn("calendar cache revalidation failed", zap.Stringer("venue_id", venueID), zap.Error(err))
		}
	}
	if s.broadcaster == nil {
		return
	}

	months := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		months[calendar.MonthOf(d).String()] = struct{}{}
	}
	ordered := make([]string, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)
	for _, m := range ordered {
		s.broadcaster.ScheduleUpdated(venueID, m)
	}
}
