package usecase

import (
	"context"

	"venue-staff/internal/domain/user"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"
	ucuser "venue-staff/internal/usecase/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (user.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in ucuser.UpdateMeInput) (user.User, error)
}

type User struct {
	svc    *ucuser.Service
	venues venue.Repository
	cache  CalendarCache
	log    *zap.Logger
}

// NewUserUsecase accepts a nil cache.
func NewUserUsecase(users user.Repository, venues venue.Repository, cache CalendarCache, log *zap.Logger) *User {
	return &User{
		svc:    ucuser.NewService(users),
		venues: venues,
		cache:  cache,
		log:    logging.OrNop(log).Named("user"),
	}
}

func (u *User) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return u.svc.GetMe(ctx, userID)
}

func (u *User) UpdateMe(ctx context.Context, userID uuid.UUID, in ucuser.UpdateMeInput) (user.User, error) {
	before, err := u.svc.GetMe(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	after, err := u.svc.UpdateMe(ctx, userID, in)
	if err != nil {
		return user.User{}, err
	}
	if after.DisplayName != before.DisplayName {
		u.dropCalendars(ctx, userID)
	}
	return after, nil
}

// dropCalendars clears the cached grids that show the user's name.
func (u *User) dropCalendars(ctx context.Context, userID uuid.UUID) {
	if u.cache == nil || u.venues == nil {
		return
	}
	mine, err := u.venues.ListForUser(ctx, userID)
	if err != nil {
		u.log.Warn("list venues for calendar revalidation", zap.Stringer("user_id", userID), zap.Error(err))
		return
	}
	for _, m := range mine {
		if err := u.cache.DeleteByPattern(ctx, calendarPattern(m.Venue.ID)); err != nil {
			u.log.Warn("calendar cache revalidation failed", zap.Stringer("venue_id", m.Venue.ID), zap.Error(err))
		}
	}
}
