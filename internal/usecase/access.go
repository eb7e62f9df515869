package usecase

import (
	"context"
	"errors"

	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// access resolves the caller's membership of a venue. Unknown venues report
// ErrVenueNotFound; known venues the caller does not belong to report
// ErrForbidden.
type access struct {
	venues  venue.Repository
	members venue.MemberRepository
	log     *zap.Logger
}

func (a access) member(ctx context.Context, venueID, userID uuid.UUID) (venue.Member, error) {
	m, err := a.members.GetMember(ctx, venueID, userID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, venue.ErrMemberNotFound) {
		return venue.Member{}, internalErr(a.log, "get member", err)
	}

	if _, err := a.venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return venue.Member{}, ErrVenueNotFound
		}
		return venue.Member{}, internalErr(a.log, "get venue", err)
	}
	return venue.Member{}, ErrForbidden
}

func (a access) manager(ctx context.Context, venueID, userID uuid.UUID) (venue.Member, error) {
	m, err := a.member(ctx, venueID, userID)
	if err != nil {
		return venue.Member{}, err
	}
	if !m.Role.CanManage() {
		return venue.Member{}, ErrForbidden
	}
	return m, nil
}

func (a access) owner(ctx context.Context, venueID, userID uuid.UUID) (venue.Member, error) {
	m, err := a.member(ctx, venueID, userID)
	if err != nil {
		return venue.Member{}, err
	}
	if m.Role != venue.RoleOwner {
		return venue.Member{}, ErrForbidden
	}
	return m, nil
}

func (a access) venue(ctx context.Context, venueID uuid.UUID) (venue.Venue, error) {
	v, err := a.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return venue.Venue{}, ErrVenueNotFound
		}
		return venue.Venue{}, internalErr(a.log, "get venue", err)
	}
	return v, nil
}
