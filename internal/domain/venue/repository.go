package venue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("venue not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrLastOwner      = errors.New("venue must keep at least one owner")

	// ErrSlugTaken is returned when a new venue collides on slug or join code.
	ErrSlugTaken     = errors.New("slug already taken")
	ErrJoinCodeTaken = errors.New("join code already taken")
)

type Repository interface {
	CreateWithOwner(ctx context.Context, v Venue, ownerMemberID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Venue, error)
	GetBySlug(ctx context.Context, slug string) (Venue, error)
	GetByJoinCode(ctx context.Context, code string) (Venue, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, v Venue) error
	UpdateJoinCode(ctx context.Context, id uuid.UUID, code string) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}

type MemberRepository interface {
	GetMember(ctx context.Context, venueID, userID uuid.UUID) (Member, error)
	ListMembers(ctx context.Context, venueID uuid.UUID) ([]Member, error)
	ListByRoles(ctx context.Context, venueID uuid.UUID, roles ...Role) ([]Member, error)
	// UpdateRole and Remove refuse with ErrLastOwner rather than leave a venue
	// without an owner.
	UpdateRole(ctx context.Context, venueID, userID uuid.UUID, role Role) error
	Remove(ctx context.Context, venueID, userID uuid.UUID) error
}
