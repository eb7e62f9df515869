package venue

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}

// CanManage reports whether the role may run the venue's day-to-day admin:
// approvals, schedules, applicants.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleManager
}

type Venue struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	JoinCode  string
	Timezone  string
	WeekStart time.Weekday
	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v Venue) Location() *time.Location {
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Member struct {
	ID          uuid.UUID
	VenueID     uuid.UUID
	UserID      uuid.UUID
	Role        Role
	Email       string
	DisplayName string
	LineUserID  *string
	CreatedAt   time.Time
}

// Membership is a venue as seen by one of its members.
type Membership struct {
	Venue Venue
	Role  Role
}
