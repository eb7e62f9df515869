package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	joinCodeLen      = 8
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxVenueNameLen  = 80
	maxSlugLen       = 48
	createAttempts   = 5
)

type CreateVenueInput struct {
	Name      string
	Timezone  string
	WeekStart *int
}

type UpdateVenueInput struct {
	Name      *string
	Timezone  *string
	WeekStart *int
}

type VenueUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateVenueInput) (venue.Membership, error)
	Get(ctx context.Context, userID, venueID uuid.UUID) (venue.Membership, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]venue.Membership, error)
	Update(ctx context.Context, userID, venueID uuid.UUID, in UpdateVenueInput) (venue.Venue, error)
	RegenerateJoinCode(ctx context.Context, userID, venueID uuid.UUID) (venue.Venue, error)

	ListMembers(ctx context.Context, userID, venueID uuid.UUID) ([]venue.Member, error)
	UpdateRole(ctx context.Context, userID, venueID, memberUserID uuid.UUID, role venue.Role) (venue.Member, error)
	RemoveMember(ctx context.Context, userID, venueID, memberUserID uuid.UUID) error
}

// MemberSessions ends live sessions (websocket feeds) of a removed member.
type MemberSessions interface {
	MemberRemoved(venueID, userID uuid.UUID)
}

type Venues struct {
	venues   venue.Repository
	members  venue.MemberRepository
	cache    CalendarCache
	sessions MemberSessions
	access   access
	log      *zap.Logger
}

// VenueDeps: Cache and Sessions may be nil.
type VenueDeps struct {
	Venues   venue.Repository
	Members  venue.MemberRepository
	Cache    CalendarCache
	Sessions MemberSessions
	Logger   *zap.Logger
}

func NewVenueUsecase(d VenueDeps) *Venues {
	log := logging.OrNop(d.Logger).Named("venue")
	return &Venues{
		venues:   d.Venues,
		members:  d.Members,
		cache:    d.Cache,
		sessions: d.Sessions,
		access:   access{venues: d.Venues, members: d.Members, log: log},
		log:      log,
	}
}

func (u *Venues) Create(ctx context.Context, userID uuid.UUID, in CreateVenueInput) (venue.Membership, error) {
	name, ok := normalizeVenueName(in.Name)
	if !ok {
		return venue.Membership{}, ErrInvalidInput
	}
	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = "Asia/Tokyo"
	}
	if !validTimezone(tz) {
		return venue.Membership{}, ErrInvalidInput
	}
	weekStart := time.Sunday
	if in.WeekStart != nil {
		ws, ok := parseWeekStart(*in.WeekStart)
		if !ok {
			return venue.Membership{}, ErrInvalidInput
		}
		weekStart = ws
	}

	base := Slugify(name)
	for attempt := 0; attempt < createAttempts; attempt++ {
		slug, err := u.freeSlug(ctx, base, attempt)
		if err != nil {
			return venue.Membership{}, err
		}
		code, err := newJoinCode()
		if err != nil {
			return venue.Membership{}, internalErr(u.log, "generate join code", err)
		}

		v := venue.Venue{
			ID:        uuid.New(),
			Name:      name,
			Slug:      slug,
			JoinCode:  code,
			Timezone:  tz,
			WeekStart: weekStart,
			CreatedBy: userID,
		}
		err = u.venues.CreateWithOwner(ctx, v, uuid.New())
		if errors.Is(err, venue.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return venue.Membership{}, internalErr(u.log, "create venue", err)
		}

		created, err := u.access.venue(ctx, v.ID)
		if err != nil {
			return venue.Membership{}, err
		}
		u.log.Info("venue created", zap.Stringer("venue_id", v.ID), zap.String("slug", slug))
		return venue.Membership{Venue: created, Role: venue.RoleOwner}, nil
	}
	return venue.Membership{}, internalErr(u.log, "create venue", errors.New("no free slug or join code"))
}

// freeSlug returns base on the first attempt, then base-N for the first N
// not already taken.
func (u *Venues) freeSlug(ctx context.Context, base string, attempt int) (string, error) {
	candidate := base
	for n := 1 + attempt; n < 100+attempt; n++ {
		if n > 1 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		exists, err := u.venues.SlugExists(ctx, candidate)
		if err != nil {
			return "", internalErr(u.log, "check slug", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return base + "-" + strings.ToLower(uuid.NewString()[:8]), nil
}

func (u *Venues) Get(ctx context.Context, userID, venueID uuid.UUID) (venue.Membership, error) {
	m, err := u.access.member(ctx, venueID, userID)
	if err != nil {
		return venue.Membership{}, err
	}
	v, err := u.access.venue(ctx, venueID)
	if err != nil {
		return venue.Membership{}, err
	}
	if !m.Role.CanManage() {
		v.JoinCode = ""
	}
	return venue.Membership{Venue: v, Role: m.Role}, nil
}

func (u *Venues) ListMine(ctx context.Context, userID uuid.UUID) ([]venue.Membership, error) {
	items, err := u.venues.ListForUser(ctx, userID)
	if err != nil {
		return nil, internalErr(u.log, "list venues", err)
	}
	for i := range items {
		if !items[i].Role.CanManage() {
			items[i].Venue.JoinCode = ""
		}
	}
	return items, nil
}

func (u *Venues) Update(ctx context.Context, userID, venueID uuid.UUID, in UpdateVenueInput) (venue.Venue, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return venue.Venue{}, err
	}
	v, err := u.access.venue(ctx, venueID)
	if err != nil {
		return venue.Venue{}, err
	}
	prevTZ, prevWeekStart := v.Timezone, v.WeekStart

	if in.Name != nil {
		name, ok := normalizeVenueName(*in.Name)
		if !ok {
			return venue.Venue{}, ErrInvalidInput
		}
		v.Name = name
	}
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if !validTimezone(tz) {
			return venue.Venue{}, ErrInvalidInput
		}
		v.Timezone = tz
	}
	if in.WeekStart != nil {
		ws, ok := parseWeekStart(*in.WeekStart)
		if !ok {
			return venue.Venue{}, ErrInvalidInput
		}
		v.WeekStart = ws
	}

	if err := u.venues.Update(ctx, v); err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return venue.Venue{}, ErrVenueNotFound
		}
		return venue.Venue{}, internalErr(u.log, "update venue", err)
	}
	// Cached grids are laid out with the old week start and zone.
	if v.Timezone != prevTZ || v.WeekStart != prevWeekStart {
		u.dropCalendars(ctx, venueID)
	}
	return u.access.venue(ctx, venueID)
}

func (u *Venues) dropCalendars(ctx context.Context, venueID uuid.UUID) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, calendarPattern(venueID)); err != nil {
		u.log.Warn("calendar cache revalidation failed", zap.Stringer("venue_id", venueID), zap.Error(err))
	}
}

func (u *Venues) RegenerateJoinCode(ctx context.Context, userID, venueID uuid.UUID) (venue.Venue, error) {
	if _, err := u.access.owner(ctx, venueID, userID); err != nil {
		return venue.Venue{}, err
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := newJoinCode()
		if err != nil {
			return venue.Venue{}, internalErr(u.log, "generate join code", err)
		}
		err = u.venues.UpdateJoinCode(ctx, venueID, code)
		if errors.Is(err, venue.ErrJoinCodeTaken) {
			continue
		}
		if err != nil {
			if errors.Is(err, venue.ErrNotFound) {
				return venue.Venue{}, ErrVenueNotFound
			}
			return venue.Venue{}, internalErr(u.log, "update join code", err)
		}
		return u.access.venue(ctx, venueID)
	}
	return venue.Venue{}, internalErr(u.log, "update join code", errors.New("join code collisions"))
}

func (u *Venues) ListMembers(ctx context.Context, userID, venueID uuid.UUID) ([]venue.Member, error) {
	if _, err := u.access.member(ctx, venueID, userID); err != nil {
		return nil, err
	}
	out, err := u.members.ListMembers(ctx, venueID)
	if err != nil {
		return nil, internalErr(u.log, "list members", err)
	}
	return out, nil
}

func (u *Venues) UpdateRole(ctx context.Context, userID, venueID, memberUserID uuid.UUID, role venue.Role) (venue.Member, error) {
	if !role.Valid() {
		return venue.Member{}, ErrInvalidInput
	}
	if _, err := u.access.owner(ctx, venueID, userID); err != nil {
		return venue.Member{}, err
	}
	target, err := u.targetMember(ctx, venueID, memberUserID)
	if err != nil {
		return venue.Member{}, err
	}
	if target.Role == role {
		return target, nil
	}

	if err := u.members.UpdateRole(ctx, venueID, memberUserID, role); err != nil {
		switch {
		case errors.Is(err, venue.ErrLastOwner):
			return venue.Member{}, ErrLastOwner
		case errors.Is(err, venue.ErrMemberNotFound):
			return venue.Member{}, ErrMemberNotFound
		}
		return venue.Member{}, internalErr(u.log, "update role", err)
	}
	u.log.Info("member role changed",
		zap.Stringer("venue_id", venueID),
		zap.Stringer("user_id", memberUserID),
		zap.String("from", string(target.Role)),
		zap.String("to", string(role)),
	)
	target.Role = role
	return target, nil
}

// RemoveMember lets owners and managers remove members, and any member leave.
// Managers cannot remove owners.
func (u *Venues) RemoveMember(ctx context.Context, userID, venueID, memberUserID uuid.UUID) error {
	actor, err := u.access.member(ctx, venueID, userID)
	if err != nil {
		return err
	}
	self := userID == memberUserID
	if !self && !actor.Role.CanManage() {
		return ErrForbidden
	}

	target, err := u.targetMember(ctx, venueID, memberUserID)
	if err != nil {
		return err
	}
	if target.Role == venue.RoleOwner && !self && actor.Role != venue.RoleOwner {
		return ErrForbidden
	}

	if err := u.members.Remove(ctx, venueID, memberUserID); err != nil {
		switch {
		case errors.Is(err, venue.ErrLastOwner):
			return ErrLastOwner
		case errors.Is(err, venue.ErrMemberNotFound):
			return ErrMemberNotFound
		}
		return internalErr(u.log, "remove member", err)
	}
	if u.sessions != nil {
		u.sessions.MemberRemoved(venueID, memberUserID)
	}
	u.log.Info("member removed", zap.Stringer("venue_id", venueID), zap.Stringer("user_id", memberUserID), zap.Bool("self", self))
	return nil
}

func (u *Venues) targetMember(ctx context.Context, venueID, userID uuid.UUID) (venue.Member, error) {
	m, err := u.members.GetMember(ctx, venueID, userID)
	if err != nil {
		if errors.Is(err, venue.ErrMemberNotFound) {
			return venue.Member{}, ErrMemberNotFound
		}
		return venue.Member{}, internalErr(u.log, "get member", err)
	}
	return m, nil
}

// Slugify lowercases name and keeps ASCII letters and digits, joining runs of
// anything else with a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "venue"
	}
	return s
}

func newJoinCode() (string, error) {
	buf := make([]byte, joinCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, c := range buf {
		buf[i] = joinCodeAlphabet[int(c)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeJoinCode uppercases and strips spaces and hyphens people type
// when copying codes.
func NormalizeJoinCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer(" ", "", "-", "").Replace(code)
}

func normalizeVenueName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n > 0 && n <= maxVenueNameLen
}

func validTimezone(tz string) bool {
	if tz == "" || tz == "Local" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func parseWeekStart(v int) (time.Weekday, bool) {
	switch time.Weekday(v) {
	case time.Sunday, time.Monday:
		return time.Weekday(v), true
	}
	return 0, false
}
