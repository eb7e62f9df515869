package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"venue-staff/internal/domain/joinrequest"
	"venue-staff/internal/domain/notification"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/domain/shift"
	"venue-staff/internal/domain/user"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/pkg/calendar"

	"github.com/google/uuid"
)

var errDB = errors.New("db down")

// fakeStore is an in-memory backing for every repository fake so that
// cross-entity operations (approve -> member, approve -> shift) stay coherent.
type fakeStore struct {
	mu sync.Mutex

	users        map[uuid.UUID]user.User
	venues       map[uuid.UUID]venue.Venue
	members      []venue.Member
	joinRequests map[uuid.UUID]joinrequest.JoinRequest
	shifts       map[uuid.UUID]shift.Shift
	requests     map[uuid.UUID]shift.Request
	templates    map[uuid.UUID]resume.Template
	applicants   map[uuid.UUID]resume.Applicant

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[uuid.UUID]user.User{},
		venues:       map[uuid.UUID]venue.Venue{},
		joinRequests: map[uuid.UUID]joinrequest.JoinRequest{},
		shifts:       map[uuid.UUID]shift.Shift{},
		requests:     map[uuid.UUID]shift.Request{},
		templates:    map[uuid.UUID]resume.Template{},
		applicants:   map[uuid.UUID]resume.Applicant{},
	}
}

func (s *fakeStore) addUser(name string) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{ID: uuid.New(), Email: strings.ToLower(name) + "@example.com", DisplayName: name}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addVenue(name string) venue.Venue {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := venue.Venue{ID: uuid.New(), Name: name, Slug: Slugify(name), JoinCode: "ABCD2345", Timezone: "Asia/Tokyo", WeekStart: time.Sunday}
	s.venues[v.ID] = v
	return v
}

func (s *fakeStore) addMember(v venue.Venue, u user.User, role venue.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, venue.Member{
		ID: uuid.New(), VenueID: v.ID, UserID: u.ID, Role: role,
		Email: u.Email, DisplayName: u.DisplayName, LineUserID: u.LineUserID,
	})
}

func (s *fakeStore) memberIndex(venueID, userID uuid.UUID) int {
	for i, m := range s.members {
		if m.VenueID == venueID && m.UserID == userID {
			return i
		}
	}
	return -1
}

// users

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) Create(_ context.Context, u user.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.users[u.ID] = u
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, in user.ProfileUpdate) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	if in.DisplayName != nil {
		u.DisplayName = *in.DisplayName
	}
	if in.LineUserID != nil {
		if *in.LineUserID == "" {
			u.LineUserID = nil
		} else {
			v := *in.LineUserID
			u.LineUserID = &v
		}
	}
	if in.PasswordHash != nil {
		u.PasswordHash = *in.PasswordHash
	}
	f.s.users[id] = u
	return nil
}

// venues

type fakeVenues struct{ s *fakeStore }

func (f fakeVenues) CreateWithOwner(_ context.Context, v venue.Venue, ownerMemberID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failWith != nil {
		return f.s.failWith
	}
	for _, existing := range f.s.venues {
		if existing.Slug == v.Slug || existing.JoinCode == v.JoinCode {
			return venue.ErrSlugTaken
		}
	}
	f.s.venues[v.ID] = v
	u := f.s.users[v.CreatedBy]
	f.s.members = append(f.s.members, venue.Member{ID: ownerMemberID, VenueID: v.ID, UserID: v.CreatedBy, Role: venue.RoleOwner, Email: u.Email, DisplayName: u.DisplayName})
	return nil
}

func (f fakeVenues) GetByID(_ context.Context, id uuid.UUID) (venue.Venue, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v, ok := f.s.venues[id]
	if !ok {
		return venue.Venue{}, venue.ErrNotFound
	}
	return v, nil
}

func (f fakeVenues) find(match func(venue.Venue) bool) (venue.Venue, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, v := range f.s.venues {
		if match(v) {
			return v, nil
		}
	}
	return venue.Venue{}, venue.ErrNotFound
}

func (f fakeVenues) GetBySlug(_ context.Context, slug string) (venue.Venue, error) {
	return f.find(func(v venue.Venue) bool { return v.Slug == slug })
}

func (f fakeVenues) GetByJoinCode(_ context.Context, code string) (venue.Venue, error) {
	return f.find(func(v venue.Venue) bool { return v.JoinCode == code })
}

func (f fakeVenues) SlugExists(_ context.Context, slug string) (bool, error) {
	_, err := f.find(func(v venue.Venue) bool { return v.Slug == slug })
	return err == nil, nil
}

func (f fakeVenues) Update(_ context.Context, v venue.Venue) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.venues[v.ID]; !ok {
		return venue.ErrNotFound
	}
	f.s.venues[v.ID] = v
	return nil
}

func (f fakeVenues) UpdateJoinCode(_ context.Context, id uuid.UUID, code string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v, ok := f.s.venues[id]
	if !ok {
		return venue.ErrNotFound
	}
	v.JoinCode = code
	f.s.venues[id] = v
	return nil
}

func (f fakeVenues) ListForUser(_ context.Context, userID uuid.UUID) ([]venue.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []venue.Membership
	for _, m := range f.s.members {
		if m.UserID == userID {
			out = append(out, venue.Membership{Venue: f.s.venues[m.VenueID], Role: m.Role})
		}
	}
	return out, nil
}

type fakeMembers struct{ s *fakeStore }

// lastOwner reports whether userID is the venue's only owner. Callers hold mu.
func (s *fakeStore) lastOwner(venueID, userID uuid.UUID) bool {
	owners, isOwner := 0, false
	for _, m := range s.members {
		if m.VenueID != venueID || m.Role != venue.RoleOwner {
			continue
		}
		owners++
		if m.UserID == userID {
			isOwner = true
		}
	}
	return isOwner && owners <= 1
}

func (f fakeMembers) GetMember(_ context.Context, venueID, userID uuid.UUID) (venue.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failWith != nil {
		return venue.Member{}, f.s.failWith
	}
	i := f.s.memberIndex(venueID, userID)
	if i < 0 {
		return venue.Member{}, venue.ErrMemberNotFound
	}
	return f.s.members[i], nil
}

func (f fakeMembers) ListMembers(_ context.Context, venueID uuid.UUID) ([]venue.Member, error) {
	return f.ListByRoles(context.Background(), venueID, venue.RoleOwner, venue.RoleManager, venue.RoleStaff)
}

func (f fakeMembers) ListByRoles(_ context.Context, venueID uuid.UUID, roles ...venue.Role) ([]venue.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []venue.Member
	for _, m := range f.s.members {
		if m.VenueID != venueID {
			continue
		}
		for _, r := range roles {
			if m.Role == r {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (f fakeMembers) UpdateRole(_ context.Context, venueID, userID uuid.UUID, role venue.Role) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	i := f.s.memberIndex(venueID, userID)
	if i < 0 {
		return venue.ErrMemberNotFound
	}
	if role != venue.RoleOwner && f.s.lastOwner(venueID, userID) {
		return venue.ErrLastOwner
	}
	f.s.members[i].Role = role
	return nil
}

func (f fakeMembers) Remove(_ context.Context, venueID, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	i := f.s.memberIndex(venueID, userID)
	if i < 0 {
		return venue.ErrMemberNotFound
	}
	if f.s.lastOwner(venueID, userID) {
		return venue.ErrLastOwner
	}
	f.s.members = append(f.s.members[:i], f.s.members[i+1:]...)
	return nil
}

// join requests

type fakeJoinRequests struct{ s *fakeStore }

func (f fakeJoinRequests) hydrate(jr joinrequest.JoinRequest) joinrequest.JoinRequest {
	jr.VenueName = f.s.venues[jr.VenueID].Name
	u := f.s.users[jr.UserID]
	jr.UserEmail, jr.UserName = u.Email, u.DisplayName
	return jr
}

func (f fakeJoinRequests) Create(_ context.Context, jr joinrequest.JoinRequest) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.joinRequests {
		if existing.VenueID == jr.VenueID && existing.UserID == jr.UserID && existing.Status == joinrequest.StatusPending {
			return joinrequest.ErrDuplicate
		}
	}
	jr.CreatedAt = time.Now()
	f.s.joinRequests[jr.ID] = jr
	return nil
}

func (f fakeJoinRequests) GetByID(_ context.Context, id uuid.UUID) (joinrequest.JoinRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	jr, ok := f.s.joinRequests[id]
	if !ok {
		return joinrequest.JoinRequest{}, joinrequest.ErrNotFound
	}
	return f.hydrate(jr), nil
}

func (f fakeJoinRequests) HasPending(_ context.Context, venueID, userID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, jr := range f.s.joinRequests {
		if jr.VenueID == venueID && jr.UserID == userID && jr.Status == joinrequest.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeJoinRequests) ListForVenue(_ context.Context, venueID uuid.UUID, status *joinrequest.Status) ([]joinrequest.JoinRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []joinrequest.JoinRequest
	for _, jr := range f.s.joinRequests {
		if jr.VenueID == venueID && (status == nil || jr.Status == *status) {
			out = append(out, f.hydrate(jr))
		}
	}
	return out, nil
}

func (f fakeJoinRequests) ListForUser(_ context.Context, userID uuid.UUID) ([]joinrequest.JoinRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []joinrequest.JoinRequest
	for _, jr := range f.s.joinRequests {
		if jr.UserID == userID {
			out = append(out, f.hydrate(jr))
		}
	}
	return out, nil
}

func (f fakeJoinRequests) decide(d joinrequest.Decision, to joinrequest.Status) (joinrequest.JoinRequest, error) {
	jr, ok := f.s.joinRequests[d.RequestID]
	if !ok {
		return joinrequest.JoinRequest{}, joinrequest.ErrNotFound
	}
	if jr.Status != joinrequest.StatusPending {
		return joinrequest.JoinRequest{}, joinrequest.ErrNotPending
	}
	jr.Status = to
	jr.DecidedBy = &d.DecidedBy
	jr.DecisionNote = d.Note
	jr.DecidedAt = &d.At
	f.s.joinRequests[jr.ID] = jr
	return f.hydrate(jr), nil
}

func (f fakeJoinRequests) Approve(_ context.Context, d joinrequest.Decision, memberID uuid.UUID, role venue.Role) (joinrequest.JoinRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	jr, err := f.decide(d, joinrequest.StatusApproved)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if f.s.memberIndex(jr.VenueID, jr.UserID) < 0 {
		u := f.s.users[jr.UserID]
		f.s.members = append(f.s.members, venue.Member{ID: memberID, VenueID: jr.VenueID, UserID: jr.UserID, Role: role, Email: u.Email, DisplayName: u.DisplayName, LineUserID: u.LineUserID})
	}
	return jr, nil
}

func (f fakeJoinRequests) Decide(_ context.Context, d joinrequest.Decision, to joinrequest.Status) (joinrequest.JoinRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.decide(d, to)
}

// shifts

type fakeShifts struct{ s *fakeStore }

func (f fakeShifts) Create(_ context.Context, sh shift.Shift) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failWith != nil {
		return f.s.failWith
	}
	sh.MemberName = f.s.users[sh.UserID].DisplayName
	f.s.shifts[sh.ID] = sh
	return nil
}

func (f fakeShifts) Update(_ context.Context, sh shift.Shift) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.shifts[sh.ID]; !ok {
		return shift.ErrNotFound
	}
	sh.MemberName = f.s.users[sh.UserID].DisplayName
	f.s.shifts[sh.ID] = sh
	return nil
}

func (f fakeShifts) Delete(_ context.Context, venueID, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sh, ok := f.s.shifts[id]
	if !ok || sh.VenueID != venueID {
		return shift.ErrNotFound
	}
	delete(f.s.shifts, id)
	return nil
}

func (f fakeShifts) GetByID(_ context.Context, venueID, id uuid.UUID) (shift.Shift, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sh, ok := f.s.shifts[id]
	if !ok || sh.VenueID != venueID {
		return shift.Shift{}, shift.ErrNotFound
	}
	return sh, nil
}

func (f fakeShifts) List(_ context.Context, flt shift.Filter) ([]shift.Shift, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []shift.Shift
	for _, sh := range f.s.shifts {
		if sh.VenueID != flt.VenueID || sh.WorkDate.Before(flt.From) || sh.WorkDate.After(flt.To) {
			continue
		}
		if flt.UserID != nil && sh.UserID != *flt.UserID {
			continue
		}
		// The SQL repository joins users, so names are always current.
		sh.MemberName = f.s.users[sh.UserID].DisplayName
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	return out, nil
}

type fakeShiftRequests struct{ s *fakeStore }

func (f fakeShiftRequests) CreateBatch(_ context.Context, reqs []shift.Request) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failWith != nil {
		return f.s.failWith
	}
	for _, r := range reqs {
		r.MemberName = f.s.users[r.UserID].DisplayName
		f.s.requests[r.ID] = r
	}
	return nil
}

func (f fakeShiftRequests) GetByID(_ context.Context, id uuid.UUID) (shift.Request, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.requests[id]
	if !ok {
		return shift.Request{}, shift.ErrRequestNotFound
	}
	return r, nil
}

func (f fakeShiftRequests) List(_ context.Context, flt shift.RequestFilter) ([]shift.Request, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []shift.Request
	for _, r := range f.s.requests {
		if r.VenueID != flt.VenueID || r.WorkDate.Before(flt.From) || r.WorkDate.After(flt.To) {
			continue
		}
		if flt.UserID != nil && r.UserID != *flt.UserID {
			continue
		}
		if flt.Status != nil && r.Status != *flt.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	return out, nil
}

func (f fakeShiftRequests) decide(d shift.Decision, to shift.RequestStatus) (shift.Request, error) {
	r, ok := f.s.requests[d.RequestID]
	if !ok {
		return shift.Request{}, shift.ErrRequestNotFound
	}
	if r.Status != shift.RequestPending {
		return shift.Request{}, shift.ErrNotPending
	}
	r.Status = to
	r.DecidedBy = &d.DecidedBy
	r.DecisionNote = d.Note
	r.DecidedAt = &d.At
	f.s.requests[r.ID] = r
	return r, nil
}

func (f fakeShiftRequests) Approve(_ context.Context, d shift.Decision, shiftID uuid.UUID) (shift.Request, shift.Shift, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, err := f.decide(d, shift.RequestApproved)
	if err != nil {
		return shift.Request{}, shift.Shift{}, err
	}
	sh := shift.Shift{
		ID: shiftID, VenueID: r.VenueID, UserID: r.UserID, MemberName: r.MemberName,
		WorkDate: r.WorkDate, StartMinute: r.StartMinute, EndMinute: r.EndMinute, Note: r.Note, CreatedBy: d.DecidedBy,
	}
	f.s.shifts[sh.ID] = sh
	r.ShiftID = &sh.ID
	f.s.requests[r.ID] = r
	return r, sh, nil
}

func (f fakeShiftRequests) Decide(_ context.Context, d shift.Decision, to shift.RequestStatus) (shift.Request, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.decide(d, to)
}

// resume

type fakeTemplates struct{ s *fakeStore }

func (f fakeTemplates) Create(_ context.Context, t resume.Template) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.templates[t.ID] = t
	return nil
}

func (f fakeTemplates) Update(_ context.Context, t resume.Template) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.templates[t.ID]; !ok {
		return resume.ErrTemplateNotFound
	}
	f.s.templates[t.ID] = t
	return nil
}

func (f fakeTemplates) Delete(_ context.Context, venueID, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.templates[id]
	if !ok || t.VenueID != venueID {
		return resume.ErrTemplateNotFound
	}
	delete(f.s.templates, id)
	return nil
}

func (f fakeTemplates) GetByID(_ context.Context, venueID, id uuid.UUID) (resume.Template, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.templates[id]
	if !ok || t.VenueID != venueID {
		return resume.Template{}, resume.ErrTemplateNotFound
	}
	return t, nil
}

func (f fakeTemplates) GetActive(_ context.Context, venueID uuid.UUID) (resume.Template, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.templates {
		if t.VenueID == venueID && t.IsActive {
			return t, nil
		}
	}
	return resume.Template{}, resume.ErrNoActiveTemplate
}

func (f fakeTemplates) List(_ context.Context, venueID uuid.UUID) ([]resume.Template, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []resume.Template
	for _, t := range f.s.templates {
		if t.VenueID == venueID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeTemplates) Activate(_ context.Context, venueID, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	target, ok := f.s.templates[id]
	if !ok || target.VenueID != venueID {
		return resume.ErrTemplateNotFound
	}
	for tid, t := range f.s.templates {
		if t.VenueID == venueID {
			t.IsActive = tid == id
			f.s.templates[tid] = t
		}
	}
	return nil
}

type fakeApplicants struct{ s *fakeStore }

func (f fakeApplicants) Create(_ context.Context, a resume.Applicant) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failWith != nil {
		return f.s.failWith
	}
	f.s.applicants[a.ID] = a
	return nil
}

func (f fakeApplicants) GetByID(_ context.Context, venueID, id uuid.UUID) (resume.Applicant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.applicants[id]
	if !ok || a.VenueID != venueID {
		return resume.Applicant{}, resume.ErrApplicantNotFound
	}
	return a, nil
}

func (f fakeApplicants) List(_ context.Context, flt resume.ApplicantFilter) ([]resume.Applicant, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []resume.Applicant
	for _, a := range f.s.applicants {
		if a.VenueID != flt.VenueID || (flt.Status != nil && a.Status != *flt.Status) {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(a.FullName+" "+a.Email+" "+a.ResumeText), strings.ToLower(flt.Search)) {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f fakeApplicants) UpdateStatus(_ context.Context, venueID, id uuid.UUID, from, to resume.ApplicantStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.applicants[id]
	if !ok || a.VenueID != venueID || a.Status != from {
		return resume.ErrApplicantNotFound
	}
	a.Status = to
	f.s.applicants[id] = a
	return nil
}

func (f fakeApplicants) UpdateNotes(_ context.Context, venueID, id uuid.UUID, notes string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.applicants[id]
	if !ok || a.VenueID != venueID {
		return resume.ErrApplicantNotFound
	}
	a.Notes = notes
	f.s.applicants[id] = a
	return nil
}

func (f fakeApplicants) Delete(_ context.Context, venueID, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.applicants[id]
	if !ok || a.VenueID != venueID {
		return resume.ErrApplicantNotFound
	}
	delete(f.s.applicants, id)
	return nil
}

// side effects

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg notification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Kind, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Kind)
	}
	return out
}

type fakeCache struct {
	mu       sync.Mutex
	data     map[string]any
	patterns []string
	gets     int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]any{}} }

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	*out.(*CalendarView) = v.(CalendarView)
	return true, nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeBroadcaster) ScheduleUpdated(venueID uuid.UUID, month string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, venueID.String()+"/"+month)
}

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeFiles() *fakeFiles { return &fakeFiles{objects: map[string][]byte{}} }

func (f *fakeFiles) Put(_ context.Context, key, _ string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return nil
}

func (f *fakeFiles) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://files.example.com/" + key + "?ttl=" + ttl.String(), nil
}

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) Extract(string, []byte) (string, error) { return e.text, e.err }

type fakeExporter struct {
	got []shift.Shift
}

func (e *fakeExporter) Export(_ venue.Venue, _ calendar.Month, shifts []shift.Shift) ([]byte, error) {
	e.got = shifts
	return []byte("xlsx"), nil
}

func date(s string) time.Time {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedNow(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func mustMonth(s string) calendar.Month {
	m, err := calendar.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}
