package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"venue-staff/internal/domain/notification"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/domain/user"
	"venue-staff/internal/domain/venue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	docxBytes = []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00word/document.xml")
)

type applicantFixture struct {
	s     *fakeStore
	v     venue.Venue
	owner user.User
	staff user.User
	files *fakeFiles
	n     *fakeNotifier
	uc    *Applicants
	tmpl  resume.Template
}

func newApplicantFixture(ex TextExtractor) applicantFixture {
	s := newFakeStore()
	v := s.addVenue("Club Moonlight")
	owner, staff := s.addUser("Olive"), s.addUser("Ken")
	s.addMember(v, owner, venue.RoleOwner)
	s.addMember(v, staff, venue.RoleStaff)

	tmpl := resume.Template{ID: uuid.New(), VenueID: v.ID, Name: "Floor staff", Fields: sampleFields(), IsActive: true}
	s.templates[tmpl.ID] = tmpl

	f := applicantFixture{s: s, v: v, owner: owner, staff: staff, files: newFakeFiles(), n: &fakeNotifier{}, tmpl: tmpl}
	f.uc = NewApplicantUsecase(ApplicantDeps{
		Applicants: fakeApplicants{s}, Templates: fakeTemplates{s}, Venues: fakeVenues{s}, Members: fakeMembers{s},
		Files: f.files, Extractor: ex, Notifier: f.n,
	})
	return f
}

func validApply() ApplyInput {
	return ApplyInput{
		FullName: " Aiko Tanaka ",
		Email:    "Aiko@Example.com",
		Answers:  map[string]any{"age": "24", "shift_pref": "weekend"},
	}
}

func TestDetectResumeType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		mime     string
		ok       bool
	}{
		{"pdf", "cv.PDF", pdfBytes, MimePDF, true},
		{"docx", "cv.docx", docxBytes, MimeDOCX, true},
		{"text", "cv.txt", []byte("Bartender, 3 years"), MimeText, true},
		{"pdf named docx", "cv.docx", pdfBytes, MimeDOCX, false},
		{"zip without word part", "cv.docx", []byte("PK\x03\x04\x14\x00\x00\x00"), MimeDOCX, false},
		{"text named pdf", "cv.pdf", []byte("hello"), MimePDF, false},
		{"unknown extension", "cv.exe", []byte("MZ"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, _, ok := DetectResumeType(tt.filename, tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.mime, mime)
		})
	}
}

func TestApplicants_Form(t *testing.T) {
	f := newApplicantFixture(nil)
	form, err := f.uc.Form(context.Background(), " CLUB-MOONLIGHT ")
	require.NoError(t, err)
	assert.Equal(t, "Club Moonlight", form.VenueName)
	assert.Equal(t, f.tmpl.ID, form.Template.ID)

	_, err = f.uc.Form(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrVenueNotFound)

	tmpl := f.s.templates[f.tmpl.ID]
	tmpl.IsActive = false
	f.s.templates[tmpl.ID] = tmpl
	_, err = f.uc.Form(context.Background(), "club-moonlight")
	assert.ErrorIs(t, err, ErrNoActiveTemplate)
}

func TestApplicants_Apply_WithResume(t *testing.T) {
	f := newApplicantFixture(fakeExtractor{text: "Bartender at Bar Luna"})
	in := validApply()
	in.Resume = &ResumeUpload{Filename: "../../aiko.pdf", Data: pdfBytes}

	a, err := f.uc.Apply(context.Background(), "club-moonlight", in)
	require.NoError(t, err)
	assert.Equal(t, "Aiko Tanaka", a.FullName)
	assert.Equal(t, "aiko@example.com", a.Email)
	assert.Equal(t, resume.StatusNew, a.Status)
	assert.Equal(t, 24.0, a.Answers["age"])
	assert.Equal(t, "Bartender at Bar Luna", a.ResumeText)

	require.NotNil(t, a.Resume)
	assert.Equal(t, "aiko.pdf", a.Resume.Filename)
	assert.Equal(t, MimePDF, a.Resume.Mime)
	assert.True(t, strings.HasPrefix(a.Resume.ObjectKey, "applicants/"+f.v.ID.String()+"/"))
	assert.Contains(t, f.files.objects, a.Resume.ObjectKey)

	assert.Equal(t, []notification.Kind{notification.KindApplicantReceived}, f.n.kinds())
	assert.Equal(t, f.owner.ID, f.n.sent[0].UserID)
}

func TestApplicants_Apply_ExtractionFailureIsNotFatal(t *testing.T) {
	f := newApplicantFixture(fakeExtractor{err: errors.New("broken xref table")})
	in := validApply()
	in.Resume = &ResumeUpload{Filename: "aiko.pdf", Data: pdfBytes}

	a, err := f.uc.Apply(context.Background(), "club-moonlight", in)
	require.NoError(t, err)
	assert.Empty(t, a.ResumeText)
	assert.NotNil(t, a.Resume)
}

func TestApplicants_Apply_RemovesFileWhenInsertFails(t *testing.T) {
	f := newApplicantFixture(nil)
	f.s.failWith = errDB
	in := validApply()
	in.Resume = &ResumeUpload{Filename: "aiko.txt", Data: []byte("Bartender")}

	_, err := f.uc.Apply(context.Background(), "club-moonlight", in)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.files.objects)
	assert.Len(t, f.files.deleted, 1)
}

func TestApplicants_Apply_Rejects(t *testing.T) {
	f := newApplicantFixture(nil)
	ctx := context.Background()

	in := validApply()
	in.FullName = "  "
	_, err := f.uc.Apply(ctx, "club-moonlight", in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validApply()
	in.Email = "not-an-email"
	_, err = f.uc.Apply(ctx, "club-moonlight", in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validApply()
	in.Answers = map[string]any{"shift_pref": "monday"}
	_, err = f.uc.Apply(ctx, "club-moonlight", in)
	var ae *resume.AnswersError
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Fields, 2)

	in = validApply()
	in.Resume = &ResumeUpload{Filename: "cv.exe", Data: []byte("MZ")}
	_, err = f.uc.Apply(ctx, "club-moonlight", in)
	assert.ErrorIs(t, err, ErrResumeType)

	in.Resume = &ResumeUpload{Filename: "cv.txt", Data: make([]byte, MaxResumeBytes+1)}
	_, err = f.uc.Apply(ctx, "club-moonlight", in)
	assert.ErrorIs(t, err, ErrResumeTooLarge)

	assert.Empty(t, f.s.applicants)
	assert.Empty(t, f.files.objects)
}

func TestApplicants_Apply_StorageDisabled(t *testing.T) {
	s := newFakeStore()
	v := s.addVenue("Club Moonlight")
	tmpl := resume.Template{ID: uuid.New(), VenueID: v.ID, Name: "Floor", Fields: sampleFields(), IsActive: true}
	s.templates[tmpl.ID] = tmpl
	uc := NewApplicantUsecase(ApplicantDeps{
		Applicants: fakeApplicants{s}, Templates: fakeTemplates{s}, Venues: fakeVenues{s}, Members: fakeMembers{s},
	})

	in := validApply()
	in.Resume = &ResumeUpload{Filename: "aiko.pdf", Data: pdfBytes}
	_, err := uc.Apply(context.Background(), "club-moonlight", in)
	assert.ErrorIs(t, err, ErrStorageDisabled)

	// Without a file the application still goes through.
	_, err = uc.Apply(context.Background(), "club-moonlight", validApply())
	assert.NoError(t, err)
}

func TestApplicants_Review(t *testing.T) {
	f := newApplicantFixture(nil)
	ctx := context.Background()
	in := validApply()
	in.Resume = &ResumeUpload{Filename: "aiko.txt", Data: []byte("Bartender")}
	a, err := f.uc.Apply(ctx, "club-moonlight", in)
	require.NoError(t, err)

	_, _, err = f.uc.List(ctx, f.staff.ID, f.v.ID, ApplicantQuery{})
	assert.ErrorIs(t, err, ErrForbidden)

	list, total, err := f.uc.List(ctx, f.owner.ID, f.v.ID, ApplicantQuery{Search: "bartender", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	_, err = f.uc.UpdateStatus(ctx, f.owner.ID, f.v.ID, a.ID, resume.StatusHired)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	got, err := f.uc.UpdateStatus(ctx, f.owner.ID, f.v.ID, a.ID, resume.StatusReviewing)
	require.NoError(t, err)
	assert.Equal(t, resume.StatusReviewing, got.Status)

	got, err = f.uc.UpdateNotes(ctx, f.owner.ID, f.v.ID, a.ID, " strong references ")
	require.NoError(t, err)
	assert.Equal(t, "strong references", got.Notes)
	_, err = f.uc.UpdateNotes(ctx, f.owner.ID, f.v.ID, a.ID, strings.Repeat("x", 5001))
	assert.ErrorIs(t, err, ErrInvalidInput)

	url, err := f.uc.ResumeURL(ctx, f.owner.ID, f.v.ID, a.ID)
	require.NoError(t, err)
	assert.Contains(t, url, a.Resume.ObjectKey)
	assert.Contains(t, url, "ttl=15m0s")

	require.NoError(t, f.uc.Delete(ctx, f.owner.ID, f.v.ID, a.ID))
	assert.Equal(t, []string{a.Resume.ObjectKey}, f.files.deleted)
	_, err = f.uc.Get(ctx, f.owner.ID, f.v.ID, a.ID)
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestApplicants_ResumeURL_NoResume(t *testing.T) {
	f := newApplicantFixture(nil)
	a, err := f.uc.Apply(context.Background(), "club-moonlight", validApply())
	require.NoError(t, err)

	_, err = f.uc.ResumeURL(context.Background(), f.owner.ID, f.v.ID, a.ID)
	assert.ErrorIs(t, err, ErrNoResume)
}
