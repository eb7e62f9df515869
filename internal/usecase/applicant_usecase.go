package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"venue-staff/internal/domain/notification"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxResumeBytes     = 5 << 20
	resumeURLTTL       = 15 * time.Minute
	maxApplicantName   = 100
	maxApplicantPhone  = 30
	maxApplicantNotes  = 5000
	defaultApplicants  = 20
	maxApplicantsLimit = 100

	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

// FileStore keeps uploaded resume files.
type FileStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor pulls searchable text out of a resume file.
type TextExtractor interface {
	Extract(mime string, data []byte) (string, error)
}

type ResumeUpload struct {
	Filename string
	Data     []byte
}

type ApplyInput struct {
	FullName string
	Email    string
	Phone    string
	Answers  map[string]any
	Resume   *ResumeUpload
}

type ApplicantQuery struct {
	Status *resume.ApplicantStatus
	Search string
	Limit  int
	Offset int
}

type ApplicationForm struct {
	VenueName string
	VenueSlug string
	Template  resume.Template
}

type ApplicantUsecase interface {
	Form(ctx context.Context, slug string) (ApplicationForm, error)
	Apply(ctx context.Context, slug string, in ApplyInput) (resume.Applicant, error)

	List(ctx context.Context, userID, venueID uuid.UUID, q ApplicantQuery) ([]resume.Applicant, int, error)
	Get(ctx context.Context, userID, venueID, applicantID uuid.UUID) (resume.Applicant, error)
	UpdateStatus(ctx context.Context, userID, venueID, applicantID uuid.UUID, to resume.ApplicantStatus) (resume.Applicant, error)
	UpdateNotes(ctx context.Context, userID, venueID, applicantID uuid.UUID, notes string) (resume.Applicant, error)
	Delete(ctx context.Context, userID, venueID, applicantID uuid.UUID) error
	ResumeURL(ctx context.Context, userID, venueID, applicantID uuid.UUID) (string, error)
}

type Applicants struct {
	applicants resume.ApplicantRepository
	templates  resume.TemplateRepository
	venues     venue.Repository
	members    venue.MemberRepository
	files      FileStore
	extractor  TextExtractor
	access     access
	notify     notifier
	log        *zap.Logger
}

type ApplicantDeps struct {
	Applicants resume.ApplicantRepository
	Templates  resume.TemplateRepository
	Venues     venue.Repository
	Members    venue.MemberRepository
	Files      FileStore
	Extractor  TextExtractor
	Notifier   notification.Notifier
	Logger     *zap.Logger
}

func NewApplicantUsecase(d ApplicantDeps) *Applicants {
	log := logging.OrNop(d.Logger).Named("applicant")
	return &Applicants{
		applicants: d.Applicants,
		templates:  d.Templates,
		venues:     d.Venues,
		members:    d.Members,
		files:      d.Files,
		extractor:  d.Extractor,
		access:     access{venues: d.Venues, members: d.Members, log: log},
		notify:     notifier{n: d.Notifier, log: log},
		log:        log,
	}
}

func (u *Applicants) Form(ctx context.Context, slug string) (ApplicationForm, error) {
	v, t, err := u.openVenue(ctx, slug)
	if err != nil {
		return ApplicationForm{}, err
	}
	return ApplicationForm{VenueName: v.Name, VenueSlug: v.Slug, Template: t}, nil
}

// Apply records a public application against the venue's active template.
// The resume file is stored first and removed again if the insert fails;
// text extraction problems only cost search coverage.
func (u *Applicants) Apply(ctx context.Context, slug string, in ApplyInput) (resume.Applicant, error) {
	v, t, err := u.openVenue(ctx, slug)
	if err != nil {
		return resume.Applicant{}, err
	}

	a := resume.Applicant{
		ID:         uuid.New(),
		VenueID:    v.ID,
		TemplateID: &t.ID,
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Status:     resume.StatusNew,
		CreatedAt:  time.Now().UTC(),
	}
	a.UpdatedAt = a.CreatedAt
	if n := utf8.RuneCountInString(a.FullName); n == 0 || n > maxApplicantName {
		return resume.Applicant{}, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if a.Email != "" && !resume.LooksLikeEmail(a.Email) {
		return resume.Applicant{}, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if utf8.RuneCountInString(a.Phone) > maxApplicantPhone {
		return resume.Applicant{}, fmt.Errorf("%w: phone is too long", ErrInvalidInput)
	}

	answers, err := resume.ValidateAnswers(t.Fields, in.Answers)
	if err != nil {
		return resume.Applicant{}, err
	}
	a.Answers = answers

	if in.Resume != nil {
		file, text, err := u.storeResume(ctx, v.ID, *in.Resume)
		if err != nil {
			return resume.Applicant{}, err
		}
		a.Resume = &file
		a.ResumeText = text
	}

	if err := u.applicants.Create(ctx, a); err != nil {
		if a.Resume != nil {
			if delErr := u.files.Delete(ctx, a.Resume.ObjectKey); delErr != nil {
				u.log.Warn("orphaned resume file", zap.String("key", a.Resume.ObjectKey), zap.Error(delErr))
			}
		}
		return resume.Applicant{}, internalErr(u.log, "create applicant", err)
	}

	u.log.Info("application received", zap.Stringer("venue_id", v.ID), zap.Stringer("applicant_id", a.ID))
	u.notifyManagers(ctx, v, a)
	return a, nil
}

func (u *Applicants) openVenue(ctx context.Context, slug string) (venue.Venue, resume.Template, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return venue.Venue{}, resume.Template{}, ErrVenueNotFound
	}
	v, err := u.venues.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return venue.Venue{}, resume.Template{}, ErrVenueNotFound
		}
		return venue.Venue{}, resume.Template{}, internalErr(u.log, "get venue by slug", err)
	}
	t, err := u.templates.GetActive(ctx, v.ID)
	if err != nil {
		if errors.Is(err, resume.ErrNoActiveTemplate) {
			return venue.Venue{}, resume.Template{}, ErrNoActiveTemplate
		}
		return venue.Venue{}, resume.Template{}, internalErr(u.log, "get active template", err)
	}
	return v, t, nil
}

func (u *Applicants) storeResume(ctx context.Context, venueID uuid.UUID, up ResumeUpload) (resume.ResumeFile, string, error) {
	if u.files == nil {
		return resume.ResumeFile{}, "", ErrStorageDisabled
	}
	if len(up.Data) == 0 {
		return resume.ResumeFile{}, "", fmt.Errorf("%w: resume file is empty", ErrInvalidInput)
	}
	if len(up.Data) > MaxResumeBytes {
		return resume.ResumeFile{}, "", ErrResumeTooLarge
	}
	mime, ext, ok := DetectResumeType(up.Filename, up.Data)
	if !ok {
		return resume.ResumeFile{}, "", ErrResumeType
	}

	key := fmt.Sprintf("applicants/%s/%s%s", venueID, uuid.New(), ext)
	if err := u.files.Put(ctx, key, mime, up.Data); err != nil {
		return resume.ResumeFile{}, "", internalErr(u.log, "store resume", err)
	}

	var text string
	if u.extractor != nil {
		t, err := u.extractor.Extract(mime, up.Data)
		if err != nil {
			u.log.Warn("resume text extraction failed", zap.String("key", key), zap.String("mime", mime), zap.Error(err))
		} else {
			text = t
		}
	}

	name := filepath.Base(strings.TrimSpace(up.Filename))
	if name == "." || name == "/" || name == "" {
		name = "resume" + ext
	}
	return resume.ResumeFile{ObjectKey: key, Filename: name, Mime: mime, Size: int64(len(up.Data))}, text, nil
}

// DetectResumeType accepts PDF, DOCX and plain text. The extension picks the
// claimed type and the content must agree with it.
func DetectResumeType(filename string, data []byte) (mime, ext string, ok bool) {
	sniffed := http.DetectContentType(data)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF, ".pdf", sniffed == MimePDF
	case ".docx":
		// A DOCX is a zip archive with a word/ part.
		return MimeDOCX, ".docx", sniffed == "application/zip" && bytes.Contains(data, []byte("word/"))
	case ".txt":
		return MimeText, ".txt", strings.HasPrefix(sniffed, MimeText)
	}
	return "", "", false
}

func (u *Applicants) List(ctx context.Context, userID, venueID uuid.UUID, q ApplicantQuery) ([]resume.Applicant, int, error) {
	if q.Status != nil && !q.Status.Valid() {
		return nil, 0, ErrInvalidInput
	}
	if q.Limit <= 0 {
		q.Limit = defaultApplicants
	}
	if q.Limit > maxApplicantsLimit {
		q.Limit = maxApplicantsLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return nil, 0, err
	}

	out, total, err := u.applicants.List(ctx, resume.ApplicantFilter{
		VenueID: venueID,
		Status:  q.Status,
		Search:  strings.TrimSpace(q.Search),
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, 0, internalErr(u.log, "list applicants", err)
	}
	return out, total, nil
}

func (u *Applicants) Get(ctx context.Context, userID, venueID, applicantID uuid.UUID) (resume.Applicant, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Applicant{}, err
	}
	return u.get(ctx, venueID, applicantID)
}

func (u *Applicants) UpdateStatus(ctx context.Context, userID, venueID, applicantID uuid.UUID, to resume.ApplicantStatus) (resume.Applicant, error) {
	if !to.Valid() {
		return resume.Applicant{}, ErrInvalidInput
	}
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Applicant{}, err
	}
	a, err := u.get(ctx, venueID, applicantID)
	if err != nil {
		return resume.Applicant{}, err
	}
	if !a.Status.CanTransitionTo(to) {
		return resume.Applicant{}, ErrInvalidStatusTransition
	}

	if err := u.applicants.UpdateStatus(ctx, venueID, applicantID, a.Status, to); err != nil {
		if errors.Is(err, resume.ErrApplicantNotFound) {
			// Gone, or moved by someone else in the meantime.
			return resume.Applicant{}, ErrInvalidStatusTransition
		}
		return resume.Applicant{}, internalErr(u.log, "update applicant status", err)
	}
	return u.get(ctx, venueID, applicantID)
}

func (u *Applicants) UpdateNotes(ctx context.Context, userID, venueID, applicantID uuid.UUID, notes string) (resume.Applicant, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxApplicantNotes {
		return resume.Applicant{}, ErrInvalidInput
	}
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return resume.Applicant{}, err
	}
	if err := u.applicants.UpdateNotes(ctx, venueID, applicantID, notes); err != nil {
		if errors.Is(err, resume.ErrApplicantNotFound) {
			return resume.Applicant{}, ErrApplicantNotFound
		}
		return resume.Applicant{}, internalErr(u.log, "update applicant notes", err)
	}
	return u.get(ctx, venueID, applicantID)
}

// Delete removes the applicant and then its stored file. A file that cannot
// be removed is logged, not reported.
func (u *Applicants) Delete(ctx context.Context, userID, venueID, applicantID uuid.UUID) error {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return err
	}
	a, err := u.get(ctx, venueID, applicantID)
	if err != nil {
		return err
	}
	if err := u.applicants.Delete(ctx, venueID, applicantID); err != nil {
		if errors.Is(err, resume.ErrApplicantNotFound) {
			return ErrApplicantNotFound
		}
		return internalErr(u.log, "delete applicant", err)
	}
	if a.Resume != nil && u.files != nil {
		if err := u.files.Delete(ctx, a.Resume.ObjectKey); err != nil {
			u.log.Warn("resume file delete failed", zap.String("key", a.Resume.ObjectKey), zap.Error(err))
		}
	}
	return nil
}

func (u *Applicants) ResumeURL(ctx context.Context, userID, venueID, applicantID uuid.UUID) (string, error) {
	if _, err := u.access.manager(ctx, venueID, userID); err != nil {
		return "", err
	}
	a, err := u.get(ctx, venueID, applicantID)
	if err != nil {
		return "", err
	}
	if a.Resume == nil {
		return "", ErrNoResume
	}
	if u.files == nil {
		return "", ErrStorageDisabled
	}
	url, err := u.files.PresignGet(ctx, a.Resume.ObjectKey, resumeURLTTL)
	if err != nil {
		return "", internalErr(u.log, "presign resume", err)
	}
	return url, nil
}

func (u *Applicants) get(ctx context.Context, venueID, id uuid.UUID) (resume.Applicant, error) {
	a, err := u.applicants.GetByID(ctx, venueID, id)
	if err != nil {
		if errors.Is(err, resume.ErrApplicantNotFound) {
			return resume.Applicant{}, ErrApplicantNotFound
		}
		return resume.Applicant{}, internalErr(u.log, "get applicant", err)
	}
	return a, nil
}

func (u *Applicants) notifyManagers(ctx context.Context, v venue.Venue, a resume.Applicant) {
	managers, err := u.members.ListByRoles(ctx, v.ID, venue.RoleOwner, venue.RoleManager)
	if err != nil {
		u.log.Warn("notification recipients lookup failed", zap.Stringer("venue_id", v.ID), zap.Error(err))
		return
	}
	subject := fmt.Sprintf("New application for %s", v.Name)
	body := fmt.Sprintf("%s applied to %s.", a.FullName, v.Name)
	if a.Resume != nil {
		body += " A resume file is attached to the application."
	}
	for _, m := range managers {
		u.notify.send(ctx, recipient{UserID: m.UserID, Email: m.Email, LineUserID: m.LineUserID},
			notification.KindApplicantReceived, subject, body)
	}
}
