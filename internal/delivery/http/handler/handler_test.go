package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venue-staff/internal/delivery/http/handler"
	"venue-staff/internal/delivery/http/middleware"
	"venue-staff/internal/delivery/http/routes"
	v1 "venue-staff/internal/delivery/http/routes/v1"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/domain/shift"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/pkg/calendar"
	"venue-staff/internal/pkg/jwt"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

// The fakes embed the usecase interface so only the methods a test needs are
// implemented; anything else panics and shows up as a 500.
type fakeVenues struct {
	usecase.VenueUsecase
	get func(userID, venueID uuid.UUID) (venue.Membership, error)
}

func (f *fakeVenues) Get(_ context.Context, userID, venueID uuid.UUID) (venue.Membership, error) {
	return f.get(userID, venueID)
}

type fakeShiftRequests struct {
	usecase.ShiftRequestUsecase
	month   string
	entries []usecase.ShiftEntryInput
	preview usecase.ShiftPreview
	err     error
}

func (f *fakeShiftRequests) Preview(_ context.Context, _, _ uuid.UUID, month string, entries []usecase.ShiftEntryInput) (usecase.ShiftPreview, error) {
	f.month, f.entries = month, entries
	return f.preview, f.err
}

func (f *fakeShiftRequests) Submit(_ context.Context, _, _ uuid.UUID, month string, entries []usecase.ShiftEntryInput) ([]shift.Request, error) {
	f.month, f.entries = month, entries
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type fakeShifts struct {
	usecase.ShiftUsecase
	export []byte
}

func (f *fakeShifts) ExportMonth(_ context.Context, _, _ uuid.UUID, month string) ([]byte, error) {
	if month != "2026-11" {
		return nil, usecase.ErrInvalidInput
	}
	return f.export, nil
}

type fakeApplicants struct {
	usecase.ApplicantUsecase
	slug  string
	in    usecase.ApplyInput
	err   error
	query usecase.ApplicantQuery
}

func (f *fakeApplicants) Apply(_ context.Context, slug string, in usecase.ApplyInput) (resume.Applicant, error) {
	f.slug, f.in = slug, in
	if f.err != nil {
		return resume.Applicant{}, f.err
	}
	a := resume.Applicant{ID: uuid.New(), FullName: in.FullName, CreatedAt: time.Now()}
	if in.Resume != nil {
		a.Resume = &resume.ResumeFile{Filename: in.Resume.Filename}
	}
	return a, nil
}

func (f *fakeApplicants) List(_ context.Context, _, _ uuid.UUID, q usecase.ApplicantQuery) ([]resume.Applicant, int, error) {
	f.query = q
	return []resume.Applicant{{ID: uuid.New(), FullName: "Aiko", Status: resume.StatusNew}}, 1, nil
}

type testEnv struct {
	app   *fiber.App
	jwt   *jwt.HMACService
	user  uuid.UUID
	token string
}

func newTestEnv(t *testing.T, h v1.Handlers) *testEnv {
	t.Helper()

	jwtSvc := jwt.NewHMACService("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	uid := uuid.New()
	tok, err := jwtSvc.GenerateAccessToken(uid, "owner@example.com")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	routes.NewRegistry(handler.NewHealthHandler(pinger{}, nil), h, middleware.NewAuthMiddleware(jwtSvc)).Register(app)

	return &testEnv{app: app, jwt: jwtSvc, user: uid, token: tok}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, semanticResponse) {
	t.Helper()

	if req.Header.Get("Authorization") == "" && e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var sr semanticResponse
	if resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON ||
		resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSONCharsetUTF8 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	}
	return resp, sr
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	handler.NewHealthHandler(pinger{}, map[string]handler.Pinger{"redis": pinger{err: errors.New("down")}}).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sr semanticResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	assert.Equal(t, "ok", sr.Message)
	assert.JSONEq(t, `{"database":"up","redis":"down"}`, string(sr.Data))

	app = fiber.New()
	handler.NewHealthHandler(pinger{err: errors.New("refused")}, nil).RegisterRoutes(app)
	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	env := newTestEnv(t, v1.Handlers{Venue: handler.NewVenueHandler(&fakeVenues{})})
	env.token = ""

	resp, sr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/venues/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, sr.Status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/venues/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, sr = env.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", sr.Message)
}

func TestVenueErrorsMapToStatus(t *testing.T) {
	venueID := uuid.New()
	fake := &fakeVenues{get: func(_, id uuid.UUID) (venue.Membership, error) {
		if id == venueID {
			return venue.Membership{}, usecase.ErrForbidden
		}
		return venue.Membership{}, usecase.ErrVenueNotFound
	}}
	env := newTestEnv(t, v1.Handlers{Venue: handler.NewVenueHandler(fake)})

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+venueID.String(), nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, sr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/venues/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid venueID", sr.Message)
}

func TestShiftPreviewFormatsEntries(t *testing.T) {
	fake := &fakeShiftRequests{preview: usecase.ShiftPreview{
		Month: calendar.Month{Year: 2026, Month: time.November},
		Entries: []usecase.ShiftEntry{{
			Date:            time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			StartMinute:     20 * 60,
			EndMinute:       2 * 60,
			DurationMinutes: 360,
			Overnight:       true,
		}},
		TotalMinutes: 360,
		Valid:        true,
	}}
	env := newTestEnv(t, v1.Handlers{ShiftRequest: handler.NewShiftRequestHandler(fake)})

	body := map[string]any{
		"month":   "2026-11",
		"entries": []map[string]string{{"date": "2026-11-20", "start": "20:00", "end": "02:00"}},
	}
	resp, sr := env.do(t, jsonRequest(http.MethodPost, "/api/v1/venues/"+uuid.NewString()+"/shift-requests/preview", body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "2026-11", fake.month)
	require.Len(t, fake.entries, 1)
	assert.Equal(t, "02:00", fake.entries[0].End)

	var p struct {
		Month   string `json:"month"`
		Entries []struct {
			Date      string   `json:"date"`
			Start     string   `json:"start"`
			End       string   `json:"end"`
			Overnight bool     `json:"overnight"`
			Problems  []string `json:"problems"`
		} `json:"entries"`
		TotalMinutes int  `json:"total_minutes"`
		Valid        bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(sr.Data, &p))
	assert.Equal(t, "2026-11", p.Month)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, "2026-11-20", p.Entries[0].Date)
	assert.Equal(t, "20:00", p.Entries[0].Start)
	assert.Equal(t, "02:00", p.Entries[0].End)
	assert.True(t, p.Entries[0].Overnight)
	assert.NotNil(t, p.Entries[0].Problems)
	assert.Equal(t, 360, p.TotalMinutes)
	assert.True(t, p.Valid)
}

func TestShiftSubmitInvalidEntriesReturnsPreview(t *testing.T) {
	preview := usecase.ShiftPreview{
		Month:   calendar.Month{Year: 2026, Month: time.November},
		Entries: []usecase.ShiftEntry{{Problems: []string{"date is not valid"}}},
	}
	fake := &fakeShiftRequests{err: &usecase.InvalidEntriesError{Preview: preview}}
	env := newTestEnv(t, v1.Handlers{ShiftRequest: handler.NewShiftRequestHandler(fake)})

	body := map[string]any{"month": "2026-11", "entries": []map[string]string{{"date": "nope"}}}
	resp, sr := env.do(t, jsonRequest(http.MethodPost, "/api/v1/venues/"+uuid.NewString()+"/shift-requests", body))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var p struct {
		Valid   bool `json:"valid"`
		Entries []struct {
			Date     string   `json:"date"`
			Problems []string `json:"problems"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(sr.Data, &p))
	assert.False(t, p.Valid)
	require.Len(t, p.Entries, 1)
	assert.Empty(t, p.Entries[0].Date)
	assert.Equal(t, []string{"date is not valid"}, p.Entries[0].Problems)
}

func TestShiftRequestDecisionAcceptsEmptyBody(t *testing.T) {
	env := newTestEnv(t, v1.Handlers{ShiftRequest: handler.NewShiftRequestHandler(&decidingShiftRequests{})})

	resp, sr := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/shift-requests/"+uuid.NewString()+"/approve", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var r struct {
		Status string `json:"status"`
		Start  string `json:"start"`
	}
	require.NoError(t, json.Unmarshal(sr.Data, &r))
	assert.Equal(t, "approved", r.Status)
	assert.Equal(t, "21:30", r.Start)
}

type decidingShiftRequests struct {
	usecase.ShiftRequestUsecase
}

func (decidingShiftRequests) Approve(_ context.Context, _, id uuid.UUID, _ string) (shift.Request, error) {
	return shift.Request{
		ID:          id,
		WorkDate:    time.Date(2026, 11, 21, 0, 0, 0, 0, time.UTC),
		StartMinute: 21*60 + 30,
		EndMinute:   23 * 60,
		Status:      shift.RequestApproved,
	}, nil
}

func TestScheduleExportHeaders(t *testing.T) {
	env := newTestEnv(t, v1.Handlers{Shift: handler.NewShiftHandler(&fakeShifts{export: []byte("PK-fake")})})
	venueID := uuid.NewString()

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+venueID+"/calendar/export?month=2026-11", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="schedule-2026-11.xlsx"`, resp.Header.Get("Content-Disposition"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-fake", string(b))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+venueID+"/calendar/export?month=bad", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublicApplyMultipart(t *testing.T) {
	fake := &fakeApplicants{}
	env := newTestEnv(t, v1.Handlers{Public: handler.NewPublicHandler(fake)})
	env.token = ""

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("full_name", "Aiko Tanaka"))
	require.NoError(t, w.WriteField("email", "aiko@example.com"))
	require.NoError(t, w.WriteField("answers", `{"age": 24, "shift_pref": "weekend"}`))
	fw, err := w.CreateFormFile("resume", "aiko.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/venues/club-luna/applications", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, sr := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, "club-luna", fake.slug)
	assert.Equal(t, "Aiko Tanaka", fake.in.FullName)
	assert.Equal(t, "aiko@example.com", fake.in.Email)
	assert.Equal(t, float64(24), fake.in.Answers["age"])
	require.NotNil(t, fake.in.Resume)
	assert.Equal(t, "aiko.pdf", fake.in.Resume.Filename)
	assert.Equal(t, "%PDF-1.4 fake", string(fake.in.Resume.Data))

	var receipt struct {
		HasResume bool `json:"has_resume"`
	}
	require.NoError(t, json.Unmarshal(sr.Data, &receipt))
	assert.True(t, receipt.HasResume)
}

func TestPublicApplyErrors(t *testing.T) {
	fake := &fakeApplicants{err: &resume.AnswersError{Fields: []resume.FieldError{{Key: "age", Message: "is required"}}}}
	env := newTestEnv(t, v1.Handlers{Public: handler.NewPublicHandler(fake)})
	env.token = ""

	target := "/api/v1/public/venues/club-luna/applications"
	resp, sr := env.do(t, jsonRequest(http.MethodPost, target, map[string]any{"full_name": "Aiko"}))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.JSONEq(t, `{"fields":[{"key":"age","message":"is required"}]}`, string(sr.Data))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("full_name", "Aiko"))
	require.NoError(t, w.WriteField("answers", `[1,2]`))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, sr = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "answers must be a JSON object", sr.Message)

	fake.err = usecase.ErrResumeTooLarge
	resp, _ = env.do(t, jsonRequest(http.MethodPost, target, map[string]any{"full_name": "Aiko"}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	fake.err = usecase.ErrNoActiveTemplate
	resp, _ = env.do(t, jsonRequest(http.MethodPost, target, map[string]any{"full_name": "Aiko"}))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplicantListQuery(t *testing.T) {
	fake := &fakeApplicants{}
	env := newTestEnv(t, v1.Handlers{Applicant: handler.NewApplicantHandler(fake)})
	base := "/api/v1/venues/" + uuid.NewString() + "/applicants/"

	resp, sr := env.do(t, httptest.NewRequest(http.MethodGet, base+"?status=interview&q=aiko&limit=10&offset=20", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, fake.query.Status)
	assert.Equal(t, resume.StatusInterview, *fake.query.Status)
	assert.Equal(t, "aiko", fake.query.Search)
	assert.Equal(t, 10, fake.query.Limit)
	assert.Equal(t, 20, fake.query.Offset)

	var list struct {
		Items []struct {
			FullName string         `json:"full_name"`
			Answers  map[string]any `json:"answers"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(sr.Data, &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.NotNil(t, list.Items[0].Answers)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, base+"?status=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, base+"?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
