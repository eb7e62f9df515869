package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/delivery/http/middleware"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// PublicHandler serves the unauthenticated application form.
type PublicHandler struct {
	uc usecase.ApplicantUsecase
}

type applyRequest struct {
	FullName string         `json:"full_name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Answers  map[string]any `json:"answers"`
}

func NewPublicHandler(uc usecase.ApplicantUsecase) *PublicHandler {
	return &PublicHandler{uc: uc}
}

func (h *PublicHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/venues/:slug/application-form", h.Form)
	r.Post("/venues/:slug/applications", h.Apply)
}

func (h *PublicHandler) Form(c fiber.Ctx) error {
	form, err := h.uc.Form(c.Context(), c.Params("slug"))
	if err != nil {
		return mapApplicantUsecaseError(err)
	}

	fields := form.Template.Fields
	if fields == nil {
		fields = []resume.Field{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ApplicationFormResponse{
		VenueName:   form.VenueName,
		VenueSlug:   form.VenueSlug,
		Title:       form.Template.Name,
		Description: form.Template.Description,
		Fields:      fields,
	})
}

// Apply takes multipart (with an optional "resume" file and "answers" as a
// JSON string) or a plain JSON body.
func (h *PublicHandler) Apply(c fiber.Ctx) error {
	in, err := readApplication(c)
	if err != nil {
		return err
	}

	a, err := h.uc.Apply(c.Context(), c.Params("slug"), in)
	if err != nil {
		return mapApplicantUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.ApplicationReceipt{
		ID:        a.ID,
		HasResume: a.Resume != nil,
		CreatedAt: a.CreatedAt,
	})
}

func readApplication(c fiber.Ctx) (usecase.ApplyInput, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		var req applyRequest
		if err := c.Bind().Body(&req); err != nil {
			return usecase.ApplyInput{}, badRequest("", err)
		}
		return usecase.ApplyInput{FullName: req.FullName, Email: req.Email, Phone: req.Phone, Answers: req.Answers}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return usecase.ApplyInput{}, badRequest("Invalid multipart form", err)
	}

	in := usecase.ApplyInput{
		FullName: formValue(form, "full_name"),
		Email:    formValue(form, "email"),
		Phone:    formValue(form, "phone"),
	}
	if raw := formValue(form, "answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Answers); err != nil {
			return usecase.ApplyInput{}, badRequest("answers must be a JSON object", err)
		}
	}

	if files := form.File["resume"]; len(files) > 0 {
		up, err := readResume(files[0])
		if err != nil {
			return usecase.ApplyInput{}, err
		}
		in.Resume = up
	}
	return in, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func readResume(fh *multipart.FileHeader) (*usecase.ResumeUpload, error) {
	if fh.Size > usecase.MaxResumeBytes {
		return nil, mapApplicantUsecaseError(usecase.ErrResumeTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest("Invalid resume upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxResumeBytes+1))
	if err != nil {
		return nil, badRequest("Invalid resume upload", err)
	}
	return &usecase.ResumeUpload{Filename: fh.Filename, Data: data}, nil
}

// mapApplicantUsecaseError lists each failing answer so the form can mark it.
func mapApplicantUsecaseError(err error) error {
	var answers *resume.AnswersError
	if errors.As(err, &answers) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Some answers need fixing", fiber.Map{"fields": answers.Fields}, err)
	}
	return mapUsecaseError(err)
}
