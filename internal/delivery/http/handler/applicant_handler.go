package handler

import (
	"strconv"

	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ApplicantHandler struct {
	uc usecase.ApplicantUsecase
}

type applicantStatusRequest struct {
	Status string `json:"status"`
}

type applicantNotesRequest struct {
	Notes string `json:"notes"`
}

func NewApplicantHandler(uc usecase.ApplicantUsecase) *ApplicantHandler {
	return &ApplicantHandler{uc: uc}
}

func (h *ApplicantHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/:venueID/applicants")
	grp.Get("/", h.List)
	grp.Get("/:applicantID", h.Get)
	grp.Delete("/:applicantID", h.Delete)
	grp.Put("/:applicantID/status", h.UpdateStatus)
	grp.Put("/:applicantID/notes", h.UpdateNotes)
	grp.Get("/:applicantID/resume", h.ResumeURL)
}

func (h *ApplicantHandler) List(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}

	q := usecase.ApplicantQuery{Search: c.Query("q")}
	if raw := c.Query("status"); raw != "" {
		s := resume.ApplicantStatus(raw)
		if !s.Valid() {
			return badRequest("Invalid status", nil)
		}
		q.Status = &s
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	if q.Offset, err = queryInt(c, "offset"); err != nil {
		return err
	}

	items, total, err := h.uc.List(c.Context(), uid, vid, q)
	if err != nil {
		return mapApplicantUsecaseError(err)
	}

	res := dto.ApplicantListResponse{Items: make([]dto.ApplicantResponse, 0, len(items)), Total: total}
	for _, a := range items {
		res.Items = append(res.Items, dto.NewApplicantResponse(a))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ApplicantHandler) Get(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	aid, err := uuidParam(c, "applicantID")
	if err != nil {
		return err
	}
	a, err := h.uc.Get(c.Context(), uid, vid, aid)
	if err != nil {
		return mapApplicantUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicantResponse(a))
}

func (h *ApplicantHandler) UpdateStatus(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	aid, err := uuidParam(c, "applicantID")
	if err != nil {
		return err
	}
	var req applicantStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}
	to := resume.ApplicantStatus(req.Status)
	if !to.Valid() {
		return badRequest("Invalid status", nil)
	}

	a, err := h.uc.UpdateStatus(c.Context(), uid, vid, aid, to)
	if err != nil {
		return mapApplicantUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicantResponse(a))
}

func (h *ApplicantHandler) UpdateNotes(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	aid, err := uuidParam(c, "applicantID")
	if err != nil {
		return err
	}
	var req applicantNotesRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	a, err := h.uc.UpdateNotes(c.Context(), uid, vid, aid, req.Notes)
	if err != nil {
		return mapApplicantUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicantResponse(a))
}

func (h *ApplicantHandler) Delete(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	aid, err := uuidParam(c, "applicantID")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), uid, vid, aid); err != nil {
		return mapApplicantUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

// ResumeURL hands out a short-lived download link instead of proxying the file.
func (h *ApplicantHandler) ResumeURL(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	aid, err := uuidParam(c, "applicantID")
	if err != nil {
		return err
	}
	url, err := h.uc.ResumeURL(c.Context(), uid, vid, aid)
	if err != nil {
		return mapApplicantUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"url": url})
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("Invalid "+key, err)
	}
	return n, nil
}
