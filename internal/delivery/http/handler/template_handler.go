package handler

import (
	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type TemplateHandler struct {
	uc usecase.TemplateUsecase
}

type templateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Fields      []resume.Field `json:"fields"`
}

func NewTemplateHandler(uc usecase.TemplateUsecase) *TemplateHandler {
	return &TemplateHandler{uc: uc}
}

func (h *TemplateHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/:venueID/resume-templates")
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/:templateID", h.Get)
	grp.Put("/:templateID", h.Update)
	grp.Delete("/:templateID", h.Delete)
	grp.Post("/:templateID/activate", h.Activate)
}

func (h *TemplateHandler) List(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	items, err := h.uc.List(c.Context(), uid, vid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTemplateResponses(items))
}

func (h *TemplateHandler) Get(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	tid, err := uuidParam(c, "templateID")
	if err != nil {
		return err
	}
	t, err := h.uc.Get(c.Context(), uid, vid, tid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTemplateResponse(t))
}

func (h *TemplateHandler) Create(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	var req templateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	t, err := h.uc.Create(c.Context(), uid, vid, usecase.TemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewTemplateResponse(t))
}

func (h *TemplateHandler) Update(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	tid, err := uuidParam(c, "templateID")
	if err != nil {
		return err
	}
	var req templateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	t, err := h.uc.Update(c.Context(), uid, vid, tid, usecase.TemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTemplateResponse(t))
}

func (h *TemplateHandler) Delete(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	tid, err := uuidParam(c, "templateID")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), uid, vid, tid); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *TemplateHandler) Activate(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	tid, err := uuidParam(c, "templateID")
	if err != nil {
		return err
	}
	t, err := h.uc.Activate(c.Context(), uid, vid, tid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTemplateResponse(t))
}
