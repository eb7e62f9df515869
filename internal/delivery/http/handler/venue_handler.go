package handler

import (
	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type VenueHandler struct {
	uc usecase.VenueUsecase
}

type createVenueRequest struct {
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	WeekStart *int   `json:"week_start"`
}

type updateVenueRequest struct {
	Name      *string `json:"name"`
	Timezone  *string `json:"timezone"`
	WeekStart *int    `json:"week_start"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func NewVenueHandler(uc usecase.VenueUsecase) *VenueHandler {
	return &VenueHandler{uc: uc}
}

func (h *VenueHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/:venueID", h.Get)
	r.Put("/:venueID", h.Update)
	r.Post("/:venueID/join-code", h.RegenerateJoinCode)

	r.Get("/:venueID/members", h.ListMembers)
	r.Put("/:venueID/members/:userID", h.UpdateRole)
	r.Delete("/:venueID/members/:userID", h.RemoveMember)
}

func (h *VenueHandler) Create(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createVenueRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	m, err := h.uc.Create(c.Context(), uid, usecase.CreateVenueInput{
		Name:      req.Name,
		Timezone:  req.Timezone,
		WeekStart: req.WeekStart,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewVenueResponse(m.Venue, m.Role))
}

func (h *VenueHandler) ListMine(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ListMine(c.Context(), uid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMembershipResponses(items))
}

func (h *VenueHandler) Get(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	m, err := h.uc.Get(c.Context(), uid, vid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewVenueResponse(m.Venue, m.Role))
}

func (h *VenueHandler) Update(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	var req updateVenueRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	v, err := h.uc.Update(c.Context(), uid, vid, usecase.UpdateVenueInput{
		Name:      req.Name,
		Timezone:  req.Timezone,
		WeekStart: req.WeekStart,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewVenueResponse(v, ""))
}

func (h *VenueHandler) RegenerateJoinCode(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	v, err := h.uc.RegenerateJoinCode(c.Context(), uid, vid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewVenueResponse(v, ""))
}

func (h *VenueHandler) ListMembers(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ListMembers(c.Context(), uid, vid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMemberResponses(items))
}

func (h *VenueHandler) UpdateRole(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	memberID, err := uuidParam(c, "userID")
	if err != nil {
		return err
	}
	var req updateRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}
	role := venue.Role(req.Role)
	if !role.Valid() {
		return badRequest("Invalid role", nil)
	}

	m, err := h.uc.UpdateRole(c.Context(), uid, vid, memberID, role)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMemberResponse(m))
}

func (h *VenueHandler) RemoveMember(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	memberID, err := uuidParam(c, "userID")
	if err != nil {
		return err
	}
	if err := h.uc.RemoveMember(c.Context(), uid, vid, memberID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
