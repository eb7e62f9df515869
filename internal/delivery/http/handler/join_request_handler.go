package handler

import (
	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/domain/joinrequest"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JoinRequestHandler struct {
	uc usecase.JoinRequestUsecase
}

type submitJoinRequest struct {
	JoinCode string `json:"join_code"`
	Message  string `json:"message"`
}

type decideJoinRequest struct {
	Role string `json:"role"`
	Note string `json:"note"`
}

func NewJoinRequestHandler(uc usecase.JoinRequestUsecase) *JoinRequestHandler {
	return &JoinRequestHandler{uc: uc}
}

// RegisterRoutes mounts the applicant side under /join-requests.
func (h *JoinRequestHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Submit)
	r.Get("/mine", h.ListMine)
	r.Post("/:requestID/approve", h.Approve)
	r.Post("/:requestID/reject", h.Reject)
	r.Post("/:requestID/cancel", h.Cancel)
}

// RegisterVenueRoutes mounts the approver listing under /venues.
func (h *JoinRequestHandler) RegisterVenueRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/:venueID/join-requests", h.ListForVenue)
}

func (h *JoinRequestHandler) Submit(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req submitJoinRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	jr, err := h.uc.Submit(c.Context(), uid, req.JoinCode, req.Message)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewJoinRequestResponse(jr))
}

func (h *JoinRequestHandler) ListMine(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ListMine(c.Context(), uid)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJoinRequestResponses(items))
}

func (h *JoinRequestHandler) ListForVenue(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}

	var status *joinrequest.Status
	if raw := c.Query("status"); raw != "" {
		s := joinrequest.Status(raw)
		if !s.Valid() {
			return badRequest("Invalid status", nil)
		}
		status = &s
	}

	items, err := h.uc.ListForVenue(c.Context(), uid, vid, status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJoinRequestResponses(items))
}

func (h *JoinRequestHandler) Approve(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "requestID")
	if err != nil {
		return err
	}
	var req decideJoinRequest
	if err := bindOptional(c, &req); err != nil {
		return err
	}
	role := venue.RoleStaff
	if req.Role != "" {
		role = venue.Role(req.Role)
	}

	jr, err := h.uc.Approve(c.Context(), uid, reqID, role, req.Note)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJoinRequestResponse(jr))
}

func (h *JoinRequestHandler) Reject(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "requestID")
	if err != nil {
		return err
	}
	var req decideJoinRequest
	if err := bindOptional(c, &req); err != nil {
		return err
	}

	jr, err := h.uc.Reject(c.Context(), uid, reqID, req.Note)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJoinRequestResponse(jr))
}

func (h *JoinRequestHandler) Cancel(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "requestID")
	if err != nil {
		return err
	}

	jr, err := h.uc.Cancel(c.Context(), uid, reqID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJoinRequestResponse(jr))
}
