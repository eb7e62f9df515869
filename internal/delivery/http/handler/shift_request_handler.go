package handler

import (
	"context"
	"errors"

	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/delivery/http/middleware"
	"venue-staff/internal/domain/shift"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ShiftRequestHandler struct {
	uc usecase.ShiftRequestUsecase
}

type shiftEntryRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note"`
}

type submitShiftsRequest struct {
	Month   string              `json:"month"`
	Entries []shiftEntryRequest `json:"entries"`
}

func (r submitShiftsRequest) inputs() []usecase.ShiftEntryInput {
	out := make([]usecase.ShiftEntryInput, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, usecase.ShiftEntryInput{Date: e.Date, Start: e.Start, End: e.End, Note: e.Note})
	}
	return out
}

type decideShiftRequest struct {
	Note string `json:"note"`
}

func NewShiftRequestHandler(uc usecase.ShiftRequestUsecase) *ShiftRequestHandler {
	return &ShiftRequestHandler{uc: uc}
}

// RegisterVenueRoutes mounts the wizard under /venues.
func (h *ShiftRequestHandler) RegisterVenueRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/:venueID/shift-requests/preview", h.Preview)
	r.Post("/:venueID/shift-requests", h.Submit)
	r.Get("/:venueID/shift-requests", h.ListForVenue)
	r.Get("/:venueID/shift-requests/mine", h.ListMine)
}

// RegisterRoutes mounts the decision endpoints under /shift-requests.
func (h *ShiftRequestHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/:requestID/approve", h.Approve)
	r.Post("/:requestID/reject", h.Reject)
	r.Post("/:requestID/cancel", h.Cancel)
}

func (h *ShiftRequestHandler) Preview(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	var req submitShiftsRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	p, err := h.uc.Preview(c.Context(), uid, vid, req.Month, req.inputs())
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPreviewResponse(p))
}

func (h *ShiftRequestHandler) Submit(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	var req submitShiftsRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	items, err := h.uc.Submit(c.Context(), uid, vid, req.Month, req.inputs())
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewShiftRequestResponses(items))
}

func (h *ShiftRequestHandler) ListForVenue(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}

	var status *shift.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := shift.RequestStatus(raw)
		if !s.Valid() {
			return badRequest("Invalid status", nil)
		}
		status = &s
	}

	items, err := h.uc.ListForVenue(c.Context(), uid, vid, c.Query("month"), status)
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewShiftRequestResponses(items))
}

func (h *ShiftRequestHandler) ListMine(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ListMine(c.Context(), uid, vid, c.Query("month"))
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewShiftRequestResponses(items))
}

func (h *ShiftRequestHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, h.uc.Approve)
}

func (h *ShiftRequestHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, h.uc.Reject)
}

func (h *ShiftRequestHandler) Cancel(c fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "requestID")
	if err != nil {
		return err
	}
	r, err := h.uc.Cancel(c.Context(), uid, reqID)
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewShiftRequestResponse(r))
}

type shiftDecision = func(ctx context.Context, userID, requestID uuid.UUID, note string) (shift.Request, error)

func (h *ShiftRequestHandler) decide(c fiber.Ctx, fn shiftDecision) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "requestID")
	if err != nil {
		return err
	}
	var req decideShiftRequest
	if err := bindOptional(c, &req); err != nil {
		return err
	}

	r, err := fn(c.Context(), uid, reqID, req.Note)
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewShiftRequestResponse(r))
}

// mapShiftUsecaseError returns the row-level preview with 422 so the wizard
// can highlight what to fix.
func mapShiftUsecaseError(err error) error {
	var invalid *usecase.InvalidEntriesError
	if errors.As(err, &invalid) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Some shifts need fixing", dto.NewPreviewResponse(invalid.Preview), err)
	}
	return mapUsecaseError(err)
}
