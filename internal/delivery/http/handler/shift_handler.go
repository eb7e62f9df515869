package handler

import (
	"fmt"

	"venue-staff/internal/delivery/http/dto"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ShiftHandler struct {
	uc usecase.ShiftUsecase
}

type shiftRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Date   string    `json:"date"`
	Start  string    `json:"start"`
	End    string    `json:"end"`
	Note   string    `json:"note"`
}

func (r shiftRequest) input() usecase.ShiftInput {
	return usecase.ShiftInput{UserID: r.UserID, Date: r.Date, Start: r.Start, End: r.End, Note: r.Note}
}

func NewShiftHandler(uc usecase.ShiftUsecase) *ShiftHandler {
	return &ShiftHandler{uc: uc}
}

func (h *ShiftHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/:venueID/shifts", h.List)
	r.Post("/:venueID/shifts", h.Create)
	r.Put("/:venueID/shifts/:shiftID", h.Update)
	r.Delete("/:venueID/shifts/:shiftID", h.Delete)

	r.Get("/:venueID/calendar", h.Calendar)
	r.Get("/:venueID/calendar/export", h.Export)
}

func (h *ShiftHandler) List(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}

	var member *uuid.UUID
	if raw := c.Query("member_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest("Invalid member_id", err)
		}
		member = &id
	}

	items, err := h.uc.List(c.Context(), uid, vid, c.Query("from"), c.Query("to"), member)
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewShiftResponses(items))
}

func (h *ShiftHandler) Create(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	var req shiftRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}
	if req.UserID == uuid.Nil {
		req.UserID = uid
	}

	s, err := h.uc.Create(c.Context(), uid, vid, req.input())
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewShiftResponse(s))
}

func (h *ShiftHandler) Update(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	shiftID, err := uuidParam(c, "shiftID")
	if err != nil {
		return err
	}
	var req shiftRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("", err)
	}

	s, err := h.uc.Update(c.Context(), uid, vid, shiftID, req.input())
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewShiftResponse(s))
}

func (h *ShiftHandler) Delete(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	shiftID, err := uuidParam(c, "shiftID")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), uid, vid, shiftID); err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ShiftHandler) Calendar(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	view, err := h.uc.Calendar(c.Context(), uid, vid, c.Query("month"))
	if err != nil {
		return mapShiftUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *ShiftHandler) Export(c fiber.Ctx) error {
	uid, vid, err := userAndVenue(c)
	if err != nil {
		return err
	}
	month := c.Query("month")
	data, err := h.uc.ExportMonth(c.Context(), uid, vid, month)
	if err != nil {
		return mapShiftUsecaseError(err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="schedule-%s.xlsx"`, month))
	return c.Status(fiber.StatusOK).Send(data)
}
