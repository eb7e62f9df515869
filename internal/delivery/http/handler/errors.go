package handler

import (
	"errors"

	"venue-staff/internal/delivery/http/middleware"
	"venue-staff/internal/domain/resume"
	"venue-staff/internal/pkg/response"
	"venue-staff/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError turns the shared usecase sentinels into HTTP errors. The
// per-resource mappers handle their special cases first and fall back here.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrInvalidStatusTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Status change not allowed", nil, err)

	case errors.Is(err, usecase.ErrVenueNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Venue not found", nil, err)
	case errors.Is(err, usecase.ErrMemberNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Member not found", nil, err)
	case errors.Is(err, usecase.ErrJoinRequestNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Join request not found", nil, err)
	case errors.Is(err, usecase.ErrShiftNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Shift not found", nil, err)
	case errors.Is(err, usecase.ErrShiftRequestNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Shift request not found", nil, err)
	case errors.Is(err, usecase.ErrTemplateNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Resume template not found", nil, err)
	case errors.Is(err, usecase.ErrApplicantNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Applicant not found", nil, err)
	case errors.Is(err, usecase.ErrNoActiveTemplate):
		return middleware.NewAppError(fiber.StatusNotFound, "Venue is not accepting applications", nil, err)
	case errors.Is(err, usecase.ErrNoResume):
		return middleware.NewAppError(fiber.StatusNotFound, "Applicant has no resume", nil, err)

	case errors.Is(err, usecase.ErrLastOwner):
		return middleware.NewAppError(fiber.StatusConflict, "Venue must keep at least one owner", nil, err)
	case errors.Is(err, usecase.ErrAlreadyMember):
		return middleware.NewAppError(fiber.StatusConflict, "Already a member", nil, err)
	case errors.Is(err, usecase.ErrJoinRequestPending):
		return middleware.NewAppError(fiber.StatusConflict, "Join request already pending", nil, err)
	case errors.Is(err, usecase.ErrShiftOverlap):
		return middleware.NewAppError(fiber.StatusConflict, "Shift overlaps an existing shift", nil, err)
	case errors.Is(err, usecase.ErrTemplateActive):
		return middleware.NewAppError(fiber.StatusConflict, "Active template cannot be deleted", nil, err)

	case errors.Is(err, usecase.ErrResumeTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "Resume file too large", nil, err)
	case errors.Is(err, usecase.ErrResumeType):
		return middleware.NewAppError(fiber.StatusUnsupportedMediaType, "Unsupported resume file type", nil, err)
	case errors.Is(err, usecase.ErrStorageDisabled):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Resume uploads are not available", nil, err)
	case errors.Is(err, resume.ErrInvalidTemplate):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, err.Error(), nil, err)

	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
