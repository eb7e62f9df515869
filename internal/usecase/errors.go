package usecase

import (
	"errors"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")

	ErrForbidden               = errors.New("forbidden")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	ErrVenueNotFound  = errors.New("venue not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrLastOwner      = errors.New("venue must keep at least one owner")
	ErrAlreadyMember  = errors.New("already a member of this venue")

	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrJoinRequestPending  = errors.New("a join request for this venue is already pending")

	ErrShiftNotFound        = errors.New("shift not found")
	ErrShiftRequestNotFound = errors.New("shift request not found")
	ErrInvalidShiftEntries  = errors.New("invalid shift entries")
	ErrShiftOverlap         = errors.New("shift overlaps an existing shift")

	ErrTemplateNotFound  = errors.New("resume template not found")
	ErrTemplateActive    = errors.New("active resume template cannot be deleted")
	ErrNoActiveTemplate  = errors.New("venue is not accepting applications")
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrNoResume          = errors.New("applicant has no resume file")
	ErrResumeTooLarge    = errors.New("resume file too large")
	ErrResumeType        = errors.New("unsupported resume file type")
	ErrStorageDisabled   = errors.New("file storage is not configured")
)

// internalErr logs the underlying failure and hides it behind ErrInternal.
func internalErr(log *zap.Logger, op string, err error) error {
	log.Error(op+" failed", zap.Error(err))
	return ErrInternal
}
