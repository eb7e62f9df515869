package user

import (
	"context"
	"errors"
	"strings"

	"venue-staff/internal/domain/user"
	"venue-staff/internal/usecase/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")
	ErrInternal     = errors.New("internal error")
)

// UpdateMeInput leaves nil fields untouched. An empty LineUserID unlinks LINE.
type UpdateMeInput struct {
	DisplayName *string
	LineUserID  *string
	Password    *string
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return auth.Sanitize(usr), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	var upd user.ProfileUpdate

	if in.DisplayName != nil {
		name, ok := auth.NormalizeDisplayName(*in.DisplayName)
		if !ok || name == "" {
			return user.User{}, ErrInvalidInput
		}
		upd.DisplayName = &name
	}

	if in.LineUserID != nil {
		id := strings.TrimSpace(*in.LineUserID)
		// LINE user ids are "U" followed by 32 hex characters.
		if id != "" && (len(id) != 33 || id[0] != 'U') {
			return user.User{}, ErrInvalidInput
		}
		upd.LineUserID = &id
	}

	if in.Password != nil {
		pw := strings.TrimSpace(*in.Password)
		if !auth.IsValidPassword(pw) {
			return user.User{}, ErrInvalidInput
		}
		hash, err := auth.HashPassword(pw)
		if err != nil {
			return user.User{}, ErrInternal
		}
		upd.PasswordHash = &hash
	}

	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}

	return s.GetMe(ctx, userID)
}
