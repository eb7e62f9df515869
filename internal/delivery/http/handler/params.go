package handler

import (
	"venue-staff/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func currentUser(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

// userAndVenue resolves the caller and the :venueID path parameter, which
// nearly every venue-scoped endpoint needs.
func userAndVenue(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	uid, err := currentUser(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	vid, err := uuidParam(c, "venueID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return uid, vid, nil
}

func badRequest(message string, err error) error {
	if message == "" {
		message = "Bad request"
	}
	return middleware.NewAppError(fiber.StatusBadRequest, message, nil, err)
}

// bindOptional binds a JSON body when one was sent. Decision endpoints accept
// an empty POST.
func bindOptional(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.Bind().Body(out); err != nil {
		return badRequest("", err)
	}
	return nil
}
