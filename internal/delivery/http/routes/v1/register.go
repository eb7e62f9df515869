package v1

import (
	"venue-staff/internal/delivery/http/handler"
	"venue-staff/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// Handlers is everything mounted under /api/v1.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Venue        *handler.VenueHandler
	JoinRequest  *handler.JoinRequestHandler
	ShiftRequest *handler.ShiftRequestHandler
	Shift        *handler.ShiftHandler
	Template     *handler.TemplateHandler
	Applicant    *handler.ApplicantHandler
	Public       *handler.PublicHandler
	WS           fiber.Handler
}

func Register(r fiber.Router, h Handlers, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.Public != nil {
		h.Public.RegisterRoutes(r.Group("/public"))
	}
	// The socket authenticates with ?token= because browsers cannot set headers
	// on the upgrade request.
	if h.WS != nil {
		r.Get("/ws/venues/:venueID", h.WS)
	}

	if authMw == nil {
		return
	}
	protect := authMw.Middleware()

	RegisterUsers(r.Group("/users", protect), h.User)
	RegisterVenues(r.Group("/venues", protect), h)

	if h.JoinRequest != nil {
		h.JoinRequest.RegisterRoutes(r.Group("/join-requests", protect))
	}
	if h.ShiftRequest != nil {
		h.ShiftRequest.RegisterRoutes(r.Group("/shift-requests", protect))
	}
}
