package v1

import "github.com/gofiber/fiber/v3"

// RegisterVenues mounts every venue-scoped resource on the /venues group.
func RegisterVenues(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Venue != nil {
		h.Venue.RegisterRoutes(r)
	}
	if h.JoinRequest != nil {
		h.JoinRequest.RegisterVenueRoutes(r)
	}
	if h.ShiftRequest != nil {
		h.ShiftRequest.RegisterVenueRoutes(r)
	}
	if h.Shift != nil {
		h.Shift.RegisterRoutes(r)
	}
	if h.Template != nil {
		h.Template.RegisterRoutes(r)
	}
	if h.Applicant != nil {
		h.Applicant.RegisterRoutes(r)
	}
}
