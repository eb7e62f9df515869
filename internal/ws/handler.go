package ws

import (
	"errors"
	"net/http"

	"venue-staff/internal/domain/venue"
	"venue-staff/internal/logging"
	"venue-staff/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub     *Hub
	jwt     jwt.Service
	members venue.MemberRepository
	logger  *zap.Logger
}

func NewHandler(hub *Hub, jwtSvc jwt.Service, members venue.MemberRepository, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc, members: members, logger: logging.OrNop(logger).Named("ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleVenueWS upgrades GET /ws/venues/:venueID. Browsers cannot set headers
// on a websocket handshake, so the access token comes in ?token=.
func (h *Handler) HandleVenueWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	venueID, err := uuid.Parse(c.Params("venueID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid venue id")
	}
	claims, err := h.jwt.ValidateAccessToken(c.Query("token"))
	if err != nil {
		return fiber.ErrUnauthorized
	}
	if _, err := h.members.GetMember(c.Context(), venueID, claims.UserID); err != nil {
		if errors.Is(err, venue.ErrMemberNotFound) {
			return fiber.ErrForbidden
		}
		h.logger.Error("ws membership lookup failed", zap.Stringer("venue_id", venueID), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("ws upgrade error", zap.Error(err))
			return
		}

		client := NewClient(h.hub, conn, venueID, claims.UserID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
