package handler

import (
	"context"
	"time"

	"venue-staff/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is satisfied by database.DB and the redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db       Pinger
	optional map[string]Pinger
}

// NewHealthHandler reports 503 only when the database is down; optional
// dependencies such as the cache are listed but never fail the check.
func NewHealthHandler(db Pinger, optional map[string]Pinger) *HealthHandler {
	return &HealthHandler{db: db, optional: optional}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{"database": pingStatus(ctx, h.db)}
	for name, p := range h.optional {
		deps[name] = pingStatus(ctx, p)
	}

	if deps["database"] != "up" {
		return response.Error(c, fiber.StatusServiceUnavailable, "database unavailable", deps)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, deps)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
