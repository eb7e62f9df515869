package app

import (
	"context"
	"fmt"
	"strings"

	"venue-staff/internal/config"
	"venue-staff/internal/delivery/http/handler"
	"venue-staff/internal/delivery/http/middleware"
	"venue-staff/internal/delivery/http/routes"
	v1 "venue-staff/internal/delivery/http/routes/v1"
	"venue-staff/internal/usecase"
	"venue-staff/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Multipart resumes are capped at 5 MiB; leave room for the other form fields.
const bodyLimit = usecase.MaxResumeBytes + 1<<20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		BodyLimit:    bodyLimit,
		ErrorHandler: middleware.ErrorHandler,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container and HTTP app and starts the background loops.
// The returned cleanup stops them and releases connections.
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	runCtx, stop := context.WithCancel(ctx)
	c.Start(runCtx)

	cleanup := func() error {
		stop()
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	health := handler.NewHealthHandler(c.DB, map[string]handler.Pinger{"redis": c.Cache})
	wsHandler := ws.NewHandler(c.Hub, c.JWT, c.Members, c.Logger)

	routes.NewRegistry(health, v1.Handlers{
		Auth:         handler.NewAuthHandler(c.Auth),
		User:         handler.NewUserHandler(c.Users),
		Venue:        handler.NewVenueHandler(c.Venues),
		JoinRequest:  handler.NewJoinRequestHandler(c.JoinRequests),
		ShiftRequest: handler.NewShiftRequestHandler(c.ShiftRequests),
		Shift:        handler.NewShiftHandler(c.Shifts),
		Template:     handler.NewTemplateHandler(c.Templates),
		Applicant:    handler.NewApplicantHandler(c.Applicants),
		Public:       handler.NewPublicHandler(c.Applicants),
		WS:           wsHandler.HandleVenueWS,
	}, middleware.NewAuthMiddleware(c.JWT)).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
