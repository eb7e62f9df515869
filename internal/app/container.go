package app

import (
	"context"
	"errors"
	"time"

	"venue-staff/internal/config"
	"venue-staff/internal/database"
	dbpostgres "venue-staff/internal/database/postgres"
	"venue-staff/internal/domain/notification"
	"venue-staff/internal/infrastructure/cache"
	"venue-staff/internal/infrastructure/export"
	"venue-staff/internal/infrastructure/extract"
	"venue-staff/internal/infrastructure/notify"
	"venue-staff/internal/infrastructure/persistence/postgres"
	"venue-staff/internal/infrastructure/storage"
	"venue-staff/internal/logging"
	"venue-staff/internal/pkg/jwt"
	"venue-staff/internal/repository"
	"venue-staff/internal/usecase"
	"venue-staff/internal/ws"

	"go.uber.org/zap"
)

const (
	notifyWorkers = 4
	notifyBuffer  = 256
	notifyPerSec  = 10
)

// Container owns every long-lived dependency of the API process.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	JWT    jwt.Service
	Hub    *ws.Hub

	Notifier  notification.Notifier
	pool      *notify.Pool
	publisher *notify.Publisher

	Auth          usecase.AuthUsecase
	Users         usecase.UserUsecase
	Venues        usecase.VenueUsecase
	JoinRequests  usecase.JoinRequestUsecase
	ShiftRequests usecase.ShiftRequestUsecase
	Shifts        usecase.ShiftUsecase
	Templates     usecase.TemplateUsecase
	Applicants    usecase.ApplicantUsecase

	Members *repository.PostgresMemberRepository
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	logger = logging.OrNop(logger)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
		),
		Hub: ws.NewHub(logger),
	}

	if err := c.initNotifier(); err != nil {
		_ = c.Close()
		return nil, err
	}

	var files usecase.FileStore
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3(connectCtx, cfg.Storage)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		files = s3
	} else {
		logger.Warn("S3 storage not configured, resume uploads disabled")
	}

	users := postgres.NewUserRepository(db)
	venues := repository.NewPostgresVenueRepository(db)
	members := repository.NewPostgresMemberRepository(db)
	joinReqs := repository.NewPostgresJoinRequestRepository(db)
	shifts := repository.NewPostgresShiftRepository(db)
	shiftReqs := repository.NewPostgresShiftRequestRepository(db)
	templates := repository.NewPostgresTemplateRepository(db)
	applicants := repository.NewPostgresApplicantRepository(db)
	c.Members = members

	c.Auth = usecase.NewAuthUsecase(users, c.JWT)
	c.Users = usecase.NewUserUsecase(users, venues, c.Cache, logger)
	c.Venues = usecase.NewVenueUsecase(usecase.VenueDeps{
		Venues:   venues,
		Members:  members,
		Cache:    c.Cache,
		Sessions: c.Hub,
		Logger:   logger,
	})
	c.JoinRequests = usecase.NewJoinRequestUsecase(joinReqs, venues, members, users, c.Notifier, logger)
	c.ShiftRequests = usecase.NewShiftRequestUsecase(usecase.ShiftRequestDeps{
		Requests:    shiftReqs,
		Shifts:      shifts,
		Venues:      venues,
		Members:     members,
		Users:       users,
		Cache:       c.Cache,
		Broadcaster: c.Hub,
		Notifier:    c.Notifier,
		Logger:      logger,
	})
	c.Shifts = usecase.NewShiftUsecase(usecase.ShiftDeps{
		Shifts:      shifts,
		Venues:      venues,
		Members:     members,
		Cache:       c.Cache,
		Broadcaster: c.Hub,
		Exporter:    export.NewXLSX(),
		Logger:      logger,
	})
	c.Templates = usecase.NewTemplateUsecase(templates, venues, members, logger)
	c.Applicants = usecase.NewApplicantUsecase(usecase.ApplicantDeps{
		Applicants: applicants,
		Templates:  templates,
		Venues:     venues,
		Members:    members,
		Files:      files,
		Extractor:  extract.New(),
		Notifier:   c.Notifier,
		Logger:     logger,
	})

	return c, nil
}

// initNotifier publishes to RabbitMQ when a broker is configured and falls
// back to an in-process worker pool otherwise.
func (c *Container) initNotifier() error {
	if c.Config.Queue.URL != "" {
		p, err := notify.NewPublisher(c.Config.Queue.URL, c.Config.Queue.Exchange, c.Logger)
		if err != nil {
			return err
		}
		c.publisher = p
		c.Notifier = p
		c.Logger.Info("notifications go through rabbitmq", zap.String("exchange", c.Config.Queue.Exchange))
		return nil
	}

	senders, err := notify.SendersFromConfig(c.Config)
	if err != nil {
		return err
	}
	d := notify.NewDispatcher(c.Logger, senders...)
	c.pool = notify.NewPool(d, notifyWorkers, notifyBuffer, c.Logger)
	c.pool.SetRateLimit(notifyPerSec)
	c.Notifier = c.pool
	c.Logger.Info("notifications dispatched in-process", zap.Strings("channels", d.Channels()))
	return nil
}

// Start runs the background loops until ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)
	if c.pool != nil {
		go c.pool.Run(ctx)
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
