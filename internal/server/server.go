package server

import (
	"errors"
	"time"

	"backend-travelcompanion/internal/apperr"
	"backend-travelcompanion/internal/auth"
	"backend-travelcompanion/internal/cache"
	"backend-travelcompanion/internal/config"
	"backend-travelcompanion/internal/db"
	"backend-travelcompanion/internal/httpx"
	"backend-travelcompanion/internal/logger"
	"backend-travelcompanion/internal/media"
	"backend-travelcompanion/internal/point"
	"backend-travelcompanion/internal/stream"
	"backend-travelcompanion/internal/tour"
	"backend-travelcompanion/internal/user"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     db.Querier
	Redis  *redis.Client
	Stream *stream.Hub
	Log    *zap.Logger

	Users  *user.Service
	Tours  *tour.Service
	Points *point.Service
	Media  *media.Store
	Tokens *auth.Service
}

type options struct {
	log *zap.Logger
	fs  afero.Fs
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithFs overrides the filesystem media files are stored on.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

func NewServer(cfg config.Config, pool db.Querier, redisClient *redis.Client, opts ...Option) (*Server, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.OrNop(o.log)

	store, err := media.NewStore(o.fs, uploadDir(cfg))
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "Travel Companion",
		BodyLimit:    bodyLimit(cfg),
		ErrorHandler: httpx.ErrorHandler(serverErrorLogger(log)),
	})
	app.Use(recover.New())
	app.Use(requestLogger(log))

	c := cache.New(redisClient, cfg.CacheTTL, log)
	hub := stream.NewHub(redisClient, log)
	users := user.NewService(pool)
	points := point.NewService(pool).WithCache(c).WithEvents(hub)
	tours := tour.NewService(pool, users, points).WithCache(c).WithEvents(hub)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pool,
		Redis:  redisClient,
		Stream: hub,
		Log:    log,
		Users:  users,
		Tours:  tours,
		Points: points,
		Media:  store,
		Tokens: auth.NewService(cfg.JWTSecret, cfg.JWTTTL),
	}

	registerMetrics(app)
	registerRoutes(s)
	return s, nil
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authMiddleware := auth.Middleware(s.Tokens, s.Cfg.AuthRequired)

	api := s.App.Group("/api")
	auth.RegisterRoutes(api.Group("/auth"), s.Tokens)
	user.RegisterRoutes(api, s.Users, s.Tokens)
	tour.RegisterRoutes(api, s.Tours, authMiddleware)
	point.RegisterRoutes(api, s.Points, authMiddleware)
	media.RegisterRoutes(api, s.Media, authMiddleware)
	stream.RegisterRoutes(api.Group("/stream"), s.Stream)
}

// registerMetrics serves request metrics from a registry owned by app.
func registerMetrics(app *fiber.App) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := fiberprometheus.NewWithRegistry(reg, "travel-companion", "http", "", nil)
	app.Use(prom.Middleware)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.Status(err)
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if uid, ok := auth.UserID(c); ok {
			fields = append(fields, zap.Int64("user_id", uid))
		}
		log.Info("request", fields...)
		return err
	}
}

func serverErrorLogger(log *zap.Logger) func(*fiber.Ctx, error) {
	return func(c *fiber.Ctx, err error) {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
}

func uploadDir(cfg config.Config) string {
	if cfg.UploadDir == "" {
		return "uploads"
	}
	return cfg.UploadDir
}

func bodyLimit(cfg config.Config) int {
	if cfg.BodyLimitMB <= 0 {
		return 50 * 1024 * 1024
	}
	return cfg.BodyLimitMB * 1024 * 1024
}
