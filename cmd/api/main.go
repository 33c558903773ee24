package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"gardencms/docs"
	"gardencms/internal/auth"
	"gardencms/internal/config"
	"gardencms/internal/database"
	handlers "gardencms/internal/http/handler"
	"gardencms/internal/http/middleware"
	"gardencms/internal/logger"
	"gardencms/internal/otel"
	"gardencms/internal/ratelimit"
	"gardencms/internal/repository/postgres"
	"gardencms/internal/service"
	"gardencms/internal/storage"
)

// @title                       Garden CMS API
// @version                     1.0
// @description                 Articles and categories about plants and gardening.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Location: cfg.Location()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", logger.Error(err))
	}
}

func run(cfg *config.AppConfig, log logger.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, nil, log); err != nil {
		return err
	}

	// Image uploads stay disabled without an endpoint.
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		if objStore, err = storage.NewMinIO(ctx, cfg.MinIO); err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
	} else {
		log.Warn("MINIO_ENDPOINT not set, image uploads are disabled")
	}

	articleRepo := postgres.NewArticlePostgres(db)
	categoryRepo := postgres.NewCategoryPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration, cfg.Auth.JWTIssuer)
	articleSvc := service.NewArticleService(articleRepo, categoryRepo, objStore, log)
	categorySvc := service.NewCategoryService(categoryRepo, log)
	authSvc := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost, log)

	if _, err := authSvc.EnsureAdmin(ctx, service.AdminSeed{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	if cfg.Throttle.Enabled {
		var client redis.Cmdable
		if cfg.Redis.Addr != "" {
			rc := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rc.Close()
			client = rc
		}
		limiter := ratelimit.Select(ctx, cfg.Throttle, client, log)
		if l, ok := limiter.(*ratelimit.LocalLimiter); ok {
			defer l.Close()
		}
		app.Use(middleware.Throttle(limiter, log))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Services{
		DB:         db,
		Articles:   articleSvc,
		Categories: categorySvc,
		Auth:       authSvc,
		Tokens:     tokens,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", ":"+cfg.Port), logger.String("host", cfg.AppHost))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", logger.Duration("timeout", cfg.ShutdownTimeout))
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
