package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App is the assembled HTTP application and the resources it owns.
type App struct {
	Fiber *fiber.App
	Log   *zap.Logger

	cfg     *config.Config
	closers []func() error
}

// NewApp wires configuration, storage, services and handlers into a Fiber app.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &App{Log: log, cfg: cfg}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, err
		}
	}

	// --- Repositories ---
	uow := repositories.NewUnitOfWork(db, log)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	addressRepo := repositories.NewAddressRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// --- Services ---
	orderOpts := []services.OrderServiceOption{
		services.WithLogger(log.Named("orders")),
		services.WithMetrics(metrics.NewOrderMetrics()),
		services.WithOrderNumberPrefix(cfg.Checkout.OrderNumberPrefix),
	}
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.closers = append(a.closers, mqClient.Close)
		orderOpts = append(orderOpts, services.WithPublisher(mqClient))
		log.Info("publishing order events", zap.String("exchange", cfg.RabbitMQ.Exchange))
	} else {
		log.Info("RabbitMQ disabled, order events are not published")
	}

	orderService := services.NewOrderService(uow, orderRepo, productRepo, cartRepo, addressRepo, orderOpts...)
	cartService := services.NewCartService(uow, cartRepo, productRepo, log.Named("cart"))
	productService := services.NewProductService(uow, productRepo, categoryRepo, log.Named("catalog"))
	addressService := services.NewAddressService(uow, addressRepo, log.Named("addresses"))

	// --- Handlers ---
	orderHandler := handlers.NewOrderHandler(orderService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	productHandler := handlers.NewProductHandler(productService, log)
	addressHandler := handlers.NewAddressHandler(addressService, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": cfg.RabbitMQ.Enabled,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Protected routes (require JWT authentication)
	apiV1 := app.Group("/api/v1", middleware.AuthRequired([]byte(cfg.Auth.JWTSecret), log.Named("auth")))
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	addressHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	a.Fiber = app
	return a, nil
}

// Close releases the database connection and the RabbitMQ client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
