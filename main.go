package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/repositories"
	"fintrack/internal/services"
	"fintrack/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, zl)
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// --- Notifications ---
	links := notify.Links{
		VerificationURL:  cfg.Mail.VerificationURL,
		EmailChangeURL:   cfg.Mail.EmailChangeURL,
		ResetPasswordURL: cfg.Mail.ResetPasswordURL,
	}
	var notifier notify.Dispatcher
	if cfg.RabbitMQURL == "" {
		zl.Warn("RABBITMQ_URL not set, notifications are only logged")
		notifier = notify.NewLogDispatcher(links, zl)
	} else {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.Mail.Queue}, zl)
		if err != nil {
			return err
		}
		defer mqClient.Close()

		dispatcher := notify.NewQueueDispatcher(mqClient, links, zl)
		defer dispatcher.Wait()
		notifier = dispatcher

		mailer := notify.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword, cfg.Mail.From)
		worker := notify.NewWorker(mailer, cfg.Mail.ProjectName, zl)
		go func() {
			if err := mqClient.Consume(worker.HandleDelivery); err != nil {
				zl.Error("mail consumer stopped", zap.Error(err))
			}
		}()
	}

	app, tokens := newApp(db, cfg, notifier, zl)
	services.StartTokenCleaner(ctx, tokens, cfg.TokenCleanupInterval, nil, zl)

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", cfg.AppPort))
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server gracefully stopped")
	return nil
}

// newApp wires repositories, services and handlers into a Fiber app. The token
// repository is returned for the background cleaner.
func newApp(db *gorm.DB, cfg *config.Config, notifier notify.Dispatcher, zl *zap.Logger) (*fiber.App, repositories.TokenRepository) {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	walletRepo := repositories.NewGORMWalletRepository(db)
	transactionRepo := repositories.NewGORMTransactionRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)

	// --- Services ---
	issuer := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.RememberedSessionTTL, nil)
	authService := services.NewAuthService(userRepo, tokenRepo, issuer, notifier, cfg.Auth, zl)
	userService := services.NewUserService(userRepo)
	walletService := services.NewWalletService(walletRepo, transactionRepo, zl)
	transactionService := services.NewTransactionService(transactionRepo, walletRepo, tagRepo)
	tagService := services.NewTagService(tagRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(zl))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "healthy", "time": time.Now().UTC().Format(time.RFC3339)}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "unhealthy"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	requireAuth := middleware.AuthRequired(authService, zl)

	handlers.NewAuthHandler(authService, zl).RegisterRoutes(apiV1, requireAuth)

	handlers.NewUserHandler(userService, zl).RegisterRoutes(apiV1, requireAuth)
	handlers.NewWalletHandler(walletService, zl).RegisterRoutes(apiV1, requireAuth)
	handlers.NewTransactionHandler(transactionService, zl).RegisterRoutes(apiV1, requireAuth)
	handlers.NewTagHandler(tagService, zl).RegisterRoutes(apiV1, requireAuth)

	return app, tokenRepo
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(models.MessageResponse{Message: msg})
}
