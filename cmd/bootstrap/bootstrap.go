package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking/config"
	deliveryHttp "clinic-booking/internal/delivery/http"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/infrastructure/cache"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Reminders   *service.ReminderService
	Log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	log := setupLogger()
	app.Log = log

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, keeping %s", cfg.App.LogLevel, log.GetLevel())
	}
	log.Info("Configuration loaded successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB, database.MigrateUp, log); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	app.Server, app.Reminders = initializeServer(cfg, db, redisClient, log)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

// initializeServer wires every layer and returns the HTTP server with the reminder worker
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*http.Server, *service.ReminderService) {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	specialtyRepo := repository.NewSpecialtyRepository()
	physicianRepo := repository.NewPhysicianRepository()
	slotRepo := repository.NewSlotRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	notificationRepo := repository.NewNotificationRepository()

	// Initialize services
	tokenStore := service.NewTokenStore(redisClient)

	// Initialize usecases
	credentialUsecase := usecase.NewCredentialUsecase(db, log, customValidator, userRepo, specialtyRepo, physicianRepo, jwtService, tokenStore, cfg.Auth.BcryptCost)
	catalogUsecase := usecase.NewCatalogUsecase(db, log, specialtyRepo, physicianRepo)
	slotUsecase := usecase.NewSlotUsecase(db, log, slotRepo, physicianRepo)
	bookingUsecase := usecase.NewBookingUsecase(db, log, customValidator, bookingMetrics, userRepo, physicianRepo, slotRepo, appointmentRepo)
	notificationUsecase := usecase.NewNotificationUsecase(db, log, appointmentRepo, notificationRepo)

	reminders := service.NewReminderService(notificationUsecase, redisClient, log, bookingMetrics, cfg.Reminder)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(credentialUsecase, customValidator, log)
	catalogHandler := handler.NewCatalogHandler(catalogUsecase, slotUsecase, customValidator, log)
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, customValidator, log)
	notificationHandler := handler.NewNotificationHandler(notificationUsecase, customValidator, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)

	router := deliveryHttp.NewRouter(authHandler, catalogHandler, appointmentHandler, notificationHandler, authMiddleware, corsMiddleware, prometheus.DefaultGatherer)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, reminders
}

// Run starts the HTTP server and the reminder worker, then blocks until shutdown
func (app *App) Run() {
	app.Reminders.Start()

	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Reminders.Stop()
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
