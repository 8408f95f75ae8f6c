package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightbook/api/routes"
	"flightbook/internal/bookings"
	"flightbook/internal/notifications"
	"flightbook/internal/schedules"
	"flightbook/internal/seatlock"
	"flightbook/internal/shared/config"
	"flightbook/internal/shared/database"
	"flightbook/internal/shared/middleware"
	"flightbook/pkg/cache"
	"flightbook/pkg/logger"
	"flightbook/pkg/metric"
	"flightbook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Smart environment loading
	envErr := godotenv.Load()

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release) before the logger picks its handler
	gin.SetMode(cfg.GinMode)
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		if cfg.IsProduction() || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	appLogger.Info("Starting flightbook",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("git_commit", GitCommit),
	)

	// Metrics
	metrics := metric.NewNoop()
	if cfg.Metrics.Enabled {
		m, err := metric.New(metric.Config{
			Address:     cfg.Metrics.Address,
			Namespace:   cfg.Metrics.Namespace,
			Service:     cfg.ServiceName,
			Environment: cfg.Metrics.Environment,
		})
		if err != nil {
			appLogger.Warn("StatsD unavailable, metrics disabled", slog.String("error", err.Error()))
		} else {
			metrics = m
		}
	}
	defer metrics.Close()

	// Initialize DB
	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to databases", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// Seat lock store
	store, err := newLockStore(cfg, db, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize seat lock store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	locks := seatlock.NewManager(store, seatlock.Options{
		TTL:              cfg.SeatLock.TTL,
		OperationTimeout: cfg.SeatLock.OperationTimeout,
		Backend:          cfg.SeatLock.Backend,
	}, appLogger, metrics)

	// Booking event publisher
	publisher, err := notifications.NewPublisher(cfg.Notifications, appLogger)
	if err != nil {
		appLogger.Warn("Booking event publisher unavailable, events will be dropped",
			slog.String("broker", cfg.Notifications.Broker),
			slog.String("error", err.Error()),
		)
		publisher = notifications.NoopPublisher{}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing booking event publisher", slog.String("error", err.Error()))
		}
	}()

	// Services
	cacheService := cache.NewService(db.Redis, appLogger)

	scheduleService := schedules.NewService(schedules.NewRepository(db.SQL), appLogger)
	scheduleService.SetCacheService(cacheService)

	bookingService := bookings.NewService(
		bookings.NewRepository(db.SQL),
		scheduleService,
		locks,
		publisher,
		bookings.Options{CompensationTimeout: cfg.SeatLock.CompensationTimeout},
		appLogger,
		metrics,
	)
	scheduleService.SetSeatOccupancy(bookingService)

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:                 cfg.RateLimit.Enabled,
			WindowDuration:          cfg.RateLimit.WindowDuration,
			DefaultRequests:         cfg.RateLimit.DefaultRequests,
			PublicRequests:          cfg.RateLimit.PublicRequests,
			BookingRequests:         cfg.RateLimit.BookingRequests,
			BookingCriticalRequests: cfg.RateLimit.BookingCriticalRequests,
			AdminRequests:           cfg.RateLimit.AdminRequests,
			HealthRequests:          cfg.RateLimit.HealthRequests,
			WhitelistedIPs:          cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("booking_critical_requests", cfg.RateLimit.BookingCriticalRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, appLogger, rateLimiter, scheduleService, bookingService)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("lock_store", cfg.SeatLock.Backend),
			slog.String("broker", cfg.Notifications.Broker),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.String("error", err.Error()))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.String("error", err.Error()))
	}

	appLogger.Info("Server exited gracefully")
}

// newLockStore builds the store selected by LOCK_STORE_BACKEND
func newLockStore(cfg *config.Config, db *database.DB, log *logger.Logger) (seatlock.Store, error) {
	switch cfg.SeatLock.Backend {
	case seatlock.BackendRedis:
		store := seatlock.NewRedisStore(db.Redis)

		// Scripts are loaded on first use if this fails
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.PreloadScripts(ctx); err != nil {
			log.Warn("Failed to preload seat lock scripts", slog.String("error", err.Error()))
		} else {
			log.Info("Seat lock scripts preloaded")
		}
		return store, nil

	case seatlock.BackendEtcd:
		if db.Etcd == nil {
			return nil, fmt.Errorf("etcd backend selected but no etcd client is connected")
		}
		return seatlock.NewEtcdStore(db.Etcd, cfg.Etcd.KeyPrefix), nil

	case seatlock.BackendMemory:
		log.Warn("In-memory seat locks only protect a single instance")
		return seatlock.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown lock store backend %q", cfg.SeatLock.Backend)
	}
}

func setupRouter(cfg *config.Config, db *database.DB, appLogger *logger.Logger, rateLimiter *ratelimit.RateLimiter,
	scheduleService schedules.Service, bookingService bookings.Service) *gin.Engine {
	engine := gin.New()

	// Request id first so every later log line can carry it
	engine.Use(middleware.RequestID(), RequestLoggerMiddleware(appLogger), gin.Recovery())
	engine.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	appRouter := routes.NewRouter(cfg, db, scheduleService, bookingService)
	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		reqLogger := l.WithRequestID(c.GetString(middleware.RequestIDKey))
		reqLogger.LogHTTPRequest(c, time.Since(start))
		if status := c.Writer.Status(); status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			reqLogger.LogHTTPError(c, c.Errors.Last().Err, status)
		}
	}
}
