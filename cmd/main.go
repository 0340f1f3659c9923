package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/avorobev/authd/internal/events"
	"github.com/avorobev/authd/internal/handlers"
	"github.com/avorobev/authd/internal/jwt"
	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/mailer"
	"github.com/avorobev/authd/internal/middlewares"
	"github.com/avorobev/authd/internal/ratelimit"
	"github.com/avorobev/authd/internal/repositories"
	"github.com/avorobev/authd/internal/services"
	"github.com/avorobev/authd/internal/sessions"

	_ "github.com/avorobev/authd/docs"
	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds everything parsed from the environment.
type config struct {
	appHost  string
	appPort  string
	logLevel string
	env      string
	siteRoot string

	pgHost         string
	pgPort         int
	pgUser         string
	pgPassword     string
	pgDB           string
	pgMaxOpenConns int
	pgMaxIdleConns int

	redisHost     string
	redisPort     int
	redisDB       int
	redisPassword string

	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	smtpFrom     string

	kafkaBrokers []string
	kafkaTopic   string

	sessionStrategy  string // "cookie" or "token"
	sessionTTLSecond int
	jwtSecretKey     string

	askForValidation bool
	loginWaitMs      int
	resetWaitMs      int

	loginRateCapacity int
	loginRateWindowMs int
}

// @title authd API
// @version 1.0.0
// @description Authentication and account lifecycle service: registration with email verification, login, password reset
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the full
// application configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key string, defaultValue int) (int, error) {
		return strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	}

	// Application config
	cfg.appHost = getEnv("APP_HOST", "localhost")
	cfg.appPort = getEnv("APP_PORT", "8080")
	cfg.logLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.env = getEnv("APP_ENV", "production")
	cfg.siteRoot = getEnv("SITE_ROOT", fmt.Sprintf("http://%s:%s", cfg.appHost, cfg.appPort))

	// PostgreSQL config
	cfg.pgHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.pgUser = getEnv("POSTGRES_USER", "user")
	cfg.pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.pgDB = getEnv("POSTGRES_DB", "database")
	if cfg.pgPort, err = getInt("POSTGRES_PORT", 5432); err != nil {
		return
	}
	if cfg.pgMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", 16); err != nil {
		return
	}
	if cfg.pgMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", 8); err != nil {
		return
	}

	// Redis config (cookie-session strategy only)
	cfg.redisHost = getEnv("REDIS_HOST", "localhost")
	cfg.redisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.redisPort, err = getInt("REDIS_PORT", 6379); err != nil {
		return
	}
	if cfg.redisDB, err = getInt("REDIS_DB", 0); err != nil {
		return
	}

	// SMTP config
	cfg.smtpHost = getEnv("SMTP_HOST", "localhost")
	cfg.smtpPort = getEnv("SMTP_PORT", "465")
	cfg.smtpUser = getEnv("SMTP_USER", "")
	cfg.smtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.smtpFrom = getEnv("SMTP_FROM", "")

	// Kafka config; empty brokers disable lifecycle events
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.kafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.kafkaTopic = getEnv("KAFKA_TOPIC", "auth-events")

	// Session config
	cfg.sessionStrategy = getEnv("SESSION_STRATEGY", "cookie")
	cfg.jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.sessionTTLSecond, err = getInt("SESSION_TTL_SECOND", 3600); err != nil {
		return
	}

	// Auth behaviour
	cfg.askForValidation = getEnv("AUTH_ASK_VALIDATION", "true") == "true"
	if cfg.loginWaitMs, err = getInt("AUTH_LOGIN_WAIT_MS", 3000); err != nil {
		return
	}
	if cfg.resetWaitMs, err = getInt("AUTH_RESET_WAIT_MS", 15000); err != nil {
		return
	}
	if cfg.loginRateCapacity, err = getInt("LOGIN_RATE_CAPACITY", 100); err != nil {
		return
	}
	if cfg.loginRateWindowMs, err = getInt("LOGIN_RATE_WINDOW_MS", 10000); err != nil {
		return
	}

	return cfg, nil
}

// run initializes the logger, database, session backend, mailer, and HTTP
// server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.logLevel)

	handlers.SetProduction(cfg.env == "production")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.pgUser, cfg.pgPassword, cfg.pgHost, cfg.pgPort, cfg.pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d", cfg.pgHost, cfg.pgPort)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.pgMaxOpenConns)
	db.SetMaxIdleConns(cfg.pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}

	// Initialize user store and apply migrations
	store := repositories.NewUserRepository(db)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("store init failed: %w", err)
	}

	// Select session binding strategy
	var binding sessions.Binding
	sessionTTL := time.Duration(cfg.sessionTTLSecond) * time.Second
	switch cfg.sessionStrategy {
	case "token":
		codec := jwt.New(jwt.WithSecretKey(cfg.jwtSecretKey), jwt.WithExpiration(sessionTTL))
		binding = sessions.NewTokenBinding(codec, sessionTTL)
	case "cookie":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.redisHost, cfg.redisPort),
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection error: %w", err)
		}
		defer rdb.Close()
		binding = sessions.NewRedisBinding(sessions.NewRedisStore(rdb), sessionTTL)
	default:
		return fmt.Errorf("unknown session strategy %q", cfg.sessionStrategy)
	}

	// Initialize mailer
	smtp := mailer.NewSMTPMailer(cfg.smtpHost, cfg.smtpPort, cfg.smtpUser, cfg.smtpPassword, cfg.smtpFrom)

	// Initialize lifecycle event publisher (optional)
	var publisher *events.Publisher
	if len(cfg.kafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.kafkaBrokers, cfg.kafkaTopic)
		defer publisher.Close()
	}

	// Initialize services
	authService := services.NewAuthService(store, smtp,
		services.WithSiteRoot(cfg.siteRoot),
		services.WithLoginWait(time.Duration(cfg.loginWaitMs)*time.Millisecond),
		services.WithResetWait(time.Duration(cfg.resetWaitMs)*time.Millisecond),
		services.WithPublisher(publisher),
	)

	// Cleanup on start, then on a periodic tick
	if err := authService.RoutineCleanup(ctx); err != nil {
		logger.Log.Errorw("routine cleanup failed", "err", err)
	}
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := authService.RoutineCleanup(ctx); err != nil {
					logger.Log.Errorw("routine cleanup failed", "err", err)
				}
			}
		}
	}()

	// Admission control per endpoint class
	rateWindow := time.Duration(cfg.loginRateWindowMs) * time.Millisecond
	loginLimiter := ratelimit.New(cfg.loginRateCapacity, rateWindow)
	resetLimiter := ratelimit.New(cfg.loginRateCapacity, rateWindow)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService, cfg.askForValidation)
	loginHandler := handlers.NewLoginHandler(authService, binding)
	logoutHandler := handlers.NewLogoutHandler(binding)
	validateHandler := handlers.NewValidateHandler(authService)
	meHandler := handlers.NewMeHandler()
	resetRequestHandler := handlers.NewPasswordResetRequestHandler(authService)
	resetFormHandler := handlers.NewResetFormHandler(authService)
	performResetHandler := handlers.NewPerformResetHandler(authService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Post("/auth/register", registerHandler)
	r.With(middlewares.RateLimitMiddleware(loginLimiter)).Post("/auth/login", loginHandler)
	r.Post("/auth/logout", logoutHandler)
	r.Get("/auth/validate", validateHandler)
	r.With(middlewares.RateLimitMiddleware(resetLimiter)).Post("/auth/password-reset", resetRequestHandler)
	r.Get("/auth/password-reset-form", resetFormHandler)
	r.Post("/auth/password-reset-form", performResetHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(binding))
		r.Get("/auth/me", meHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.appHost, cfg.appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.appHost, cfg.appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
