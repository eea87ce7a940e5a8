package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/meeting-buddy/internal/api"
	customMiddleware "github.com/Rrens/meeting-buddy/internal/api/middleware"
	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/identity"
	"github.com/Rrens/meeting-buddy/internal/storage"
	"github.com/Rrens/meeting-buddy/internal/storage/memory"
	"github.com/Rrens/meeting-buddy/internal/storage/mongo"
	"github.com/Rrens/meeting-buddy/internal/storage/mysql"
	"github.com/Rrens/meeting-buddy/internal/storage/postgres"
	"github.com/Rrens/meeting-buddy/internal/storage/redis"
	"github.com/Rrens/meeting-buddy/internal/storage/sqlite"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closeLog()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Backend).
		Msg("Starting Meeting Buddy API server")

	// Initialize storage
	backends := storage.NewRouter()
	backends.Register("memory", memory.Open)
	backends.Register("redis", redis.Open)
	backends.Register("postgres", postgres.Open)
	backends.Register("sqlite", sqlite.Open)
	backends.Register("mysql", mysql.Open)
	backends.Register("mongo", mongo.Open)
	defer backends.CloseAll()

	ctx := context.Background()
	backend, err := backends.Open(ctx, cfg.Storage.Backend, cfg)
	if err != nil {
		log.Fatal().Err(err).Strs("supported", backends.Supported()).Msg("Failed to open storage")
	}

	dir := identity.NewStoredDirectory(backend)
	if cfg.Demo.Seed {
		if err := identity.SeedDemo(ctx, dir, bcrypt.DefaultCost); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo accounts")
		}
	}

	// Rate limiting uses Redis when enabled
	var limiter customMiddleware.Limiter
	if cfg.Security.RateLimit.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		limiter = redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	}

	// Initialize router
	router, err := api.NewRouter(cfg, backend, dir, limiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// setupLogger configures the global logger. A configured file is rotated
// daily and kept for a week.
func setupLogger(cfg config.LoggingConfig) (func(), error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	closer := func() {}
	if cfg.File != "" {
		rl, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(7*24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, rl)
		closer = func() { _ = rl.Close() }
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}
