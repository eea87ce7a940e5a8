package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/meeting-buddy/internal/api/handler"
	customMiddleware "github.com/Rrens/meeting-buddy/internal/api/middleware"
	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/identity"
	"github.com/Rrens/meeting-buddy/internal/llm/providers"
	"github.com/Rrens/meeting-buddy/internal/meeting"
	"github.com/Rrens/meeting-buddy/internal/security"
	"github.com/Rrens/meeting-buddy/internal/service"
	"github.com/Rrens/meeting-buddy/internal/storage"
	"github.com/Rrens/meeting-buddy/internal/store"
)

// NewRouter creates and configures the HTTP router. limiter may be nil to
// disable rate limiting.
func NewRouter(cfg *config.Config, backend storage.Backend, dir identity.Directory, limiter customMiddleware.Limiter) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.WriteTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authenticator := identity.NewAuthenticator(dir, jwtManager)

	// Snapshots are encrypted at rest when a key is configured
	var kv storage.KV = backend
	if cfg.Storage.EncryptionKey != "" {
		encryptor, err := security.NewEncryptorFromSecret(cfg.Storage.EncryptionKey)
		if err != nil {
			return nil, err
		}
		kv = storage.NewEncrypted(backend, encryptor)
	}

	stores := store.NewRegistry(kv, meeting.NewLinker(cfg.Meeting), store.Options{SeedDemo: cfg.Demo.Seed})

	llmRouter := providers.NewRouter(cfg.LLM)

	// Initialize services
	hubService := service.NewHubService(authenticator)
	assistantService := service.NewAssistantService(llmRouter, cfg.LLM.DefaultProvider, cfg.LLM.Timeout)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authenticator)
	hubHandler := handler.NewHubHandler(stores, hubService)
	messageHandler := handler.NewMessageHandler(stores)
	meetingHandler := handler.NewMeetingHandler(stores, assistantService)
	botHandler := handler.NewBotHandler(stores, assistantService)

	authMiddleware := customMiddleware.NewAuthMiddleware(authenticator)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(backend))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if limiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(limiter).Limit)
			}

			r.Get("/users/me", authHandler.Me)
			r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

			r.Route("/hubs", func(r chi.Router) {
				r.Get("/", hubHandler.List)
				r.Post("/", hubHandler.Create)
				r.Get("/current", hubHandler.Current)

				r.Route("/{hubID}", func(r chi.Router) {
					r.Get("/", hubHandler.Get)
					r.Post("/select", hubHandler.Select)
					r.Get("/me", hubHandler.Membership)
					r.Post("/members", hubHandler.AddMember)
					r.Post("/teams", hubHandler.CreateTeam)

					r.Get("/channels/{channelID}/messages", messageHandler.List)
					r.Post("/channels/{channelID}/messages", messageHandler.Post)

					r.Get("/meetings", meetingHandler.List)
					r.Post("/meetings", meetingHandler.Create)

					r.Post("/bot/query", botHandler.Query)
					r.Get("/bot/history", botHandler.History)
				})
			})

			r.Route("/meetings/{meetingID}", func(r chi.Router) {
				r.Get("/", meetingHandler.Get)
				r.Post("/join", meetingHandler.Join)
				r.Post("/leave", meetingHandler.Leave)
				r.Post("/summarize", meetingHandler.Summarize)
			})
		})
	})

	return r, nil
}
