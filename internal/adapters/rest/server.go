package rest

import (
	"context"
	"fmt"
	"net/http"

	core_port "github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// Server - HTTP-поверхность визитов.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewServer создает сервер. auth может быть nil, если используется удаленный
// сервис аутентификации.
func NewServer(cfg ServerConfig, visits *VisitHandler, auth *AuthHandler, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: NewRouter(cfg, visits, auth, baseLogger),
	}
	// SSE-обработчики завершаются только при закрытии визита
	srv.RegisterOnShutdown(visits.CloseAll)
	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(core_port.Fields{"component": "rest_server"}),
	}
}

// NewRouter собирает маршруты; вынесен отдельно для httptest.
func NewRouter(cfg ServerConfig, visits *VisitHandler, auth *AuthHandler, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/visits", func(r chi.Router) {
		r.Post("/", visits.OpenVisit)
		r.Route("/{visitID}", func(r chi.Router) {
			r.Get("/", visits.GetVisit)
			r.Delete("/", visits.CloseVisit)
			r.Get("/events", visits.StreamEvents)
			r.Post("/navigate", visits.Navigate)
			r.Post("/actions/{action}", visits.HandleAction)
		})
	})

	if auth != nil {
		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Post("/validate", auth.Validate)
			r.Post("/logout", auth.Logout)
		})
	}

	return r
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
