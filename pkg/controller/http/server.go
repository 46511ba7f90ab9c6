package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slotcast-dev/slotcast/pkg/usecase"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

// Server routes the admin API and the gateway webhook.
type Server struct {
	router           *chi.Mux
	uc               *usecase.UseCases
	gatewayAuthToken string
	publicBaseURL    string
}

// Options is a functional option for Server configuration
type Options func(*Server)

// WithGatewaySignature enables signature verification on the inbound
// webhook. baseURL is the externally visible URL the gateway signs against.
func WithGatewaySignature(authToken, baseURL string) Options {
	return func(s *Server) {
		s.gatewayAuthToken = authToken
		s.publicBaseURL = baseURL
	}
}

// New creates the HTTP server.
func New(uc *usecase.UseCases, opts ...Options) *Server {
	s := &Server{
		router: chi.NewRouter(),
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/workspaces", func(r chi.Router) {
		r.Get("/", s.handleListWorkspaces)
		r.Post("/", s.handleCreateWorkspace)
		r.Route("/{workspaceID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteWorkspace)
			r.Get("/snapshot", s.handleSnapshot)
			r.Post("/availability", s.handleSetAvailability)
			r.Post("/broadcast", s.handleBroadcast)
			r.Post("/followup", s.handleFollowup)
			r.Post("/reload", s.handleReloadDirectory)
		})
	})

	// Inbound webhook: no auth beyond the gateway signature. The handler
	// acks immediately and processes asynchronously.
	r.Route("/hooks/gateway", func(r chi.Router) {
		if s.gatewayAuthToken != "" {
			r.Use(GatewaySignatureMiddleware(s.gatewayAuthToken, s.publicBaseURL))
		}
		r.Post("/inbound", s.handleInbound)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
