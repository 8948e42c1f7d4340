// Package testserver implements an in-memory NetBox-compatible API server.
// It backs the package tests end to end and doubles as a local demo target:
// collection, object, and bulk routes under /api, paginated list envelopes,
// token authentication, and token provisioning, all against a mutex-guarded
// in-memory store.
package testserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/netforge-io/netforge/internal/common/httpx"
	"github.com/netforge-io/netforge/internal/common/middleware"
)

// provisionPath is exempt from token authentication: it is how a client
// obtains a token in the first place.
const provisionPath = "/api/users/tokens/provision/"

// Server is the API server: a chi router over the in-memory store.
type Server struct {
	Router *chi.Mux
	config *Config
	store  *Store

	mu     sync.Mutex
	tokens map[string]bool // static token plus everything provisioned at runtime
}

// New creates a server with the given configuration. A nil config uses the
// defaults, and an empty token is replaced with a generated one, retrievable
// via Token.
func New(config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Token == "" {
		config.Token = newToken()
	}

	s := &Server{
		Router: chi.NewRouter(),
		config: config,
		store:  NewStore(),
		tokens: map[string]bool{config.Token: true},
	}

	for endpoint, recs := range config.Seed {
		s.store.Seed(endpoint, recs...)
	}

	return s, nil
}

// Token returns the server's static API token.
func (s *Server) Token() string {
	return s.config.Token
}

// Store returns the backing store, for test fixtures.
func (s *Server) Store() *Store {
	return s.store
}

// MountHandlers installs middleware and all API routes on the router.
func (s *Server) MountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	s.Router.Use(s.handleCORS)
	s.Router.Use(s.authenticate)

	s.Router.Route("/api", func(r chi.Router) {
		r.Get("/status/", httpx.WrapHandler(s.getStatus))
		r.Post("/users/tokens/provision/", httpx.WrapHandler(s.provisionToken))

		r.Route("/{group}/{model}", func(r chi.Router) {
			r.Get("/", httpx.WrapHandler(s.listObjects))
			r.Post("/", httpx.WrapHandler(s.createObject))

			r.Post("/bulk/", httpx.WrapHandler(s.bulkCreateObjects))
			r.Patch("/bulk/", httpx.WrapHandler(s.bulkUpdateObjects))
			r.Delete("/bulk/", httpx.WrapHandler(s.bulkDeleteObjects))

			r.Get("/{objectID}/", httpx.WrapHandler(s.getObject))
			r.Patch("/{objectID}/", httpx.WrapHandler(s.updateObject))
			r.Delete("/{objectID}/", httpx.WrapHandler(s.deleteObject))
		})
	})
}

// handleCORS provides CORS middleware for cross-origin requests.
// Configures allowed origins, methods, headers, and credentials handling.
func (s *Server) handleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Accept-Encoding", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Location", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}

// authenticate enforces token auth on every route except token provisioning.
// A missing or malformed header yields 401; an unknown token yields 403.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == provisionPath {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Token ")
		if !ok || token == "" {
			httpx.ErrUnAuthorized().Send(w)
			return
		}

		s.mu.Lock()
		known := s.tokens[token]
		s.mu.Unlock()
		if !known {
			httpx.ErrForbidden("Invalid token").Send(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// registerToken admits a provisioned token for subsequent requests.
func (s *Server) registerToken(token string) {
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()
}

// newToken generates an opaque API token.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")[:40]
}
