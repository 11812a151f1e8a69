package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mrimoveis/brokersite/internal/auth"
	"github.com/mrimoveis/brokersite/internal/chat"
	"github.com/mrimoveis/brokersite/internal/photostore"
	"github.com/mrimoveis/brokersite/internal/service"
)

// Server is the JSON API behind the single-page site. Catalog reads and the
// assistant are public; the command surface sits under /api/admin and
// requires a session token.
type Server struct {
	catalog   *service.CatalogService
	admin     *service.AdminService
	auth      *auth.Manager
	assistant chat.Assistant
	photos    photostore.PhotoStore
	mux       *http.ServeMux
	logger    *slog.Logger
}

func NewServer(
	catalog *service.CatalogService,
	admin *service.AdminService,
	authMgr *auth.Manager,
	assistant chat.Assistant,
	photos photostore.PhotoStore,
	logger *slog.Logger,
) *Server {
	s := &Server{
		catalog:   catalog,
		admin:     admin,
		auth:      authMgr,
		assistant: assistant,
		photos:    photos,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/listings", s.handleListListings)
	s.mux.HandleFunc("GET /api/listings/{id}", s.handleGetListing)
	s.mux.HandleFunc("GET /api/categories", s.handleListCategories)
	s.mux.HandleFunc("GET /api/hero", s.handleGetHero)
	s.mux.HandleFunc("GET /api/session", s.handleSession)
	s.mux.HandleFunc("POST /api/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /photos/{key}", s.handleGetPhoto)

	s.mux.Handle("POST /api/admin/listings", s.requireAdmin(s.handleAddListing))
	s.mux.Handle("DELETE /api/admin/listings/{id}", s.requireAdmin(s.handleRemoveListing))
	s.mux.Handle("PUT /api/admin/listings/{id}/status", s.requireAdmin(s.handleSetStatus))
	s.mux.Handle("PUT /api/admin/listings/{id}/featured", s.requireAdmin(s.handleToggleFeatured))
	s.mux.Handle("POST /api/admin/categories", s.requireAdmin(s.handleAddCategory))
	s.mux.Handle("DELETE /api/admin/categories/{id}", s.requireAdmin(s.handleRemoveCategory))
	s.mux.Handle("PUT /api/admin/hero", s.requireAdmin(s.handleSetHero))
	s.mux.Handle("POST /api/admin/photos", s.requireAdmin(s.handleUploadPhoto))
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// requireAdmin verifies the bearer session token and injects the principal
// into the request context for the command surface's own capability check.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.auth.Verify(bearerToken(r))
		if err != nil {
			respondError(w, http.StatusUnauthorized, codeAuthFailed, "admin session required")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	})
}
