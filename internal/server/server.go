package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/configuration"
	"carport-configurator/internal/pipeline"
	"carport-configurator/internal/session"
	"carport-configurator/internal/storage"
)

// Consumer-side contracts for the handler dependencies; the concrete types
// live in their own packages.

type Catalog interface {
	List(ctx context.Context, line catalog.ProductLine, kind catalog.Kind) ([]catalog.Entity, error)
}

type Assembler interface {
	Assemble(ctx context.Context, line catalog.ProductLine, sel configuration.Selection) (*configuration.Record, error)
}

type Submitter interface {
	Submit(ctx context.Context, rec *configuration.Record) pipeline.Result
}

type Sessions interface {
	Start(ctx context.Context, line catalog.ProductLine) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	SetStep(ctx context.Context, id string, key configuration.StepKey, value json.RawMessage) (*session.Session, error)
	Clear(ctx context.Context, id string) error
}

type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*storage.AdminUser, error)
	ListConfigurations(ctx context.Context, line catalog.ProductLine) ([]storage.ConfigurationRow, error)
	UpdateConfigurationStatus(ctx context.Context, line catalog.ProductLine, id int64, status string) error
	ExportConfigurationsToExcel(ctx context.Context, line catalog.ProductLine) ([]byte, error)
}

// TokenStore holds opaque admin session tokens.
type TokenStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Server struct {
	mux *http.ServeMux

	catalog   Catalog
	assembler Assembler
	pipeline  Submitter
	sessions  Sessions
	admin     AdminStore
	tokens    TokenStore
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func New(
	cat Catalog,
	assembler Assembler,
	submitter Submitter,
	sessions Sessions,
	admin AdminStore,
	tokens TokenStore,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		catalog:   cat,
		assembler: assembler,
		pipeline:  submitter,
		sessions:  sessions,
		admin:     admin,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/catalog/{kind}", s.handleCatalogList)

	s.mux.HandleFunc("POST /api/configurations", s.handleSubmit)

	s.mux.HandleFunc("POST /api/sessions", s.handleSessionStart)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	s.mux.HandleFunc("PUT /api/sessions/{id}/steps/{key}", s.handleSessionStep)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionClear)
	s.mux.HandleFunc("POST /api/sessions/{id}/submit", s.handleSessionSubmit)

	s.mux.HandleFunc("POST /api/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("GET /api/admin/configurations", s.requireAdmin(s.handleAdminList))
	s.mux.HandleFunc("PATCH /api/admin/configurations/{id}/status", s.requireAdmin(s.handleAdminStatus))
	s.mux.HandleFunc("GET /api/admin/configurations/export", s.requireAdmin(s.handleAdminExport))
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAdmin checks the opaque bearer token against the token store.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing admin token")
			return
		}

		if _, err := s.tokens.Get(r.Context(), adminTokenKey(token)); err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired admin token")
			return
		}

		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// productLineFrom reads and validates the product_line query parameter.
func productLineFrom(r *http.Request) (catalog.ProductLine, bool) {
	line := catalog.ProductLine(r.URL.Query().Get("product_line"))
	return line, line.Valid()
}
