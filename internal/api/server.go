// Package api implements the NEXO HTTP API: the analysis endpoint, chat
// history, dashboard queries and authentication.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mgtools/nexo/internal/agent"
	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/history"
	"github.com/mgtools/nexo/internal/store"
)

// sessionCookie is the cookie set on login. Tokens are also accepted via
// the Authorization header as a bearer token.
const sessionCookie = "nexo_session"

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Server is the HTTP API server.
type Server struct {
	address      string
	port         int
	agent        *agent.Agent
	store        *store.Store
	history      *history.Store
	auth         *auth.Manager
	historyLimit int
	validate     *validator.Validate
	logger       *slog.Logger
	server       *http.Server
}

// NewServer creates the API server over its collaborators.
func NewServer(address string, port int, ag *agent.Agent, st *store.Store, hs *history.Store, am *auth.Manager, historyLimit int, logger *slog.Logger) *Server {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Server{
		address:      address,
		port:         port,
		agent:        ag,
		store:        st,
		history:      hs,
		auth:         am,
		historyLimit: historyLimit,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Auth (public)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	// Agent
	mux.HandleFunc("POST /api/agent/analyze", s.requireAuth(s.handleAnalyze))
	mux.HandleFunc("GET /api/agent/history", s.requireAuth(s.handleHistoryList))
	mux.HandleFunc("DELETE /api/agent/history", s.requireAuth(s.handleHistoryClear))
	mux.HandleFunc("GET /api/agent/report", s.requireAuth(s.handleReport))

	// Dashboard
	mux.HandleFunc("GET /api/dashboard/kpis", s.requireAuth(s.handleDashboardKPIs))
	mux.HandleFunc("GET /api/dashboard/vendas-por-vendedor", s.requireAuth(s.handleVendasPorVendedor))
	mux.HandleFunc("GET /api/dashboard/evolucao-receita", s.requireAuth(s.handleEvolucaoReceita))

	// Business data
	mux.HandleFunc("GET /api/clientes", s.requireAuth(s.handleClientes))
	mux.HandleFunc("GET /api/clientes/{id}", s.requireAuth(s.handleClienteGet))
	mux.HandleFunc("GET /api/produtos", s.requireAuth(s.handleProdutos))
	mux.HandleFunc("GET /api/pedidos", s.requireAuth(s.handlePedidos))
	mux.HandleFunc("GET /api/vendedores", s.requireAuth(s.handleVendedores))
	mux.HandleFunc("GET /api/vendedores/{id}", s.requireAuth(s.handleVendedorGet))
	mux.HandleFunc("GET /api/vendedores/{id}/performance", s.requireAuth(s.handleVendedorPerformance))
	mux.HandleFunc("POST /api/vendedores", s.requireAdmin(s.handleVendedorCreate))

	// Admin
	mux.HandleFunc("GET /api/admin/users", s.requireAdmin(s.handleUsersList))
	mux.HandleFunc("POST /api/admin/users", s.requireAdmin(s.handleUserCreate))

	// Health
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests and blocks until the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // analyses can take several model round-trips
	}

	addr := s.address
	if addr == "" {
		addr = "0.0.0.0"
	}
	s.logger.Info("starting API server", "address", addr, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// sessionToken extracts the token from the Authorization header or cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// currentUser resolves the request's session, if any.
func (s *Server) currentUser(r *http.Request) (auth.SessionUser, bool) {
	token := sessionToken(r)
	if token == "" {
		return auth.SessionUser{}, false
	}
	return s.auth.UserForToken(token)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user auth.SessionUser)

func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(r)
		if !ok {
			s.errorResponse(w, http.StatusUnauthorized, "Não autenticado")
			return
		}
		next(w, r, user)
	}
}

func (s *Server) requireAdmin(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(r)
		if !ok {
			s.errorResponse(w, http.StatusUnauthorized, "Não autenticado")
			return
		}
		if !user.IsAdmin() {
			s.errorResponse(w, http.StatusForbidden, "Acesso negado. Apenas administradores podem acessar este recurso.")
			return
		}
		next(w, r, user)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, map[string]any{"error": message}, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"status":    "OK",
		"service":   "NEXO MG Tools",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, s.logger)
}

func parseIntParam(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
