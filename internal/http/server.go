package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Server wires the page handlers to the service layer. Every page is
// rendered server-side from the embedded templates.
type Server struct {
	http.Server

	templates *template.Template

	auth         *services.AuthService
	transactions *services.TransactionService
	budgets      *services.BudgetService
	dashboard    *services.DashboardService

	rateLimiter  *rateLimiter
	secureCookie bool

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, auth *services.AuthService, transactions *services.TransactionService, budgets *services.BudgetService, dashboard *services.DashboardService, secureCookie bool) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		auth:         auth,
		transactions: transactions,
		budgets:      budgets,
		dashboard:    dashboard,
		rateLimiter:  newRateLimiter(),
		secureCookie: secureCookie,
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /login", s.trace(s.handleLoginForm))
	mux.HandleFunc("POST /login", s.trace(s.handleLogin))
	mux.HandleFunc("GET /register", s.trace(s.handleRegisterForm))
	mux.HandleFunc("POST /register", s.trace(s.handleRegister))
	mux.HandleFunc("POST /logout", s.trace(s.requireUser(s.handleLogout)))

	mux.HandleFunc("GET /{$}", s.trace(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}))
	mux.HandleFunc("GET /dashboard", s.trace(s.requireUser(s.handleDashboard)))
	mux.HandleFunc("GET /dashboard/chart-data", s.trace(s.requireUser(s.handleChartData)))

	mux.HandleFunc("GET /transactions", s.trace(s.requireUser(s.handleTransactionList)))
	mux.HandleFunc("GET /transactions/new", s.trace(s.requireUser(s.handleTransactionForm)))
	mux.HandleFunc("POST /transactions", s.trace(s.requireUser(s.handleTransactionCreate)))
	mux.HandleFunc("GET /transactions/{id}/edit", s.trace(s.requireUser(s.handleTransactionForm)))
	mux.HandleFunc("POST /transactions/{id}", s.trace(s.requireUser(s.handleTransactionUpdate)))
	mux.HandleFunc("POST /transactions/{id}/delete", s.trace(s.requireUser(s.handleTransactionDelete)))

	mux.HandleFunc("GET /budgets", s.trace(s.requireUser(s.handleBudgetList)))
	mux.HandleFunc("GET /budgets/new", s.trace(s.requireUser(s.handleBudgetForm)))
	mux.HandleFunc("POST /budgets", s.trace(s.requireUser(s.handleBudgetCreate)))
	mux.HandleFunc("GET /budgets/{id}/edit", s.trace(s.requireUser(s.handleBudgetForm)))
	mux.HandleFunc("POST /budgets/{id}", s.trace(s.requireUser(s.handleBudgetUpdate)))
	mux.HandleFunc("POST /budgets/{id}/delete", s.trace(s.requireUser(s.handleBudgetDelete)))

	return s, nil
}

// Shutdown stops the rate limiter janitor, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady verifies the storage layer answers before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.transactions.Categories(ctx); err != nil {
		slog.ErrorContext(ctx, "Readiness check failed", "error", err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
