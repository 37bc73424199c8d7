package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/filter"
	applog "expensetracker/internal/log"
)

// ExpenseAPI is the service surface the shell drives.
type ExpenseAPI interface {
	CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64)
	SetBudget(ctx context.Context, raw string)
	Reset(ctx context.Context)
	Get(id int64) (core.Expense, bool)
	List(c filter.Criteria) filter.View
	Overview() core.Overview
	CSV() string
	SheetsEnabled() bool
	ExportToSheet(ctx context.Context) (string, error)
}

type Server struct {
	http.Server
	svc         ExpenseAPI
	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc ExpenseAPI, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		svc:         svc,
		logger:      logger,
		rateLimiter: newRateLimiter(defaultRequestsPerMinute),
		metrics:     &securityMetrics{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /expenses.csv", s.handleExportCSV)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("PUT /budget", s.handleSetBudget)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /export/sheets", s.handleExportSheets)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.withSecurityHeaders(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// withSecurityHeaders adds security headers and rate limits mutating requests.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.metrics) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path,
				"user_agent", r.Header.Get("User-Agent"))
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead &&
			!s.rateLimiter.allow(clientIP, s.metrics) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop,
// then logs the security counters gathered over the server's lifetime.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)

		rateLimitHits, suspicious := s.metrics.snapshot()
		s.logger.InfoContext(ctx, "HTTP server stopped",
			"rate_limit_hits", rateLimitHits,
			"suspicious_requests", suspicious)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
