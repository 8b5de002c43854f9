package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/raiyan37/Centinel/internal/auth"
	applog "github.com/raiyan37/Centinel/internal/log"
	"github.com/raiyan37/Centinel/internal/middleware/ratelimit"
	"github.com/raiyan37/Centinel/internal/middleware/security"
	"github.com/raiyan37/Centinel/internal/middleware/trace"
	"github.com/raiyan37/Centinel/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the application services the handlers call.
type Services struct {
	Accounts     *services.AccountService
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Pots         *services.PotService
	Overview     *services.OverviewService
	Bills        *services.RecurringBillService
}

// Options configures a Server.
type Options struct {
	Addr          string
	Logger        *applog.Logger
	Authenticator *auth.Authenticator
	Services      Services
	// ReadyChecks are pinged by /readyz, keyed by the name reported.
	ReadyChecks map[string]Pinger
	RateLimit   ratelimit.Config
}

type Server struct {
	http.Server
	logger   *applog.Logger
	errors   *applog.StructuredLogger
	services Services
	checks   map[string]Pinger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		logger:           logger,
		errors:           applog.NewStructuredLogger(logger),
		services:         opts.Services,
		checks:           opts.ReadyChecks,
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		securityDetector: security.NewDetector(),
		traceMiddleware:  trace.NewMiddleware(logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/account", s.handleGetAccount)
	mux.HandleFunc("POST /api/account", s.handleEnsureAccount)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/pots", s.handleListPots)
	mux.HandleFunc("POST /api/pots", s.handleCreatePot)
	mux.HandleFunc("GET /api/pots/{id}", s.handleGetPot)
	mux.HandleFunc("PATCH /api/pots/{id}", s.handleUpdatePot)
	mux.HandleFunc("DELETE /api/pots/{id}", s.handleDeletePot)
	mux.HandleFunc("POST /api/pots/{id}/deposit", s.handleDeposit)
	mux.HandleFunc("POST /api/pots/{id}/withdraw", s.handleWithdraw)

	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/recurring-bills", s.handleRecurringBills)

	var handler http.Handler = mux
	if opts.Authenticator != nil {
		handler = opts.Authenticator.Middleware(handler)
	}
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, please try again later").Write(w)
	}, http.MethodPost, http.MethodPatch, http.MethodDelete)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.Middleware(logger, func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
