// Package httpx exposes the ATS services over HTTP.
package httpx

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/service/application"
	"github.com/alemt19/ats-sub001/internal/service/auth"
	"github.com/alemt19/ats-sub001/internal/service/candidate"
	"github.com/alemt19/ats-sub001/internal/service/company"
	"github.com/alemt19/ats-sub001/internal/service/dashboard"
	"github.com/alemt19/ats-sub001/internal/service/job"
	"github.com/alemt19/ats-sub001/internal/validation"
	"github.com/alemt19/ats-sub001/internal/ws"
)

// Services bundles the business services the router dispatches to.
type Services struct {
	Auth         auth.Service
	Companies    company.Service
	Jobs         job.Service
	Candidates   candidate.Service
	Applications application.Service
	Dashboard    dashboard.Service
}

// RateLimits holds per-window request budgets; zero disables a limit.
type RateLimits struct {
	Login     int
	Register  int
	OTP       int
	UserWrite int
}

// HealthCheck is one component reported by /healthz.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateLimits     RateLimits
	RateWindow     time.Duration
	Health         []HealthCheck
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger
	svc       Services
	validator *validation.Validator
	hub       *ws.Hub
	upgrader  websocket.Upgrader
	limiter   RateLimiter
	opts      Options
	trusted   []netip.Prefix

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	defaultPageSize    = 20
	healthCheckTimeout = 2 * time.Second
	sseHeartbeat       = 25 * time.Second
)

var (
	staff      = []string{domain.RoleAdmin, domain.RoleRecruiter}
	adminOnly  = []string{domain.RoleAdmin}
	candidates = []string{domain.RoleCandidate}
)

// NewRouter assembles routes with dependencies. A nil limiter falls back to
// an in-memory one.
func NewRouter(logger *slog.Logger, svc Services, v *validation.Validator, hub *ws.Hub, limiter RateLimiter, opts Options) *Router {
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	r := &Router{
		mux:       http.NewServeMux(),
		logger:    logger,
		svc:       svc,
		validator: v,
		hub:       hub,
		limiter:   limiter,
		opts:      opts,
	}
	r.trusted = parseTrustedProxies(opts.TrustedProxies, logger)
	r.upgrader = websocket.Upgrader{CheckOrigin: r.checkOrigin}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	r.handler = r.audit(withRequestID(r.recoverer(r.cors(r.limitBody(http.HandlerFunc(r.dispatch))))))
	return r
}

// ServeHTTP runs the middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	lim := r.opts.RateLimits

	r.mux.HandleFunc("GET /healthz", r.handleHealthz)
	r.mux.Handle("GET /metrics", promhttp.Handler())

	r.mux.HandleFunc("POST /auth/register", r.withRateLimit("auth.register", lim.Register, r.handleRegister))
	r.mux.HandleFunc("POST /auth/login", r.withRateLimit("auth.login", lim.Login, r.handleLogin))
	r.mux.HandleFunc("POST /auth/refresh", r.withRateLimit("auth.refresh", lim.Login, r.handleRefresh))
	r.mux.HandleFunc("GET /auth/me", r.requireAuth(r.handleMe))
	r.mux.HandleFunc("POST /auth/verify-email/request", r.requireAuth(r.withUserRateLimit("auth.verify_request", lim.OTP, r.handleRequestVerification)))
	r.mux.HandleFunc("POST /auth/verify-email", r.withRateLimit("auth.verify", lim.OTP, r.handleVerifyEmail))
	r.mux.HandleFunc("POST /auth/forgot-password", r.withRateLimit("auth.forgot", lim.OTP, r.handleForgotPassword))
	r.mux.HandleFunc("POST /auth/reset-password/verify", r.withRateLimit("auth.reset_verify", lim.OTP, r.handleVerifyResetCode))
	r.mux.HandleFunc("POST /auth/reset-password", r.withRateLimit("auth.reset", lim.OTP, r.handleResetPassword))
	r.mux.HandleFunc("POST /auth/change-password", r.requireAuth(r.withUserRateLimit("auth.change_password", lim.OTP, r.handleChangePassword)))

	r.mux.HandleFunc("GET /companies", r.requireAuth(r.handleListCompanies))
	r.mux.HandleFunc("POST /companies", r.staffWrite("companies.create", r.handleCreateCompany))
	r.mux.HandleFunc("GET /companies/{id}", r.requireAuth(r.handleGetCompany))
	r.mux.HandleFunc("PUT /companies/{id}", r.staffWrite("companies.update", r.handleUpdateCompany))
	r.mux.HandleFunc("DELETE /companies/{id}", r.staffWrite("companies.delete", r.handleDeleteCompany))

	r.mux.HandleFunc("GET /jobs", r.optionalAuth(r.handleListJobs))
	r.mux.HandleFunc("POST /jobs", r.staffWrite("jobs.create", r.handleCreateJob))
	r.mux.HandleFunc("GET /jobs/{id}", r.optionalAuth(r.handleGetJob))
	r.mux.HandleFunc("PUT /jobs/{id}", r.staffWrite("jobs.update", r.handleUpdateJob))
	r.mux.HandleFunc("DELETE /jobs/{id}", r.staffWrite("jobs.delete", r.handleDeleteJob))
	r.mux.HandleFunc("PATCH /jobs/{id}/status", r.staffWrite("jobs.status", r.handleUpdateJobStatus))
	r.mux.HandleFunc("POST /jobs/{id}/apply", r.requireRole(candidates, r.withUserRateLimit("jobs.apply", lim.UserWrite, r.handleApply)))

	r.mux.HandleFunc("GET /candidates", r.requireRole(staff, r.handleListCandidates))
	r.mux.HandleFunc("POST /candidates", r.staffWrite("candidates.create", r.handleCreateCandidate))
	r.mux.HandleFunc("GET /candidates/me", r.requireRole(candidates, r.handleGetMyProfile))
	r.mux.HandleFunc("PUT /candidates/me", r.requireRole(candidates, r.withUserRateLimit("candidates.me", lim.UserWrite, r.handleUpsertMyProfile)))
	r.mux.HandleFunc("GET /candidates/{id}", r.requireRole(staff, r.handleGetCandidate))
	r.mux.HandleFunc("PUT /candidates/{id}", r.staffWrite("candidates.update", r.handleUpdateCandidate))
	r.mux.HandleFunc("DELETE /candidates/{id}", r.staffWrite("candidates.delete", r.handleDeleteCandidate))

	r.mux.HandleFunc("GET /applications", r.requireAuth(r.handleListApplications))
	r.mux.HandleFunc("POST /applications", r.staffWrite("applications.create", r.handleCreateApplication))
	r.mux.HandleFunc("GET /applications/{id}", r.requireAuth(r.handleGetApplication))
	r.mux.HandleFunc("DELETE /applications/{id}", r.staffWrite("applications.delete", r.handleDeleteApplication))
	r.mux.HandleFunc("PATCH /applications/{id}/status", r.staffWrite("applications.status", r.handleUpdateApplicationStatus))
	r.mux.HandleFunc("POST /applications/{id}/withdraw", r.requireRole(candidates, r.withUserRateLimit("applications.withdraw", lim.UserWrite, r.handleWithdraw)))
	r.mux.HandleFunc("GET /applications/{id}/history", r.requireAuth(r.handleApplicationHistory))

	r.mux.HandleFunc("GET /admin/users", r.requireRole(adminOnly, r.handleListUsers))
	r.mux.HandleFunc("PATCH /admin/users/{id}/role", r.requireRole(adminOnly, r.handleUpdateRole))
	r.mux.HandleFunc("GET /admin/dashboard", r.requireRole(adminOnly, r.handleDashboard))
	r.mux.HandleFunc("GET /admin/dashboard/summary", r.requireRole(adminOnly, r.handleDashboardSummary))
	r.mux.HandleFunc("GET /admin/dashboard/applications", r.requireRole(adminOnly, r.handleDashboardApplications))

	r.mux.HandleFunc("GET /ws/activity", r.requireStreamRole(staff, r.handleActivityWS))
	r.mux.HandleFunc("GET /events/activity", r.requireStreamRole(staff, r.handleActivitySSE))
}

// staffWrite guards mutating routes for recruiters and admins.
func (r *Router) staffWrite(route string, next http.HandlerFunc) http.HandlerFunc {
	return r.requireRole(staff, r.withUserRateLimit(route, r.opts.RateLimits.UserWrite, next))
}

// dispatch routes through the mux and renders unmatched requests as failure
// envelopes instead of the mux's plain text replies.
func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	h, pattern := r.mux.Handler(req)
	if pattern == "" {
		probe := &discardWriter{header: make(http.Header)}
		h.ServeHTTP(probe, req)
		status := probe.status
		if status == 0 {
			status = http.StatusNotFound
		}
		if allow := probe.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		writeFailure(w, req, status, http.StatusText(status), nil)
		return
	}
	if setter, ok := w.(interface{ SetRoute(string) }); ok {
		setter.SetRoute(pattern)
	}
	r.mux.ServeHTTP(w, req)
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	components := make(map[string]any, len(r.opts.Health))
	status := "ok"
	for _, hc := range r.opts.Health {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		err := hc.Check(ctx)
		cancel()
		if err != nil {
			status = "degraded"
			components[hc.Name] = map[string]any{"status": "down", "error": err.Error()}
			continue
		}
		components[hc.Name] = map[string]any{"status": "up"}
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, envelope{
		Success:    code == http.StatusOK,
		StatusCode: code,
		Message:    status,
		Data:       map[string]any{"status": status, "components": components},
		Timestamp:  timestamp(),
	})
}

func (r *Router) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range r.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// bind decodes and validates the JSON body.
func (r *Router) bind(req *http.Request, dst any) error {
	return r.validator.Bind(req.Body, dst)
}

// pathID returns the {id} path value, which must be a UUID.
func pathID(req *http.Request) (string, error) {
	id := req.PathValue("id")
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", validation.Field("id", "uuid", "must be a valid UUID")
	}
	return parsed.String(), nil
}

func page(q schema.ListQuery) (limit, offset int) {
	limit = q.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	return limit, q.Offset
}
