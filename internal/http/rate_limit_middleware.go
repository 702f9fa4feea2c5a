package httpx

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/alemt19/ats-sub001/internal/apperr"
)

const rateLimiterSweepInterval = 5 * time.Minute

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) rateDecision
	Close()
}

type rateDecision struct {
	allowed   bool
	count     int
	windowEnd time.Time
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]rateState
	stopCh  chan struct{}
	once    sync.Once
	now     func() time.Time
}

type rateState struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateLimiter keeps counters in process memory.
func NewMemoryRateLimiter() RateLimiter {
	rl := &memoryRateLimiter{
		entries: make(map[string]rateState),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
	go rl.sweepLoop()
	return rl
}

func (rl *memoryRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, ok := rl.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = rateState{count: 1, windowEnd: now.Add(window)}
		rl.entries[key] = state
		return rateDecision{allowed: true, count: state.count, windowEnd: state.windowEnd}
	}
	if state.count >= limit {
		return rateDecision{allowed: false, count: state.count, windowEnd: state.windowEnd}
	}
	state.count++
	rl.entries[key] = state
	return rateDecision{allowed: true, count: state.count, windowEnd: state.windowEnd}
}

func (rl *memoryRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *memoryRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, state := range rl.entries {
		if !now.Before(state.windowEnd) {
			delete(rl.entries, key)
		}
	}
}

func (rl *memoryRateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.stopCh)
	})
}

// withRateLimit throttles a route per client IP.
func (r *Router) withRateLimit(route string, limit int, next http.HandlerFunc) http.HandlerFunc {
	return r.rateLimited(route, limit, r.rateLimitKeyIP, next)
}

// withUserRateLimit throttles a route per authenticated user; it must run
// inside requireAuth.
func (r *Router) withUserRateLimit(route string, limit int, next http.HandlerFunc) http.HandlerFunc {
	return r.rateLimited(route, limit, rateLimitKeyUser, next)
}

func (r *Router) rateLimited(route string, limit int, keyFn func(*http.Request) string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if limit <= 0 || r.limiter == nil {
			next(w, req)
			return
		}
		key := keyFn(req)
		if key == "" {
			key = r.rateLimitKeyIP(req)
		}
		decision := r.limiter.Allow(route+"|"+key, limit, r.opts.RateWindow)
		applyRateHeaders(w, limit, decision)
		if !decision.allowed {
			r.recordRateLimitHit(route, keyKind(key))
			retry := int(time.Until(decision.windowEnd).Seconds()) + 1
			r.fail(w, req, apperr.RateLimited("too many requests, try again later", max(retry, 1)))
			return
		}
		next(w, req)
	}
}

func rateLimitKeyUser(req *http.Request) string {
	if user := userFrom(req.Context()); user != nil {
		return "user:" + user.ID
	}
	return ""
}

func (r *Router) rateLimitKeyIP(req *http.Request) string {
	host := r.clientIP(req)
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}

func keyKind(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return "unknown"
}

func applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := max(limit-decision.count, 0)
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}
