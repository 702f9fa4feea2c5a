package httpx

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
)

type userContextKey struct{}

type contextSetter interface {
	SetContext(context.Context)
}

var (
	errAuthRequired = apperr.New(apperr.KindUnauthorized, "authentication required")
	errForbidden    = apperr.New(apperr.KindForbidden, "insufficient permissions")
)

// requireAuth ensures the request has a valid bearer token before invoking the handler.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return r.authenticate(false, false, next)
}

// optionalAuth lets anonymous requests through but still rejects bad tokens.
func (r *Router) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return r.authenticate(true, false, next)
}

// requireRole is requireAuth restricted to the given roles.
func (r *Router) requireRole(roles []string, next http.HandlerFunc) http.HandlerFunc {
	return r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
		user := userFrom(req.Context())
		if user == nil || !slices.Contains(roles, user.Role) {
			r.fail(w, req, errForbidden)
			return
		}
		next(w, req)
	})
}

// requireStreamRole authenticates with a header or an access_token query
// parameter, since browsers cannot set headers on websocket handshakes.
func (r *Router) requireStreamRole(roles []string, next http.HandlerFunc) http.HandlerFunc {
	return r.authenticate(false, true, func(w http.ResponseWriter, req *http.Request) {
		user := userFrom(req.Context())
		if user == nil || !slices.Contains(roles, user.Role) {
			r.fail(w, req, errForbidden)
			return
		}
		next(w, req)
	})
}

func (r *Router) authenticate(optional, allowQuery bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		if allowQuery && strings.TrimSpace(header) == "" {
			if token := strings.TrimSpace(req.URL.Query().Get("access_token")); token != "" {
				header = "Bearer " + token
			}
		}
		if optional && strings.TrimSpace(header) == "" {
			next(w, req)
			return
		}
		token, err := bearerToken(header)
		if err != nil {
			r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
			r.fail(w, req, errAuthRequired)
			return
		}
		user, _, err := r.svc.Auth.Authorize(req.Context(), token)
		if err != nil {
			r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
			r.fail(w, req, err)
			return
		}
		ctx := context.WithValue(req.Context(), userContextKey{}, user)
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// userFrom returns the authenticated user, nil for anonymous requests.
func userFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey{}).(*domain.User)
	return user
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
