package httpapi

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"

	"dastyar-dashboard/internal/policy/engine"
	"dastyar-dashboard/internal/security"
)

type contextKey string

const (
	ctxKeyUserID contextKey = "userID"
	ctxKeyPhone  contextKey = "phoneNumber"
)

// UserIDFromContext returns the authenticated user ID, or "" when the request
// carried no valid token.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

// PhoneFromContext returns the authenticated user's phone number, or "".
func PhoneFromContext(ctx context.Context) string {
	phone, _ := ctx.Value(ctxKeyPhone).(string)
	return phone
}

// ClientIP returns the request's client IP, honoring X-Forwarded-For from the
// reverse proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type requestIPKey struct{}

// WithRequestIP stores the client IP on the context so the audit logger can
// read it without a *http.Request.
func WithRequestIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, requestIPKey{}, ip)
}

// RequestIPFromContext returns the stored client IP, or "unknown".
func RequestIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(requestIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// AuthMiddleware validates an optional bearer token and enforces the route
// policy. A valid token attaches the user identity to the context; the policy
// then decides whether the route is reachable for the request's auth state.
type AuthMiddleware struct {
	tokens *security.TokenProvider
	policy engine.Evaluator
}

// NewAuthMiddleware returns middleware using the given token provider and policy evaluator.
func NewAuthMiddleware(tokens *security.TokenProvider, policy engine.Evaluator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, policy: policy}
}

// Wrap returns the middleware handler.
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequestIP(r.Context(), ClientIP(r))

		authenticated := false
		if token := bearerToken(r); token != "" {
			userID, phone, err := m.tokens.Validate(token)
			if err == nil {
				authenticated = true
				ctx = context.WithValue(ctx, ctxKeyUserID, userID)
				ctx = context.WithValue(ctx, ctxKeyPhone, phone)
			}
		}

		result, err := m.policy.EvaluateRoute(ctx, engine.RouteInput{
			Path:          r.URL.Path,
			Method:        r.Method,
			Authenticated: authenticated,
		})
		if err != nil {
			log.Printf("httpapi: route policy error for %s %s: %v", r.Method, r.URL.Path, err)
			writeTransportError(w, r, http.StatusInternalServerError, msgServerError)
			return
		}
		if !result.Allow {
			if authenticated {
				writeTransportError(w, r, http.StatusForbidden, msgForbidden)
			} else {
				writeTransportError(w, r, http.StatusUnauthorized, msgUnauthorized)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
