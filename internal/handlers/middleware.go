package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"kinderpass/internal/security"
	"kinderpass/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// StaffContextKey carries the authenticated staff claims
const StaffContextKey ContextKey = "staff"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	ipLimiter   *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, ipLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		ipLimiter:   ipLimiter,
	}
}

// RequireStaff requires a valid staff bearer token and puts its claims on
// the request context.
func (m *Middleware) RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}

		claims, err := m.authService.VerifyToken(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), StaffContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// StaffFromContext retrieves the authenticated staff claims, if any
func StaffFromContext(ctx context.Context) *security.StaffClaims {
	claims, _ := ctx.Value(StaffContextKey).(*security.StaffClaims)
	return claims
}

// RateLimit throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.ipLimiter.Allow(security.GetClientIP(r)) {
			respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next(w, r)
	}
}

// Logging logs each request with its duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
