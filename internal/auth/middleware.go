// Package auth holds the HTTP middleware that authenticates bearer tokens and
// gates host-only routes.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
	"staybnb/internal/service"
)

type ctxKey int

const claimsKey ctxKey = iota

type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*service.Claims, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int) (*db.User, error)
}

// WithClaims returns a context carrying the authenticated claims.
func WithClaims(ctx context.Context, c *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) (*service.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*service.Claims)
	return c, ok && c != nil
}

// UserID is the authenticated user's id, or 0 for anonymous requests.
func UserID(ctx context.Context) int {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.UserID
	}
	return 0
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// Required rejects requests without a valid bearer token.
func Required(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := parser.ParseToken(r.Context(), token)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Optional attaches claims when a valid token is present and lets every request through.
func Optional(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := parser.ParseToken(r.Context(), token); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireHost must run after Required. The host flag is read from storage on each request.
func RequireHost(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := users.GetByID(r.Context(), UserID(r.Context()))
			if err != nil {
				log.WithError(err).Error("host check failed")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if user == nil {
				unauthorized(w, "user no longer exists")
				return
			}
			if !user.IsHost {
				writeError(w, http.StatusForbidden, "only hosts can do this")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
