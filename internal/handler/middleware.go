package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/state"
)

type contextKey string

const userContextKey contextKey = "user"

const authCookieName = "auth_token"

// TokenValidator checks session tokens against the store's session slot.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
	IsCurrent(userID string) bool
}

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads the auth_token cookie or a Bearer header, validates the JWT,
// requires its subject to still be the logged-in user, and injects that
// user into the request context. Returns 401 otherwise.
func RequireAuth(tokens TokenValidator, auth *state.Auth, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := authenticateRequest(r, tokens, auth)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authenticateRequest(r *http.Request, tokens TokenValidator, auth *state.Auth) (*domain.User, error) {
	token := bearerToken(r)
	if token == "" {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			return nil, domain.ErrUnauthenticated
		}
		token = cookie.Value
	}

	userID, err := tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	// A token outlives logout; the slot does not.
	if !tokens.IsCurrent(userID) {
		return nil, domain.ErrUnauthenticated
	}

	user := auth.User()
	if user == nil || user.ID != userID {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// SecurityHeaders sets conservative response headers on every request.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https:; object-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
