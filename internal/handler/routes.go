package handler

import (
	"net/http"
	"time"

	"github.com/msomdec/rightnow/internal/service"
	"github.com/msomdec/rightnow/internal/state"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store *service.Store, items *state.Items, auth *state.Auth, limiter *service.AttemptLimiter, cookieSecure bool, now func() time.Time) {
	authHandler := NewAuthHandler(auth, store, limiter, cookieSecure)
	listingHandler := NewListingHandler(items, store, now)
	feedHandler := NewFeedHandler(items, now)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(store, auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/dev-login", authHandler.HandleDevLogin)
	mux.HandleFunc("POST /api/auth/signup", authHandler.HandleSignup)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", requireAuth(authHandler.HandleMe))
	mux.Handle("PATCH /api/auth/me", requireAuth(authHandler.HandleUpdateMe))

	mux.HandleFunc("GET /api/listings", listingHandler.HandleList)
	mux.Handle("POST /api/listings", requireAuth(listingHandler.HandleCreate))
	mux.HandleFunc("POST /api/listings/refresh", listingHandler.HandleRefresh)
	mux.HandleFunc("GET /api/listings/feed", feedHandler.HandleFeed)
	mux.HandleFunc("GET /api/listings/{id}", listingHandler.HandleGet)
	mux.HandleFunc("GET /api/users/{id}/listings", listingHandler.HandleUserListings)
}
