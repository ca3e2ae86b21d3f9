package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/msomdec/rightnow/internal/handler"
	"github.com/msomdec/rightnow/internal/repository/memory"
	"github.com/msomdec/rightnow/internal/service"
	"github.com/msomdec/rightnow/internal/state"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store   *service.Store
	items   *state.Items
	auth    *state.Auth
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimiter(t, 100, 100)
}

func newTestEnvWithLimiter(t *testing.T, rate, burst float64) *testEnv {
	t.Helper()
	db := memory.New()
	now := func() time.Time { return testNow }
	store := service.NewStore(db.Listings(), db.Users(), service.StoreConfig{
		JWTSecret:  testJWTSecret,
		BcryptCost: 4,
		Now:        now,
	})
	ctx := context.Background()
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	items := state.NewItems(store, now)
	if err := items.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	auth := state.NewAuth(store)
	auth.Init(ctx)

	limiter := service.NewAttemptLimiter(rate, burst)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, store, items, auth, limiter, false, now)

	return &testEnv{
		store:   store,
		items:   items,
		auth:    auth,
		handler: handler.SecurityHeaders(mux),
	}
}
