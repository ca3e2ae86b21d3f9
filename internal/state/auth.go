package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/msomdec/rightnow/internal/domain"
)

// AuthBackend is the part of the store the Auth container needs.
type AuthBackend interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	DevLogin(ctx context.Context) (*domain.Session, error)
	Signup(ctx context.Context, in domain.Signup) (*domain.Session, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.User, error)
}

// AuthState is a point-in-time copy of the Auth container.
type AuthState struct {
	User        *domain.User
	Loading     bool
	Initialized bool
}

// Auth mirrors the store's session: who is logged in and whether the
// initial session lookup has finished.
type Auth struct {
	backend AuthBackend

	mu          sync.RWMutex
	user        *domain.User
	token       string
	loading     bool
	initialized bool
	subs        map[int]func(AuthState)
	nextSub     int
}

// NewAuth creates a container that reports Loading until Init completes.
func NewAuth(backend AuthBackend) *Auth {
	return &Auth{
		backend: backend,
		loading: true,
		subs:    make(map[int]func(AuthState)),
	}
}

// Init resolves an existing session. Any failure counts as logged out.
func (a *Auth) Init(ctx context.Context) {
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()
	a.notify()

	user, err := a.backend.CurrentUser(ctx)
	if err != nil {
		slog.Info("no existing session found", "error", err)
		user = nil
	}

	a.mu.Lock()
	a.user = cloneUser(user)
	a.loading = false
	a.initialized = true
	a.mu.Unlock()
	a.notify()
}

// Login signs in with credentials and publishes the user.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return a.startSession(a.backend.Login(ctx, creds))
}

// DevLogin signs in as the developer account.
func (a *Auth) DevLogin(ctx context.Context) (*domain.Session, error) {
	return a.startSession(a.backend.DevLogin(ctx))
}

// Signup registers an account and publishes it as the current user.
func (a *Auth) Signup(ctx context.Context, in domain.Signup) (*domain.Session, error) {
	return a.startSession(a.backend.Signup(ctx, in))
}

// Logout ends the session. Local state is cleared even when the backend
// call is cut short.
func (a *Auth) Logout(ctx context.Context) {
	a.backend.Logout(ctx)

	a.mu.Lock()
	a.user = nil
	a.token = ""
	a.mu.Unlock()
	a.notify()
}

// UpdateProfile patches the current user and publishes the result.
func (a *Auth) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.User, error) {
	user, err := a.backend.UpdateProfile(ctx, patch)
	if err != nil {
		slog.Warn("profile update failed", "error", err)
		return nil, err
	}

	a.mu.Lock()
	a.user = cloneUser(user)
	a.mu.Unlock()
	a.notify()
	return user, nil
}

func (a *Auth) startSession(session *domain.Session, err error) (*domain.Session, error) {
	if err != nil {
		slog.Warn("login failed", "error", err)
		return nil, err
	}

	a.mu.Lock()
	a.user = cloneUser(session.User)
	a.token = session.Token
	a.mu.Unlock()
	a.notify()
	return session, nil
}

// User returns a copy of the current user, or nil when logged out.
func (a *Auth) User() *domain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneUser(a.user)
}

// Token returns the token of the last successful login.
func (a *Auth) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *Auth) IsLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil
}

func (a *Auth) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *Auth) Initialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.initialized
}

// Snapshot returns the current state.
func (a *Auth) Snapshot() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change.
func (a *Auth) Subscribe(fn func(AuthState)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

func (a *Auth) notify() {
	a.mu.RLock()
	state := a.snapshotLocked()
	subs := make([]func(AuthState), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.RUnlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (a *Auth) snapshotLocked() AuthState {
	return AuthState{
		User:        cloneUser(a.user),
		Loading:     a.loading,
		Initialized: a.initialized,
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Age != nil {
		age := *u.Age
		c.Age = &age
	}
	return &c
}
