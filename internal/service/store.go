package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/rightnow/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DefaultLatency is the artificial delay every store call waits before
// touching the repositories.
const DefaultLatency = 300 * time.Millisecond

// StoreConfig holds the injectable parts of a Store.
type StoreConfig struct {
	JWTSecret  string
	BcryptCost int
	// Latency emulates a network round trip. Zero disables it.
	Latency time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Store is the marketplace backend the state containers talk to. It owns
// the listing and user repositories plus a single current-user slot.
type Store struct {
	listings   domain.ListingRepository
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
	latency    time.Duration
	now        func() time.Time

	mu            sync.RWMutex
	currentUserID string
}

// NewStore creates a Store over the given repositories.
func NewStore(listings domain.ListingRepository, users domain.UserRepository, cfg StoreConfig) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		listings:   listings,
		users:      users,
		jwtSecret:  []byte(cfg.JWTSecret),
		bcryptCost: cost,
		latency:    cfg.Latency,
		now:        now,
	}
}

// ListAll returns every listing sorted by expiry, soonest first. Listings
// without an expiry come last; ties keep store order.
func (s *Store) ListAll(ctx context.Context) ([]domain.Listing, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	slices.SortStableFunc(listings, compareExpiry)
	return listings, nil
}

// GetByID returns a single listing or domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.listings.GetByID(ctx, id)
}

// ListByOwner returns the listings posted by userID in store order.
func (s *Store) ListByOwner(ctx context.Context, userID string) ([]domain.Listing, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	listings, err := s.listings.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list listings by owner: %w", err)
	}
	return listings, nil
}

// Create posts a listing owned by the current user. It fails with
// domain.ErrUnauthenticated when nobody is logged in and leaves the store
// untouched on any error.
func (s *Store) Create(ctx context.Context, in domain.NewListing) (*domain.Listing, error) {
	ownerID := s.currentID()
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := domain.ValidateNewListing(in); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate listing id: %w", err)
	}

	listing := &domain.Listing{
		ID:          id.String(),
		Title:       strings.TrimSpace(in.Title),
		PriceCents:  in.PriceCents,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: strings.TrimSpace(in.Description),
		Lat:         in.Lat,
		Lng:         in.Lng,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   s.now(),
		OwnerUserID: ownerID,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	slog.Info("listing created", "id", listing.ID, "owner", ownerID, "category", listing.Category())
	return listing, nil
}

// CurrentUser returns the logged-in user, or nil when logged out.
func (s *Store) CurrentUser(ctx context.Context) (*domain.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	id := s.currentID()
	if id == "" {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.clearIf(id)
			return nil, nil
		}
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return user, nil
}

// Login checks credentials against the user table and makes the user current.
// Malformed input fails with domain.ErrInvalidInput; an unknown email or a
// wrong password fails with domain.ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := domain.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(user)
}

// DevLogin logs in the canned developer account without credentials.
func (s *Store) DevLogin(ctx context.Context) (*domain.Session, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, DevUserID)
	if err != nil {
		return nil, fmt.Errorf("get developer user: %w", err)
	}
	return s.startSession(user)
}

// Signup registers a new account and logs it in.
func (s *Store) Signup(ctx context.Context, in domain.Signup) (*domain.Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := domain.ValidateSignup(in); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	user := &domain.User{
		ID:           id.String(),
		Name:         in.Name,
		Email:        in.Email,
		AvatarURL:    avatarFor(in.Email),
		LocationText: strings.TrimSpace(in.LocationText),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.Info("user signed up", "id", user.ID)
	return s.startSession(user)
}

// Logout clears the current-user slot. It never fails and is safe to call
// when nobody is logged in.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	prev := s.currentUserID
	s.currentUserID = ""
	s.mu.Unlock()

	if prev != "" {
		slog.Info("user logged out", "id", prev)
	}
	_ = s.wait(ctx)
}

// UpdateProfile merges patch into the current user.
func (s *Store) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.User, error) {
	id := s.currentID()
	if id == "" {
		return nil, domain.ErrUnauthenticated
	}
	patch.Name = trimmed(patch.Name)
	patch.Email = trimmed(patch.Email)
	patch.LocationText = trimmed(patch.LocationText)
	if err := domain.ValidateProfilePatch(patch); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.clearIf(id)
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("get current user: %w", err)
	}

	patch.Apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *Store) startSession(user *domain.User) (*domain.Session, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.mu.Lock()
	s.currentUserID = user.ID
	s.mu.Unlock()

	slog.Info("user logged in", "id", user.ID)
	return &domain.Session{User: user, Token: token}, nil
}

func (s *Store) currentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUserID
}

// clearIf drops the slot only if it still holds id.
func (s *Store) clearIf(id string) {
	s.mu.Lock()
	if s.currentUserID == id {
		s.currentUserID = ""
	}
	s.mu.Unlock()
}

// wait blocks for the configured latency or until ctx is done.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func compareExpiry(a, b domain.Listing) int {
	switch {
	case a.ExpiresAt == nil && b.ExpiresAt == nil:
		return 0
	case a.ExpiresAt == nil:
		return 1
	case b.ExpiresAt == nil:
		return -1
	default:
		return cmp.Compare(a.ExpiresAt.UnixNano(), b.ExpiresAt.UnixNano())
	}
}

var avatarURLs = []string{
	"https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100&h=100&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1494790108755-2616b612b786?w=100&h=100&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=100&h=100&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=100&h=100&fit=crop&crop=face",
}

// avatarFor picks a stock avatar deterministically from the email.
func avatarFor(email string) string {
	sum := 0
	for _, b := range []byte(strings.ToLower(email)) {
		sum += int(b)
	}
	return avatarURLs[sum%len(avatarURLs)]
}
