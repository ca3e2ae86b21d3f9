// Package state holds the in-process containers that sit between clients
// and the store: a listings cache and the authenticated session.
package state

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/rightnow/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ItemsBackend is the part of the store the Items container needs.
type ItemsBackend interface {
	ListAll(ctx context.Context) ([]domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	Create(ctx context.Context, in domain.NewListing) (*domain.Listing, error)
}

// ItemsState is a point-in-time copy of the container.
type ItemsState struct {
	Items      []domain.Listing
	Loading    bool
	Refreshing bool
	// Err is the message of the last failed operation, empty when the
	// last operation succeeded.
	Err string
}

type pendingCreate struct {
	seq     uint64
	listing domain.Listing
}

// Items caches the last full listing fetch and derives filtered views from it.
//
// Overlapping Load and Refresh calls share one backend fetch. Every fetch
// and every local create takes a sequence number; a fetch result never
// replaces the cache if a later fetch has already been applied, and
// listings created after a fetch started are kept in front of its result
// when the backend did not return them.
type Items struct {
	backend ItemsBackend
	now     func() time.Time
	group   singleflight.Group

	mu         sync.Mutex
	items      []domain.Listing
	loading    int
	refreshing int
	errMsg     string
	seq        uint64
	applied    uint64
	pending    []pendingCreate
	subs       map[int]func(ItemsState)
	nextSub    int
}

// NewItems creates an empty container. now defaults to time.Now.
func NewItems(backend ItemsBackend, now func() time.Time) *Items {
	if now == nil {
		now = time.Now
	}
	return &Items{
		backend: backend,
		now:     now,
		subs:    make(map[int]func(ItemsState)),
	}
}

// Load fetches the full list and replaces the cache, flagging Loading
// while the call is in flight.
func (c *Items) Load(ctx context.Context) error {
	return c.fetch(ctx, &c.loading)
}

// Refresh is Load for pull-to-refresh: it flags Refreshing instead.
func (c *Items) Refresh(ctx context.Context) error {
	return c.fetch(ctx, &c.refreshing)
}

func (c *Items) fetch(ctx context.Context, counter *int) error {
	c.mu.Lock()
	*counter++
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	defer func() {
		c.mu.Lock()
		*counter--
		c.mu.Unlock()
		c.notify()
	}()

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := c.group.DoChan("list", func() (any, error) {
		return nil, c.fetchAndApply(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Items) fetchAndApply(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	start := c.seq
	c.mu.Unlock()

	listings, err := c.backend.ListAll(ctx)
	if err != nil {
		slog.Error("failed to load listings", "error", err)
		c.fail(err)
		return err
	}

	c.mu.Lock()
	if start < c.applied {
		c.mu.Unlock()
		slog.Warn("discarding stale listing fetch", "seq", start, "applied", c.applied)
		return nil
	}
	c.applied = start

	kept := c.pending[:0]
	for _, p := range c.pending {
		if p.seq > start {
			kept = append(kept, p)
		}
	}
	c.pending = kept

	var missing []domain.Listing
	for _, p := range c.pending {
		if !containsID(listings, p.listing.ID) {
			missing = append(missing, p.listing)
		}
	}
	// pending is oldest first; the cache is newest first.
	slices.Reverse(missing)
	c.items = append(missing, listings...)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Create posts a listing and prepends the result to the cache without a
// reload. On failure the cache is left as it was.
func (c *Items) Create(ctx context.Context, in domain.NewListing) (*domain.Listing, error) {
	created, err := c.backend.Create(ctx, in)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	c.mu.Lock()
	c.seq++
	c.pending = append(c.pending, pendingCreate{seq: c.seq, listing: *created})
	c.items = slices.Insert(slices.Clone(c.items), 0, *created)
	c.errMsg = ""
	c.mu.Unlock()

	c.notify()
	return created, nil
}

// GetByID returns the cached listing when present and falls back to the
// backend otherwise.
func (c *Items) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	c.mu.Lock()
	for _, l := range c.items {
		if l.ID == id {
			c.mu.Unlock()
			return &l, nil
		}
	}
	c.mu.Unlock()

	l, err := c.backend.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("failed to get listing", "id", id, "error", err)
		}
		return nil, err
	}
	return l, nil
}

// All returns a copy of the cache.
func (c *Items) All() []domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// General returns cached listings with a price.
func (c *Items) General() []domain.Listing {
	return c.filter(func(l *domain.Listing) bool { return l.Category() == domain.CategoryGeneral })
}

// Free returns cached zero-priced listings.
func (c *Items) Free() []domain.Listing {
	return c.filter(func(l *domain.Listing) bool { return l.Category() == domain.CategoryFree })
}

// ByOwner returns cached listings posted by userID.
func (c *Items) ByOwner(userID string) []domain.Listing {
	return c.filter(func(l *domain.Listing) bool { return l.OwnerUserID == userID })
}

// Search matches query case-insensitively against title and description.
// A blank query returns the whole cache.
func (c *Items) Search(query string) []domain.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}
	return c.filter(func(l *domain.Listing) bool {
		return strings.Contains(strings.ToLower(l.Title), q) ||
			strings.Contains(strings.ToLower(l.Description), q)
	})
}

// Current narrows list to listings that have not expired.
func (c *Items) Current(list []domain.Listing) []domain.Listing {
	now := c.now()
	return filterList(list, func(l *domain.Listing) bool { return !l.IsExpired(now) })
}

// Expired narrows list to listings past their expiry.
func (c *Items) Expired(list []domain.Listing) []domain.Listing {
	now := c.now()
	return filterList(list, func(l *domain.Listing) bool { return l.IsExpired(now) })
}

// Snapshot returns the current state.
func (c *Items) Snapshot() ItemsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block.
// The returned func removes the subscription.
func (c *Items) Subscribe(fn func(ItemsState)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Items) fail(err error) {
	c.mu.Lock()
	c.errMsg = err.Error()
	c.mu.Unlock()
	c.notify()
}

func (c *Items) notify() {
	c.mu.Lock()
	if len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	state := c.snapshotLocked()
	subs := make([]func(ItemsState), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (c *Items) snapshotLocked() ItemsState {
	return ItemsState{
		Items:      slices.Clone(c.items),
		Loading:    c.loading > 0,
		Refreshing: c.refreshing > 0,
		Err:        c.errMsg,
	}
}

func (c *Items) filter(keep func(*domain.Listing) bool) []domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filterList(c.items, keep)
}

func filterList(list []domain.Listing, keep func(*domain.Listing) bool) []domain.Listing {
	out := make([]domain.Listing, 0, len(list))
	for i := range list {
		if keep(&list[i]) {
			out = append(out, list[i])
		}
	}
	return out
}

func containsID(list []domain.Listing, id string) bool {
	return slices.ContainsFunc(list, func(l domain.Listing) bool { return l.ID == id })
}
