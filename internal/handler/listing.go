package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/geo"
	"github.com/msomdec/rightnow/internal/state"
)

// OwnerLister returns a user's listings straight from the store.
type OwnerLister interface {
	ListByOwner(ctx context.Context, userID string) ([]domain.Listing, error)
}

// ListingHandler serves listings out of the Items container.
type ListingHandler struct {
	items  *state.Items
	owners OwnerLister
	now    func() time.Time
}

// NewListingHandler creates a new ListingHandler. now defaults to time.Now.
func NewListingHandler(items *state.Items, owners OwnerLister, now func() time.Time) *ListingHandler {
	if now == nil {
		now = time.Now
	}
	return &ListingHandler{items: items, owners: owners, now: now}
}

// HandleList returns the cached listings, narrowed by the query.
// GET /api/listings?category=general|free&status=current|expired&q=...&owner=...&lat=..&lng=..
func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ref, err := referencePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := h.filter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeListings(w, listings, ref)
}

// HandleRefresh refetches the listings and returns the fresh list.
// POST /api/listings/refresh
func (h *ListingHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ref, err := referencePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.items.Refresh(r.Context()); err != nil {
		writeStoreError(w, "refresh listings", err)
		return
	}
	h.writeListings(w, h.items.All(), ref)
}

// HandleCreate posts a listing for the authenticated user.
// POST /api/listings
// Request: {"title","priceCents","imageUrl","description","lat","lng","expiresAt"}
func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.NewListing
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	listing, err := h.items.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, "create listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"listing": toListingDTO(*listing, h.now(), &geo.DefaultLocation),
	})
}

// HandleGet returns a single listing.
// GET /api/listings/{id}
func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ref, err := referencePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.items.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get listing", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listing": toListingDTO(*listing, h.now(), ref),
	})
}

// HandleUserListings returns a user's listings from the store, bypassing
// the cache.
// GET /api/users/{id}/listings
func (h *ListingHandler) HandleUserListings(w http.ResponseWriter, r *http.Request) {
	ref, err := referencePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := h.owners.ListByOwner(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "list user listings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listings": toListingDTOs(listings, h.now(), ref),
	})
}

func (h *ListingHandler) filter(r *http.Request) ([]domain.Listing, error) {
	q := r.URL.Query()

	var listings []domain.Listing
	switch q.Get("category") {
	case "":
		listings = h.items.All()
	case string(domain.CategoryGeneral):
		listings = h.items.General()
	case string(domain.CategoryFree):
		listings = h.items.Free()
	default:
		return nil, errBadQuery("category must be general or free")
	}

	if search := q.Get("q"); search != "" {
		listings = intersect(listings, h.items.Search(search))
	}
	if owner := q.Get("owner"); owner != "" {
		listings = intersect(listings, h.items.ByOwner(owner))
	}

	switch q.Get("status") {
	case "":
	case "current":
		listings = h.items.Current(listings)
	case "expired":
		listings = h.items.Expired(listings)
	default:
		return nil, errBadQuery("status must be current or expired")
	}
	return listings, nil
}

func (h *ListingHandler) writeListings(w http.ResponseWriter, listings []domain.Listing, ref *geo.Point) {
	snap := h.items.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"listings":   toListingDTOs(listings, h.now(), ref),
		"loading":    snap.Loading,
		"refreshing": snap.Refreshing,
		"error":      snap.Err,
	})
}

// intersect keeps the listings of a that also appear in b, in a's order.
func intersect(a, b []domain.Listing) []domain.Listing {
	keep := make(map[string]bool, len(b))
	for _, l := range b {
		keep[l.ID] = true
	}
	out := make([]domain.Listing, 0, len(a))
	for _, l := range a {
		if keep[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

type errBadQuery string

func (e errBadQuery) Error() string { return string(e) }

// referencePoint reads the lat/lng query pair distances are measured
// from, falling back to geo.DefaultLocation.
func referencePoint(r *http.Request) (*geo.Point, error) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return &geo.DefaultLocation, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errBadQuery("lat and lng must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, errBadQuery("lat must be a number between -90 and 90")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, errBadQuery("lng must be a number between -180 and 180")
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}
