package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/rightnow/internal/geo"
	"github.com/msomdec/rightnow/internal/state"
	"github.com/msomdec/rightnow/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// FeedHandler streams the Items container to datastar clients.
type FeedHandler struct {
	items *state.Items
	now   func() time.Time
}

// NewFeedHandler creates a new FeedHandler. now defaults to time.Now.
func NewFeedHandler(items *state.Items, now func() time.Time) *FeedHandler {
	if now == nil {
		now = time.Now
	}
	return &FeedHandler{items: items, now: now}
}

type feedSignals struct {
	Count      int    `json:"count"`
	Loading    bool   `json:"loading"`
	Refreshing bool   `json:"refreshing"`
	Error      string `json:"error"`
}

// HandleFeed keeps an SSE stream open, patching the listing rows and the
// container flags on every change until the client goes away.
// GET /api/listings/feed
func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ref, err := referencePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := h.items.Subscribe(func(state.ItemsState) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	sse := datastar.NewSSE(w, r)
	if err := h.push(sse, ref); err != nil {
		slog.Warn("feed push", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if err := h.push(sse, ref); err != nil {
				slog.Warn("feed push", "error", err)
				return
			}
		}
	}
}

func (h *FeedHandler) push(sse *datastar.ServerSentEventGenerator, ref *geo.Point) error {
	snap := h.items.Snapshot()

	if err := sse.MarshalAndPatchSignals(map[string]any{
		"listings": feedSignals{
			Count:      len(snap.Items),
			Loading:    snap.Loading,
			Refreshing: snap.Refreshing,
			Error:      snap.Err,
		},
	}); err != nil {
		return err
	}

	return sse.PatchElementTempl(
		view.ListingRows(snap.Items, h.now(), ref),
		datastar.WithSelectorID(view.ListingRowsID),
		datastar.WithModeInner(),
	)
}
