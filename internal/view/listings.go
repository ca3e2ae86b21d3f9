// Package view renders the HTML fragments streamed to feed clients.
package view

import (
	"time"

	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/format"
	"github.com/msomdec/rightnow/internal/geo"
)

// ListingRowsID is the element the feed patches its rows into.
const ListingRowsID = "listing-rows"

// descriptionPreview is how much of a description a row shows.
const descriptionPreview = 80

func rowClass(l domain.Listing, now time.Time) string {
	class := string(l.Category())
	if l.IsExpired(now) {
		class += " expired"
	}
	return class
}

func remaining(l domain.Listing, now time.Time) string {
	r, ok := format.TimeRemaining(l.ExpiresAt, now)
	if !ok {
		return geo.Placeholder
	}
	return r
}
