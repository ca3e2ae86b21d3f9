package handler

import (
	"time"

	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/format"
	"github.com/msomdec/rightnow/internal/geo"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	Location  string `json:"location"`
	Age       *int   `json:"age"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Location:  u.LocationText,
		Age:       u.Age,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// ListingDTO is the JSON representation of a listing. Alongside the stored
// fields it carries the display values a listing card needs.
type ListingDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	PriceCents  int64    `json:"priceCents"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	ExpiresAt   *string  `json:"expiresAt"`
	CreatedAt   string   `json:"createdAt"`
	OwnerUserID string   `json:"ownerUserId"`

	Category      string  `json:"category"`
	CategoryLabel string  `json:"categoryLabel"`
	Price         string  `json:"price"`
	Expired       bool    `json:"expired"`
	TimeRemaining *string `json:"timeRemaining"`
	PostedAgo     string  `json:"postedAgo"`
	Distance      string  `json:"distance"`
}

func toListingDTO(l domain.Listing, now time.Time, ref *geo.Point) ListingDTO {
	dto := ListingDTO{
		ID:            l.ID,
		Title:         l.Title,
		PriceCents:    l.PriceCents,
		ImageURL:      l.ImageURL,
		Description:   l.Description,
		Lat:           l.Lat,
		Lng:           l.Lng,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		OwnerUserID:   l.OwnerUserID,
		Category:      string(l.Category()),
		CategoryLabel: format.CapitalizeFirst(string(l.Category())),
		Price:         format.Price(l.PriceCents),
		Expired:       format.IsExpired(l.ExpiresAt, now),
		PostedAgo:     format.RelativeTime(l.CreatedAt, now),
		Distance:      geo.Label(l.Lat, l.Lng, ref),
	}
	if l.ExpiresAt != nil {
		s := l.ExpiresAt.Format(time.RFC3339)
		dto.ExpiresAt = &s
	}
	if remaining, ok := format.TimeRemaining(l.ExpiresAt, now); ok {
		dto.TimeRemaining = &remaining
	}
	return dto
}

func toListingDTOs(listings []domain.Listing, now time.Time, ref *geo.Point) []ListingDTO {
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l, now, ref)
	}
	return dtos
}
