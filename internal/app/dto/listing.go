package dto

import (
	"time"

	domainlisting "homestay/internal/domain/listing"
)

// Listing is the public listing payload.
type Listing struct {
	ID               string    `json:"id"`
	HostID           string    `json:"host_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category"`
	City             string    `json:"city"`
	Country          string    `json:"country"`
	NightlyRateCents int64     `json:"nightly_rate_cents"`
	MainPhotoURL     string    `json:"main_photo_url,omitempty"`
	PhotoURLs        []string  `json:"photo_urls,omitempty"`
	AverageRating    float64   `json:"average_rating"`
	ReviewCount      int       `json:"review_count"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ListingCollection struct {
	Items []Listing `json:"items"`
	Total int       `json:"total"`
}

func MapListing(l *domainlisting.Listing) Listing {
	if l == nil {
		return Listing{}
	}
	return Listing{
		ID:               string(l.ID),
		HostID:           string(l.Host),
		Title:            l.Title,
		Description:      l.Description,
		Category:         string(l.Category),
		City:             l.Location.City,
		Country:          l.Location.Country,
		NightlyRateCents: l.NightlyRateCents,
		MainPhotoURL:     l.MainPhotoURL,
		PhotoURLs:        append([]string(nil), l.PhotoURLs...),
		AverageRating:    l.Rating.Average,
		ReviewCount:      l.Rating.Count,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// ListingCard is the trimmed payload for catalog grids and wishlist rows.
type ListingCard struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Category         string  `json:"category"`
	City             string  `json:"city"`
	Country          string  `json:"country"`
	NightlyRateCents int64   `json:"nightly_rate_cents"`
	MainPhotoURL     string  `json:"main_photo_url,omitempty"`
	AverageRating    float64 `json:"average_rating"`
	ReviewCount      int     `json:"review_count"`
}

type ListingCardCollection struct {
	Items []ListingCard `json:"items"`
	Total int           `json:"total"`
}

func MapListingCard(l *domainlisting.Listing) ListingCard {
	if l == nil {
		return ListingCard{}
	}
	return ListingCard{
		ID:               string(l.ID),
		Title:            l.Title,
		Category:         string(l.Category),
		City:             l.Location.City,
		Country:          l.Location.Country,
		NightlyRateCents: l.NightlyRateCents,
		MainPhotoURL:     l.MainPhotoURL,
		AverageRating:    l.Rating.Average,
		ReviewCount:      l.Rating.Count,
	}
}
