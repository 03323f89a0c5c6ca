package dto

import (
	"time"

	domainreview "homestay/internal/domain/review"
)

// Review represents a public review payload.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewCollection carries the reviews plus the recomputed listing aggregate
// so callers can refresh their rating display in one round trip.
type ReviewCollection struct {
	Items         []Review `json:"items"`
	Total         int      `json:"total"`
	AverageRating float64  `json:"average_rating"`
}

func MapReview(r *domainreview.Review) Review {
	if r == nil {
		return Review{}
	}
	return Review{
		ID:        string(r.ID),
		ListingID: string(r.ListingID),
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
