package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/events"
)

var (
	ErrInvalidRating = errors.New("review: rating must be between 1 and 5")
	ErrNotFound      = errors.New("review: not found")
)

type ReviewID string

type Review struct {
	ID        ReviewID
	ListingID listing.ListingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	// ByListingAndAuthor enforces the one-review-per-author invariant.
	ByListingAndAuthor(ctx context.Context, listingID listing.ListingID, authorID string) (*Review, error)
	ListByListing(ctx context.Context, listingID listing.ListingID, limit, offset int) ([]*Review, error)
	// RatingsByListing returns every rating value for the listing, for
	// authoritative recomputation of the aggregate.
	RatingsByListing(ctx context.Context, listingID listing.ListingID) ([]int, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
}

type SubmitParams struct {
	ID        ReviewID
	ListingID listing.ListingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if params.AuthorID == "" {
		return nil, errors.New("review: author id required")
	}
	r := &Review{
		ID:        params.ID,
		ListingID: params.ListingID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		CreatedAt: params.CreatedAt.UTC(),
	}
	r.Record(ReviewSubmitted{
		ReviewID:  r.ID,
		ListingID: r.ListingID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		At:        r.CreatedAt,
	})
	return r, nil
}
