package reviews

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const listReviewsKey = "review.list"

// ListReviewsQuery pages through a listing's reviews, newest first.
type ListReviewsQuery struct {
	ListingID string
	Limit     int
	Offset    int
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, query ListReviewsQuery) (dto.ReviewCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listingID := domainlisting.ListingID(query.ListingID)
	listing, err := unit.Listings().ByID(ctx, listingID)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := unit.Reviews().ListByListing(ctx, listingID, limit, offset)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	items := make([]dto.Review, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.MapReview(r))
	}
	return dto.ReviewCollection{
		Items:         items,
		Total:         listing.Rating.Count,
		AverageRating: listing.Rating.Average,
	}, nil
}

var _ queries.Handler[ListReviewsQuery, dto.ReviewCollection] = (*ListReviewsHandler)(nil)
