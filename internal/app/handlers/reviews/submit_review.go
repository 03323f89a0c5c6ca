package reviews

import (
	"context"
	"errors"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
)

const submitReviewKey = "review.submit"

var (
	// ErrNotEligible means the author has no completed stay at the listing.
	ErrNotEligible = errors.New("reviews: a completed stay is required to review")

	// ErrAlreadyReviewed enforces one review per author per listing.
	ErrAlreadyReviewed = errors.New("reviews: listing already reviewed by this user")
)

// SubmitReviewCommand leaves a rating and comment on a listing. The listing
// aggregate rating is recomputed from the stored rows in the same transaction.
type SubmitReviewCommand struct {
	ReviewID  string
	ListingID string
	AuthorID  string
	Rating    int
	Comment   string
	Now       time.Time
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	listingID := domainlisting.ListingID(cmd.ListingID)
	listing, err := unit.Listings().ByID(ctx, listingID)
	if err != nil {
		return dto.Review{}, err
	}

	completed, err := unit.Bookings().HasCompleted(ctx, listingID, cmd.AuthorID)
	if err != nil {
		return dto.Review{}, err
	}
	if !completed {
		return dto.Review{}, ErrNotEligible
	}

	if _, err := unit.Reviews().ByListingAndAuthor(ctx, listingID, cmd.AuthorID); err == nil {
		return dto.Review{}, ErrAlreadyReviewed
	} else if !errors.Is(err, domainreview.ErrNotFound) {
		return dto.Review{}, err
	}

	r, err := domainreview.Submit(domainreview.SubmitParams{
		ID:        domainreview.ReviewID(cmd.ReviewID),
		ListingID: listingID,
		AuthorID:  cmd.AuthorID,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		CreatedAt: now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, r); err != nil {
		return dto.Review{}, err
	}

	if err := recomputeListingRating(ctx, unit, listing, now); err != nil {
		return dto.Review{}, err
	}

	pending := append(r.PendingEvents(), listing.PendingEvents()...)
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return dto.Review{}, err
	}
	r.ClearEvents()
	listing.ClearEvents()

	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.Review{}, err
		}
	}
	return dto.MapReview(r), nil
}

// recomputeListingRating reloads every rating row and replaces the listing
// summary with the authoritative result.
func recomputeListingRating(ctx context.Context, unit uow.UnitOfWork, listing *domainlisting.Listing, now time.Time) error {
	ratings, err := unit.Reviews().RatingsByListing(ctx, listing.ID)
	if err != nil {
		return err
	}
	listing.ApplyRating(domainlisting.Recompute(ratings), now)
	return unit.Listings().Save(ctx, listing)
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
