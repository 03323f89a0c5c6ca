package reviews

import (
	"context"
	"errors"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainreview "homestay/internal/domain/review"
)

const deleteReviewKey = "review.delete"

// ErrNotAuthor rejects deletion by anyone but the review author or an admin.
var ErrNotAuthor = errors.New("reviews: only the author or an admin can delete a review")

// DeleteReviewCommand removes a review and recomputes the listing rating
// from the remaining rows.
type DeleteReviewCommand struct {
	ReviewID string
	ActorID  string
	Admin    bool
	Now      time.Time
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (struct{}, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	r, err := unit.Reviews().ByID(ctx, domainreview.ReviewID(cmd.ReviewID))
	if err != nil {
		return struct{}{}, err
	}
	if r.AuthorID != cmd.ActorID && !cmd.Admin {
		return struct{}{}, ErrNotAuthor
	}

	listing, err := unit.Listings().ByID(ctx, r.ListingID)
	if err != nil {
		return struct{}{}, err
	}

	if err := unit.Reviews().Delete(ctx, r.ID); err != nil {
		return struct{}{}, err
	}
	if err := recomputeListingRating(ctx, unit, listing, now); err != nil {
		return struct{}{}, err
	}

	deleted := domainreview.ReviewDeleted{
		ReviewID:  r.ID,
		ListingID: r.ListingID,
		At:        now,
	}
	pending := append(listing.PendingEvents(), deleted)
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return struct{}{}, err
	}
	listing.ClearEvents()

	if owned {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}

var _ commands.Handler[DeleteReviewCommand, struct{}] = (*DeleteReviewHandler)(nil)
