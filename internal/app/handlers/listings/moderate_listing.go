package listings

import (
	"context"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const (
	approveListingKey  = "listing.approve"
	rejectListingKey   = "listing.reject"
	moderationQueueKey = "listing.moderation_queue"
)

// ApproveListingCommand publishes a listing to the catalog.
type ApproveListingCommand struct {
	ListingID string
	Now       time.Time
}

func (c ApproveListingCommand) Key() string { return approveListingKey }

// RejectListingCommand pulls a listing from moderation or the catalog.
type RejectListingCommand struct {
	ListingID string
	Reason    string
	Now       time.Time
}

func (c RejectListingCommand) Key() string { return rejectListingKey }

// ModerationQueueQuery pages through listings awaiting review.
type ModerationQueueQuery struct {
	Limit  int
	Offset int
}

func (q ModerationQueueQuery) Key() string { return moderationQueueKey }

type ModerateHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ModerateHandler) HandleApprove(ctx context.Context, cmd ApproveListingCommand) (dto.Listing, error) {
	return h.transition(ctx, cmd.ListingID, cmd.Now, func(l *domainlisting.Listing, now time.Time) error {
		return l.Approve(now)
	})
}

func (h *ModerateHandler) HandleReject(ctx context.Context, cmd RejectListingCommand) (dto.Listing, error) {
	return h.transition(ctx, cmd.ListingID, cmd.Now, func(l *domainlisting.Listing, now time.Time) error {
		return l.Reject(cmd.Reason, now)
	})
}

func (h *ModerateHandler) HandleQueue(ctx context.Context, query ModerationQueueQuery) (dto.ListingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	result, err := unit.Listings().Search(ctx, domainlisting.SearchParams{
		Statuses: []domainlisting.ModerationStatus{domainlisting.StatusPending},
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return dto.ListingCollection{}, err
	}

	items := make([]dto.Listing, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, dto.MapListing(l))
	}
	return dto.ListingCollection{Items: items, Total: result.Total}, nil
}

func (h *ModerateHandler) transition(
	ctx context.Context,
	listingID string,
	now time.Time,
	apply func(*domainlisting.Listing, time.Time) error,
) (dto.Listing, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(listingID))
	if err != nil {
		return dto.Listing{}, err
	}
	if err := apply(l, now); err != nil {
		return dto.Listing{}, err
	}
	if err := unit.Listings().Save(ctx, l); err != nil {
		return dto.Listing{}, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, l.PendingEvents()); err != nil {
		return dto.Listing{}, err
	}
	l.ClearEvents()
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.Listing{}, err
		}
	}
	return dto.MapListing(l), nil
}

var (
	_ commands.Handler[ApproveListingCommand, dto.Listing]         = commands.HandlerFunc[ApproveListingCommand, dto.Listing]((&ModerateHandler{}).HandleApprove)
	_ commands.Handler[RejectListingCommand, dto.Listing]          = commands.HandlerFunc[RejectListingCommand, dto.Listing]((&ModerateHandler{}).HandleReject)
	_ queries.Handler[ModerationQueueQuery, dto.ListingCollection] = queries.HandlerFunc[ModerationQueueQuery, dto.ListingCollection]((&ModerateHandler{}).HandleQueue)
)
