package wishlists

import (
	"context"
	"errors"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	domainwishlist "homestay/internal/domain/wishlist"
)

const (
	checkEntryKey  = "wishlist.check"
	listEntriesKey = "wishlist.list"
)

// CheckEntryQuery reports whether a listing is saved and returns the entry id
// a later removal must use.
type CheckEntryQuery struct {
	ListingID string
	OwnerID   string
}

func (q CheckEntryQuery) Key() string { return checkEntryKey }

// ListEntriesQuery returns the user's saved listings with their card data.
type ListEntriesQuery struct {
	OwnerID string
}

func (q ListEntriesQuery) Key() string { return listEntriesKey }

type QueryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandler) HandleCheck(ctx context.Context, query CheckEntryQuery) (dto.WishlistMembership, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.WishlistMembership{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	entry, err := unit.Wishlists().ByListingAndOwner(ctx, domainlisting.ListingID(query.ListingID), query.OwnerID)
	switch {
	case errors.Is(err, domainwishlist.ErrNotFound):
		return dto.WishlistMembership{}, nil
	case err != nil:
		return dto.WishlistMembership{}, err
	}
	return dto.WishlistMembership{InWishlist: true, EntryID: string(entry.ID)}, nil
}

func (h *QueryHandler) HandleList(ctx context.Context, query ListEntriesQuery) (dto.WishlistCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.WishlistCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	entries, err := unit.Wishlists().ListByOwner(ctx, query.OwnerID)
	if err != nil {
		return dto.WishlistCollection{}, err
	}

	items := make([]dto.WishlistRow, 0, len(entries))
	for _, entry := range entries {
		l, err := unit.Listings().ByID(ctx, entry.ListingID)
		if errors.Is(err, domainlisting.ErrNotFound) {
			// The listing was removed after being saved. Skip the row,
			// the entry itself is cleaned up lazily on removal.
			continue
		}
		if err != nil {
			return dto.WishlistCollection{}, err
		}
		items = append(items, dto.WishlistRow{
			Entry:   dto.MapWishlistEntry(entry),
			Listing: dto.MapListingCard(l),
		})
	}
	return dto.WishlistCollection{Items: items}, nil
}

var (
	_ queries.Handler[CheckEntryQuery, dto.WishlistMembership]  = queries.HandlerFunc[CheckEntryQuery, dto.WishlistMembership]((&QueryHandler{}).HandleCheck)
	_ queries.Handler[ListEntriesQuery, dto.WishlistCollection] = queries.HandlerFunc[ListEntriesQuery, dto.WishlistCollection]((&QueryHandler{}).HandleList)
)
