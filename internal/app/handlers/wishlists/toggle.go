package wishlists

import (
	"context"
	"errors"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	domainwishlist "homestay/internal/domain/wishlist"
)

const (
	addEntryKey    = "wishlist.add"
	removeEntryKey = "wishlist.remove"
)

// AddEntryCommand saves a listing to the user's wishlist. Adding a listing
// that is already saved returns the existing entry unchanged.
type AddEntryCommand struct {
	EntryID   string
	ListingID string
	OwnerID   string
	Now       time.Time
}

func (c AddEntryCommand) Key() string { return addEntryKey }

// RemoveEntryCommand deletes a wishlist entry by its own id. The listing id
// is not accepted here, the client must send back the entry id it was given.
type RemoveEntryCommand struct {
	EntryID string
	OwnerID string
}

func (c RemoveEntryCommand) Key() string { return removeEntryKey }

type ToggleHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ToggleHandler) HandleAdd(ctx context.Context, cmd AddEntryCommand) (dto.WishlistEntry, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.WishlistEntry{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	listingID := domainlisting.ListingID(cmd.ListingID)
	if _, err := unit.Listings().ByID(ctx, listingID); err != nil {
		return dto.WishlistEntry{}, err
	}

	existing, err := unit.Wishlists().ByListingAndOwner(ctx, listingID, cmd.OwnerID)
	switch {
	case err == nil:
		return dto.MapWishlistEntry(existing), nil
	case !errors.Is(err, domainwishlist.ErrNotFound):
		return dto.WishlistEntry{}, err
	}

	entry, err := domainwishlist.New(domainwishlist.CreateParams{
		ID:        domainwishlist.EntryID(cmd.EntryID),
		ListingID: listingID,
		OwnerID:   cmd.OwnerID,
		CreatedAt: now,
	})
	if err != nil {
		return dto.WishlistEntry{}, err
	}
	if err := unit.Wishlists().Save(ctx, entry); err != nil {
		return dto.WishlistEntry{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.WishlistEntry{}, err
		}
	}
	return dto.MapWishlistEntry(entry), nil
}

func (h *ToggleHandler) HandleRemove(ctx context.Context, cmd RemoveEntryCommand) (struct{}, error) {
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	entry, err := unit.Wishlists().ByID(ctx, domainwishlist.EntryID(cmd.EntryID))
	if err != nil {
		return struct{}{}, err
	}
	if entry.OwnerID != cmd.OwnerID {
		return struct{}{}, domainwishlist.ErrNotOwner
	}
	if err := unit.Wishlists().Delete(ctx, entry.ID); err != nil {
		return struct{}{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}

var (
	_ commands.Handler[AddEntryCommand, dto.WishlistEntry] = commands.HandlerFunc[AddEntryCommand, dto.WishlistEntry]((&ToggleHandler{}).HandleAdd)
	_ commands.Handler[RemoveEntryCommand, struct{}]       = commands.HandlerFunc[RemoveEntryCommand, struct{}]((&ToggleHandler{}).HandleRemove)
)
