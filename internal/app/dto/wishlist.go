package dto

import (
	"time"

	domainwishlist "homestay/internal/domain/wishlist"
)

type WishlistEntry struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistMembership answers "is this listing saved, and under which entry id".
type WishlistMembership struct {
	InWishlist bool   `json:"in_wishlist"`
	EntryID    string `json:"entry_id,omitempty"`
}

type WishlistRow struct {
	Entry   WishlistEntry `json:"entry"`
	Listing ListingCard   `json:"listing"`
}

type WishlistCollection struct {
	Items []WishlistRow `json:"items"`
}

func MapWishlistEntry(e *domainwishlist.Entry) WishlistEntry {
	if e == nil {
		return WishlistEntry{}
	}
	return WishlistEntry{
		ID:        string(e.ID),
		ListingID: string(e.ListingID),
		CreatedAt: e.CreatedAt,
	}
}
