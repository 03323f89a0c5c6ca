package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/listing"
)

var (
	ErrOwnerRequired = errors.New("wishlist: owner id required")
	ErrNotFound      = errors.New("wishlist: entry not found")
	ErrNotOwner      = errors.New("wishlist: entry belongs to another user")
)

type EntryID string

// Entry marks a listing as saved by a user. Removal is keyed by the entry id,
// not the listing id.
type Entry struct {
	ID        EntryID
	ListingID listing.ListingID
	OwnerID   string
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id EntryID) (*Entry, error)
	// ByListingAndOwner enforces at most one entry per (listing, owner) pair.
	ByListingAndOwner(ctx context.Context, listingID listing.ListingID, ownerID string) (*Entry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Entry, error)
	Save(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id EntryID) error
}

type CreateParams struct {
	ID        EntryID
	ListingID listing.ListingID
	OwnerID   string
	CreatedAt time.Time
}

func New(params CreateParams) (*Entry, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("wishlist: id is required")
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, errors.New("wishlist: listing id is required")
	}
	if strings.TrimSpace(params.OwnerID) == "" {
		return nil, ErrOwnerRequired
	}
	return &Entry{
		ID:        params.ID,
		ListingID: params.ListingID,
		OwnerID:   params.OwnerID,
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}
