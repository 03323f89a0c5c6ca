package wishlists_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wishlistsapp "homestay/internal/app/handlers/wishlists"
	domainlisting "homestay/internal/domain/listing"
	domainwishlist "homestay/internal/domain/wishlist"
	"homestay/internal/infra/storage/memory"
)

var clock = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func seedListing(t *testing.T, factory memory.Factory, id string) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:               domainlisting.ListingID(id),
		Host:             "host-1",
		Title:            "City loft",
		Category:         domainlisting.CategoryApartment,
		Location:         domainlisting.Location{City: "Berlin", Country: "DE"},
		NightlyRateCents: 8000,
		Now:              clock,
	})
	require.NoError(t, err)
	require.NoError(t, l.Approve(clock))
	l.ClearEvents()
	require.NoError(t, factory.ListingRepo.Save(context.Background(), l))
}

func TestAddIsIdempotentPerListingAndOwner(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory, "lst-1")

	handler := &wishlistsapp.ToggleHandler{UoWFactory: factory}
	ctx := context.Background()

	first, err := handler.HandleAdd(ctx, wishlistsapp.AddEntryCommand{
		EntryID: "wsl-1", ListingID: "lst-1", OwnerID: "guest-1", Now: clock,
	})
	require.NoError(t, err)
	assert.Equal(t, "wsl-1", first.ID)

	// a second add returns the original entry, the new id is discarded
	second, err := handler.HandleAdd(ctx, wishlistsapp.AddEntryCommand{
		EntryID: "wsl-2", ListingID: "lst-1", OwnerID: "guest-1", Now: clock.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "wsl-1", second.ID)

	queryHandler := &wishlistsapp.QueryHandler{UoWFactory: factory}
	list, err := queryHandler.HandleList(ctx, wishlistsapp.ListEntriesQuery{OwnerID: "guest-1"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestAddRequiresExistingListing(t *testing.T) {
	factory := memory.NewFactory()
	handler := &wishlistsapp.ToggleHandler{UoWFactory: factory}

	_, err := handler.HandleAdd(context.Background(), wishlistsapp.AddEntryCommand{
		EntryID: "wsl-1", ListingID: "lst-missing", OwnerID: "guest-1", Now: clock,
	})
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)
}

func TestRemoveGuardsOwnership(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory, "lst-1")

	handler := &wishlistsapp.ToggleHandler{UoWFactory: factory}
	ctx := context.Background()

	_, err := handler.HandleAdd(ctx, wishlistsapp.AddEntryCommand{
		EntryID: "wsl-1", ListingID: "lst-1", OwnerID: "guest-1", Now: clock,
	})
	require.NoError(t, err)

	_, err = handler.HandleRemove(ctx, wishlistsapp.RemoveEntryCommand{EntryID: "wsl-1", OwnerID: "guest-2"})
	assert.ErrorIs(t, err, domainwishlist.ErrNotOwner)

	_, err = handler.HandleRemove(ctx, wishlistsapp.RemoveEntryCommand{EntryID: "wsl-1", OwnerID: "guest-1"})
	require.NoError(t, err)

	_, err = handler.HandleRemove(ctx, wishlistsapp.RemoveEntryCommand{EntryID: "wsl-1", OwnerID: "guest-1"})
	assert.ErrorIs(t, err, domainwishlist.ErrNotFound)
}

func TestCheckReportsMembership(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory, "lst-1")

	toggle := &wishlistsapp.ToggleHandler{UoWFactory: factory}
	queryHandler := &wishlistsapp.QueryHandler{UoWFactory: factory}
	ctx := context.Background()

	res, err := queryHandler.HandleCheck(ctx, wishlistsapp.CheckEntryQuery{ListingID: "lst-1", OwnerID: "guest-1"})
	require.NoError(t, err)
	assert.False(t, res.InWishlist)

	_, err = toggle.HandleAdd(ctx, wishlistsapp.AddEntryCommand{
		EntryID: "wsl-1", ListingID: "lst-1", OwnerID: "guest-1", Now: clock,
	})
	require.NoError(t, err)

	res, err = queryHandler.HandleCheck(ctx, wishlistsapp.CheckEntryQuery{ListingID: "lst-1", OwnerID: "guest-1"})
	require.NoError(t, err)
	assert.True(t, res.InWishlist)
	assert.Equal(t, "wsl-1", res.EntryID)
}

func TestListSkipsDeletedListings(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory, "lst-1")
	seedListing(t, factory, "lst-2")

	toggle := &wishlistsapp.ToggleHandler{UoWFactory: factory}
	ctx := context.Background()
	for i, listingID := range []string{"lst-1", "lst-2"} {
		_, err := toggle.HandleAdd(ctx, wishlistsapp.AddEntryCommand{
			EntryID:   "wsl-" + listingID,
			ListingID: listingID,
			OwnerID:   "guest-1",
			Now:       clock.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	require.NoError(t, factory.ListingRepo.Delete(ctx, "lst-2"))

	queryHandler := &wishlistsapp.QueryHandler{UoWFactory: factory}
	list, err := queryHandler.HandleList(ctx, wishlistsapp.ListEntriesQuery{OwnerID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "lst-1", list.Items[0].Listing.ID)
}
