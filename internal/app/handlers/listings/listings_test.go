package listings_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingsapp "homestay/internal/app/handlers/listings"
	appoutbox "homestay/internal/app/outbox"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/infra/storage/memory"
	"homestay/internal/infra/storage/s3"
)

var clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newManage(factory memory.Factory, box *memory.Outbox) *listingsapp.ManageHandler {
	return &listingsapp.ManageHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Uploader:   s3.NoopUploader{},
	}
}

func newModerate(factory memory.Factory, box *memory.Outbox) *listingsapp.ModerateHandler {
	return &listingsapp.ModerateHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}
}

func createListing(t *testing.T, h *listingsapp.ManageHandler, id, host string) {
	t.Helper()
	_, err := h.HandleCreate(context.Background(), listingsapp.CreateListingCommand{
		ListingID:        id,
		HostID:           host,
		Title:            "Canal house",
		Description:      "Quiet street near the centre",
		Category:         "house",
		City:             "Amsterdam",
		Country:          "NL",
		NightlyRateCents: 21000,
		Now:              clock,
	})
	require.NoError(t, err)
}

func TestCreateStartsInModeration(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	createListing(t, manage, "lst-1", "host-1")

	l, err := factory.ListingRepo.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusPending, l.Status)

	// pending listings stay out of the public catalog
	catalog := &listingsapp.CatalogHandler{UoWFactory: factory}
	res, err := catalog.HandleSearch(context.Background(), listingsapp.SearchCatalogQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestApprovePublishesToCatalog(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	moderate := newModerate(factory, box)
	createListing(t, manage, "lst-1", "host-1")

	queue, err := moderate.HandleQueue(context.Background(), listingsapp.ModerationQueueQuery{})
	require.NoError(t, err)
	require.Len(t, queue.Items, 1)

	res, err := moderate.HandleApprove(context.Background(), listingsapp.ApproveListingCommand{ListingID: "lst-1", Now: clock})
	require.NoError(t, err)
	assert.Equal(t, string(domainlisting.StatusApproved), res.Status)

	catalog := &listingsapp.CatalogHandler{UoWFactory: factory}
	found, err := catalog.HandleSearch(context.Background(), listingsapp.SearchCatalogQuery{City: "Amsterdam"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "lst-1", found.Items[0].ID)
}

func TestRejectRemovesFromCatalog(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	moderate := newModerate(factory, box)
	createListing(t, manage, "lst-1", "host-1")

	_, err := moderate.HandleApprove(context.Background(), listingsapp.ApproveListingCommand{ListingID: "lst-1", Now: clock})
	require.NoError(t, err)
	_, err = moderate.HandleReject(context.Background(), listingsapp.RejectListingCommand{
		ListingID: "lst-1", Reason: "photos missing", Now: clock.Add(time.Hour),
	})
	require.NoError(t, err)

	catalog := &listingsapp.CatalogHandler{UoWFactory: factory}
	res, err := catalog.HandleSearch(context.Background(), listingsapp.SearchCatalogQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestUpdateGuardsOwnershipAndResetsModeration(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	moderate := newModerate(factory, box)
	createListing(t, manage, "lst-1", "host-1")
	_, err := moderate.HandleApprove(context.Background(), listingsapp.ApproveListingCommand{ListingID: "lst-1", Now: clock})
	require.NoError(t, err)

	update := listingsapp.UpdateListingCommand{
		ListingID:        "lst-1",
		HostID:           "host-2",
		Title:            "Canal house, renovated",
		Category:         "house",
		City:             "Amsterdam",
		Country:          "NL",
		NightlyRateCents: 24000,
		Now:              clock.Add(time.Hour),
	}
	_, err = manage.HandleUpdate(context.Background(), update)
	assert.ErrorIs(t, err, listingsapp.ErrNotOwner)

	update.HostID = "host-1"
	res, err := manage.HandleUpdate(context.Background(), update)
	require.NoError(t, err)
	assert.Equal(t, "Canal house, renovated", res.Title)
	assert.Equal(t, string(domainlisting.StatusPending), res.Status)
}

func TestGetHidesPendingFromStrangers(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	createListing(t, manage, "lst-1", "host-1")

	catalog := &listingsapp.CatalogHandler{UoWFactory: factory}
	ctx := context.Background()

	_, err := catalog.HandleGet(ctx, listingsapp.GetListingQuery{ListingID: "lst-1", ViewerID: "guest-1"})
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)

	res, err := catalog.HandleGet(ctx, listingsapp.GetListingQuery{ListingID: "lst-1", ViewerID: "host-1"})
	require.NoError(t, err)
	assert.Equal(t, "lst-1", res.ID)

	res, err = catalog.HandleGet(ctx, listingsapp.GetListingQuery{ListingID: "lst-1", Admin: true})
	require.NoError(t, err)
	assert.Equal(t, "lst-1", res.ID)
}

func TestDeleteAllowsOwnerAndAdmin(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	createListing(t, manage, "lst-1", "host-1")
	createListing(t, manage, "lst-2", "host-1")

	ctx := context.Background()
	_, err := manage.HandleDelete(ctx, listingsapp.DeleteListingCommand{ListingID: "lst-1", HostID: "host-2"})
	assert.ErrorIs(t, err, listingsapp.ErrNotOwner)

	_, err = manage.HandleDelete(ctx, listingsapp.DeleteListingCommand{ListingID: "lst-1", HostID: "host-1"})
	require.NoError(t, err)

	_, err = manage.HandleDelete(ctx, listingsapp.DeleteListingCommand{ListingID: "lst-2", HostID: "admin-1", Admin: true})
	require.NoError(t, err)

	_, err = factory.ListingRepo.ByID(ctx, "lst-1")
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)
}

func TestHostListingsReturnAllStates(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	moderate := newModerate(factory, box)
	createListing(t, manage, "lst-1", "host-1")
	createListing(t, manage, "lst-2", "host-1")
	createListing(t, manage, "lst-3", "host-2")
	_, err := moderate.HandleApprove(context.Background(), listingsapp.ApproveListingCommand{ListingID: "lst-1", Now: clock})
	require.NoError(t, err)

	catalog := &listingsapp.CatalogHandler{UoWFactory: factory}
	res, err := catalog.HandleHostListings(context.Background(), listingsapp.HostListingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestAddPhotoFailsWithoutObjectStorage(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	manage := newManage(factory, box)
	createListing(t, manage, "lst-1", "host-1")

	_, err := manage.HandleAddPhoto(context.Background(), listingsapp.AddListingPhotoCommand{
		ListingID:   "lst-1",
		HostID:      "host-1",
		FileName:    "front.jpg",
		ContentType: "image/jpeg",
		Content:     strings.NewReader("not a real jpeg"),
		Now:         clock,
	})
	assert.Error(t, err)
}
