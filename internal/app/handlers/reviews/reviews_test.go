package reviews_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewsapp "homestay/internal/app/handlers/reviews"
	appoutbox "homestay/internal/app/outbox"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/infra/storage/memory"
)

var clock = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func seedApprovedListing(t *testing.T, factory memory.Factory, id, host string) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:               domainlisting.ListingID(id),
		Host:             domainlisting.HostID(host),
		Title:            "Garden cabin",
		Category:         domainlisting.CategoryCabin,
		Location:         domainlisting.Location{City: "Bergen", Country: "NO"},
		NightlyRateCents: 12000,
		Now:              clock,
	})
	require.NoError(t, err)
	require.NoError(t, l.Approve(clock))
	l.ClearEvents()
	require.NoError(t, factory.ListingRepo.Save(context.Background(), l))
}

func seedCompletedStay(t *testing.T, factory memory.Factory, bookingID, listingID, guest string) {
	t.Helper()
	dr, err := daterange.Parse("2024-06-10", "2024-06-15")
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(bookingID),
		ListingID:  domainlisting.ListingID(listingID),
		GuestID:    guest,
		Range:      dr,
		TotalCents: 5 * 12000,
		CreatedAt:  clock.AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	require.NoError(t, b.Accept(clock.AddDate(0, -1, 0)))
	require.NoError(t, b.Complete(clock))
	b.ClearEvents()
	require.NoError(t, factory.BookingRepo.Save(context.Background(), b))
}

func submitHandler(factory memory.Factory, box *memory.Outbox) *reviewsapp.SubmitReviewHandler {
	return &reviewsapp.SubmitReviewHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}
}

func TestSubmitRequiresCompletedStay(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")

	_, err := submitHandler(factory, box).Handle(context.Background(), reviewsapp.SubmitReviewCommand{
		ReviewID:  "rev-1",
		ListingID: "lst-1",
		AuthorID:  "guest-1",
		Rating:    5,
		Now:       clock,
	})
	assert.ErrorIs(t, err, reviewsapp.ErrNotEligible)
}

func TestSubmitRecomputesListingRating(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")
	seedCompletedStay(t, factory, "bkg-1", "lst-1", "guest-1")
	seedCompletedStay(t, factory, "bkg-2", "lst-1", "guest-2")
	seedCompletedStay(t, factory, "bkg-3", "lst-1", "guest-3")

	handler := submitHandler(factory, box)
	ctx := context.Background()

	for i, c := range []struct {
		id     string
		author string
		rating int
	}{
		{"rev-1", "guest-1", 4},
		{"rev-2", "guest-2", 5},
		{"rev-3", "guest-3", 3},
	} {
		res, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
			ReviewID:  c.id,
			ListingID: "lst-1",
			AuthorID:  c.author,
			Rating:    c.rating,
			Comment:   "great stay",
			Now:       clock.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, c.rating, res.Rating)
	}

	l, err := factory.ListingRepo.ByID(ctx, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, 3, l.Rating.Count)
	assert.InDelta(t, 4.0, l.Rating.Average, 0.001)
}

func TestSubmitRejectsDuplicateAuthor(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")
	seedCompletedStay(t, factory, "bkg-1", "lst-1", "guest-1")

	handler := submitHandler(factory, box)
	ctx := context.Background()

	_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1", ListingID: "lst-1", AuthorID: "guest-1", Rating: 4, Now: clock,
	})
	require.NoError(t, err)

	_, err = handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-2", ListingID: "lst-1", AuthorID: "guest-1", Rating: 5, Now: clock,
	})
	assert.ErrorIs(t, err, reviewsapp.ErrAlreadyReviewed)
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")
	seedCompletedStay(t, factory, "bkg-1", "lst-1", "guest-1")

	_, err := submitHandler(factory, box).Handle(context.Background(), reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1", ListingID: "lst-1", AuthorID: "guest-1", Rating: 6, Now: clock,
	})
	assert.ErrorIs(t, err, domainreview.ErrInvalidRating)
}

func TestDeleteRecomputesAndGuardsAuthor(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")
	seedCompletedStay(t, factory, "bkg-1", "lst-1", "guest-1")
	seedCompletedStay(t, factory, "bkg-2", "lst-1", "guest-2")

	handler := submitHandler(factory, box)
	ctx := context.Background()
	_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1", ListingID: "lst-1", AuthorID: "guest-1", Rating: 4, Now: clock,
	})
	require.NoError(t, err)
	_, err = handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-2", ListingID: "lst-1", AuthorID: "guest-2", Rating: 5, Now: clock,
	})
	require.NoError(t, err)

	deleter := &reviewsapp.DeleteReviewHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err = deleter.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: "rev-1", ActorID: "guest-2", Now: clock})
	assert.ErrorIs(t, err, reviewsapp.ErrNotAuthor)

	_, err = deleter.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: "rev-1", ActorID: "guest-1", Now: clock})
	require.NoError(t, err)

	l, err := factory.ListingRepo.ByID(ctx, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Rating.Count)
	assert.InDelta(t, 5.0, l.Rating.Average, 0.001)
}

func TestDeleteByAdminBypassesAuthorCheck(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")
	seedCompletedStay(t, factory, "bkg-1", "lst-1", "guest-1")

	handler := submitHandler(factory, box)
	ctx := context.Background()
	_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1", ListingID: "lst-1", AuthorID: "guest-1", Rating: 2, Now: clock,
	})
	require.NoError(t, err)

	deleter := &reviewsapp.DeleteReviewHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}
	_, err = deleter.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: "rev-1", ActorID: "admin-1", Admin: true, Now: clock})
	require.NoError(t, err)

	_, err = factory.ReviewRepo.ByID(ctx, "rev-1")
	assert.ErrorIs(t, err, domainreview.ErrNotFound)
}

func TestListReviewsPagesAndReportsAverage(t *testing.T) {
	factory, box := memory.NewFactory(), memory.NewOutbox()
	seedApprovedListing(t, factory, "lst-1", "host-1")
	seedCompletedStay(t, factory, "bkg-1", "lst-1", "guest-1")
	seedCompletedStay(t, factory, "bkg-2", "lst-1", "guest-2")

	handler := submitHandler(factory, box)
	ctx := context.Background()
	for _, c := range []struct {
		id, author string
		rating     int
	}{{"rev-1", "guest-1", 4}, {"rev-2", "guest-2", 5}} {
		_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
			ReviewID: c.id, ListingID: "lst-1", AuthorID: c.author, Rating: c.rating, Now: clock,
		})
		require.NoError(t, err)
	}

	lister := &reviewsapp.ListReviewsHandler{UoWFactory: factory}
	res, err := lister.Handle(ctx, reviewsapp.ListReviewsQuery{ListingID: "lst-1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Total)
	assert.InDelta(t, 4.5, res.AverageRating, 0.001)
}
