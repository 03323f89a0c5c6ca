package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "homestay/internal/app/handlers/booking"
	appoutbox "homestay/internal/app/outbox"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/infra/storage/memory"
)

var clock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (memory.Factory, *memory.Outbox) {
	t.Helper()
	return memory.NewFactory(), memory.NewOutbox()
}

func seedListing(t *testing.T, factory memory.Factory, id, host string, approved bool) *domainlisting.Listing {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:               domainlisting.ListingID(id),
		Host:             domainlisting.HostID(host),
		Title:            "Sea view studio",
		Category:         domainlisting.CategoryStudio,
		Location:         domainlisting.Location{City: "Lisbon", Country: "PT"},
		NightlyRateCents: 9500,
		Now:              clock,
	})
	require.NoError(t, err)
	if approved {
		require.NoError(t, l.Approve(clock))
	}
	l.ClearEvents()
	require.NoError(t, factory.ListingRepo.Save(context.Background(), l))
	return l
}

func seedBooking(t *testing.T, factory memory.Factory, id, listingID, guest, start, end string, state domainbooking.State) {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		ListingID:  domainlisting.ListingID(listingID),
		GuestID:    guest,
		Range:      dr,
		TotalCents: int64(dr.Nights()) * 9500,
		CreatedAt:  clock,
	})
	require.NoError(t, err)
	switch state {
	case domainbooking.StateAccepted:
		require.NoError(t, b.Accept(clock))
	case domainbooking.StateCompleted:
		require.NoError(t, b.Accept(clock))
		require.NoError(t, b.Complete(clock))
	case domainbooking.StateCancelled:
		require.NoError(t, b.Cancel("plans changed", clock))
	case domainbooking.StateRefused:
		require.NoError(t, b.Refuse("dates blocked", clock))
	}
	b.ClearEvents()
	require.NoError(t, factory.BookingRepo.Save(context.Background(), b))
}

func TestCheckAvailabilityReportsConflicts(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StateAccepted)

	handler := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-12",
		EndDate:   "2024-06-20",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.IsAvailable)
	require.Len(t, res.UnavailableDates, 1)
	assert.Equal(t, "2024-06-10", res.UnavailableDates[0].StartDate)
	assert.Equal(t, "2024-06-15", res.UnavailableDates[0].EndDate)
}

func TestCheckAvailabilityReportsBlockInsideRequestedWindow(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-12", "2024-06-14", domainbooking.StateAccepted)

	handler := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}

	// the existing stay sits strictly inside the requested window
	res, err := handler.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.IsAvailable)
	require.Len(t, res.UnavailableDates, 1)
	assert.Equal(t, "2024-06-12", res.UnavailableDates[0].StartDate)
	assert.Equal(t, "2024-06-14", res.UnavailableDates[0].EndDate)
}

func TestCheckAvailabilityIgnoresNonBlockingStates(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StateCancelled)
	seedBooking(t, factory, "bkg-2", "lst-1", "guest-2", "2024-06-10", "2024-06-15", domainbooking.StateRefused)

	handler := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.True(t, res.IsAvailable)
	assert.Empty(t, res.UnavailableDates)
}

func TestCheckAvailabilityBackToBackStaysDoNotConflict(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StateAccepted)

	handler := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}

	// checkout day equals the next check-in, half-open ranges do not overlap
	res, err := handler.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-15",
		EndDate:   "2024-06-18",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.True(t, res.IsAvailable)
}

func TestCheckAvailabilityRejectsInvalidRange(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)

	handler := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}

	_, err := handler.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-20",
		EndDate:   "2024-06-10",
		Now:       clock,
	})
	assert.Error(t, err)
}

type failingBookings struct {
	domainbooking.Repository
}

func (failingBookings) Overlapping(context.Context, domainlisting.ListingID, daterange.DateRange) ([]*domainbooking.Booking, error) {
	return nil, errors.New("store down")
}

func TestCheckAvailabilityFailsClosed(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	factory.BookingRepo = failingBookings{Repository: factory.BookingRepo}

	handler := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}

	_, err := handler.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Now:       clock,
	})
	assert.ErrorIs(t, err, bookingapp.ErrVerificationFailed)
}

func TestRequestBookingPersistsAndComputesTotal(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)

	handler := &bookingapp.RequestBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	res, err := handler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		BookingID: "bkg-1",
		ListingID: "lst-1",
		GuestID:   "guest-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Requested: clock,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, 5, res.Nights)
	assert.Equal(t, int64(5*9500), res.TotalCents)

	stored, err := factory.BookingRepo.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatePending, stored.State)

	records := box.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "booking.requested", records[0].Name)
}

func TestRequestBookingConflictLeavesNoBooking(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StatePending)

	handler := &bookingapp.RequestBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		BookingID: "bkg-2",
		ListingID: "lst-1",
		GuestID:   "guest-2",
		StartDate: "2024-06-14",
		EndDate:   "2024-06-16",
		Requested: clock,
	})
	assert.ErrorIs(t, err, bookingapp.ErrDatesConflict)

	_, err = factory.BookingRepo.ByID(context.Background(), "bkg-2")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	assert.Empty(t, box.Records())
}

func TestRequestBookingRejectsOwnListing(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)

	handler := &bookingapp.RequestBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		BookingID: "bkg-1",
		ListingID: "lst-1",
		GuestID:   "host-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Requested: clock,
	})
	assert.ErrorIs(t, err, bookingapp.ErrOwnListing)
}

func TestRequestBookingRejectsUnapprovedListing(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", false)

	handler := &bookingapp.RequestBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		BookingID: "bkg-1",
		ListingID: "lst-1",
		GuestID:   "guest-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Requested: clock,
	})
	assert.ErrorIs(t, err, bookingapp.ErrListingNotBookable)
}

func TestAcceptRequiresListingHost(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StatePending)

	handler := &bookingapp.DecideBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err := handler.HandleAccept(context.Background(), bookingapp.AcceptBookingCommand{
		BookingID: "bkg-1",
		HostID:    "host-2",
		Now:       clock,
	})
	assert.ErrorIs(t, err, bookingapp.ErrNotListingHost)

	res, err := handler.HandleAccept(context.Background(), bookingapp.AcceptBookingCommand{
		BookingID: "bkg-1",
		HostID:    "host-1",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.Equal(t, "accepted", res.Status)
}

func TestCompleteBeforeCheckoutRejected(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StateAccepted)

	handler := &bookingapp.DecideBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err := handler.HandleComplete(context.Background(), bookingapp.CompleteBookingCommand{
		BookingID: "bkg-1",
		HostID:    "host-1",
		Now:       time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, bookingapp.ErrStayNotFinished)

	res, err := handler.HandleComplete(context.Background(), bookingapp.CompleteBookingCommand{
		BookingID: "bkg-1",
		HostID:    "host-1",
		Now:       time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
}

func TestCancelOnlyByGuest(t *testing.T) {
	factory, box := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StatePending)

	handler := &bookingapp.DecideBookingHandler{UoWFactory: factory, Outbox: box, Encoder: appoutbox.JSONEventEncoder{}}

	_, err := handler.HandleCancel(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "bkg-1",
		GuestID:   "guest-2",
		Now:       clock,
	})
	assert.ErrorIs(t, err, bookingapp.ErrNotBookingGuest)

	res, err := handler.HandleCancel(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "bkg-1",
		GuestID:   "guest-1",
		Reason:    "plans changed",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)

	// the released dates are bookable again
	availability := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}
	check, err := availability.Handle(context.Background(), bookingapp.CheckAvailabilityQuery{
		ListingID: "lst-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-15",
		Now:       clock,
	})
	require.NoError(t, err)
	assert.True(t, check.IsAvailable)
}

func TestListGuestBookingsFlagsReviewEligibility(t *testing.T) {
	factory, _ := newFixture(t)
	seedListing(t, factory, "lst-1", "host-1", true)
	seedBooking(t, factory, "bkg-1", "lst-1", "guest-1", "2024-06-10", "2024-06-15", domainbooking.StateCompleted)
	seedBooking(t, factory, "bkg-2", "lst-1", "guest-1", "2024-07-01", "2024-07-03", domainbooking.StatePending)

	handler := &bookingapp.ListBookingsHandler{UoWFactory: factory}

	res, err := handler.HandleGuest(context.Background(), bookingapp.ListGuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	for _, item := range res.Items {
		if item.Status == "completed" {
			assert.True(t, item.CanReview)
		} else {
			assert.False(t, item.CanReview)
		}
	}
}
