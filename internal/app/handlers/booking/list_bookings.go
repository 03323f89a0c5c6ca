package booking

import (
	"context"
	"errors"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
)

const (
	guestBookingsKey = "booking.list_guest"
	hostBookingsKey  = "booking.list_host"
)

// ListGuestBookingsQuery returns the guest's trips, newest first, each with
// a flag telling whether a review can still be left.
type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return guestBookingsKey }

// ListHostBookingsQuery returns requests across all of the host's listings.
type ListHostBookingsQuery struct {
	HostID string
}

func (q ListHostBookingsQuery) Key() string { return hostBookingsKey }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) HandleGuest(ctx context.Context, query ListGuestBookingsQuery) (dto.GuestBookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.GuestBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(ctx, query.GuestID)
	if err != nil {
		return dto.GuestBookingCollection{}, err
	}

	items := make([]dto.GuestBookingSummary, 0, len(bookings))
	for _, b := range bookings {
		l, err := unit.Listings().ByID(ctx, b.ListingID)
		if err != nil {
			return dto.GuestBookingCollection{}, err
		}
		canReview := false
		if b.State == domainbooking.StateCompleted {
			_, err := unit.Reviews().ByListingAndAuthor(ctx, b.ListingID, query.GuestID)
			switch {
			case errors.Is(err, domainreview.ErrNotFound):
				canReview = true
			case err != nil:
				return dto.GuestBookingCollection{}, err
			}
		}
		items = append(items, dto.MapGuestBookingSummary(b, l, canReview))
	}
	return dto.GuestBookingCollection{Items: items}, nil
}

func (h *ListBookingsHandler) HandleHost(ctx context.Context, query ListHostBookingsQuery) (dto.HostBookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	result, err := unit.Listings().Search(ctx, domainlisting.SearchParams{
		Host: domainlisting.HostID(query.HostID),
	})
	if err != nil {
		return dto.HostBookingCollection{}, err
	}

	items := make([]dto.HostBookingSummary, 0)
	for _, l := range result.Items {
		bookings, err := unit.Bookings().ListByListing(ctx, l.ID)
		if err != nil {
			return dto.HostBookingCollection{}, err
		}
		for _, b := range bookings {
			items = append(items, dto.MapHostBookingSummary(b, l))
		}
	}
	return dto.HostBookingCollection{Items: items}, nil
}

var (
	_ queries.Handler[ListGuestBookingsQuery, dto.GuestBookingCollection] = queries.HandlerFunc[ListGuestBookingsQuery, dto.GuestBookingCollection]((&ListBookingsHandler{}).HandleGuest)
	_ queries.Handler[ListHostBookingsQuery, dto.HostBookingCollection]   = queries.HandlerFunc[ListHostBookingsQuery, dto.HostBookingCollection]((&ListBookingsHandler{}).HandleHost)
)
