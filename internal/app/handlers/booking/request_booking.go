package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

var (
	// ErrDatesConflict means a blocking booking already covers part of the
	// requested range. The write is aborted.
	ErrDatesConflict = errors.New("booking: requested dates are no longer available")

	// ErrListingNotBookable covers listings that are not approved for the
	// public catalog.
	ErrListingNotBookable = errors.New("booking: listing is not open for booking")

	// ErrOwnListing rejects hosts booking their own property.
	ErrOwnListing = errors.New("booking: hosts cannot book their own listing")
)

// RequestBookingCommand submits a stay request for a listing.
type RequestBookingCommand struct {
	BookingID string
	ListingID string
	GuestID   string
	StartDate string
	EndDate   string
	Requested time.Time

	Idempotency string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.Idempotency }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (dto.Booking, error) {
	dr, err := daterange.Parse(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return dto.Booking{}, err
	}
	now := cmd.Requested
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return dto.Booking{}, err
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if listing.Status != domainlisting.StatusApproved {
		return dto.Booking{}, ErrListingNotBookable
	}
	if listing.OwnedBy(domainlisting.HostID(cmd.GuestID)) {
		return dto.Booking{}, ErrOwnListing
	}

	// The range is rechecked inside the same transaction that persists the
	// booking, so two racing requests cannot both pass.
	conflicts, err := unit.Bookings().Overlapping(ctx, listing.ID, dr)
	if err != nil {
		return dto.Booking{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if len(conflicts) > 0 {
		return dto.Booking{}, ErrDatesConflict
	}

	total := int64(dr.Nights()) * listing.NightlyRateCents
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.BookingID),
		ListingID:  listing.ID,
		GuestID:    cmd.GuestID,
		Range:      dr,
		TotalCents: total,
		CreatedAt:  now,
	})
	if err != nil {
		return dto.Booking{}, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return dto.Booking{}, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
		return dto.Booking{}, err
	}
	b.ClearEvents()

	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.Booking{}, err
		}
	}
	return dto.MapBooking(b), nil
}

var (
	_ commands.Handler[RequestBookingCommand, dto.Booking] = (*RequestBookingHandler)(nil)
	_ middleware.IdempotentCommand                         = RequestBookingCommand{}
)
