package booking

import (
	"context"
	"errors"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
)

const (
	acceptBookingKey   = "booking.accept"
	refuseBookingKey   = "booking.refuse"
	completeBookingKey = "booking.complete"
	cancelBookingKey   = "booking.cancel"
)

var (
	// ErrNotListingHost means the acting host does not own the booked listing.
	ErrNotListingHost = errors.New("booking: listing belongs to another host")

	// ErrNotBookingGuest means the acting guest did not create the booking.
	ErrNotBookingGuest = errors.New("booking: booking belongs to another guest")

	// ErrStayNotFinished rejects completion before checkout day.
	ErrStayNotFinished = errors.New("booking: stay has not finished yet")
)

// AcceptBookingCommand confirms a pending request on behalf of the host.
type AcceptBookingCommand struct {
	BookingID string
	HostID    string
	Now       time.Time
}

func (c AcceptBookingCommand) Key() string { return acceptBookingKey }

// RefuseBookingCommand declines a pending request, releasing its dates.
type RefuseBookingCommand struct {
	BookingID string
	HostID    string
	Reason    string
	Now       time.Time
}

func (c RefuseBookingCommand) Key() string { return refuseBookingKey }

// CompleteBookingCommand closes an accepted stay after checkout, which makes
// the guest eligible to review the listing.
type CompleteBookingCommand struct {
	BookingID string
	HostID    string
	Now       time.Time
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

// CancelBookingCommand withdraws the guest's own request or confirmed stay.
type CancelBookingCommand struct {
	BookingID string
	GuestID   string
	Reason    string
	Now       time.Time
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// DecideBookingHandler covers host and guest transitions on an existing
// booking. One handler instance serves all four commands.
type DecideBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *DecideBookingHandler) HandleAccept(ctx context.Context, cmd AcceptBookingCommand) (dto.Booking, error) {
	return h.hostTransition(ctx, cmd.BookingID, cmd.HostID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Accept(now)
	}, cmd.Now)
}

func (h *DecideBookingHandler) HandleRefuse(ctx context.Context, cmd RefuseBookingCommand) (dto.Booking, error) {
	return h.hostTransition(ctx, cmd.BookingID, cmd.HostID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Refuse(cmd.Reason, now)
	}, cmd.Now)
}

func (h *DecideBookingHandler) HandleComplete(ctx context.Context, cmd CompleteBookingCommand) (dto.Booking, error) {
	return h.hostTransition(ctx, cmd.BookingID, cmd.HostID, func(b *domainbooking.Booking, now time.Time) error {
		if b.Range.CheckOut.After(now) {
			return ErrStayNotFinished
		}
		return b.Complete(now)
	}, cmd.Now)
}

func (h *DecideBookingHandler) HandleCancel(ctx context.Context, cmd CancelBookingCommand) (dto.Booking, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if b.GuestID != cmd.GuestID {
		return dto.Booking{}, ErrNotBookingGuest
	}
	if err := b.Cancel(cmd.Reason, now); err != nil {
		return dto.Booking{}, err
	}
	return h.persist(ctx, unit, b, owned)
}

func (h *DecideBookingHandler) hostTransition(
	ctx context.Context,
	bookingID, hostID string,
	transition func(*domainbooking.Booking, time.Time) error,
	now time.Time,
) (dto.Booking, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	listing, err := unit.Listings().ByID(ctx, b.ListingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if !listing.OwnedBy(domainlisting.HostID(hostID)) {
		return dto.Booking{}, ErrNotListingHost
	}
	if err := transition(b, now); err != nil {
		return dto.Booking{}, err
	}
	return h.persist(ctx, unit, b, owned)
}

func (h *DecideBookingHandler) persist(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, owned bool) (dto.Booking, error) {
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
	_ commands.Handler[AcceptBookingCommand, dto.Booking]   = commands.HandlerFunc[AcceptBookingCommand, dto.Booking]((&DecideBookingHandler{}).HandleAccept)
	_ commands.Handler[RefuseBookingCommand, dto.Booking]   = commands.HandlerFunc[RefuseBookingCommand, dto.Booking]((&DecideBookingHandler{}).HandleRefuse)
	_ commands.Handler[CompleteBookingCommand, dto.Booking] = commands.HandlerFunc[CompleteBookingCommand, dto.Booking]((&DecideBookingHandler{}).HandleComplete)
	_ commands.Handler[CancelBookingCommand, dto.Booking]   = commands.HandlerFunc[CancelBookingCommand, dto.Booking]((&DecideBookingHandler{}).HandleCancel)
)
