package booking

import (
	"context"
	"errors"
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
)

var (
	ErrGuestRequired = errors.New("booking: guest id required")
	ErrInvalidState  = errors.New("booking: invalid state transition")
	ErrInvalidTotal  = errors.New("booking: total must be non-negative")
	ErrNotFound      = errors.New("booking: not found")
)

type BookingID string

// State is the payment/lifecycle status of a booking.
type State string

const (
	StatePending   State = "pending"
	StateAccepted  State = "accepted"
	StateRefused   State = "refused"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// BlockingStates are the states whose date ranges occupy the listing calendar.
// Cancelled and refused bookings never block.
var BlockingStates = []State{StatePending, StateAccepted, StateCompleted}

type Booking struct {
	ID         BookingID
	ListingID  listing.ListingID
	GuestID    string
	Range      daterange.DateRange
	TotalCents int64
	State      State
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listing.ListingID) ([]*Booking, error)
	// Overlapping returns blocking bookings whose [start, end) range overlaps dr.
	Overlapping(ctx context.Context, listingID listing.ListingID, dr daterange.DateRange) ([]*Booking, error)
	// HasCompleted reports whether the guest finished a stay at the listing.
	HasCompleted(ctx context.Context, listingID listing.ListingID, guestID string) (bool, error)
}

type CreateParams struct {
	ID         BookingID
	ListingID  listing.ListingID
	GuestID    string
	Range      daterange.DateRange
	TotalCents int64
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.TotalCents < 0 {
		return nil, ErrInvalidTotal
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		ListingID:  params.ListingID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		TotalCents: params.TotalCents,
		State:      StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		Range:      b.Range,
		TotalCents: b.TotalCents,
		At:         now,
	})
	return b, nil
}

// Blocks reports whether this booking occupies its date range.
func (b *Booking) Blocks() bool {
	switch b.State {
	case StateCancelled, StateRefused:
		return false
	default:
		return true
	}
}

func (b *Booking) Accept(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateAccepted
	b.UpdatedAt = now.UTC()
	b.Record(BookingAccepted{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Refuse(reason string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateRefused
	b.UpdatedAt = now.UTC()
	b.Record(BookingRefused{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.State != StateAccepted {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, At: b.UpdatedAt})
	return nil
}

// Cancel is available to the guest while the stay has not completed.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateAccepted:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Reason: reason, At: b.UpdatedAt})
	return nil
}
