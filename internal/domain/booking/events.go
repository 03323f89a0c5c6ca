package booking

import (
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
)

type BookingRequested struct {
	BookingID  BookingID
	ListingID  listing.ListingID
	GuestID    string
	Range      daterange.DateRange
	TotalCents int64
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingAccepted struct {
	BookingID BookingID
	ListingID listing.ListingID
	At        time.Time
}

func (e BookingAccepted) EventName() string     { return "booking.accepted" }
func (e BookingAccepted) AggregateID() string   { return string(e.BookingID) }
func (e BookingAccepted) OccurredAt() time.Time { return e.At }

type BookingRefused struct {
	BookingID BookingID
	ListingID listing.ListingID
	Reason    string
	At        time.Time
}

func (e BookingRefused) EventName() string     { return "booking.refused" }
func (e BookingRefused) AggregateID() string   { return string(e.BookingID) }
func (e BookingRefused) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	ListingID listing.ListingID
	GuestID   string
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	ListingID listing.ListingID
	Range     daterange.DateRange
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
