package dto

import (
	"time"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
)

type Booking struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	GuestID    string    `json:"guest_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Nights     int       `json:"nights"`
	TotalCents int64     `json:"total_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		GuestID:    b.GuestID,
		StartDate:  b.Range.StartDate(),
		EndDate:    b.Range.EndDate(),
		Nights:     b.Range.Nights(),
		TotalCents: b.TotalCents,
		Status:     string(b.State),
		CreatedAt:  b.CreatedAt,
	}
}

// DateRange is a conflicting [start, end) pair in the availability response.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Availability is the check-availability response body.
type Availability struct {
	Success          bool        `json:"success"`
	IsAvailable      bool        `json:"is_available"`
	UnavailableDates []DateRange `json:"unavailable_dates"`
}

// GuestBookingSummary decorates a booking with its listing snapshot for the
// trips page.
type GuestBookingSummary struct {
	Booking
	Listing ListingCard `json:"listing"`
	// CanReview is true once the stay completed and no review exists yet.
	CanReview bool `json:"can_review"`
}

type GuestBookingCollection struct {
	Items []GuestBookingSummary `json:"items"`
}

type HostBookingSummary struct {
	Booking
	Listing ListingCard `json:"listing"`
}

type HostBookingCollection struct {
	Items []HostBookingSummary `json:"items"`
}

func MapGuestBookingSummary(b *domainbooking.Booking, l *domainlisting.Listing, canReview bool) GuestBookingSummary {
	return GuestBookingSummary{
		Booking:   MapBooking(b),
		Listing:   MapListingCard(l),
		CanReview: canReview,
	}
}

func MapHostBookingSummary(b *domainbooking.Booking, l *domainlisting.Listing) HostBookingSummary {
	return HostBookingSummary{
		Booking: MapBooking(b),
		Listing: MapListingCard(l),
	}
}
