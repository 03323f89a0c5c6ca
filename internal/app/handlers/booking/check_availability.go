package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "booking.check_availability"

// ErrVerificationFailed is returned when the store cannot be consulted. The
// caller must treat the range as unavailable, never as free.
var ErrVerificationFailed = errors.New("booking: could not verify availability")

// CheckAvailabilityQuery asks whether a date range is free of blocking
// bookings for a listing.
type CheckAvailabilityQuery struct {
	ListingID string
	StartDate string
	EndDate   string
	Now       time.Time
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, query CheckAvailabilityQuery) (dto.Availability, error) {
	dr, err := daterange.Parse(query.StartDate, query.EndDate)
	if err != nil {
		return dto.Availability{}, err
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return dto.Availability{}, err
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := unit.Listings().ByID(ctx, domainlisting.ListingID(query.ListingID)); err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			return dto.Availability{}, err
		}
		return dto.Availability{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	conflicts, err := unit.Bookings().Overlapping(ctx, domainlisting.ListingID(query.ListingID), dr)
	if err != nil {
		return dto.Availability{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	result := dto.Availability{
		Success:          true,
		IsAvailable:      len(conflicts) == 0,
		UnavailableDates: make([]dto.DateRange, 0, len(conflicts)),
	}
	for _, conflict := range conflicts {
		result.UnavailableDates = append(result.UnavailableDates, dto.DateRange{
			StartDate: conflict.Range.StartDate(),
			EndDate:   conflict.Range.EndDate(),
		})
	}
	return result, nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
