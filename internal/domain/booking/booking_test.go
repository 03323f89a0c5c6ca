package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/shared/daterange"
)

func mustRange(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return dr
}

func newTestBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b, err := booking.New(booking.CreateParams{
		ID:         "bkg-1",
		ListingID:  "lst-7",
		GuestID:    "guest-1",
		Range:      mustRange(t, "2024-06-10", "2024-06-15"),
		TotalCents: 5 * 9500,
		CreatedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestValidateDateRangeRejectsPastCheckIn(t *testing.T) {
	now := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)
	err := booking.ValidateDateRange(mustRange(t, "2024-06-09", "2024-06-12"), now)
	assert.ErrorIs(t, err, booking.ErrCheckInInPast)

	// same-day check-in is allowed regardless of time of day
	assert.NoError(t, booking.ValidateDateRange(mustRange(t, "2024-06-10", "2024-06-12"), now))
}

func TestNewBookingStartsPendingAndBlocks(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, booking.StatePending, b.State)
	assert.True(t, b.Blocks())

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
}

func TestLifecycleTransitions(t *testing.T) {
	now := time.Now()

	t.Run("accept then complete", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Accept(now))
		assert.Equal(t, booking.StateAccepted, b.State)
		require.NoError(t, b.Complete(now))
		assert.Equal(t, booking.StateCompleted, b.State)
		assert.True(t, b.Blocks())
	})

	t.Run("refuse releases the range", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Refuse("dates blocked for repairs", now))
		assert.Equal(t, booking.StateRefused, b.State)
		assert.False(t, b.Blocks())
	})

	t.Run("guest cancel before completion", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Accept(now))
		require.NoError(t, b.Cancel("change of plans", now))
		assert.Equal(t, booking.StateCancelled, b.State)
		assert.False(t, b.Blocks())
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Accept(now))
		require.NoError(t, b.Complete(now))
		assert.ErrorIs(t, b.Cancel("too late", now), booking.ErrInvalidState)
	})

	t.Run("refuse after accept is invalid", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Accept(now))
		assert.ErrorIs(t, b.Refuse("no", now), booking.ErrInvalidState)
	})
}
