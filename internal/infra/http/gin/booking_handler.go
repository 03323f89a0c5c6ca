package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/queries"
	"homestay/internal/infra/obs"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Metrics  *obs.Metrics
}

type availabilityRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// CheckAvailability handles POST /bookings/check-availability/:listingID.
// Verification failures map to 503 so clients never mistake an outage for a
// free calendar.
func (h BookingHandler) CheckAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[bookingapp.CheckAvailabilityQuery, dto.Availability](
		c.Request.Context(), h.Queries, bookingapp.CheckAvailabilityQuery{
			ListingID: c.Param("listingID"),
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createBookingRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		BookingID:   uuid.NewString(),
		ListingID:   req.ListingID,
		GuestID:     p.ID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Idempotency: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if h.Metrics != nil && errors.Is(err, bookingapp.ErrDatesConflict) {
			h.Metrics.BookingConflicts.Inc()
		}
		respondError(c, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.BookingsRequested.Inc()
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Accept(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[bookingapp.AcceptBookingCommand, dto.Booking](
		c.Request.Context(), h.Commands, bookingapp.AcceptBookingCommand{
			BookingID: c.Param("id"),
			HostID:    p.ID,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type refuseBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Refuse(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	var req refuseBookingRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[bookingapp.RefuseBookingCommand, dto.Booking](
		c.Request.Context(), h.Commands, bookingapp.RefuseBookingCommand{
			BookingID: c.Param("id"),
			HostID:    p.ID,
			Reason:    req.Reason,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Complete(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, dto.Booking](
		c.Request.Context(), h.Commands, bookingapp.CompleteBookingCommand{
			BookingID: c.Param("id"),
			HostID:    p.ID,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req refuseBookingRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, dto.Booking](
		c.Request.Context(), h.Commands, bookingapp.CancelBookingCommand{
			BookingID: c.Param("id"),
			GuestID:   p.ID,
			Reason:    req.Reason,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
