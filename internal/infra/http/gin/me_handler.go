package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/handlers/users"
	"homestay/internal/app/queries"
)

// MeHandler serves the signed-in user's own resources.
type MeHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h MeHandler) ListBookings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, dto.GuestBookingCollection](
		c.Request.Context(), h.Queries, bookingapp.ListGuestBookingsQuery{GuestID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateProfileRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	PhotoURL string `json:"photo_url"`
}

func (h MeHandler) UpdateProfile(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[users.UpdateProfileCommand, dto.UserProfile](
		c.Request.Context(), h.Commands, users.UpdateProfileCommand{
			UserID:   p.ID,
			Name:     req.Name,
			Phone:    req.Phone,
			PhotoURL: req.PhotoURL,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h MeHandler) BecomeHost(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[users.BecomeHostCommand, dto.UserProfile](
		c.Request.Context(), h.Commands, users.BecomeHostCommand{UserID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
