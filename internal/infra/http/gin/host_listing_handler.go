package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	listingsapp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/queries"
)

// HostListingHandler covers the host's own listings and booking inbox.
type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h HostListingHandler) List(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	result, err := queries.Ask[listingsapp.HostListingsQuery, dto.ListingCollection](
		c.Request.Context(), h.Queries, listingsapp.HostListingsQuery{HostID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type listingRequest struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description"`
	Category         string `json:"category" binding:"required"`
	City             string `json:"city" binding:"required"`
	Country          string `json:"country" binding:"required"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
}

func (h HostListingHandler) Create(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[listingsapp.CreateListingCommand, dto.Listing](
		c.Request.Context(), h.Commands, listingsapp.CreateListingCommand{
			ListingID:        uuid.NewString(),
			HostID:           p.ID,
			Title:            req.Title,
			Description:      req.Description,
			Category:         req.Category,
			City:             req.City,
			Country:          req.Country,
			NightlyRateCents: req.NightlyRateCents,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[listingsapp.UpdateListingCommand, dto.Listing](
		c.Request.Context(), h.Commands, listingsapp.UpdateListingCommand{
			ListingID:        c.Param("id"),
			HostID:           p.ID,
			Title:            req.Title,
			Description:      req.Description,
			Category:         req.Category,
			City:             req.City,
			Country:          req.Country,
			NightlyRateCents: req.NightlyRateCents,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Delete(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	_, err := commands.Dispatch[listingsapp.DeleteListingCommand, struct{}](
		c.Request.Context(), h.Commands, listingsapp.DeleteListingCommand{
			ListingID: c.Param("id"),
			HostID:    p.ID,
			Admin:     p.IsAdmin(),
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto accepts a multipart form with a "photo" file field.
func (h HostListingHandler) UploadPhoto(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer reader.Close()

	result, err := commands.Dispatch[listingsapp.AddListingPhotoCommand, dto.Listing](
		c.Request.Context(), h.Commands, listingsapp.AddListingPhotoCommand{
			ListingID:   c.Param("id"),
			HostID:      p.ID,
			FileName:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Content:     reader,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Bookings(c *gin.Context) {
	p, ok := requireHost(c)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.HostBookingCollection](
		c.Request.Context(), h.Queries, bookingapp.ListHostBookingsQuery{HostID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
