package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	wishlistsapp "homestay/internal/app/handlers/wishlists"
	"homestay/internal/app/queries"
)

type WishlistHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type addWishlistRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

func (h WishlistHandler) Add(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req addWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[wishlistsapp.AddEntryCommand, dto.WishlistEntry](
		c.Request.Context(), h.Commands, wishlistsapp.AddEntryCommand{
			EntryID:   uuid.NewString(),
			ListingID: req.ListingID,
			OwnerID:   p.ID,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Remove deletes by entry id. The route takes the id returned from Add or
// Check, never a listing id.
func (h WishlistHandler) Remove(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	_, err := commands.Dispatch[wishlistsapp.RemoveEntryCommand, struct{}](
		c.Request.Context(), h.Commands, wishlistsapp.RemoveEntryCommand{
			EntryID: c.Param("entryID"),
			OwnerID: p.ID,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h WishlistHandler) Check(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[wishlistsapp.CheckEntryQuery, dto.WishlistMembership](
		c.Request.Context(), h.Queries, wishlistsapp.CheckEntryQuery{
			ListingID: c.Param("listingID"),
			OwnerID:   p.ID,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WishlistHandler) List(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[wishlistsapp.ListEntriesQuery, dto.WishlistCollection](
		c.Request.Context(), h.Queries, wishlistsapp.ListEntriesQuery{OwnerID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
