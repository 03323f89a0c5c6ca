package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	reviewsapp "homestay/internal/app/handlers/reviews"
)

type ReviewHandler struct {
	Commands commands.Bus
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (h ReviewHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.Review](
		c.Request.Context(), h.Commands, reviewsapp.SubmitReviewCommand{
			ReviewID:  uuid.NewString(),
			ListingID: c.Param("id"),
			AuthorID:  p.ID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	_, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, struct{}](
		c.Request.Context(), h.Commands, reviewsapp.DeleteReviewCommand{
			ReviewID: c.Param("reviewID"),
			ActorID:  p.ID,
			Admin:    p.IsAdmin(),
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
