package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	listingsapp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/handlers/users"
	"homestay/internal/app/queries"
)

// AdminHandler covers moderation and account management.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h AdminHandler) PendingListings(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := queries.Ask[listingsapp.ModerationQueueQuery, dto.ListingCollection](
		c.Request.Context(), h.Queries, listingsapp.ModerationQueueQuery{
			Limit:  queryInt(c, "limit"),
			Offset: queryInt(c, "offset"),
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ApproveListing(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := commands.Dispatch[listingsapp.ApproveListingCommand, dto.Listing](
		c.Request.Context(), h.Commands, listingsapp.ApproveListingCommand{ListingID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type rejectListingRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) RejectListing(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req rejectListingRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[listingsapp.RejectListingCommand, dto.Listing](
		c.Request.Context(), h.Commands, listingsapp.RejectListingCommand{
			ListingID: c.Param("id"),
			Reason:    req.Reason,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := queries.Ask[users.ListUsersQuery, dto.UserList](
		c.Request.Context(), h.Queries, users.ListUsersQuery{
			Query:  c.Query("q"),
			Limit:  queryInt(c, "limit"),
			Offset: queryInt(c, "offset"),
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteUser refuses to touch admin accounts, the guard sits in the command
// handler so no storage writes happen first.
func (h AdminHandler) DeleteUser(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	_, err := commands.Dispatch[users.DeleteUserCommand, struct{}](
		c.Request.Context(), h.Commands, users.DeleteUserCommand{UserID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (h AdminHandler) SetUserBlocked(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[users.SetBlockedCommand, dto.UserProfile](
		c.Request.Context(), h.Commands, users.SetBlockedCommand{
			UserID:  c.Param("id"),
			Blocked: req.Blocked,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
