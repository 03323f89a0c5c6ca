package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "homestay/internal/app/handlers/booking"
	listingsapp "homestay/internal/app/handlers/listings"
	reviewsapp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/services/auth"
	domainauth "homestay/internal/domain/auth"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
	"homestay/internal/domain/shared/daterange"
	domainuser "homestay/internal/domain/user"
	domainwishlist "homestay/internal/domain/wishlist"
)

// respondError maps application and domain errors onto HTTP statuses. Unknown
// errors become an opaque 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainlisting.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainreview.ErrNotFound),
		errors.Is(err, domainwishlist.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, bookingapp.ErrDatesConflict),
		errors.Is(err, domainuser.ErrEmailAlreadyUsed),
		errors.Is(err, reviewsapp.ErrAlreadyReviewed),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainlisting.ErrInvalidState):
		return http.StatusConflict

	case errors.Is(err, bookingapp.ErrNotListingHost),
		errors.Is(err, bookingapp.ErrNotBookingGuest),
		errors.Is(err, bookingapp.ErrOwnListing),
		errors.Is(err, listingsapp.ErrNotOwner),
		errors.Is(err, reviewsapp.ErrNotAuthor),
		errors.Is(err, reviewsapp.ErrNotEligible),
		errors.Is(err, domainwishlist.ErrNotOwner),
		errors.Is(err, domainuser.ErrAdminProtected),
		errors.Is(err, auth.ErrAccountBlocked):
		return http.StatusForbidden

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domainauth.ErrSessionNotFound),
		errors.Is(err, domainauth.ErrTokenRequired):
		return http.StatusUnauthorized

	case errors.Is(err, bookingapp.ErrVerificationFailed):
		return http.StatusServiceUnavailable

	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, daterange.ErrBadDate),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainreview.ErrInvalidRating),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, bookingapp.ErrListingNotBookable),
		errors.Is(err, domainlisting.ErrTitleRequired),
		errors.Is(err, domainlisting.ErrInvalidCategory),
		errors.Is(err, domainlisting.ErrNightlyRate),
		errors.Is(err, domainlisting.ErrLocation),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, domainuser.ErrEmailRequired):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
