package memory

import (
	"context"
	"errors"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
	domainuser "homestay/internal/domain/user"
	domainwishlist "homestay/internal/domain/wishlist"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingRepo  domainlisting.Repository
	BookingRepo  domainbooking.Repository
	ReviewRepo   domainreview.Repository
	WishlistRepo domainwishlist.Repository
	UserRepo     domainuser.Repository
}

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		ListingRepo:  NewListingRepository(),
		BookingRepo:  NewBookingRepository(),
		ReviewRepo:   NewReviewRepository(),
		WishlistRepo: NewWishlistRepository(),
		UserRepo:     NewUserRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingRepo == nil || f.BookingRepo == nil || f.ReviewRepo == nil || f.WishlistRepo == nil || f.UserRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:  f.ListingRepo,
		bookings:  f.BookingRepo,
		reviews:   f.ReviewRepo,
		wishlists: f.WishlistRepo,
		users:     f.UserRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings  domainlisting.Repository
	bookings  domainbooking.Repository
	reviews   domainreview.Repository
	wishlists domainwishlist.Repository
	users     domainuser.Repository
}

func (u *Unit) Listings() domainlisting.Repository   { return u.listings }
func (u *Unit) Bookings() domainbooking.Repository   { return u.bookings }
func (u *Unit) Reviews() domainreview.Repository     { return u.reviews }
func (u *Unit) Wishlists() domainwishlist.Repository { return u.wishlists }
func (u *Unit) Users() domainuser.Repository         { return u.users }

func (u *Unit) Commit(context.Context) error   { return nil }
func (u *Unit) Rollback(context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
