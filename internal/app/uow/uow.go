package uow

import (
	"context"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
	domainuser "homestay/internal/domain/user"
	domainwishlist "homestay/internal/domain/wishlist"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlisting.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreview.Repository
	Wishlists() domainwishlist.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
