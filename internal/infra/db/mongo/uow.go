package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
	domainuser "homestay/internal/domain/user"
	domainwishlist "homestay/internal/domain/wishlist"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingRepo  domainlisting.Repository
	BookingRepo  domainbooking.Repository
	ReviewRepo   domainreview.Repository
	WishlistRepo domainwishlist.Repository
	UserRepo     domainuser.Repository
}

// NewFactory builds repositories over the database and wires them into a
// factory.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:           db,
		ListingRepo:  NewListingRepository(db),
		BookingRepo:  NewBookingRepository(db),
		ReviewRepo:   NewReviewRepository(db),
		WishlistRepo: NewWishlistRepository(db),
		UserRepo:     NewUserRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:   session,
		listings:  f.ListingRepo,
		bookings:  f.BookingRepo,
		reviews:   f.ReviewRepo,
		wishlists: f.WishlistRepo,
		users:     f.UserRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

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

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
