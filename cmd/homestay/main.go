package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	listingsapp "homestay/internal/app/handlers/listings"
	reviewsapp "homestay/internal/app/handlers/reviews"
	usersapp "homestay/internal/app/handlers/users"
	wishlistsapp "homestay/internal/app/handlers/wishlists"
	"homestay/internal/app/middleware"
	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/queries"
	"homestay/internal/app/services/auth"
	appuow "homestay/internal/app/uow"
	domainauth "homestay/internal/domain/auth"
	"homestay/internal/infra/broker/kafka"
	"homestay/internal/infra/config"
	mongostore "homestay/internal/infra/db/mongo"
	ginserver "homestay/internal/infra/http/gin"
	"homestay/internal/infra/obs"
	infraoutbox "homestay/internal/infra/outbox"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
	redisstore "homestay/internal/infra/storage/redis"
	"homestay/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	metrics := obs.NewMetrics()
	health := obs.HealthHandlers{Ready: app.ready}
	app.handlers.Booking.Metrics = metrics

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, metrics, health, app.handlers)

	group, runCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if app.worker != nil {
		group.Go(func() error {
			logger.Info("outbox worker starting", "interval", cfg.OutboxPoll)
			if err := app.worker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox worker: %w", err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error

	mongoClient *mongostore.Client
	redisClient *goredis.Client
	producer    *kafka.Producer
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka close failed", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Close(ctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func() error { return nil }}

	var (
		factory appuow.UoWFactory
		box     appoutbox.Outbox
		idStore middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		app.mongoClient = client
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		factory = mongostore.NewFactory(client.DB)
		store := infraoutbox.NewStore(client.DB)
		box = store
		idStore = mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)

		var producer infraoutbox.Producer = kafka.NoopProducer{Logger: logger}
		if len(cfg.KafkaBrokers) > 0 {
			p, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaClientID, logger)
			if err != nil {
				return nil, fmt.Errorf("kafka connect: %w", err)
			}
			app.producer = p
			producer = p
		} else {
			logger.Warn("kafka brokers not configured, events will be dropped")
		}
		app.worker = &infraoutbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPoll,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	case config.StorageMemory:
		factory = memory.NewFactory()
		box = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}

	var sessions = sessionsStore(cfg, app)
	authService := &auth.Service{
		UoWFactory: factory,
		Sessions:   sessions,
		Hasher:     security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		NewID:      uuid.NewString,
		SessionTTL: cfg.SessionTTL,
	}

	var uploader s3.Uploader
	if client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("s3 unavailable, photo uploads disabled", "error", err)
		uploader = s3.NoopUploader{}
	} else {
		uploader = client
	}

	commandBus, queryBus := buildBuses(factory, box, uploader, sessions)
	dispatcher := middleware.ChainCommands(commandBus,
		middleware.Idempotency(idStore, middleware.JSONResultCodec{}),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)

	app.handlers = ginserver.Handlers{
		Auth:           &ginserver.AuthHandler{Service: authService, Queries: queryBus},
		Booking:        &ginserver.BookingHandler{Commands: dispatcher, Queries: queryBus},
		Listing:        &ginserver.ListingHandler{Queries: queryBus},
		Host:           &ginserver.HostListingHandler{Commands: dispatcher, Queries: queryBus},
		Review:         &ginserver.ReviewHandler{Commands: dispatcher},
		Wishlist:       &ginserver.WishlistHandler{Commands: dispatcher, Queries: queryBus},
		Me:             &ginserver.MeHandler{Commands: dispatcher, Queries: queryBus},
		Admin:          &ginserver.AdminHandler{Commands: dispatcher, Queries: queryBus},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	return app, nil
}

func sessionsStore(cfg config.Config, app *application) domainauth.SessionStore {
	if cfg.RedisAddr == "" {
		return memory.NewSessionStore()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	app.redisClient = client
	return redisstore.NewSessionStore(client)
}

// buildBuses registers every command and query handler under its message key.
func buildBuses(factory appuow.UoWFactory, box appoutbox.Outbox, uploader s3.Uploader, sessions domainauth.SessionStore) (*commands.InMemoryBus, *queries.InMemoryBus) {
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	requestBooking := &bookingapp.RequestBookingHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	decideBooking := &bookingapp.DecideBookingHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), requestBooking)
	commands.RegisterHandler(commandBus, bookingapp.AcceptBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.AcceptBookingCommand, dto.Booking](decideBooking.HandleAccept))
	commands.RegisterHandler(commandBus, bookingapp.RefuseBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.RefuseBookingCommand, dto.Booking](decideBooking.HandleRefuse))
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CompleteBookingCommand, dto.Booking](decideBooking.HandleComplete))
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CancelBookingCommand, dto.Booking](decideBooking.HandleCancel))

	submitReview := &reviewsapp.SubmitReviewHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	deleteReview := &reviewsapp.DeleteReviewHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), submitReview)
	commands.RegisterHandler(commandBus, reviewsapp.DeleteReviewCommand{}.Key(), deleteReview)

	wishlistToggle := &wishlistsapp.ToggleHandler{UoWFactory: factory}
	commands.RegisterHandler(commandBus, wishlistsapp.AddEntryCommand{}.Key(),
		commands.HandlerFunc[wishlistsapp.AddEntryCommand, dto.WishlistEntry](wishlistToggle.HandleAdd))
	commands.RegisterHandler(commandBus, wishlistsapp.RemoveEntryCommand{}.Key(),
		commands.HandlerFunc[wishlistsapp.RemoveEntryCommand, struct{}](wishlistToggle.HandleRemove))

	manageListing := &listingsapp.ManageHandler{UoWFactory: factory, Outbox: box, Encoder: encoder, Uploader: uploader}
	moderateListing := &listingsapp.ModerateHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler(commandBus, listingsapp.CreateListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.CreateListingCommand, dto.Listing](manageListing.HandleCreate))
	commands.RegisterHandler(commandBus, listingsapp.UpdateListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.UpdateListingCommand, dto.Listing](manageListing.HandleUpdate))
	commands.RegisterHandler(commandBus, listingsapp.DeleteListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.DeleteListingCommand, struct{}](manageListing.HandleDelete))
	commands.RegisterHandler(commandBus, listingsapp.AddListingPhotoCommand{}.Key(),
		commands.HandlerFunc[listingsapp.AddListingPhotoCommand, dto.Listing](manageListing.HandleAddPhoto))
	commands.RegisterHandler(commandBus, listingsapp.ApproveListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.ApproveListingCommand, dto.Listing](moderateListing.HandleApprove))
	commands.RegisterHandler(commandBus, listingsapp.RejectListingCommand{}.Key(),
		commands.HandlerFunc[listingsapp.RejectListingCommand, dto.Listing](moderateListing.HandleReject))

	profile := &usersapp.ProfileHandler{UoWFactory: factory}
	admin := &usersapp.AdminHandler{UoWFactory: factory, Sessions: sessions}
	commands.RegisterHandler(commandBus, usersapp.UpdateProfileCommand{}.Key(),
		commands.HandlerFunc[usersapp.UpdateProfileCommand, dto.UserProfile](profile.HandleUpdate))
	commands.RegisterHandler(commandBus, usersapp.BecomeHostCommand{}.Key(),
		commands.HandlerFunc[usersapp.BecomeHostCommand, dto.UserProfile](profile.HandleBecomeHost))
	commands.RegisterHandler(commandBus, usersapp.DeleteUserCommand{}.Key(),
		commands.HandlerFunc[usersapp.DeleteUserCommand, struct{}](admin.HandleDelete))
	commands.RegisterHandler(commandBus, usersapp.SetBlockedCommand{}.Key(),
		commands.HandlerFunc[usersapp.SetBlockedCommand, dto.UserProfile](admin.HandleSetBlocked))

	availability := &bookingapp.CheckAvailabilityHandler{UoWFactory: factory}
	listBookings := &bookingapp.ListBookingsHandler{UoWFactory: factory}
	queries.RegisterHandler(queryBus, bookingapp.CheckAvailabilityQuery{}.Key(), availability)
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(),
		queries.HandlerFunc[bookingapp.ListGuestBookingsQuery, dto.GuestBookingCollection](listBookings.HandleGuest))
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(),
		queries.HandlerFunc[bookingapp.ListHostBookingsQuery, dto.HostBookingCollection](listBookings.HandleHost))

	listReviews := &reviewsapp.ListReviewsHandler{UoWFactory: factory}
	queries.RegisterHandler(queryBus, reviewsapp.ListReviewsQuery{}.Key(), listReviews)

	wishlistQueries := &wishlistsapp.QueryHandler{UoWFactory: factory}
	queries.RegisterHandler(queryBus, wishlistsapp.CheckEntryQuery{}.Key(),
		queries.HandlerFunc[wishlistsapp.CheckEntryQuery, dto.WishlistMembership](wishlistQueries.HandleCheck))
	queries.RegisterHandler(queryBus, wishlistsapp.ListEntriesQuery{}.Key(),
		queries.HandlerFunc[wishlistsapp.ListEntriesQuery, dto.WishlistCollection](wishlistQueries.HandleList))

	catalog := &listingsapp.CatalogHandler{UoWFactory: factory}
	queries.RegisterHandler(queryBus, listingsapp.SearchCatalogQuery{}.Key(),
		queries.HandlerFunc[listingsapp.SearchCatalogQuery, dto.ListingCardCollection](catalog.HandleSearch))
	queries.RegisterHandler(queryBus, listingsapp.GetListingQuery{}.Key(),
		queries.HandlerFunc[listingsapp.GetListingQuery, dto.Listing](catalog.HandleGet))
	queries.RegisterHandler(queryBus, listingsapp.HostListingsQuery{}.Key(),
		queries.HandlerFunc[listingsapp.HostListingsQuery, dto.ListingCollection](catalog.HandleHostListings))
	queries.RegisterHandler(queryBus, listingsapp.ModerationQueueQuery{}.Key(),
		queries.HandlerFunc[listingsapp.ModerationQueueQuery, dto.ListingCollection](moderateListing.HandleQueue))

	queries.RegisterHandler(queryBus, usersapp.GetProfileQuery{}.Key(),
		queries.HandlerFunc[usersapp.GetProfileQuery, dto.UserProfile](profile.HandleGet))
	queries.RegisterHandler(queryBus, usersapp.ListUsersQuery{}.Key(),
		queries.HandlerFunc[usersapp.ListUsersQuery, dto.UserList](admin.HandleList))

	return commandBus, queryBus
}
