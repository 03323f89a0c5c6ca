package ginserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"homestay/internal/infra/config"
	"homestay/internal/infra/obs"
)

// Handlers groups the HTTP surfaces wired into the router. Nil members skip
// their routes, which keeps partial wiring in tests simple.
type Handlers struct {
	Auth     *AuthHandler
	Booking  *BookingHandler
	Listing  *ListingHandler
	Host     *HostListingHandler
	Review   *ReviewHandler
	Wishlist *WishlistHandler
	Me       *MeHandler
	Admin    *AdminHandler

	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, metrics *obs.Metrics, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	if cfg.RequestTimeout > 0 {
		router.Use(requestTimeout(cfg.RequestTimeout))
	}
	router.Use(obsMW.LoggerMiddleware())
	if metrics != nil {
		router.Use(metrics.GinMiddleware())
	}
	router.Use(cors.New(corsConfig(cfg)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if metrics != nil {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api/v1")

	if h.Auth != nil {
		limiter := newAuthRateLimiter(cfg.AuthRatePerMin)
		api.POST("/auth/register", limiter.Handle, h.Auth.Register)
		api.POST("/auth/login", limiter.Handle, h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}

	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
		api.GET("/listings/:id/reviews", h.Listing.Reviews)
	}
	if h.Review != nil {
		api.POST("/listings/:id/reviews", h.Review.Create)
		api.DELETE("/reviews/:reviewID", h.Review.Delete)
	}

	if h.Booking != nil {
		api.POST("/bookings/check-availability/:listingID", h.Booking.CheckAvailability)
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/accept", h.Booking.Accept)
		api.POST("/bookings/:id/refuse", h.Booking.Refuse)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}

	if h.Wishlist != nil {
		api.POST("/wishlists", h.Wishlist.Add)
		api.DELETE("/wishlists/:entryID", h.Wishlist.Remove)
		api.GET("/wishlists/check/:listingID", h.Wishlist.Check)
		api.GET("/me/wishlist", h.Wishlist.List)
	}

	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
		meGroup.PUT("/profile", h.Me.UpdateProfile)
		meGroup.POST("/become-host", h.Me.BecomeHost)
	}

	if h.Host != nil {
		hostGroup := api.Group("/host")
		hostGroup.GET("/listings", h.Host.List)
		hostGroup.POST("/listings", h.Host.Create)
		hostGroup.PUT("/listings/:id", h.Host.Update)
		hostGroup.DELETE("/listings/:id", h.Host.Delete)
		hostGroup.POST("/listings/:id/photos", h.Host.UploadPhoto)
		hostGroup.GET("/bookings", h.Host.Bookings)
	}

	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/listings/pending", h.Admin.PendingListings)
		adminGroup.POST("/listings/:id/approve", h.Admin.ApproveListing)
		adminGroup.POST("/listings/:id/reject", h.Admin.RejectListing)
		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.DELETE("/users/:id", h.Admin.DeleteUser)
		adminGroup.PUT("/users/:id/blocked", h.Admin.SetUserBlocked)
	}

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}
}

// requestTimeout bounds every handler's context so a stalled store or broker
// call cannot hold the request open past the configured deadline.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func corsConfig(cfg config.Config) cors.Config {
	conf := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		conf.AllowOrigins = cfg.CORSOrigins
	} else {
		conf.AllowAllOrigins = true
	}
	return conf
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
