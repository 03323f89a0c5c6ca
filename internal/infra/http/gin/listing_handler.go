package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/dto"
	listingsapp "homestay/internal/app/handlers/listings"
	reviewsapp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/queries"
)

// ListingHandler serves the public catalog.
type ListingHandler struct {
	Queries queries.Bus
}

func (h ListingHandler) Catalog(c *gin.Context) {
	query := listingsapp.SearchCatalogQuery{
		Category:      c.Query("category"),
		City:          c.Query("city"),
		Country:       c.Query("country"),
		PriceMinCents: queryInt64(c, "price_min_cents"),
		PriceMaxCents: queryInt64(c, "price_max_cents"),
		Sort:          c.Query("sort"),
		Limit:         queryInt(c, "limit"),
		Offset:        queryInt(c, "offset"),
	}
	result, err := queries.Ask[listingsapp.SearchCatalogQuery, dto.ListingCardCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	p, _ := currentPrincipal(c)
	result, err := queries.Ask[listingsapp.GetListingQuery, dto.Listing](
		c.Request.Context(), h.Queries, listingsapp.GetListingQuery{
			ListingID: c.Param("id"),
			ViewerID:  p.ID,
			Admin:     p.IsAdmin(),
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Reviews(c *gin.Context) {
	result, err := queries.Ask[reviewsapp.ListReviewsQuery, dto.ReviewCollection](
		c.Request.Context(), h.Queries, reviewsapp.ListReviewsQuery{
			ListingID: c.Param("id"),
			Limit:     queryInt(c, "limit"),
			Offset:    queryInt(c, "offset"),
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func queryInt64(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
