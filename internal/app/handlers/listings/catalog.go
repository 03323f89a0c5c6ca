package listings

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const (
	searchCatalogKey = "listing.search"
	getListingKey    = "listing.get"
	hostListingsKey  = "listing.list_host"
)

// SearchCatalogQuery filters the public catalog. Only approved listings are
// returned regardless of the requested filters.
type SearchCatalogQuery struct {
	Category      string
	City          string
	Country       string
	PriceMinCents int64
	PriceMaxCents int64
	Sort          string
	Limit         int
	Offset        int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// GetListingQuery fetches one listing. Unless the caller owns it or is an
// admin, only approved listings are visible.
type GetListingQuery struct {
	ListingID string
	ViewerID  string
	Admin     bool
}

func (q GetListingQuery) Key() string { return getListingKey }

// HostListingsQuery returns everything the host manages, in any moderation
// state.
type HostListingsQuery struct {
	HostID string
}

func (q HostListingsQuery) Key() string { return hostListingsKey }

type CatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CatalogHandler) HandleSearch(ctx context.Context, query SearchCatalogQuery) (dto.ListingCardCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCardCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	result, err := unit.Listings().Search(ctx, domainlisting.SearchParams{
		Category:      domainlisting.Category(query.Category),
		City:          query.City,
		Country:       query.Country,
		PriceMinCents: query.PriceMinCents,
		PriceMaxCents: query.PriceMaxCents,
		Sort:          domainlisting.CatalogSort(query.Sort),
		Limit:         query.Limit,
		Offset:        query.Offset,
		OnlyApproved:  true,
	})
	if err != nil {
		return dto.ListingCardCollection{}, err
	}

	items := make([]dto.ListingCard, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, dto.MapListingCard(l))
	}
	return dto.ListingCardCollection{Items: items, Total: result.Total}, nil
}

func (h *CatalogHandler) HandleGet(ctx context.Context, query GetListingQuery) (dto.Listing, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(query.ListingID))
	if err != nil {
		return dto.Listing{}, err
	}
	if l.Status != domainlisting.StatusApproved && !query.Admin && !l.OwnedBy(domainlisting.HostID(query.ViewerID)) {
		return dto.Listing{}, domainlisting.ErrNotFound
	}
	return dto.MapListing(l), nil
}

func (h *CatalogHandler) HandleHostListings(ctx context.Context, query HostListingsQuery) (dto.ListingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	result, err := unit.Listings().Search(ctx, domainlisting.SearchParams{
		Host: domainlisting.HostID(query.HostID),
	})
	if err != nil {
		return dto.ListingCollection{}, err
	}

	items := make([]dto.Listing, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, dto.MapListing(l))
	}
	return dto.ListingCollection{Items: items, Total: result.Total}, nil
}

var (
	_ queries.Handler[SearchCatalogQuery, dto.ListingCardCollection] = queries.HandlerFunc[SearchCatalogQuery, dto.ListingCardCollection]((&CatalogHandler{}).HandleSearch)
	_ queries.Handler[GetListingQuery, dto.Listing]                  = queries.HandlerFunc[GetListingQuery, dto.Listing]((&CatalogHandler{}).HandleGet)
	_ queries.Handler[HostListingsQuery, dto.ListingCollection]      = queries.HandlerFunc[HostListingsQuery, dto.ListingCollection]((&CatalogHandler{}).HandleHostListings)
)
