package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "homestay/internal/domain/listing"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("agg_listing")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "location.city", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "nightly_rate_cents", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlisting.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	opts := params.Normalized()

	filter := bson.M{}
	if opts.OnlyApproved {
		filter["status"] = string(domainlisting.StatusApproved)
	} else if len(opts.Statuses) > 0 {
		statuses := make([]string, 0, len(opts.Statuses))
		for _, s := range opts.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if opts.Host != "" {
		filter["host_id"] = string(opts.Host)
	}
	if opts.Category != "" {
		filter["category"] = string(opts.Category)
	}
	if opts.City != "" {
		filter["location.city_norm"] = opts.City
	}
	if opts.Country != "" {
		filter["location.country_norm"] = opts.Country
	}
	price := bson.M{}
	if opts.PriceMinCents > 0 {
		price["$gte"] = opts.PriceMinCents
	}
	if opts.PriceMaxCents > 0 {
		price["$lte"] = opts.PriceMaxCents
	}
	if len(price) > 0 {
		filter["nightly_rate_cents"] = price
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(sortSpec(opts.Sort)).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	var items []*domainlisting.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlisting.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainlisting.SearchResult{}, err
	}
	return domainlisting.SearchResult{Items: items, Total: int(total)}, nil
}

func sortSpec(sort domainlisting.CatalogSort) bson.D {
	switch sort {
	case domainlisting.SortByPriceAsc:
		return bson.D{{Key: "nightly_rate_cents", Value: 1}}
	case domainlisting.SortByPriceDesc:
		return bson.D{{Key: "nightly_rate_cents", Value: -1}}
	case domainlisting.SortByRating:
		return bson.D{{Key: "rating.average", Value: -1}, {Key: "rating.count", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

type listingDocument struct {
	ID               string           `bson:"_id"`
	HostID           string           `bson:"host_id"`
	Title            string           `bson:"title"`
	Description      string           `bson:"description"`
	Category         string           `bson:"category"`
	Location         locationDocument `bson:"location"`
	NightlyRateCents int64            `bson:"nightly_rate_cents"`
	MainPhotoURL     string           `bson:"main_photo_url"`
	PhotoURLs        []string         `bson:"photo_urls"`
	Rating           ratingDocument   `bson:"rating"`
	Status           string           `bson:"status"`
	CreatedAt        int64            `bson:"created_at"`
	UpdatedAt        int64            `bson:"updated_at"`
	Version          int64            `bson:"version"`
}

type locationDocument struct {
	City        string `bson:"city"`
	Country     string `bson:"country"`
	CityNorm    string `bson:"city_norm"`
	CountryNorm string `bson:"country_norm"`
}

type ratingDocument struct {
	Average float64 `bson:"average"`
	Count   int     `bson:"count"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Category:    string(l.Category),
		Location: locationDocument{
			City:        l.Location.City,
			Country:     l.Location.Country,
			CityNorm:    normalizeToken(l.Location.City),
			CountryNorm: normalizeToken(l.Location.Country),
		},
		NightlyRateCents: l.NightlyRateCents,
		MainPhotoURL:     l.MainPhotoURL,
		PhotoURLs:        l.PhotoURLs,
		Rating:           ratingDocument{Average: l.Rating.Average, Count: l.Rating.Count},
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt.UnixMilli(),
		UpdatedAt:        l.UpdatedAt.UnixMilli(),
		Version:          l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlisting.Listing {
	return &domainlisting.Listing{
		ID:          domainlisting.ListingID(d.ID),
		Host:        domainlisting.HostID(d.HostID),
		Title:       d.Title,
		Description: d.Description,
		Category:    domainlisting.Category(d.Category),
		Location: domainlisting.Location{
			City:    d.Location.City,
			Country: d.Location.Country,
		},
		NightlyRateCents: d.NightlyRateCents,
		MainPhotoURL:     d.MainPhotoURL,
		PhotoURLs:        d.PhotoURLs,
		Rating:           domainlisting.RatingSummary{Average: d.Rating.Average, Count: d.Rating.Count},
		Status:           domainlisting.ModerationStatus(d.Status),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
