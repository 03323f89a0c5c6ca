package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "homestay/internal/domain/listing"
	domainwishlist "homestay/internal/domain/wishlist"
)

type WishlistRepository struct {
	col *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	col := db.Collection("agg_wishlist")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &WishlistRepository{col: col}
}

func (r *WishlistRepository) ByID(ctx context.Context, id domainwishlist.EntryID) (*domainwishlist.Entry, error) {
	var doc wishlistDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainwishlist.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntry(), nil
}

func (r *WishlistRepository) ByListingAndOwner(ctx context.Context, listingID domainlisting.ListingID, ownerID string) (*domainwishlist.Entry, error) {
	filter := bson.M{"listing_id": string(listingID), "owner_id": ownerID}
	var doc wishlistDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainwishlist.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntry(), nil
}

func (r *WishlistRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainwishlist.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainwishlist.Entry
	for cursor.Next(ctx) {
		var doc wishlistDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntry())
	}
	return out, cursor.Err()
}

func (r *WishlistRepository) Save(ctx context.Context, e *domainwishlist.Entry) error {
	doc := wishlistDocument{
		ID:        string(e.ID),
		ListingID: string(e.ListingID),
		OwnerID:   e.OwnerID,
		CreatedAt: e.CreatedAt.UnixMilli(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *WishlistRepository) Delete(ctx context.Context, id domainwishlist.EntryID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainwishlist.ErrNotFound
	}
	return nil
}

type wishlistDocument struct {
	ID        string `bson:"_id"`
	ListingID string `bson:"listing_id"`
	OwnerID   string `bson:"owner_id"`
	CreatedAt int64  `bson:"created_at"`
}

func (d wishlistDocument) toEntry() *domainwishlist.Entry {
	return &domainwishlist.Entry{
		ID:        domainwishlist.EntryID(d.ID),
		ListingID: domainlisting.ListingID(d.ListingID),
		OwnerID:   d.OwnerID,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}
