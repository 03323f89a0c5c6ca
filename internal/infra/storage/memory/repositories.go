package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
	domainwishlist "homestay/internal/domain/wishlist"
	"homestay/internal/domain/shared/daterange"
)

// ListingRepository is an in-memory implementation for tests and local runs.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ListingID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[domainlisting.ListingID]*domainlisting.Listing)}
}

func (r *ListingRepository) ByID(_ context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	clone := *l
	clone.PhotoURLs = append([]string(nil), l.PhotoURLs...)
	return &clone, nil
}

func (r *ListingRepository) Save(_ context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *l
	clone.PhotoURLs = append([]string(nil), l.PhotoURLs...)
	clone.ClearEvents()
	clone.Version++
	r.items[clone.ID] = &clone
	l.Version = clone.Version
	return nil
}

func (r *ListingRepository) Delete(_ context.Context, id domainlisting.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlisting.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlisting.Listing, 0, len(r.items))
	for _, l := range r.items {
		select {
		case <-ctx.Done():
			return domainlisting.SearchResult{}, ctx.Err()
		default:
		}

		if opts.OnlyApproved && l.Status != domainlisting.StatusApproved {
			continue
		}
		if opts.Host != "" && l.Host != opts.Host {
			continue
		}
		if len(opts.Statuses) > 0 && !statusIncluded(l.Status, opts.Statuses) {
			continue
		}
		if opts.Category != "" && l.Category != opts.Category {
			continue
		}
		if opts.City != "" && !strings.EqualFold(l.Location.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(l.Location.Country, opts.Country) {
			continue
		}
		if opts.PriceMinCents > 0 && l.NightlyRateCents < opts.PriceMinCents {
			continue
		}
		if opts.PriceMaxCents > 0 && l.NightlyRateCents > opts.PriceMaxCents {
			continue
		}
		matches = append(matches, l)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlisting.SortByPriceAsc:
			if matches[i].NightlyRateCents == matches[j].NightlyRateCents {
				return matches[i].Rating.Average > matches[j].Rating.Average
			}
			return matches[i].NightlyRateCents < matches[j].NightlyRateCents
		case domainlisting.SortByPriceDesc:
			if matches[i].NightlyRateCents == matches[j].NightlyRateCents {
				return matches[i].Rating.Average > matches[j].Rating.Average
			}
			return matches[i].NightlyRateCents > matches[j].NightlyRateCents
		case domainlisting.SortByRating:
			if matches[i].Rating.Average == matches[j].Rating.Average {
				return matches[i].Rating.Count > matches[j].Rating.Count
			}
			return matches[i].Rating.Average > matches[j].Rating.Average
		default:
			if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].ID < matches[j].ID
			}
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	page := make([]*domainlisting.Listing, 0, end-start)
	for _, l := range matches[start:end] {
		clone := *l
		clone.PhotoURLs = append([]string(nil), l.PhotoURLs...)
		page = append(page, &clone)
	}
	return domainlisting.SearchResult{Items: page, Total: total}, nil
}

func statusIncluded(status domainlisting.ModerationStatus, set []domainlisting.ModerationStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// BookingRepository keeps bookings in a map guarded by a RWMutex.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *BookingRepository) Save(_ context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	clone.ClearEvents()
	clone.Version++
	r.items[clone.ID] = &clone
	b.Version = clone.Version
	return nil
}

func (r *BookingRepository) ListByGuest(_ context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.GuestID == guestID {
			clone := *b
			out = append(out, &clone)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *BookingRepository) ListByListing(_ context.Context, listingID domainlisting.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.ListingID == listingID {
			clone := *b
			out = append(out, &clone)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *BookingRepository) Overlapping(_ context.Context, listingID domainlisting.ListingID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.ListingID != listingID || !b.Blocks() {
			continue
		}
		if b.Range.Overlaps(dr) {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.CheckIn.Before(out[j].Range.CheckIn) })
	return out, nil
}

func (r *BookingRepository) HasCompleted(_ context.Context, listingID domainlisting.ListingID, guestID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.ListingID == listingID && b.GuestID == guestID && b.State == domainbooking.StateCompleted {
			return true, nil
		}
	}
	return false, nil
}

func sortBookings(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

// ReviewRepository keeps reviews in memory.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreview.ReviewID]*domainreview.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainreview.ReviewID]*domainreview.Review)}
}

func (r *ReviewRepository) ByID(_ context.Context, id domainreview.ReviewID) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.items[id]
	if !ok {
		return nil, domainreview.ErrNotFound
	}
	clone := *rv
	return &clone, nil
}

func (r *ReviewRepository) ByListingAndAuthor(_ context.Context, listingID domainlisting.ListingID, authorID string) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rv := range r.items {
		if rv.ListingID == listingID && rv.AuthorID == authorID {
			clone := *rv
			return &clone, nil
		}
	}
	return nil, domainreview.ErrNotFound
}

func (r *ReviewRepository) ListByListing(_ context.Context, listingID domainlisting.ListingID, limit, offset int) ([]*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domainreview.Review
	for _, rv := range r.items {
		if rv.ListingID == listingID {
			clone := *rv
			all = append(all, &clone)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *ReviewRepository) RatingsByListing(_ context.Context, listingID domainlisting.ListingID) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ratings []int
	for _, rv := range r.items {
		if rv.ListingID == listingID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return ratings, nil
}

func (r *ReviewRepository) Save(_ context.Context, rv *domainreview.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rv
	clone.ClearEvents()
	r.items[clone.ID] = &clone
	return nil
}

func (r *ReviewRepository) Delete(_ context.Context, id domainreview.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainreview.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// WishlistRepository keeps wishlist entries in memory.
type WishlistRepository struct {
	mu    sync.RWMutex
	items map[domainwishlist.EntryID]*domainwishlist.Entry
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{items: make(map[domainwishlist.EntryID]*domainwishlist.Entry)}
}

func (r *WishlistRepository) ByID(_ context.Context, id domainwishlist.EntryID) (*domainwishlist.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, domainwishlist.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *WishlistRepository) ByListingAndOwner(_ context.Context, listingID domainlisting.ListingID, ownerID string) (*domainwishlist.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.items {
		if e.ListingID == listingID && e.OwnerID == ownerID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, domainwishlist.ErrNotFound
}

func (r *WishlistRepository) ListByOwner(_ context.Context, ownerID string) ([]*domainwishlist.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainwishlist.Entry
	for _, e := range r.items {
		if e.OwnerID == ownerID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *WishlistRepository) Save(_ context.Context, e *domainwishlist.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *e
	r.items[clone.ID] = &clone
	return nil
}

func (r *WishlistRepository) Delete(_ context.Context, id domainwishlist.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainwishlist.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
