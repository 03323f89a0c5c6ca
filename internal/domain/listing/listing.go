package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/shared/events"
)

var (
	ErrIDRequired      = errors.New("listing: id is required")
	ErrHostRequired    = errors.New("listing: host is required")
	ErrTitleRequired   = errors.New("listing: title is required")
	ErrInvalidCategory = errors.New("listing: unknown category")
	ErrNightlyRate     = errors.New("listing: nightly rate must be non-negative")
	ErrLocation        = errors.New("listing: city and country are required")
	ErrInvalidState    = errors.New("listing: invalid moderation transition")
	ErrNotFound        = errors.New("listing: not found")
)

type ListingID string
type HostID string

type Category string

const (
	CategoryApartment Category = "apartment"
	CategoryHouse     Category = "house"
	CategoryVilla     Category = "villa"
	CategoryCabin     Category = "cabin"
	CategoryStudio    Category = "studio"
	CategoryRoom      Category = "room"
)

// Categories lists every accepted listing category.
var Categories = []Category{
	CategoryApartment, CategoryHouse, CategoryVilla,
	CategoryCabin, CategoryStudio, CategoryRoom,
}

func ParseCategory(raw string) (Category, error) {
	candidate := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range Categories {
		if c == candidate {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// ModerationStatus gates a listing's visibility in the public catalog.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

type Location struct {
	City    string
	Country string
}

func (l Location) Valid() bool {
	return strings.TrimSpace(l.City) != "" && strings.TrimSpace(l.Country) != ""
}

type Listing struct {
	ID               ListingID
	Host             HostID
	Title            string
	Description      string
	Category         Category
	Location         Location
	NightlyRateCents int64
	MainPhotoURL     string
	PhotoURLs        []string
	Rating           RatingSummary
	Status           ModerationStatus
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID               ListingID
	Host             HostID
	Title            string
	Description      string
	Category         Category
	Location         Location
	NightlyRateCents int64
	MainPhotoURL     string
	PhotoURLs        []string
	Now              time.Time
}

// New builds a listing in the pending moderation state.
func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	category, err := ParseCategory(string(params.Category))
	if err != nil {
		return nil, err
	}
	if !params.Location.Valid() {
		return nil, ErrLocation
	}
	if params.NightlyRateCents < 0 {
		return nil, ErrNightlyRate
	}

	now := params.Now.UTC()
	l := &Listing{
		ID:               params.ID,
		Host:             params.Host,
		Title:            title,
		Description:      strings.TrimSpace(params.Description),
		Category:         category,
		Location:         params.Location,
		NightlyRateCents: params.NightlyRateCents,
		MainPhotoURL:     strings.TrimSpace(params.MainPhotoURL),
		PhotoURLs:        append([]string(nil), params.PhotoURLs...),
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	l.Record(ListingSubmitted{ListingID: l.ID, HostID: l.Host, At: now})
	return l, nil
}

// Approve publishes a pending or previously rejected listing.
func (l *Listing) Approve(now time.Time) error {
	if l.Status == StatusApproved {
		return ErrInvalidState
	}
	l.Status = StatusApproved
	l.touch(now)
	l.Record(ListingApproved{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// Reject pulls a listing out of the public catalog.
func (l *Listing) Reject(reason string, now time.Time) error {
	if l.Status == StatusRejected {
		return ErrInvalidState
	}
	l.Status = StatusRejected
	l.touch(now)
	l.Record(ListingRejected{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

type UpdateParams struct {
	Title            string
	Description      string
	Category         Category
	Location         Location
	NightlyRateCents int64
	MainPhotoURL     string
}

// Update mutates host-editable fields. Edits to an approved listing send it
// back to moderation.
func (l *Listing) Update(params UpdateParams, now time.Time) error {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return ErrTitleRequired
	}
	category, err := ParseCategory(string(params.Category))
	if err != nil {
		return err
	}
	if !params.Location.Valid() {
		return ErrLocation
	}
	if params.NightlyRateCents < 0 {
		return ErrNightlyRate
	}
	l.Title = title
	l.Description = strings.TrimSpace(params.Description)
	l.Category = category
	l.Location = params.Location
	l.NightlyRateCents = params.NightlyRateCents
	if photo := strings.TrimSpace(params.MainPhotoURL); photo != "" {
		l.MainPhotoURL = photo
	}
	if l.Status == StatusApproved {
		l.Status = StatusPending
	}
	l.touch(now)
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// AddPhoto appends an uploaded photo URL, promoting the first one to main.
func (l *Listing) AddPhoto(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	l.PhotoURLs = append(l.PhotoURLs, url)
	if l.MainPhotoURL == "" {
		l.MainPhotoURL = url
	}
	l.touch(now)
}

// ApplyRating replaces the aggregate rating with a freshly recomputed summary.
func (l *Listing) ApplyRating(summary RatingSummary, now time.Time) {
	l.Rating = summary
	l.touch(now)
	l.Record(ListingRatingChanged{
		ListingID: l.ID,
		Average:   summary.Average,
		Count:     summary.Count,
		At:        l.UpdatedAt,
	})
}

func (l *Listing) OwnedBy(host HostID) bool {
	return l.Host == host
}

func (l *Listing) touch(now time.Time) {
	l.UpdatedAt = now.UTC()
}
