package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/infra/storage/s3"
)

const (
	createListingKey = "listing.create"
	updateListingKey = "listing.update"
	deleteListingKey = "listing.delete"
	addPhotoKey      = "listing.add_photo"
)

// ErrNotOwner rejects edits to a listing owned by a different host.
var ErrNotOwner = errors.New("listings: listing belongs to another host")

// CreateListingCommand submits a new listing for moderation.
type CreateListingCommand struct {
	ListingID        string
	HostID           string
	Title            string
	Description      string
	Category         string
	City             string
	Country          string
	NightlyRateCents int64
	Now              time.Time
}

func (c CreateListingCommand) Key() string { return createListingKey }

// UpdateListingCommand edits host-managed fields. An approved listing goes
// back to moderation after an edit.
type UpdateListingCommand struct {
	ListingID        string
	HostID           string
	Title            string
	Description      string
	Category         string
	City             string
	Country          string
	NightlyRateCents int64
	Now              time.Time
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

// DeleteListingCommand removes the host's listing entirely.
type DeleteListingCommand struct {
	ListingID string
	HostID    string
	Admin     bool
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

// AddListingPhotoCommand uploads a photo to object storage and attaches its
// public URL to the listing. The first photo becomes the main one.
type AddListingPhotoCommand struct {
	ListingID   string
	HostID      string
	FileName    string
	ContentType string
	Content     io.Reader
	Now         time.Time
}

func (c AddListingPhotoCommand) Key() string { return addPhotoKey }

type ManageHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Uploader   s3.Uploader
}

func (h *ManageHandler) HandleCreate(ctx context.Context, cmd CreateListingCommand) (dto.Listing, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:               domainlisting.ListingID(cmd.ListingID),
		Host:             domainlisting.HostID(cmd.HostID),
		Title:            cmd.Title,
		Description:      cmd.Description,
		Category:         domainlisting.Category(cmd.Category),
		Location:         domainlisting.Location{City: cmd.City, Country: cmd.Country},
		NightlyRateCents: cmd.NightlyRateCents,
		Now:              now,
	})
	if err != nil {
		return dto.Listing{}, err
	}
	return h.persist(ctx, unit, l, owned)
}

func (h *ManageHandler) HandleUpdate(ctx context.Context, cmd UpdateListingCommand) (dto.Listing, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	l, err := h.ownedListing(ctx, unit, cmd.ListingID, cmd.HostID)
	if err != nil {
		return dto.Listing{}, err
	}
	if err := l.Update(domainlisting.UpdateParams{
		Title:            cmd.Title,
		Description:      cmd.Description,
		Category:         domainlisting.Category(cmd.Category),
		Location:         domainlisting.Location{City: cmd.City, Country: cmd.Country},
		NightlyRateCents: cmd.NightlyRateCents,
	}, now); err != nil {
		return dto.Listing{}, err
	}
	return h.persist(ctx, unit, l, owned)
}

func (h *ManageHandler) HandleDelete(ctx context.Context, cmd DeleteListingCommand) (struct{}, error) {
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return struct{}{}, err
	}
	if !cmd.Admin && !l.OwnedBy(domainlisting.HostID(cmd.HostID)) {
		return struct{}{}, ErrNotOwner
	}
	if err := unit.Listings().Delete(ctx, l.ID); err != nil {
		return struct{}{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}

func (h *ManageHandler) HandleAddPhoto(ctx context.Context, cmd AddListingPhotoCommand) (dto.Listing, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	uploader := h.Uploader
	if uploader == nil {
		uploader = s3.NoopUploader{}
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	l, err := h.ownedListing(ctx, unit, cmd.ListingID, cmd.HostID)
	if err != nil {
		return dto.Listing{}, err
	}

	key := photoKey(cmd.ListingID, cmd.FileName, now)
	url, err := uploader.Upload(ctx, key, cmd.Content, cmd.ContentType)
	if err != nil {
		return dto.Listing{}, err
	}
	l.AddPhoto(url, now)
	return h.persist(ctx, unit, l, owned)
}

func (h *ManageHandler) ownedListing(ctx context.Context, unit uow.UnitOfWork, listingID, hostID string) (*domainlisting.Listing, error) {
	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(listingID))
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(domainlisting.HostID(hostID)) {
		return nil, ErrNotOwner
	}
	return l, nil
}

func (h *ManageHandler) persist(ctx context.Context, unit uow.UnitOfWork, l *domainlisting.Listing, owned bool) (dto.Listing, error) {
	if err := unit.Listings().Save(ctx, l); err != nil {
		return dto.Listing{}, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, l.PendingEvents()); err != nil {
		return dto.Listing{}, err
	}
	l.ClearEvents()
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.Listing{}, err
		}
	}
	return dto.MapListing(l), nil
}

func photoKey(listingID, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("listings/%s/%d%s", listingID, now.UnixNano(), ext)
}

var (
	_ commands.Handler[CreateListingCommand, dto.Listing]   = commands.HandlerFunc[CreateListingCommand, dto.Listing]((&ManageHandler{}).HandleCreate)
	_ commands.Handler[UpdateListingCommand, dto.Listing]   = commands.HandlerFunc[UpdateListingCommand, dto.Listing]((&ManageHandler{}).HandleUpdate)
	_ commands.Handler[DeleteListingCommand, struct{}]      = commands.HandlerFunc[DeleteListingCommand, struct{}]((&ManageHandler{}).HandleDelete)
	_ commands.Handler[AddListingPhotoCommand, dto.Listing] = commands.HandlerFunc[AddListingPhotoCommand, dto.Listing]((&ManageHandler{}).HandleAddPhoto)
)
