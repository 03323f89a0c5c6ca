package users

import (
	"context"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainuser "homestay/internal/domain/user"
)

const (
	getProfileKey    = "user.profile"
	updateProfileKey = "user.update_profile"
	becomeHostKey    = "user.become_host"
)

// GetProfileQuery returns the caller's own account.
type GetProfileQuery struct {
	UserID string
}

func (q GetProfileQuery) Key() string { return getProfileKey }

// UpdateProfileCommand edits display name, phone and avatar.
type UpdateProfileCommand struct {
	UserID   string
	Name     string
	Phone    string
	PhotoURL string
	Now      time.Time
}

func (c UpdateProfileCommand) Key() string { return updateProfileKey }

// BecomeHostCommand upgrades a regular account so it can publish listings.
type BecomeHostCommand struct {
	UserID string
	Now    time.Time
}

func (c BecomeHostCommand) Key() string { return becomeHostKey }

type ProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ProfileHandler) HandleGet(ctx context.Context, query GetProfileQuery) (dto.UserProfile, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserProfile{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	u, err := unit.Users().ByID(ctx, domainuser.ID(query.UserID))
	if err != nil {
		return dto.UserProfile{}, err
	}
	return dto.MapUserProfile(u), nil
}

func (h *ProfileHandler) HandleUpdate(ctx context.Context, cmd UpdateProfileCommand) (dto.UserProfile, error) {
	return h.mutate(ctx, cmd.UserID, func(u *domainuser.User) error {
		return u.UpdateProfile(cmd.Name, cmd.Phone, cmd.PhotoURL, cmd.Now)
	})
}

func (h *ProfileHandler) HandleBecomeHost(ctx context.Context, cmd BecomeHostCommand) (dto.UserProfile, error) {
	return h.mutate(ctx, cmd.UserID, func(u *domainuser.User) error {
		u.Promote(cmd.Now)
		return nil
	})
}

func (h *ProfileHandler) mutate(ctx context.Context, userID string, apply func(*domainuser.User) error) (dto.UserProfile, error) {
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserProfile{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	u, err := unit.Users().ByID(ctx, domainuser.ID(userID))
	if err != nil {
		return dto.UserProfile{}, err
	}
	if err := apply(u); err != nil {
		return dto.UserProfile{}, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return dto.UserProfile{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.UserProfile{}, err
		}
	}
	return dto.MapUserProfile(u), nil
}

var (
	_ queries.Handler[GetProfileQuery, dto.UserProfile]       = queries.HandlerFunc[GetProfileQuery, dto.UserProfile]((&ProfileHandler{}).HandleGet)
	_ commands.Handler[UpdateProfileCommand, dto.UserProfile] = commands.HandlerFunc[UpdateProfileCommand, dto.UserProfile]((&ProfileHandler{}).HandleUpdate)
	_ commands.Handler[BecomeHostCommand, dto.UserProfile]    = commands.HandlerFunc[BecomeHostCommand, dto.UserProfile]((&ProfileHandler{}).HandleBecomeHost)
)
