package users

import (
	"context"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	"homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

const (
	deleteUserKey = "user.delete"
	setBlockedKey = "user.set_blocked"
	listUsersKey  = "user.list"
)

// DeleteUserCommand removes an account and revokes its sessions. Admin
// accounts are refused before any state is touched.
type DeleteUserCommand struct {
	UserID string
}

func (c DeleteUserCommand) Key() string { return deleteUserKey }

// SetBlockedCommand blocks or unblocks an account. Blocked users cannot log
// in, existing sessions are revoked on block.
type SetBlockedCommand struct {
	UserID  string
	Blocked bool
}

func (c SetBlockedCommand) Key() string { return setBlockedKey }

// ListUsersQuery pages the admin user directory, with optional name or email
// filtering.
type ListUsersQuery struct {
	Query  string
	Limit  int
	Offset int
}

func (q ListUsersQuery) Key() string { return listUsersKey }

type AdminHandler struct {
	UoWFactory uow.UoWFactory
	Sessions   auth.SessionStore
}

func (h *AdminHandler) HandleDelete(ctx context.Context, cmd DeleteUserCommand) (struct{}, error) {
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	u, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return struct{}{}, err
	}
	if u.IsAdmin() {
		return struct{}{}, domainuser.ErrAdminProtected
	}
	if err := unit.Users().Delete(ctx, u.ID); err != nil {
		return struct{}{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
	}
	if h.Sessions != nil {
		if err := h.Sessions.DeleteByUser(ctx, u.ID); err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}

func (h *AdminHandler) HandleSetBlocked(ctx context.Context, cmd SetBlockedCommand) (dto.UserProfile, error) {
	unit, ctx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserProfile{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	u, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return dto.UserProfile{}, err
	}
	if u.IsAdmin() {
		return dto.UserProfile{}, domainuser.ErrAdminProtected
	}
	u.Blocked = cmd.Blocked
	if err := unit.Users().Save(ctx, u); err != nil {
		return dto.UserProfile{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.UserProfile{}, err
		}
	}
	if cmd.Blocked && h.Sessions != nil {
		if err := h.Sessions.DeleteByUser(ctx, u.ID); err != nil {
			return dto.UserProfile{}, err
		}
	}
	return dto.MapUserProfile(u), nil
}

func (h *AdminHandler) HandleList(ctx context.Context, query ListUsersQuery) (dto.UserList, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserList{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rows, total, err := unit.Users().List(ctx, domainuser.ListParams{
		Query:  query.Query,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		return dto.UserList{}, err
	}

	items := make([]dto.UserProfile, 0, len(rows))
	for _, u := range rows {
		items = append(items, dto.MapUserProfile(u))
	}
	return dto.UserList{Items: items, Total: total}, nil
}

var (
	_ commands.Handler[DeleteUserCommand, struct{}]        = commands.HandlerFunc[DeleteUserCommand, struct{}]((&AdminHandler{}).HandleDelete)
	_ commands.Handler[SetBlockedCommand, dto.UserProfile] = commands.HandlerFunc[SetBlockedCommand, dto.UserProfile]((&AdminHandler{}).HandleSetBlocked)
	_ queries.Handler[ListUsersQuery, dto.UserList]        = queries.HandlerFunc[ListUsersQuery, dto.UserList]((&AdminHandler{}).HandleList)
)
