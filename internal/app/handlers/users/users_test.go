package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usersapp "homestay/internal/app/handlers/users"
	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

var clock = time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, factory memory.Factory, id, email string, role domainuser.Role) *domainuser.User {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    clock,
	})
	require.NoError(t, err)
	require.NoError(t, factory.UserRepo.Save(context.Background(), u))
	return u
}

func seedSession(t *testing.T, store *memory.SessionStore, token, userID string) {
	t.Helper()
	s, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: domainuser.ID(userID),
		Role:   domainuser.RoleUser,
		TTL:    time.Hour,
		Now:    clock,
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), s))
}

func TestDeleteUserProtectsAdminsAndRevokesSessions(t *testing.T) {
	factory := memory.NewFactory()
	sessions := memory.NewSessionStore()
	seedUser(t, factory, "usr-1", "guest@example.com", domainuser.RoleUser)
	seedUser(t, factory, "usr-adm", "admin@example.com", domainuser.RoleAdmin)
	seedSession(t, sessions, "tok-1", "usr-1")

	handler := &usersapp.AdminHandler{UoWFactory: factory, Sessions: sessions}
	ctx := context.Background()

	_, err := handler.HandleDelete(ctx, usersapp.DeleteUserCommand{UserID: "usr-adm"})
	assert.ErrorIs(t, err, domainuser.ErrAdminProtected)

	_, err = handler.HandleDelete(ctx, usersapp.DeleteUserCommand{UserID: "usr-1"})
	require.NoError(t, err)

	_, err = factory.UserRepo.ByID(ctx, "usr-1")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
	_, err = sessions.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestBlockRevokesSessionsAndUnblockKeepsThem(t *testing.T) {
	factory := memory.NewFactory()
	sessions := memory.NewSessionStore()
	seedUser(t, factory, "usr-1", "guest@example.com", domainuser.RoleUser)
	seedSession(t, sessions, "tok-1", "usr-1")

	handler := &usersapp.AdminHandler{UoWFactory: factory, Sessions: sessions}
	ctx := context.Background()

	res, err := handler.HandleSetBlocked(ctx, usersapp.SetBlockedCommand{UserID: "usr-1", Blocked: true})
	require.NoError(t, err)
	assert.Equal(t, "usr-1", res.ID)

	_, err = sessions.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	u, err := factory.UserRepo.ByID(ctx, "usr-1")
	require.NoError(t, err)
	assert.True(t, u.Blocked)

	_, err = handler.HandleSetBlocked(ctx, usersapp.SetBlockedCommand{UserID: "usr-1", Blocked: false})
	require.NoError(t, err)
	u, err = factory.UserRepo.ByID(ctx, "usr-1")
	require.NoError(t, err)
	assert.False(t, u.Blocked)
}

func TestBlockRejectsAdminAccounts(t *testing.T) {
	factory := memory.NewFactory()
	seedUser(t, factory, "usr-adm", "admin@example.com", domainuser.RoleAdmin)

	handler := &usersapp.AdminHandler{UoWFactory: factory, Sessions: memory.NewSessionStore()}
	_, err := handler.HandleSetBlocked(context.Background(), usersapp.SetBlockedCommand{UserID: "usr-adm", Blocked: true})
	assert.ErrorIs(t, err, domainuser.ErrAdminProtected)
}

func TestListUsersFiltersByQuery(t *testing.T) {
	factory := memory.NewFactory()
	seedUser(t, factory, "usr-1", "alice@example.com", domainuser.RoleUser)
	seedUser(t, factory, "usr-2", "bob@example.com", domainuser.RoleHost)

	handler := &usersapp.AdminHandler{UoWFactory: factory}
	res, err := handler.HandleList(context.Background(), usersapp.ListUsersQuery{Query: "alice"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "alice@example.com", res.Items[0].Email)
	assert.Equal(t, 1, res.Total)
}

func TestUpdateProfileAndBecomeHost(t *testing.T) {
	factory := memory.NewFactory()
	seedUser(t, factory, "usr-1", "guest@example.com", domainuser.RoleUser)

	handler := &usersapp.ProfileHandler{UoWFactory: factory}
	ctx := context.Background()

	res, err := handler.HandleUpdate(ctx, usersapp.UpdateProfileCommand{
		UserID: "usr-1",
		Name:   "Alice",
		Phone:  "+3161234",
		Now:    clock.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.Name)

	res, err = handler.HandleBecomeHost(ctx, usersapp.BecomeHostCommand{UserID: "usr-1", Now: clock.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, string(domainuser.RoleHost), res.Role)

	got, err := handler.HandleGet(ctx, usersapp.GetProfileQuery{UserID: "usr-1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, string(domainuser.RoleHost), got.Role)
}
