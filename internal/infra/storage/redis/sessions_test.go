package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
	redisstore "homestay/internal/infra/storage/redis"
)

func newStore(t *testing.T) (*redisstore.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewSessionStore(client), srv
}

func newSession(t *testing.T, token, userID string, ttl time.Duration) *domainauth.Session {
	t.Helper()
	s, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: domainuser.ID(userID),
		Role:   domainuser.RoleUser,
		TTL:    ttl,
		Now:    time.Now(),
	})
	require.NoError(t, err)
	return s
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	session := newSession(t, "tok-1", "usr-1", time.Hour)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Role, got.Role)
}

func TestGetUnknownTokenReturnsNotFound(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "tok-missing")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestKeysExpireWithTheSession(t *testing.T) {
	store, srv := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession(t, "tok-1", "usr-1", time.Minute)))
	srv.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestDeleteRemovesTokenAndIndexEntry(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession(t, "tok-1", "usr-1", time.Hour)))
	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestDeleteByUserRevokesEverySession(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession(t, "tok-1", "usr-1", time.Hour)))
	require.NoError(t, store.Save(ctx, newSession(t, "tok-2", "usr-1", time.Hour)))
	require.NoError(t, store.Save(ctx, newSession(t, "tok-3", "usr-2", time.Hour)))

	require.NoError(t, store.DeleteByUser(ctx, "usr-1"))

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	_, err = store.Get(ctx, "tok-2")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	got, err := store.Get(ctx, "tok-3")
	require.NoError(t, err)
	assert.Equal(t, domainauth.Token("tok-3"), got.Token)
}
