package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "user_sessions:"
)

// SessionStore persists bearer-token sessions in Redis so every node shares
// the same login state. The key expires with the session.
type SessionStore struct {
	client *goredis.Client
}

func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

type sessionDoc struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, session *auth.Session) error {
	doc := sessionDoc{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Role:      string(session.Role),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return auth.ErrTTLInvalid
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+doc.Token, payload, ttl)
	pipe.SAdd(ctx, userIndexPrefix+doc.UserID, doc.Token)
	pipe.Expire(ctx, userIndexPrefix+doc.UserID, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, token auth.Token) (*auth.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+string(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, auth.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("redis: decode session: %w", err)
	}
	return &auth.Session{
		Token:     auth.Token(doc.Token),
		UserID:    domainuser.ID(doc.UserID),
		Role:      domainuser.Role(doc.Role),
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token auth.Token) error {
	session, err := s.Get(ctx, token)
	if errors.Is(err, auth.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+string(token))
	pipe.SRem(ctx, userIndexPrefix+string(session.UserID), string(token))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	indexKey := userIndexPrefix + string(userID)
	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

var _ auth.SessionStore = (*SessionStore)(nil)
