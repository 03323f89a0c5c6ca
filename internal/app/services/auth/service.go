package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/uow"
	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrAccountBlocked     = errors.New("auth: account is blocked")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
)

const minPasswordLength = 8

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

type IDGenerator func() string

// Service owns registration, login and token resolution. Sessions are opaque
// bearer tokens stored server side, the token itself carries no claims.
type Service struct {
	UoWFactory uow.UoWFactory
	Sessions   domainauth.SessionStore
	Hasher     PasswordHasher
	Tokens     TokenGenerator
	NewID      IDGenerator
	SessionTTL time.Duration
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
	Now      time.Time
}

type Credentials struct {
	Email    string
	Password string
	Now      time.Time
}

// AuthResult couples the issued token with the profile payload.
type AuthResult struct {
	Token   string          `json:"token"`
	Profile dto.UserProfile `json:"profile"`
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	if len(params.Password) < minPasswordLength {
		return AuthResult{}, ErrPasswordTooShort
	}
	role, err := domainuser.ParseRole(params.Role)
	if err != nil {
		return AuthResult{}, err
	}
	if role == domainuser.RoleAdmin {
		// Admin accounts are provisioned out of band, never via the
		// public registration endpoint.
		return AuthResult{}, domainuser.ErrInvalidRole
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	hash, err := s.Hasher.Hash(params.Password)
	if err != nil {
		return AuthResult{}, err
	}

	unit, ctx, cleanup, err := support.BeginUnit(ctx, s.UoWFactory)
	if err != nil {
		return AuthResult{}, err
	}
	owned := cleanup != nil
	if owned {
		defer cleanup()
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if _, err := unit.Users().ByEmail(ctx, email); err == nil {
		return AuthResult{}, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return AuthResult{}, err
	}

	u, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID(s.NewID()),
		Email:        email,
		Name:         params.Name,
		Phone:        params.Phone,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	})
	if err != nil {
		return AuthResult{}, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return AuthResult{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return AuthResult{}, err
		}
	}
	return s.issueSession(ctx, u, now)
}

func (s *Service) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	now := creds.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return AuthResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	u, err := unit.Users().ByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if errors.Is(err, domainuser.ErrNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.Hasher.Compare(u.PasswordHash, creds.Password); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if u.Blocked {
		return AuthResult{}, ErrAccountBlocked
	}
	return s.issueSession(ctx, u, now)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.ErrTokenRequired
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken maps a bearer token to its live session. Expired sessions are
// removed eagerly.
func (s *Service) ResolveToken(ctx context.Context, token string, now time.Time) (*domainauth.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(now) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) issueSession(ctx context.Context, u *domainuser.User, now time.Time) (AuthResult, error) {
	raw, err := s.Tokens.NewToken()
	if err != nil {
		return AuthResult{}, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(raw),
		UserID: u.ID,
		Role:   u.Role,
		TTL:    s.SessionTTL,
		Now:    now,
	})
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: raw, Profile: dto.MapUserProfile(u)}, nil
}
