package admin

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("admin: invalid credentials")

// PasswordVerifier compares a stored hash with a submitted password.
type PasswordVerifier interface {
	Compare(hash, password string) error
}

// TokenGenerator mints opaque session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// SessionStore keeps issued admin sessions until they expire.
type SessionStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
}

// Service authenticates the single admin user against a configured
// password hash and issues short-lived bearer tokens.
type Service struct {
	PasswordHash string
	Passwords    PasswordVerifier
	Tokens       TokenGenerator
	Sessions     SessionStore
	SessionTTL   time.Duration
}

// Login verifies the password and returns a fresh session token. The
// error carries no detail about why authentication failed.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if s.PasswordHash == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if err := s.Passwords.Compare(s.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Save(ctx, token, s.sessionTTL()); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateToken reports whether the token belongs to a live session.
func (s *Service) ValidateToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.Sessions.Exists(ctx, token)
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 12 * time.Hour
}
