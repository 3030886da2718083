// Package session holds the signed-in user's access token between commands
// and hands it to the API client on every request.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession is returned when nobody is logged in.
	ErrNoSession = errors.New("not logged in")
	// ErrExpired is returned when the stored token is past its expiry.
	ErrExpired = errors.New("session expired, log in again")
)

// Session is an authenticated backend session.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// New builds a session from an access token. JWT claims are read without
// verifying the signature. Opaque tokens are accepted with no known expiry.
func New(token, email string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("empty access token")
	}
	s := &Session{Token: token, Email: email}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s, nil
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		s.IssuedAt = iat.Time
	}
	if s.Email == "" {
		if sub, err := claims.GetSubject(); err == nil {
			s.Email = sub
		}
	}
	return s, nil
}

// Expired reports whether the session has a known expiry at or before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists a single session.
type Store interface {
	// Load returns ErrNoSession when nothing is stored.
	Load() (*Session, error)
	Save(s *Session) error
	// Clear is a no-op when nothing is stored.
	Clear() error
}

// Manager ties a Store to the session lifecycle: set at login, read on
// every request, cleared at logout.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a Manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Login stores a new session for token.
func (m *Manager) Login(token, email string) (*Session, error) {
	s, err := New(token, email)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// Logout removes the stored session.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Current returns the live session, ErrNoSession, or ErrExpired.
func (m *Manager) Current() (*Session, error) {
	s, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		return nil, ErrExpired
	}
	return s, nil
}

// AccessToken returns the bearer token of the live session.
func (m *Manager) AccessToken() (string, error) {
	s, err := m.Current()
	if err != nil {
		return "", err
	}
	return s.Token, nil
}
