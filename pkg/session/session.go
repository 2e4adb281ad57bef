// Package session holds the signed-in owner for the hosted backend. It is
// loaded once at startup, injected through context, and removed on sign out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/peterbourgon/diskv/v3"
)

var (
	// ErrSignedOut is returned when no valid session is stored.
	ErrSignedOut = errors.New("session: signed out")
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("session: invalid token")
)

// Session is the signed-in identity.
type Session struct {
	Owner   string    `json:"owner"`
	Email   string    `json:"email,omitempty"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Claims are the access token claims issued by the auth service.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

const sessionKey = "session"

// Manager verifies access tokens and keeps the current session on disk.
type Manager struct {
	secret []byte
	d      *diskv.Diskv
	now    func() time.Time
}

// NewManager stores sessions under dir and verifies tokens with secret.
func NewManager(dir string, secret []byte) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("session: directory required")
	}
	return &Manager{
		secret: secret,
		d: diskv.New(diskv.Options{
			BasePath: dir,
			FilePerm: 0o600,
			PathPerm: 0o700,
		}),
		now: time.Now,
	}, nil
}

// Verify checks a token and returns the session it describes.
func (m *Manager) Verify(token string) (*Session, error) {
	if len(m.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Session{
		Owner:   claims.Subject,
		Email:   claims.Email,
		Token:   token,
		Expires: claims.ExpiresAt.Time,
	}, nil
}

// Issue signs a token for owner. It serves self-hosted setups that share the
// secret with the database.
func (m *Manager) Issue(owner, email string, ttl time.Duration) (string, error) {
	if owner == "" {
		return "", errors.New("session: owner required")
	}
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})
	return token.SignedString(m.secret)
}

// SignIn verifies token and persists the session.
func (m *Manager) SignIn(token string) (*Session, error) {
	s, err := m.Verify(token)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if err := m.d.Write(sessionKey, data); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}
	return s, nil
}

// Current returns the stored session, re-verified so expiry is enforced.
func (m *Manager) Current() (*Session, error) {
	if !m.d.Has(sessionKey) {
		return nil, ErrSignedOut
	}
	data, err := m.d.Read(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var stored Session
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, ErrSignedOut
	}
	s, err := m.Verify(stored.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignedOut, err)
	}
	return s, nil
}

// SignOut removes the stored session. Signing out twice is not an error.
func (m *Manager) SignOut() error {
	if !m.d.Has(sessionKey) {
		return nil
	}
	return m.d.Erase(sessionKey)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Owner returns the owner carried by ctx or "".
func Owner(ctx context.Context) string {
	if s, ok := FromContext(ctx); ok {
		return s.Owner
	}
	return ""
}
