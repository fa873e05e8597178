// Package token issues and verifies the signed credentials used by the API:
// short-lived access tokens, cookie-bound refresh tokens and password-reset
// tokens. Every kind is signed with its own HMAC key.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
	Reset   Kind = "reset"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
	ResetTTL   = 15 * time.Minute
)

var (
	ErrInvalid = errors.New("token invalid")
	ErrExpired = errors.New("token expired")
)

// Config holds the signing keys. The three keys must differ.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	ResetSecret   []byte
}

// Identity is what a token says about its bearer. Reset tokens carry only Email.
type Identity struct {
	UserID string
	Email  string
	Phone  string
	Name   string
}

type Claims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.Subject, Email: c.Email, Phone: c.Phone, Name: c.Name}
}

type Manager struct {
	keys map[Kind][]byte
	ttls map[Kind]time.Duration
	now  func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 || len(cfg.ResetSecret) == 0 {
		return nil, errors.New("token: all signing secrets are required")
	}
	a, r, s := string(cfg.AccessSecret), string(cfg.RefreshSecret), string(cfg.ResetSecret)
	if a == r || a == s || r == s {
		return nil, errors.New("token: signing secrets must be distinct")
	}

	return &Manager{
		keys: map[Kind][]byte{
			Access:  cfg.AccessSecret,
			Refresh: cfg.RefreshSecret,
			Reset:   cfg.ResetSecret,
		},
		ttls: map[Kind]time.Duration{
			Access:  AccessTTL,
			Refresh: RefreshTTL,
			Reset:   ResetTTL,
		},
		now: time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue signs a token of the given kind for id and returns it with its expiry.
func (m *Manager) Issue(kind Kind, id Identity) (string, time.Time, error) {
	key, ok := m.keys[kind]
	if !ok {
		return "", time.Time{}, fmt.Errorf("issue token: unknown kind %q", kind)
	}

	now := m.now()
	expiresAt := now.Add(m.ttls[kind])
	claims := Claims{
		Email: id.Email,
		Phone: id.Phone,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry against the key of the given kind.
// It returns ErrExpired for a well-signed but expired token and ErrInvalid
// for everything else.
func (m *Manager) Verify(kind Kind, raw string) (*Claims, error) {
	key, ok := m.keys[kind]
	if !ok || raw == "" {
		return nil, ErrInvalid
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
