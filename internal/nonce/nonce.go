// Package nonce issues single-use form tokens. A token is an HS256 JWT
// bound to one action; once verified it cannot be presented again.
package nonce

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

var (
	// ErrInvalid is returned for tokens that fail signature, expiry or action checks
	ErrInvalid = errors.New("invalid token")
	// ErrReused is returned for a token that was already accepted once
	ErrReused = errors.New("token already used")
)

// Issuer creates and verifies tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration

	mu   sync.Mutex
	used map[string]int64 // jti -> expiry (unix seconds)
	now  func() time.Time
}

// NewIssuer creates an issuer. An empty secret is replaced with random
// bytes, which invalidates outstanding tokens on restart.
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate nonce secret: %w", err)
		}
	}
	return &Issuer{
		secret: secret,
		ttl:    ttl,
		used:   make(map[string]int64),
		now:    time.Now,
	}, nil
}

// Issue returns a fresh token for action
func (i *Issuer) Issue(action string) (string, error) {
	now := i.now()
	claims := jwt.StandardClaims{
		Id:        uuid.NewString(),
		Subject:   action,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(i.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign nonce: %w", err)
	}
	return token, nil
}

// Verify accepts a token issued for action exactly once
func (i *Issuer) Verify(token, action string) error {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalid
	}

	now := i.now().Unix()
	if claims.Subject != action || claims.Id == "" || claims.ExpiresAt < now {
		return ErrInvalid
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for jti, exp := range i.used {
		if exp < now {
			delete(i.used, jti)
		}
	}
	if _, seen := i.used[claims.Id]; seen {
		return ErrReused
	}
	i.used[claims.Id] = claims.ExpiresAt
	return nil
}
