// Package credentials supplies the user id and bearer token of the
// authenticated session.
package credentials

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSubject = errors.New("token carries no user id")

// Provider is read on every connection attempt. Empty values mean the
// session is not authenticated.
type Provider interface {
	UserID() string
	Token() string
}

// Static holds a token and user id set by the login flow.
type Static struct {
	mu     sync.RWMutex
	userID string
	token  string
}

func NewStatic(userID, token string) *Static {
	return &Static{userID: userID, token: token}
}

func (s *Static) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Static) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces both values; pass empty strings on logout.
func (s *Static) Set(userID, token string) {
	s.mu.Lock()
	s.userID, s.token = userID, token
	s.mu.Unlock()
}

// Claims are the fields the client reads from the access token.
type Claims struct {
	jwt.RegisteredClaims
	NameID string `json:"nameid,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// FromJWT derives the user id from the token's sub, nameid or userId claim.
// The signature is not verified.
func FromJWT(token string) (*Static, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.NameID
	}
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return nil, ErrNoSubject
	}
	return NewStatic(userID, token), nil
}
