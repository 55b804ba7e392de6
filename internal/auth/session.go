package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned for missing, malformed, expired, or
// tampered session tokens. Callers surface it uniformly as
// "authentication required" without detail.
var ErrInvalidSession = errors.New("auth: invalid session")

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role         Role   `json:"role"`
	RestaurantID int64  `json:"restaurant_id"`
	WaiterID     *int64 `json:"waiter_id,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Sessions issues and resolves staff session tokens. Tokens are HS256 JWTs
// carrying the identity descriptor; nothing is persisted server-side.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session manager with the given signing secret and
// token lifetime.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a session token for the identity.
func (s *Sessions) Issue(id Identity) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role:         id.Role,
		RestaurantID: id.RestaurantID,
		WaiterID:     id.WaiterID,
		Name:         id.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve validates a token and reconstructs the identity descriptor.
func (s *Sessions) Resolve(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidSession
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, ErrInvalidSession
	}
	if claims.Role != RoleWaiter && claims.Role != RoleAdmin {
		return Identity{}, ErrInvalidSession
	}
	if claims.Role == RoleWaiter && claims.WaiterID == nil {
		return Identity{}, ErrInvalidSession
	}
	return Identity{
		Role:         claims.Role,
		RestaurantID: claims.RestaurantID,
		WaiterID:     claims.WaiterID,
		Name:         claims.Name,
	}, nil
}
