package scope

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies scope tokens. Tokens are HS256 JWTs binding
// a scope to one resource and one action for a limited time, so a selection
// made on a list page cannot be replayed elsewhere or later.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec with the given signing secret and token
// lifetime.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

type tokenClaims struct {
	Resource string `json:"res"`
	Scope    Scope  `json:"scope"`
	jwt.RegisteredClaims
}

// Issue signs a scope for the given resource. The resource is the content
// type's dotted name; a token never carries an action, so the same selection
// can be previewed and then run.
func (c *TokenCodec) Issue(resource string, s Scope) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}

	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Resource: resource,
		Scope:    s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	return token.SignedString(c.secret)
}

// Resolve verifies a token and returns its scope. It fails closed: any
// verification problem yields ErrInvalidToken, and a token issued for a
// different resource yields ErrScopeMismatch. The caller re-validates the
// scope against the current descriptor before executing anything with it.
func (c *TokenCodec) Resolve(raw, resource string) (Scope, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Scope{}, ErrInvalidToken
	}

	if claims.Resource != resource {
		return Scope{}, ErrScopeMismatch
	}

	if err := claims.Scope.Validate(); err != nil {
		return Scope{}, ErrInvalidToken
	}

	return claims.Scope, nil
}
