// Package session resolves the authenticated user behind a request.
//
// Credentials are attached to the request context by the HTTP layer and
// re-validated on every Resolve call. Nothing here caches an identity.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kizuki-server/pkg/jwt"
)

var ErrNoSession = errors.New("no session")

type Identity struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Gate resolves zero or one authenticated user for the caller.
type Gate interface {
	Resolve(ctx context.Context) (*Identity, error)
}

type tokenKey struct{}

// WithToken attaches the raw access token presented by the caller.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type TokenGate struct {
	secret  string
	revoked RevocationStore
}

func NewTokenGate(secret string, revoked RevocationStore) *TokenGate {
	if revoked == nil {
		revoked = NoopRevocationStore{}
	}
	return &TokenGate{secret: secret, revoked: revoked}
}

func (g *TokenGate) Resolve(ctx context.Context) (*Identity, error) {
	token := TokenFrom(ctx)
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := jwt.ValidateTyped(token, g.secret, jwt.TokenTypeAccess)
	if err != nil {
		return nil, ErrNoSession
	}

	revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrNoSession
	}

	identity := &Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Revoke signs out the identity until its token would have expired anyway.
func (g *TokenGate) Revoke(ctx context.Context, identity *Identity) error {
	ttl := time.Until(identity.ExpiresAt)
	if identity.TokenID == "" || ttl <= 0 {
		return nil
	}
	return g.revoked.Revoke(ctx, identity.TokenID, ttl)
}
