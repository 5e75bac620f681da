package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kizuki-server/pkg/jwt"
)

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

const testSecret = "session-test-secret"

func TestTokenGate_Resolve(t *testing.T) {
	gate := NewTokenGate(testSecret, nil)

	access, _ := jwt.GenerateToken("user-1", "u1@example.com", time.Hour, testSecret)
	refresh, _ := jwt.GenerateRefreshToken("user-1", "u1@example.com", time.Hour, testSecret)
	expired, _ := jwt.GenerateToken("user-1", "", -time.Minute, testSecret)
	foreign, _ := jwt.GenerateToken("user-1", "", time.Hour, "other-secret")

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "access token", token: access},
		{name: "no token", token: "", wantErr: true},
		{name: "refresh token is not a session", token: refresh, wantErr: true},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong signer", token: foreign, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := gate.Resolve(WithToken(context.Background(), tt.token))

			if tt.wantErr {
				if !errors.Is(err, ErrNoSession) {
					t.Errorf("Resolve() error = %v, want ErrNoSession", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if identity.UserID != "user-1" || identity.Email != "u1@example.com" {
				t.Errorf("identity = %+v", identity)
			}
			if identity.TokenID == "" || identity.ExpiresAt.IsZero() {
				t.Errorf("expected token id and expiry, got %+v", identity)
			}
		})
	}
}

func TestTokenGate_Revoke(t *testing.T) {
	store := newMemoryRevocations()
	gate := NewTokenGate(testSecret, store)

	token, _ := jwt.GenerateToken("user-1", "", time.Hour, testSecret)
	ctx := WithToken(context.Background(), token)

	identity, err := gate.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if err := gate.Revoke(ctx, identity); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if _, err := gate.Resolve(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Resolve() after revoke error = %v, want ErrNoSession", err)
	}
}

func TestTokenGate_RevocationStoreFailure(t *testing.T) {
	store := newMemoryRevocations()
	store.err = errors.New("redis down")
	gate := NewTokenGate(testSecret, store)

	token, _ := jwt.GenerateToken("user-1", "", time.Hour, testSecret)

	_, err := gate.Resolve(WithToken(context.Background(), token))
	if err == nil || errors.Is(err, ErrNoSession) {
		t.Errorf("Resolve() error = %v, want a store failure", err)
	}
}

func TestTokenGate_RevokeExpiredIdentityIsNoop(t *testing.T) {
	store := newMemoryRevocations()
	gate := NewTokenGate(testSecret, store)

	err := gate.Revoke(context.Background(), &Identity{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if len(store.revoked) != 0 {
		t.Errorf("expected nothing stored, got %v", store.revoked)
	}
}
