package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		email      string
		expiration time.Duration
		secret     string
	}{
		{
			name:       "valid token generation",
			userID:     "user-123",
			email:      "a@example.com",
			expiration: 15 * time.Minute,
			secret:     "test-secret-key-32-characters!",
		},
		{
			name:       "short expiration",
			userID:     "user-456",
			expiration: 1 * time.Second,
			secret:     "test-secret",
		},
		{
			name:       "long expiration",
			userID:     "user-789",
			email:      "b@example.com",
			expiration: 24 * time.Hour,
			secret:     "test-secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.email, tt.expiration, tt.secret)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if len(token) < 100 {
				t.Errorf("GenerateToken() token too short, len = %d", len(token))
			}

			claims, err := ValidateToken(token, tt.secret)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != tt.userID || claims.Email != tt.email {
				t.Errorf("claims = %+v, want user %q email %q", claims, tt.userID, tt.email)
			}
			if claims.TokenType != TokenTypeAccess {
				t.Errorf("TokenType = %q, want %q", claims.TokenType, TokenTypeAccess)
			}
			if claims.ID == "" {
				t.Error("expected a token id (jti)")
			}
		})
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	secret := "refresh-secret-key"

	token, err := GenerateRefreshToken("user-refresh-test", "", 7*24*time.Hour, secret)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if _, err := ValidateTyped(token, secret, TokenTypeRefresh); err != nil {
		t.Errorf("ValidateTyped(refresh) error = %v", err)
	}
	if _, err := ValidateTyped(token, secret, TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ValidateTyped(access) error = %v, want ErrWrongTokenType", err)
	}
}

func TestValidateToken(t *testing.T) {
	userID := "test-user-id"
	secret := "validation-secret-key-32-chars"

	validToken, _ := GenerateToken(userID, "", 1*time.Hour, secret)
	expiredToken, _ := GenerateToken(userID, "", -1*time.Hour, secret)
	emptySubject, _ := GenerateToken("", "", 1*time.Hour, secret)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "valid token", token: validToken, secret: secret},
		{name: "expired token", token: expiredToken, secret: secret, wantErr: ErrExpiredToken},
		{name: "wrong secret", token: validToken, secret: "wrong-secret", wantErr: ErrInvalidToken},
		{name: "invalid token format", token: "invalid.token.format", secret: secret, wantErr: ErrInvalidToken},
		{name: "empty token", token: "", secret: secret, wantErr: ErrInvalidToken},
		{name: "missing user id", token: emptySubject, secret: secret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateToken() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != userID {
				t.Errorf("ValidateToken() userID = %v, want %v", claims.UserID, userID)
			}
		})
	}
}

func TestClaimsTimestamps(t *testing.T) {
	secret := "timestamp-test-secret"
	expiration := 1 * time.Hour

	before := time.Now().Add(-1 * time.Second)
	token, err := GenerateToken("timestamp-test-user", "", expiration, secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	after := time.Now().Add(1 * time.Second)

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	issuedAt := claims.IssuedAt.Time
	if issuedAt.Before(before) || issuedAt.After(after) {
		t.Errorf("IssuedAt out of range: got %v, range [%v, %v]", issuedAt, before, after)
	}

	expiresAt := claims.ExpiresAt.Time
	if expiresAt.Before(before.Add(expiration)) || expiresAt.After(after.Add(expiration)) {
		t.Errorf("ExpiresAt out of range: got %v", expiresAt)
	}
}

func BenchmarkValidateToken(b *testing.B) {
	secret := "benchmark-secret-key"
	token, _ := GenerateToken("benchmark-user", "", 15*time.Minute, secret)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := ValidateToken(token, secret); err != nil {
			b.Fatalf("ValidateToken() error = %v", err)
		}
	}
}
