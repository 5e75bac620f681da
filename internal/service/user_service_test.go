package service

import (
	"context"
	"errors"
	"testing"

	"kizuki-server/internal/domain"
)

func TestUserService_Me(t *testing.T) {
	repo := newMockUserRepository()
	repo.Create(context.Background(), &domain.User{ID: "user1", Email: "user1@example.com", Password: "hash"})

	tests := []struct {
		name    string
		gate    *fakeGate
		wantErr error
	}{
		{name: "signed in", gate: signedInAs("user1")},
		{name: "no session", gate: signedOut(), wantErr: ErrUnauthorized},
		{name: "user deleted", gate: signedInAs("ghost"), wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUserService(repo, tt.gate).Me(context.Background())

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Me() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.Password != "" {
				t.Error("Me() leaked the password hash")
			}
		})
	}
}

func TestUserService_UpdateDisplayName(t *testing.T) {
	repo := newMockUserRepository()
	repo.Create(context.Background(), &domain.User{ID: "user1", Email: "user1@example.com", Password: "hash"})

	user, err := NewUserService(repo, signedInAs("user1")).UpdateDisplayName(context.Background(), "Field Team A")
	if err != nil {
		t.Fatalf("UpdateDisplayName() error = %v", err)
	}
	if user.DisplayName != "Field Team A" || user.Password != "" {
		t.Errorf("user = %+v", user)
	}
	if stored := repo.users["user1"]; stored.DisplayName != "Field Team A" || stored.Password != "hash" {
		t.Errorf("stored = %+v", stored)
	}
}
