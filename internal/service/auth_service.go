package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"
	"kizuki-server/internal/session"
	"kizuki-server/pkg/hash"
	"kizuki-server/pkg/jwt"

	"github.com/google/uuid"
)

// SessionGate is the gate plus sign-out.
type SessionGate interface {
	session.Gate
	Revoke(ctx context.Context, identity *session.Identity) error
}

type AuthService struct {
	userRepo          repository.UserRepository
	gate              SessionGate
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, gate SessionGate, jwtSecret string, jwtExp, refreshExp time.Duration) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		gate:              gate,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
	}
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) error {
	emailExists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailExists {
		return ErrEmailTaken
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    hashedPassword,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Login is the signIn action: email and password in, session tokens out.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := jwt.GenerateToken(user.ID, user.Email, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.ID, user.Email, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.Password = ""

	return &domain.LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateTyped(req.RefreshToken, s.jwtSecret, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	accessToken, err := jwt.GenerateToken(user.ID, user.Email, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtExpiration.Seconds()),
	}, nil
}

// Logout revokes the caller's access token. Without a session it is a no-op.
func (s *AuthService) Logout(ctx context.Context) error {
	identity, err := s.gate.Resolve(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil
		}
		return err
	}
	return s.gate.Revoke(ctx, identity)
}

// Session reports whether the request carries a live session.
func (s *AuthService) Session(ctx context.Context) *domain.SessionInfo {
	identity, err := s.gate.Resolve(ctx)
	if err != nil {
		return &domain.SessionInfo{HasUser: false}
	}

	info := &domain.SessionInfo{HasUser: true}
	if identity.Email != "" {
		email := identity.Email
		info.Email = &email
	}
	return info
}
