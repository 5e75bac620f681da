package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	row := &userRow{
		ID:          user.ID,
		Email:       normalizeEmail(user.Email),
		DisplayName: user.DisplayName,
		Password:    user.Password,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", normalizeEmail(email))
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) first(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where(where, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &domain.User{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Password:    row.Password,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":        normalizeEmail(user.Email),
			"display_name": user.DisplayName,
			"password":     user.Password,
			"updated_at":   user.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}
