package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"

	"gorm.io/gorm"
)

type memoRepository struct {
	db *gorm.DB
}

func NewMemoRepository(db *gorm.DB) repository.MemoRepository {
	return &memoRepository{db: db}
}

func (r *memoRepository) Create(ctx context.Context, memo *domain.Memo) error {
	if err := r.db.WithContext(ctx).Create(newMemoRow(memo)).Error; err != nil {
		return fmt.Errorf("failed to create memo: %w", err)
	}
	return nil
}

func (r *memoRepository) FindByID(ctx context.Context, userID, id string) (*domain.Memo, error) {
	var row memoRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find memo: %w", err)
	}
	return row.toDomain(), nil
}

func (r *memoRepository) ListLatest(ctx context.Context, userID string, limit int) ([]*domain.Memo, error) {
	var rows []memoRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}

	memos := make([]*domain.Memo, 0, len(rows))
	for i := range rows {
		memos = append(memos, rows[i].toDomain())
	}
	return memos, nil
}
