package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"

	"gorm.io/gorm"
)

type caseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) repository.CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) FindByMemo(ctx context.Context, userID, memoID string) (*domain.Case, error) {
	var row caseRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND memo_id = ?", userID, memoID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find case: %w", err)
	}
	return row.toDomain(), nil
}

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	row := newCaseRow(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrCaseExists
		}
		return fmt.Errorf("failed to create case: %w", err)
	}

	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *caseRepository) Replace(ctx context.Context, userID, caseID string, patch domain.CasePatch) (*domain.Case, error) {
	var updated *domain.Case

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row caseRow
		err := tx.Where("id = ? AND user_id = ?", caseID, userID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find case: %w", err)
		}

		c := row.toDomain()
		patch.Apply(c)
		row = *newCaseRow(c)

		// Save writes every column, so nil fields become NULL.
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to update case: %w", err)
		}

		updated = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
