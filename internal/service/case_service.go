package service

import (
	"context"
	"errors"
	"time"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"
	"kizuki-server/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CaseService struct {
	repo     repository.CaseRepository
	gate     session.Gate
	notifier Notifier
	log      zerolog.Logger
}

func NewCaseService(repo repository.CaseRepository, gate session.Gate, notifier Notifier, log zerolog.Logger) *CaseService {
	return &CaseService{
		repo:     repo,
		gate:     gate,
		notifier: notifier,
		log:      log.With().Str("component", "case_service").Logger(),
	}
}

// GetOrCreateCaseByMemo returns the current user's case for memoID,
// creating a draft on first access. A create that loses the race against
// a concurrent first access returns the winner's row.
func (s *CaseService) GetOrCreateCaseByMemo(ctx context.Context, memoID string) (*domain.Case, error) {
	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByMemo(ctx, identity.UserID, memoID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, &StorageError{Op: "read case", Err: err}
	}

	now := time.Now().UTC()
	status := domain.CaseStatusDraft
	draft := &domain.Case{
		ID:           uuid.New().String(),
		MemoID:       memoID,
		UserID:       identity.UserID,
		ProductCodes: []string{},
		Status:       &status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Create(ctx, draft)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, repository.ErrCaseExists) {
		s.log.Error().Err(err).Str("user_id", identity.UserID).Str("memo_id", memoID).Msg("case insert failed")
		return nil, &StorageError{Op: "create case", Err: err}
	}

	s.log.Info().Str("user_id", identity.UserID).Str("memo_id", memoID).Msg("case created concurrently, re-reading")

	winner, err := s.repo.FindByMemo(ctx, identity.UserID, memoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCreateFailed
		}
		return nil, &StorageError{Op: "read case", Err: err}
	}
	return winner, nil
}

// UpdateCase overwrites the case with patch. Fields left nil in patch are
// cleared, not kept.
func (s *CaseService) UpdateCase(ctx context.Context, caseID string, patch domain.CasePatch) (*domain.Case, error) {
	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Replace(ctx, identity.UserID, caseID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUpdateFailed
		}
		s.log.Error().Err(err).Str("user_id", identity.UserID).Str("case_id", caseID).Msg("case update failed")
		return nil, &StorageError{Op: "update case", Err: err}
	}

	if s.notifier != nil {
		s.notifier.CaseUpdated(identity.UserID, updated)
	}

	return updated, nil
}
