package service

import (
	"context"
	"errors"
	"time"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/memoutil"
	"kizuki-server/internal/repository"
	"kizuki-server/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultMemoListLimit = 5
	MaxMemoListLimit     = 100
)

// Notifier fans changes out to the user's other open clients.
type Notifier interface {
	MemoCreated(userID string, memo *domain.MemoSummary)
	CaseUpdated(userID string, c *domain.Case)
}

type MemoService struct {
	repo         repository.MemoRepository
	gate         session.Gate
	notifier     Notifier
	defaultLimit int
	log          zerolog.Logger
}

func NewMemoService(
	repo repository.MemoRepository,
	gate session.Gate,
	notifier Notifier,
	defaultLimit int,
	log zerolog.Logger,
) *MemoService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultMemoListLimit
	}
	return &MemoService{
		repo:         repo,
		gate:         gate,
		notifier:     notifier,
		defaultLimit: defaultLimit,
		log:          log.With().Str("component", "memo_service").Logger(),
	}
}

// SaveMemo stores content as a new memo of the current user. Blank content
// is rejected before the session is consulted.
func (s *MemoService) SaveMemo(ctx context.Context, content string) (*domain.Memo, error) {
	if memoutil.IsBlank(content) {
		return nil, ErrEmpty
	}

	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	memo := &domain.Memo{
		ID:         uuid.New().String(),
		UserID:     identity.UserID,
		Content:    content,
		Title:      memoutil.GenerateTitle(content),
		DisplayKey: memoutil.GenerateDisplayKey(),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, memo); err != nil {
		s.log.Error().Err(err).Str("user_id", identity.UserID).Msg("memo insert failed")
		return nil, &StorageError{Op: "save memo", Err: err}
	}

	if s.notifier != nil {
		s.notifier.MemoCreated(identity.UserID, memo.Summary())
	}

	return memo, nil
}

// FetchLatestMemos lists the current user's newest memos. An empty list
// means the user has no memos; a missing session and a failed query are
// reported as errors.
func (s *MemoService) FetchLatestMemos(ctx context.Context, limit int) ([]*domain.MemoSummary, error) {
	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxMemoListLimit {
		limit = MaxMemoListLimit
	}

	memos, err := s.repo.ListLatest(ctx, identity.UserID, limit)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", identity.UserID).Msg("memo list query failed")
		return nil, &StorageError{Op: "list memos", Err: err}
	}

	summaries := make([]*domain.MemoSummary, 0, len(memos))
	for _, m := range memos {
		summaries = append(summaries, m.Summary())
	}
	return summaries, nil
}

func (s *MemoService) GetMemo(ctx context.Context, memoID string) (*domain.Memo, error) {
	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	memo, err := s.repo.FindByID(ctx, identity.UserID, memoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemoNotFound
		}
		return nil, &StorageError{Op: "get memo", Err: err}
	}

	return memo, nil
}
