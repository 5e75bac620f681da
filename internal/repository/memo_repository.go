package repository

import (
	"context"
	"fmt"

	"kizuki-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type MemoRepository interface {
	Create(ctx context.Context, memo *domain.Memo) error
	FindByID(ctx context.Context, userID, id string) (*domain.Memo, error)
	ListLatest(ctx context.Context, userID string, limit int) ([]*domain.Memo, error)
}

type memoDoc struct {
	DocType   string `json:"doc_type"`
	CreatedMS int64  `json:"created_ms"`
	domain.Memo
}

type memoRepository struct {
	client *kivik.Client
	dbName string
}

func NewMemoRepository(client *kivik.Client, dbName string) MemoRepository {
	return &memoRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *memoRepository) Create(ctx context.Context, memo *domain.Memo) error {
	db := r.client.DB(r.dbName)

	doc := memoDoc{
		DocType:   docTypeMemo,
		CreatedMS: memo.CreatedAt.UnixMilli(),
		Memo:      *memo,
	}

	docID := fmt.Sprintf("memo:%s", memo.ID)
	if _, err := db.Put(ctx, docID, doc); err != nil {
		return fmt.Errorf("failed to create memo: %w", err)
	}

	return nil
}

func (r *memoRepository) FindByID(ctx context.Context, userID, id string) (*domain.Memo, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("memo:%s", id)
	var doc memoDoc
	if err := db.Get(ctx, docID).ScanDoc(&doc); err != nil {
		if isCouchNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find memo: %w", err)
	}

	// Foreign memos are indistinguishable from missing ones.
	if doc.UserID != userID {
		return nil, ErrNotFound
	}

	return &doc.Memo, nil
}

func (r *memoRepository) ListLatest(ctx context.Context, userID string, limit int) ([]*domain.Memo, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   docTypeMemo,
			"user_id":    userID,
			"created_ms": map[string]interface{}{"$gt": nil},
		},
		"sort": []map[string]string{
			{"doc_type": "desc"},
			{"user_id": "desc"},
			{"created_ms": "desc"},
		},
		"limit": limit,
	}

	rows := db.Find(ctx, query)
	defer rows.Close()

	memos := make([]*domain.Memo, 0, limit)
	for rows.Next() {
		var doc memoDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		memo := doc.Memo
		memos = append(memos, &memo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}

	return memos, nil
}
