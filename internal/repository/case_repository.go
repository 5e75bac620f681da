package repository

import (
	"context"
	"fmt"
	"time"

	"kizuki-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type CaseRepository interface {
	FindByMemo(ctx context.Context, userID, memoID string) (*domain.Case, error)
	// Create returns ErrCaseExists when the user already has a case for
	// the memo.
	Create(ctx context.Context, c *domain.Case) error
	// Replace overwrites every editable field of the user's case with
	// patch and returns the stored row.
	Replace(ctx context.Context, userID, caseID string, patch domain.CasePatch) (*domain.Case, error)
}

type caseDoc struct {
	DocID   string `json:"_id,omitempty"`
	Rev     string `json:"_rev,omitempty"`
	DocType string `json:"doc_type"`
	domain.Case
}

type caseRepository struct {
	client *kivik.Client
	dbName string
}

func NewCaseRepository(client *kivik.Client, dbName string) CaseRepository {
	return &caseRepository{
		client: client,
		dbName: dbName,
	}
}

// The document id carries the (user, memo) pair, so CouchDB itself rejects
// a second case for the same memo with 409.
func caseDocID(userID, memoID string) string {
	return fmt.Sprintf("case:%s:%s", userID, memoID)
}

func (r *caseRepository) FindByMemo(ctx context.Context, userID, memoID string) (*domain.Case, error) {
	db := r.client.DB(r.dbName)

	var doc caseDoc
	if err := db.Get(ctx, caseDocID(userID, memoID)).ScanDoc(&doc); err != nil {
		if isCouchNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find case: %w", err)
	}

	return &doc.Case, nil
}

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	db := r.client.DB(r.dbName)

	doc := caseDoc{
		DocType: docTypeCase,
		Case:    *c,
	}

	if _, err := db.Put(ctx, caseDocID(c.UserID, c.MemoID), doc); err != nil {
		if isCouchConflict(err) {
			return ErrCaseExists
		}
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

func (r *caseRepository) Replace(ctx context.Context, userID, caseID string, patch domain.CasePatch) (*domain.Case, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": docTypeCase,
			"user_id":  userID,
			"id":       caseID,
		},
		"limit": 1,
	}

	rows := db.Find(ctx, query)
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query case: %w", err)
		}
		return nil, ErrNotFound
	}

	var doc caseDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan case: %w", err)
	}

	patch.Apply(&doc.Case)
	doc.UpdatedAt = time.Now().UTC()

	if _, err := db.Put(ctx, doc.DocID, doc); err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	return &doc.Case, nil
}
