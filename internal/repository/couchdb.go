package repository

import (
	"context"
	"fmt"

	"github.com/go-kivik/kivik/v4"
)

const (
	docTypeMemo = "memo"
	docTypeCase = "case"
	docTypeUser = "user"

	indexDesignDoc = "kizuki-indexes"
)

// EnsureDatabase creates the database and the Mango indexes the
// repositories query with. Safe to call on every start.
func EnsureDatabase(ctx context.Context, client *kivik.Client, dbName string) (created bool, err error) {
	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, dbName); err != nil {
			return false, fmt.Errorf("failed to create database: %w", err)
		}
		created = true
	}

	db := client.DB(dbName)
	indexes := map[string][]string{
		"memos-by-user-created": {"doc_type", "user_id", "created_ms"},
		"cases-by-user-id":      {"doc_type", "user_id", "id"},
		"users-by-email":        {"doc_type", "email"},
	}
	for name, fields := range indexes {
		index := map[string]interface{}{"fields": fields}
		if err := db.CreateIndex(ctx, indexDesignDoc, name, index); err != nil {
			return created, fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	return created, nil
}
