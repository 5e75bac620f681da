package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kizuki-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type userDoc struct {
	Rev     string `json:"_rev,omitempty"`
	DocType string `json:"doc_type"`
	domain.User
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	doc := userDoc{DocType: docTypeUser, User: *user}
	doc.Email = normalizeEmail(user.Email)

	docID := fmt.Sprintf("user:%s", user.ID)
	if _, err := db.Put(ctx, docID, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": docTypeUser,
			"email":    normalizeEmail(email),
		},
		"limit": 1,
	}

	rows := db.Find(ctx, query)
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query user by email: %w", err)
		}
		return nil, ErrNotFound
	}

	var doc userDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &doc.User, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &doc.User, nil
}

func (r *userRepository) get(ctx context.Context, id string) (*userDoc, error) {
	db := r.client.DB(r.dbName)

	var doc userDoc
	if err := db.Get(ctx, fmt.Sprintf("user:%s", id)).ScanDoc(&doc); err != nil {
		if isCouchNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &doc, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	existing, err := r.get(ctx, user.ID)
	if err != nil {
		return err
	}

	doc := userDoc{Rev: existing.Rev, DocType: docTypeUser, User: *user}
	doc.Email = normalizeEmail(user.Email)

	db := r.client.DB(r.dbName)
	if _, err := db.Put(ctx, fmt.Sprintf("user:%s", user.ID), doc); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
