package service

import (
	"context"
	"errors"
	"fmt"

	"kizuki-server/internal/session"
)

// Symbolic outcomes the presentation layer switches on. Their text is the
// code sent to clients.
var (
	ErrEmpty        = errors.New("empty")
	ErrUnauthorized = errors.New("unauthorized")
	ErrCreateFailed = errors.New("create_failed")
	ErrUpdateFailed = errors.New("update_failed")
	ErrMemoNotFound = errors.New("not_found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// StorageError passes a persistence failure through to the caller with the
// storage layer's own message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ActionError turns an error into the reason string returned to clients:
// the symbolic code for known outcomes, otherwise the storage message.
func ActionError(err error) string {
	for _, known := range []error{ErrEmpty, ErrUnauthorized, ErrCreateFailed, ErrUpdateFailed, ErrMemoNotFound} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) && storageErr.Err != nil {
		return storageErr.Err.Error()
	}

	return err.Error()
}

func currentUser(ctx context.Context, gate session.Gate) (*session.Identity, error) {
	identity, err := gate.Resolve(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return identity, nil
}
