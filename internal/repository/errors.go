package repository

import (
	"errors"
	"net/http"

	"github.com/go-kivik/kivik/v4"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrCaseExists reports a violation of the one-case-per-(user, memo)
	// constraint.
	ErrCaseExists = errors.New("case already exists for memo")
)

func isCouchNotFound(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusNotFound
}

func isCouchConflict(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusConflict
}
