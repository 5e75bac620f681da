package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kizuki-server/internal/service"
	"kizuki-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

// writeActionError answers with the status and reason code the UI expects
// for err. fallback is used for storage failures that carry no message.
func writeActionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEmpty):
		response.BadRequest(w, service.ErrEmpty.Error())
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(w, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrMemoNotFound):
		response.NotFound(w, service.ErrMemoNotFound.Error())
	case errors.Is(err, service.ErrUpdateFailed):
		response.NotFound(w, service.ErrUpdateFailed.Error())
	case errors.Is(err, service.ErrCreateFailed):
		response.InternalError(w, service.ErrCreateFailed.Error())
	default:
		var storageErr *service.StorageError
		if errors.As(err, &storageErr) {
			if reason := service.ActionError(err); reason != "" {
				response.InternalError(w, reason)
				return
			}
		}
		response.InternalError(w, fallback)
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400 itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := v.Struct(dst); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}

	return true
}
