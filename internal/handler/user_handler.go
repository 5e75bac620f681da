package handler

import (
	"errors"
	"net/http"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/service"
	"kizuki-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	user, err := h.userService.UpdateDisplayName(r.Context(), req.DisplayName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		response.NotFound(w, "User not found")
		return
	}
	writeActionError(w, err, "Failed to load user")
}
