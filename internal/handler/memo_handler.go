package handler

import (
	"errors"
	"net/http"
	"strconv"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/service"
	"kizuki-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type MemoHandler struct {
	service  *service.MemoService
	validate *validator.Validate
}

func NewMemoHandler(service *service.MemoService) *MemoHandler {
	return &MemoHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *MemoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMemoRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	memo, err := h.service.SaveMemo(r.Context(), req.Content)
	if err != nil {
		writeActionError(w, err, "Failed to save memo")
		return
	}

	response.Created(w, memo)
}

func (h *MemoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	memos, err := h.service.FetchLatestMemos(r.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			writeActionError(w, err, "")
			return
		}
		response.InternalError(w, "query_failed")
		return
	}

	response.Success(w, memos)
}

func (h *MemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.BadRequest(w, "Memo ID is required")
		return
	}

	memo, err := h.service.GetMemo(r.Context(), memoID)
	if err != nil {
		writeActionError(w, err, "Failed to load memo")
		return
	}

	response.Success(w, memo)
}
