package handler

import (
	"net/http"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/service"
	"kizuki-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type CaseHandler struct {
	service  *service.CaseService
	validate *validator.Validate
}

func NewCaseHandler(service *service.CaseService) *CaseHandler {
	return &CaseHandler{
		service:  service,
		validate: validator.New(),
	}
}

// GetOrCreate serves POST /memos/{id}/case. Opening the case panel creates
// the draft, so the route is not a GET.
func (h *CaseHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.BadRequest(w, "Memo ID is required")
		return
	}

	c, err := h.service.GetOrCreateCaseByMemo(r.Context(), memoID)
	if err != nil {
		writeActionError(w, err, service.ErrCreateFailed.Error())
		return
	}

	response.Success(w, c)
}

// Update replaces every editable field of the case. Fields missing from the
// body are cleared.
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["id"]
	if caseID == "" {
		response.BadRequest(w, "Case ID is required")
		return
	}

	var req domain.UpdateCaseRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c, err := h.service.UpdateCase(r.Context(), caseID, req.Patch())
	if err != nil {
		writeActionError(w, err, service.ErrUpdateFailed.Error())
		return
	}

	response.Success(w, c)
}
