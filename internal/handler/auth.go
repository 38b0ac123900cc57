package handler

import (
	"net/http"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/service"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/utils"
)

type authRequest struct {
	Identifier string `validate:"required" json:"identifier"`
	Secret     string `validate:"required" json:"secret"`
}

type authResponse struct {
	Success       bool `json:"success"`
	IsStudent     bool `json:"isStudent"`
	HasDepartment bool `json:"hasDepartment"`
}

// Auth checks the supplied institutional credentials and reports the
// eligibility verdict without touching the storage platform.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	var body authRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creds := domain.Credentials{
		Username: body.Identifier,
		Password: domain.Secret(body.Secret),
	}
	verdict, err := h.eligibility.Check(r.Context(), creds)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !verdict.Admitted {
		utils.WriteErrorAndStatusCode(w, service.DeniedVerdictError(verdict))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success:       true,
		IsStudent:     verdict.IsStudent,
		HasDepartment: verdict.HasDepartment,
	})
}
