package handler

import (
	"net/http"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/middleware/metrics"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/utils"
)

type createUserRequest struct {
	Identifier  string `validate:"required" json:"identifier"`
	Secret      string `validate:"required" json:"secret"`
	Email       string `validate:"required,email" json:"email"`
	DisplayName string `json:"displayName"`
}

type createUserResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// CreateUser runs the full registration orchestration: eligibility check,
// existence check, creation. Credentials travel with the request so the
// storage platform is never contacted for an ineligible caller.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creds := domain.Credentials{
		Username: body.Identifier,
		Password: domain.Secret(body.Secret),
	}
	account := domain.AccountRequest{
		Username:    body.Identifier,
		Email:       body.Email,
		DisplayName: body.DisplayName,
	}

	outcome, err := h.provisioning.Register(r.Context(), creds, account)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	metrics.ObserveRegistration(string(outcome.Status))

	writeJSON(w, outcomeStatusCode(outcome.Status), createUserResponse{
		Success:  outcome.Status == domain.StatusCreated,
		Username: outcome.Username,
		Message:  outcome.Message,
	})
}

func outcomeStatusCode(status domain.ProvisioningStatus) int {
	switch status {
	case domain.StatusCreated:
		return http.StatusCreated
	case domain.StatusAlreadyExists:
		return http.StatusConflict
	case domain.StatusUpstreamRejected:
		return http.StatusBadRequest
	case domain.StatusUpstreamUnreachable:
		return http.StatusServiceUnavailable
	default:
		// includes the misconfigured admin credential
		return http.StatusInternalServerError
	}
}
