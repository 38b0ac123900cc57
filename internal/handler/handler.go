package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/config"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
)

type EligibilityService interface {
	Check(ctx context.Context, creds domain.Credentials) (domain.EligibilityVerdict, error)
}

type ProvisioningService interface {
	Register(ctx context.Context, creds domain.Credentials, account domain.AccountRequest) (domain.ProvisioningOutcome, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	eligibility  EligibilityService
	provisioning ProvisioningService
	health       HealthChecker
	cfg          *config.Config
}

func New(eligibility EligibilityService, provisioning ProvisioningService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{eligibility, provisioning, health, cfg}
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
