package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/apiclient/nextcloud"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/errors"
)

type EligibilityChecker interface {
	Check(ctx context.Context, creds domain.Credentials) (domain.EligibilityVerdict, error)
}

type StorageClient interface {
	LookupUser(ctx context.Context, username domain.Username) (nextcloud.Result, error)
	CreateUser(ctx context.Context, account domain.AccountRequest) (nextcloud.Result, error)
}

// Provisioning sequences the registration: eligibility check first, then
// existence-check-then-create against the storage platform. The platform is
// never contacted unless eligibility is affirmatively confirmed.
type Provisioning struct {
	eligibility EligibilityChecker
	storage     StorageClient
	sanitizer   *bluemonday.Policy
}

func NewProvisioning(eligibility EligibilityChecker, storage StorageClient) *Provisioning {
	return &Provisioning{
		eligibility: eligibility,
		storage:     storage,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// DeniedVerdictError maps a denied verdict to the caller-facing rejection.
func DeniedVerdictError(verdict domain.EligibilityVerdict) error {
	switch verdict.Reason {
	case domain.ReasonNotStudent:
		return &errors.ErrorWithStatusCode{Message: "Access denied: account is not a student account", StatusCode: http.StatusForbidden}
	case domain.ReasonNotDepartment:
		return &errors.ErrorWithStatusCode{Message: "Access denied: account does not belong to the required department", StatusCode: http.StatusForbidden}
	case domain.ReasonServiceUnavailable:
		return &errors.ErrorWithStatusCode{Message: "Identity service unreachable, try again later", StatusCode: http.StatusServiceUnavailable}
	default:
		return &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}
}

// Register runs the two-step orchestration. Denials and unexpected upstream
// shapes come back as errors; every other branch is a ProvisioningOutcome.
func (p *Provisioning) Register(ctx context.Context, creds domain.Credentials, account domain.AccountRequest) (domain.ProvisioningOutcome, error) {
	verdict, err := p.eligibility.Check(ctx, creds)
	if err != nil {
		return domain.ProvisioningOutcome{}, err
	}
	if !verdict.Admitted {
		slog.Info("registration denied before provisioning",
			"username", account.Username,
			"reason", string(verdict.Reason),
		)
		return domain.ProvisioningOutcome{}, DeniedVerdictError(verdict)
	}

	exists, err := p.storage.LookupUser(ctx, account.Username)
	switch {
	case stderrors.Is(err, nextcloud.ErrUnreachable):
		// Platform unreachable for the check; the creation attempt
		// will surface the real failure.
		slog.Warn("user lookup unreachable, proceeding to creation", "username", account.Username, "error", err)
		exists = nextcloud.Result{Kind: nextcloud.KindNotFound}
	case err != nil:
		slog.Error("user lookup returned unexpected response", "username", account.Username, "error", err)
		return domain.ProvisioningOutcome{}, &errors.ErrorWithStatusCode{Message: "Unexpected response from storage platform", StatusCode: http.StatusInternalServerError}
	}

	switch exists.Kind {
	case nextcloud.KindAuthError:
		slog.Error("admin credential rejected during user lookup", "username", account.Username)
		return domain.ProvisioningOutcome{
			Status:   domain.StatusUpstreamAuthError,
			Message:  "Provisioning service is misconfigured",
			Username: account.Username,
		}, nil
	case nextcloud.KindOK:
		slog.Info("user already exists, skipping creation", "username", account.Username)
		return domain.ProvisioningOutcome{
			Status:   domain.StatusAlreadyExists,
			Message:  "User already exists. You can log in with your existing account.",
			Username: account.Username,
		}, nil
	}
	// KindNotFound and generic failures both mean "no such account here".

	return p.create(ctx, account)
}

func (p *Provisioning) create(ctx context.Context, account domain.AccountRequest) (domain.ProvisioningOutcome, error) {
	if account.DisplayName == "" {
		account.DisplayName = account.Username
	}
	account.DisplayName = p.sanitizer.Sanitize(account.DisplayName)

	created, err := p.storage.CreateUser(ctx, account)
	switch {
	case stderrors.Is(err, nextcloud.ErrUnreachable):
		slog.Error("user creation unreachable", "username", account.Username, "error", err)
		return domain.ProvisioningOutcome{
			Status:   domain.StatusUpstreamUnreachable,
			Message:  "Storage platform unreachable, try again later",
			Username: account.Username,
		}, nil
	case err != nil:
		slog.Error("user creation returned unexpected response", "username", account.Username, "error", err)
		return domain.ProvisioningOutcome{}, &errors.ErrorWithStatusCode{Message: "Unexpected response from storage platform", StatusCode: http.StatusInternalServerError}
	}

	switch created.Kind {
	case nextcloud.KindOK:
		slog.Info("user created", "username", account.Username, "email", account.Email)
		return domain.ProvisioningOutcome{
			Status:   domain.StatusCreated,
			Message:  "User created",
			Username: account.Username,
		}, nil
	case nextcloud.KindAuthError:
		slog.Error("admin credential rejected during user creation", "username", account.Username)
		return domain.ProvisioningOutcome{
			Status:   domain.StatusUpstreamAuthError,
			Message:  "Provisioning service is misconfigured",
			Username: account.Username,
		}, nil
	default:
		// Policy rejections carry the platform message verbatim; it
		// describes things like duplicate accounts or invalid emails,
		// not secrets.
		slog.Info("user creation rejected by platform",
			"username", account.Username,
			"code", created.Code,
			"message", created.Message,
		)
		return domain.ProvisioningOutcome{
			Status:   domain.StatusUpstreamRejected,
			Message:  created.Message,
			Username: account.Username,
		}, nil
	}
}
