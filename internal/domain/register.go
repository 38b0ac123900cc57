package domain

import "log/slog"

type Username = string

// Secret holds a credential that must never reach a log sink. Every
// stringification path (fmt, slog, json) renders the placeholder; the raw
// value is only reachable through Reveal at the point of the outbound call.
type Secret string

const redactedPlaceholder = "[REDACTED]"

func (s Secret) String() string { return redactedPlaceholder }

func (s Secret) LogValue() slog.Value { return slog.StringValue(redactedPlaceholder) }

func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + redactedPlaceholder + `"`), nil }

// Reveal returns the raw secret for use in upstream requests.
func (s Secret) Reveal() string { return string(s) }

type Credentials struct {
	Username Username
	Password Secret
}

type EligibilityReason string

const (
	ReasonOK                 EligibilityReason = "OK"
	ReasonNotStudent         EligibilityReason = "NOT_STUDENT"
	ReasonNotDepartment      EligibilityReason = "NOT_DEPARTMENT"
	ReasonAuthFailed         EligibilityReason = "AUTH_FAILED"
	ReasonServiceUnavailable EligibilityReason = "SERVICE_UNAVAILABLE"
)

// EligibilityVerdict is produced by the eligibility check and consumed once
// by the provisioning orchestrator.
type EligibilityVerdict struct {
	Admitted      bool
	Reason        EligibilityReason
	IsStudent     bool
	HasDepartment bool
}

type AccountRequest struct {
	Username    Username
	Email       string
	DisplayName string // defaults to Username when empty
}

type ProvisioningStatus string

const (
	StatusCreated             ProvisioningStatus = "CREATED"
	StatusAlreadyExists       ProvisioningStatus = "ALREADY_EXISTS"
	StatusUpstreamAuthError   ProvisioningStatus = "UPSTREAM_AUTH_ERROR"
	StatusUpstreamRejected    ProvisioningStatus = "UPSTREAM_REJECTED"
	StatusUpstreamUnreachable ProvisioningStatus = "UPSTREAM_UNREACHABLE"
)

// ProvisioningOutcome is the terminal result of a registration request.
type ProvisioningOutcome struct {
	Status   ProvisioningStatus
	Message  string
	Username Username
}
