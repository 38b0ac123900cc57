package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"regexp"
	"slices"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/apiclient/identity"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/errors"
)

const personTypeStudent = "STUDENT"

// usernamePattern restricts what is forwarded to the identity API. Anything
// outside this class is rejected before a request leaves the process.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type IdentityClient interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*identity.Person, error)
}

// Eligibility decides whether a set of institutional credentials belongs to
// a student of the required department.
type Eligibility struct {
	client     IdentityClient
	department string
}

func NewEligibility(client IdentityClient, department string) *Eligibility {
	return &Eligibility{client: client, department: department}
}

// ValidateCredentials enforces the local preconditions: username charset and
// password length. Violations never reach the identity provider.
func ValidateCredentials(creds domain.Credentials) error {
	if !usernamePattern.MatchString(creds.Username) {
		return &errors.ErrorWithStatusCode{Message: "Username contains invalid characters", StatusCode: http.StatusBadRequest}
	}
	if n := len(creds.Password.Reveal()); n < 1 || n > 256 {
		return &errors.ErrorWithStatusCode{Message: "Password length must be between 1 and 256", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// Check validates the credentials against the identity provider and derives
// the admit/deny verdict. Denials are verdicts, not errors.
func (e *Eligibility) Check(ctx context.Context, creds domain.Credentials) (domain.EligibilityVerdict, error) {
	if err := ValidateCredentials(creds); err != nil {
		return domain.EligibilityVerdict{}, err
	}

	person, err := e.client.Authenticate(ctx, creds)
	switch {
	case stderrors.Is(err, identity.ErrUnavailable):
		slog.Warn("identity provider unreachable", "username", creds.Username, "error", err)
		return domain.EligibilityVerdict{Reason: domain.ReasonServiceUnavailable}, nil
	case stderrors.Is(err, identity.ErrUnauthorized):
		slog.Info("identity provider rejected credentials", "username", creds.Username)
		return domain.EligibilityVerdict{Reason: domain.ReasonAuthFailed}, nil
	case err != nil:
		return domain.EligibilityVerdict{}, err
	}

	verdict := domain.EligibilityVerdict{
		IsStudent:     person.PersonType == personTypeStudent,
		HasDepartment: slices.Contains(person.Departments, e.department),
	}
	// Student status is checked before department membership; when both
	// fail only the student reason is reported.
	switch {
	case !verdict.IsStudent:
		verdict.Reason = domain.ReasonNotStudent
	case !verdict.HasDepartment:
		verdict.Reason = domain.ReasonNotDepartment
	default:
		verdict.Admitted = true
		verdict.Reason = domain.ReasonOK
	}

	slog.Info("eligibility check finished",
		"username", creds.Username,
		"admitted", verdict.Admitted,
		"reason", string(verdict.Reason),
	)
	return verdict, nil
}
