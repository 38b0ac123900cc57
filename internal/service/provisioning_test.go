package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/apiclient/nextcloud"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/errors"
)

type MockEligibility struct {
	MockCheck func(ctx context.Context, creds domain.Credentials) (domain.EligibilityVerdict, error)
	Calls     int
}

func (m *MockEligibility) Check(ctx context.Context, creds domain.Credentials) (domain.EligibilityVerdict, error) {
	m.Calls++
	if m.MockCheck != nil {
		return m.MockCheck(ctx, creds)
	}
	return domain.EligibilityVerdict{Admitted: true, Reason: domain.ReasonOK, IsStudent: true, HasDepartment: true}, nil
}

type MockStorage struct {
	MockLookup  func(ctx context.Context, username domain.Username) (nextcloud.Result, error)
	MockCreate  func(ctx context.Context, account domain.AccountRequest) (nextcloud.Result, error)
	LookupCalls int
	CreateCalls int
	LastCreate  domain.AccountRequest
}

func (m *MockStorage) LookupUser(ctx context.Context, username domain.Username) (nextcloud.Result, error) {
	m.LookupCalls++
	if m.MockLookup != nil {
		return m.MockLookup(ctx, username)
	}
	return nextcloud.Result{Kind: nextcloud.KindNotFound, Code: 404}, nil
}

func (m *MockStorage) CreateUser(ctx context.Context, account domain.AccountRequest) (nextcloud.Result, error) {
	m.CreateCalls++
	m.LastCreate = account
	if m.MockCreate != nil {
		return m.MockCreate(ctx, account)
	}
	return nextcloud.Result{Kind: nextcloud.KindOK, Code: 100}, nil
}

func testAccount() domain.AccountRequest {
	return domain.AccountRequest{Username: "jdoe", Email: "jdoe@example.edu"}
}

func TestRegister_DeniedVerdictShortCircuits(t *testing.T) {
	tests := []struct {
		name           string
		reason         domain.EligibilityReason
		expectedStatus int
	}{
		{"not a student", domain.ReasonNotStudent, http.StatusForbidden},
		{"wrong department", domain.ReasonNotDepartment, http.StatusForbidden},
		{"bad credentials", domain.ReasonAuthFailed, http.StatusUnauthorized},
		{"identity service down", domain.ReasonServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eligibility := &MockEligibility{
				MockCheck: func(ctx context.Context, creds domain.Credentials) (domain.EligibilityVerdict, error) {
					return domain.EligibilityVerdict{Admitted: false, Reason: tt.reason}, nil
				},
			}
			storage := &MockStorage{}
			p := NewProvisioning(eligibility, storage)

			_, err := p.Register(context.Background(), validCreds(), testAccount())

			require.Error(t, err)
			var statusErr *errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.expectedStatus, statusErr.StatusCode)
			// the storage platform is never contacted on denial
			assert.Equal(t, 0, storage.LookupCalls)
			assert.Equal(t, 0, storage.CreateCalls)
		})
	}
}

func TestRegister_ExistenceCheck(t *testing.T) {
	t.Run("absent user triggers exactly one creation", func(t *testing.T) {
		storage := &MockStorage{}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCreated, outcome.Status)
		assert.Equal(t, "jdoe", outcome.Username)
		assert.Equal(t, 1, storage.LookupCalls)
		assert.Equal(t, 1, storage.CreateCalls)
	})

	t.Run("existing user skips creation", func(t *testing.T) {
		storage := &MockStorage{
			MockLookup: func(ctx context.Context, username domain.Username) (nextcloud.Result, error) {
				return nextcloud.Result{Kind: nextcloud.KindOK, Code: 100}, nil
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusAlreadyExists, outcome.Status)
		assert.Equal(t, 0, storage.CreateCalls)
	})

	t.Run("existence check is idempotent", func(t *testing.T) {
		storage := &MockStorage{
			MockLookup: func(ctx context.Context, username domain.Username) (nextcloud.Result, error) {
				return nextcloud.Result{Kind: nextcloud.KindOK, Code: 100}, nil
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		first, err := p.Register(context.Background(), validCreds(), testAccount())
		require.NoError(t, err)
		second, err := p.Register(context.Background(), validCreds(), testAccount())
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 0, storage.CreateCalls)
	})

	t.Run("rejected admin credential stops the flow", func(t *testing.T) {
		storage := &MockStorage{
			MockLookup: func(ctx context.Context, username domain.Username) (nextcloud.Result, error) {
				return nextcloud.Result{Kind: nextcloud.KindAuthError}, nil
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusUpstreamAuthError, outcome.Status)
		assert.Equal(t, 0, storage.CreateCalls)
	})

	t.Run("unreachable platform during lookup still attempts creation", func(t *testing.T) {
		storage := &MockStorage{
			MockLookup: func(ctx context.Context, username domain.Username) (nextcloud.Result, error) {
				return nextcloud.Result{}, nextcloud.ErrUnreachable
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCreated, outcome.Status)
		assert.Equal(t, 1, storage.CreateCalls)
	})

	t.Run("unexpected lookup response never creates silently", func(t *testing.T) {
		storage := &MockStorage{
			MockLookup: func(ctx context.Context, username domain.Username) (nextcloud.Result, error) {
				return nextcloud.Result{}, assert.AnError
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		_, err := p.Register(context.Background(), validCreds(), testAccount())

		require.Error(t, err)
		var statusErr *errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, 0, storage.CreateCalls)
	})
}

func TestRegister_Creation(t *testing.T) {
	t.Run("display name defaults to the username", func(t *testing.T) {
		storage := &MockStorage{}
		p := NewProvisioning(&MockEligibility{}, storage)

		_, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, "jdoe", storage.LastCreate.DisplayName)
	})

	t.Run("display name is stripped of markup", func(t *testing.T) {
		storage := &MockStorage{}
		p := NewProvisioning(&MockEligibility{}, storage)

		account := testAccount()
		account.DisplayName = `<script>alert(1)</script>John Doe`
		_, err := p.Register(context.Background(), validCreds(), account)

		require.NoError(t, err)
		assert.Equal(t, "John Doe", storage.LastCreate.DisplayName)
	})

	t.Run("inner not-logged-in code means misconfigured credential", func(t *testing.T) {
		storage := &MockStorage{
			MockCreate: func(ctx context.Context, account domain.AccountRequest) (nextcloud.Result, error) {
				return nextcloud.Result{Kind: nextcloud.KindAuthError, Code: 997}, nil
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusUpstreamAuthError, outcome.Status)
	})

	t.Run("policy rejection carries the platform message verbatim", func(t *testing.T) {
		storage := &MockStorage{
			MockCreate: func(ctx context.Context, account domain.AccountRequest) (nextcloud.Result, error) {
				return nextcloud.Result{Kind: nextcloud.KindFailure, Code: 102, Message: "User already exists"}, nil
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusUpstreamRejected, outcome.Status)
		assert.Equal(t, "User already exists", outcome.Message)
	})

	t.Run("unreachable platform during creation is terminal", func(t *testing.T) {
		storage := &MockStorage{
			MockCreate: func(ctx context.Context, account domain.AccountRequest) (nextcloud.Result, error) {
				return nextcloud.Result{}, nextcloud.ErrUnreachable
			},
		}
		p := NewProvisioning(&MockEligibility{}, storage)

		outcome, err := p.Register(context.Background(), validCreds(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusUpstreamUnreachable, outcome.Status)
	})
}
