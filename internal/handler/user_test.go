package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/errors"
)

func TestCreateUserHandler(t *testing.T) {
	route := "/api/nextcloud/user"
	requestBody := []byte(`{"identifier": "jdoe", "secret": "pw123", "email": "jdoe@example.edu"}`)

	t.Run("fresh account is created", func(t *testing.T) {
		var gotCreds domain.Credentials
		var gotAccount domain.AccountRequest
		h := &Handler{provisioning: &MockProvisioningService{
			MockRegister: func(ctx context.Context, creds domain.Credentials, account domain.AccountRequest) (domain.ProvisioningOutcome, error) {
				gotCreds = creds
				gotAccount = account
				return domain.ProvisioningOutcome{Status: domain.StatusCreated, Username: "jdoe", Message: "User created"}, nil
			},
		}}

		rr := httptest.NewRecorder()
		h.CreateUser(rr, createRequest(t, http.MethodPost, route, requestBody))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"success":true,"username":"jdoe","message":"User created"}`, rr.Body.String())
		assert.Equal(t, "jdoe", gotCreds.Username)
		assert.Equal(t, "pw123", gotCreds.Password.Reveal())
		assert.Equal(t, "jdoe@example.edu", gotAccount.Email)
	})

	t.Run("existing account yields conflict", func(t *testing.T) {
		h := &Handler{provisioning: &MockProvisioningService{
			MockRegister: func(ctx context.Context, creds domain.Credentials, account domain.AccountRequest) (domain.ProvisioningOutcome, error) {
				return domain.ProvisioningOutcome{
					Status:   domain.StatusAlreadyExists,
					Username: "jdoe",
					Message:  "User already exists. You can log in with your existing account.",
				}, nil
			},
		}}

		rr := httptest.NewRecorder()
		h.CreateUser(rr, createRequest(t, http.MethodPost, route, requestBody))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), `"success":false`)
		assert.Contains(t, rr.Body.String(), "User already exists")
	})

	t.Run("outcome statuses map to HTTP statuses", func(t *testing.T) {
		tests := []struct {
			status   domain.ProvisioningStatus
			expected int
		}{
			{domain.StatusCreated, http.StatusCreated},
			{domain.StatusAlreadyExists, http.StatusConflict},
			{domain.StatusUpstreamAuthError, http.StatusInternalServerError},
			{domain.StatusUpstreamRejected, http.StatusBadRequest},
			{domain.StatusUpstreamUnreachable, http.StatusServiceUnavailable},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, outcomeStatusCode(tt.status), string(tt.status))
		}
	})

	t.Run("missing email is rejected locally", func(t *testing.T) {
		h := &Handler{provisioning: &MockProvisioningService{}}

		rr := httptest.NewRecorder()
		h.CreateUser(rr, createRequest(t, http.MethodPost, route, []byte(`{"identifier": "jdoe", "secret": "pw123"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("denied eligibility propagates its status", func(t *testing.T) {
		h := &Handler{provisioning: &MockProvisioningService{
			MockRegister: func(ctx context.Context, creds domain.Credentials, account domain.AccountRequest) (domain.ProvisioningOutcome, error) {
				return domain.ProvisioningOutcome{}, &errors.ErrorWithStatusCode{Message: "Access denied: account is not a student account", StatusCode: http.StatusForbidden}
			},
		}}

		rr := httptest.NewRecorder()
		h.CreateUser(rr, createRequest(t, http.MethodPost, route, requestBody))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
