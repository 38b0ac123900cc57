// Package identity is the HTTP client for the university identity provider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
)

// Sentinel errors callers branch on. Everything network-shaped maps to
// ErrUnavailable; everything credential-shaped maps to ErrUnauthorized.
var (
	ErrUnauthorized = errors.New("identity provider rejected credentials")
	ErrUnavailable  = errors.New("identity provider unreachable")
)

// Person is the subset of the identity record the eligibility check needs.
type Person struct {
	PersonType  string   `json:"personType"`
	Departments []string `json:"departments"`
}

// Client talks to the identity provider API.
type Client struct {
	BaseURL    string
	HttpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// Authenticate posts the credentials to the persons endpoint and returns the
// resolved identity record. A resolvable identity is not necessarily
// eligible; that decision belongs to the caller.
func (c *Client) Authenticate(ctx context.Context, creds domain.Credentials) (*Person, error) {
	payload := map[string]string{
		"login":    creds.Username,
		"password": creds.Password.Reveal(),
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/persons", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		// DNS failure, refused connection or timeout. The caller needs
		// network guidance here, not a password retry.
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var person Person
		if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
			// 200 without a usable payload counts as a failed login,
			// never as success.
			return nil, fmt.Errorf("%w: unparseable response body", ErrUnauthorized)
		}
		if person.PersonType == "" {
			return nil, fmt.Errorf("%w: response carries no person record", ErrUnauthorized)
		}
		return &person, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		// Upstream 5xx and other unexpected statuses stay on the failed
		// side of the credential boundary.
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnauthorized, resp.StatusCode)
	}
}
