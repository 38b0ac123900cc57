// Package nextcloud is the HTTP client for the Nextcloud provisioning
// (OCS admin) API.
package nextcloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
)

// ErrUnreachable signals a network-level failure toward the platform.
var ErrUnreachable = errors.New("nextcloud unreachable")

// Client talks to the Nextcloud OCS admin API using a fixed administrative
// credential supplied at process start. The credential is read-only and safe
// to share across in-flight requests.
type Client struct {
	BaseURL       string
	HttpClient    *http.Client
	adminUser     string
	adminPassword domain.Secret
}

func New(baseURL, adminUser string, adminPassword domain.Secret, timeout time.Duration) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HttpClient:    &http.Client{Timeout: timeout},
		adminUser:     adminUser,
		adminPassword: adminPassword,
	}
}

// do is the single helper for OCS requests; it attaches the admin credential
// and the headers the OCS API requires.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path+"?format=json", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCS request: %w", err)
	}
	req.SetBasicAuth(c.adminUser, c.adminPassword.Reveal())
	req.Header.Set("OCS-APIRequest", "true")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return resp, nil
}

// LookupUser queries the user endpoint for username and reports the decoded
// OCS outcome. KindOK means the account already exists.
func (c *Client) LookupUser(ctx context.Context, username domain.Username) (Result, error) {
	resp, err := c.do(ctx, http.MethodGet, "/ocs/v1.php/cloud/users/"+url.PathEscape(username), nil)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	return decodeOCS(resp)
}

// CreateUser posts the account fields form-encoded to the user-creation
// endpoint. The display name defaults to the username upstream of this call.
func (c *Client) CreateUser(ctx context.Context, account domain.AccountRequest) (Result, error) {
	form := url.Values{}
	form.Set("userid", account.Username)
	form.Set("email", account.Email)
	form.Set("displayName", account.DisplayName)

	resp, err := c.do(ctx, http.MethodPost, "/ocs/v1.php/cloud/users", form)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	return decodeOCS(resp)
}

// Ping checks the unauthenticated status endpoint. Used by the readiness
// probe only.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/status.php", nil)
	if err != nil {
		return err
	}
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status endpoint returned %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}
