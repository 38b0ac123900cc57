package nextcloud

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// The OCS admin API layers an application-level status inside the transport
// response. Both layers must be inspected; an unparseable body decodes to a
// failure, never to success.

type StatusKind int

const (
	KindOK StatusKind = iota
	KindNotFound
	KindAuthError
	KindFailure
)

// OCS application status codes that need dedicated handling.
const (
	ocsCodeOK           = 100
	ocsCodeNotLoggedIn  = 997
	ocsCodeNotFound     = 998
	ocsCodeHTTPNotFound = 404
)

// Result is the decoded application-level outcome of an OCS call.
type Result struct {
	Kind    StatusKind
	Code    int
	Message string
}

type ocsEnvelope struct {
	OCS struct {
		Meta struct {
			Status     string `json:"status"`
			StatusCode int    `json:"statuscode"`
			Message    string `json:"message"`
		} `json:"meta"`
	} `json:"ocs"`
}

// decodeOCS translates one OCS response into a Result. Shared by the user
// lookup and the user creation call sites.
func decodeOCS(resp *http.Response) (Result, error) {
	if resp.StatusCode == http.StatusUnauthorized {
		// The admin credential itself was rejected. Never the end
		// user's fault.
		return Result{Kind: KindAuthError, Message: "admin credential rejected"}, nil
	}

	var envelope ocsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Result{}, fmt.Errorf("unparseable OCS response (status %d): %w", resp.StatusCode, err)
	}
	meta := envelope.OCS.Meta
	if meta.Status == "" && meta.StatusCode == 0 {
		return Result{}, fmt.Errorf("response carries no OCS meta block (status %d)", resp.StatusCode)
	}

	result := Result{Code: meta.StatusCode, Message: meta.Message}
	switch {
	case meta.Status == "ok" || meta.StatusCode == ocsCodeOK:
		result.Kind = KindOK
	case meta.StatusCode == ocsCodeNotLoggedIn:
		result.Kind = KindAuthError
	case meta.StatusCode == ocsCodeNotFound || meta.StatusCode == ocsCodeHTTPNotFound:
		result.Kind = KindNotFound
	default:
		result.Kind = KindFailure
	}
	return result, nil
}
