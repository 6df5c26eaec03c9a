package jira

import (
	"errors"
	"fmt"
	"net/http"

	atlassian "github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"
)

// ErrNotInitialized is returned when the session is used before it was configured with a
// host, username and API key.
var ErrNotInitialized = errors.New("jira client not initialized")

// Reason is the closed set of failure classes of the remote API.
type Reason int

const (
	// ReasonOther is any failure that is neither an auth rejection nor a missing client.
	ReasonOther Reason = iota
	// ReasonNotInitialized means the client was used before configuration.
	ReasonNotInitialized
	// ReasonUnauthorized means the service rejected the credentials.
	ReasonUnauthorized
)

func (r Reason) String() string {
	switch r {
	case ReasonNotInitialized:
		return "not_initialized"
	case ReasonUnauthorized:
		return "unauthorized"
	default:
		return "other"
	}
}

// Response is the raw response kept on an APIError for diagnostics.
type Response struct {
	Status int    `json:"status"`
	Body   string `json:"body,omitempty"`
}

// APIError is a classified failure of a remote call. Obtain one with Classify.
type APIError struct {
	Reason   Reason
	Response *Response
	Err      error
}

func (e *APIError) Error() string {
	if e.Response != nil && e.Response.Status != 0 {
		return fmt.Sprintf("jira api error (%s, status %d): %v", e.Reason, e.Response.Status, e.Err)
	}
	return fmt.Sprintf("jira api error (%s): %v", e.Reason, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of the failed call, or 0 if no response was received.
func (e *APIError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// Classify normalizes any failure raised while using the remote client.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, ErrNotInitialized):
		return &APIError{Reason: ReasonNotInitialized, Err: err}
	case errors.Is(err, atlassian.ErrUnauthorized):
		return &APIError{Reason: ReasonUnauthorized, Err: err}
	default:
		return &APIError{Reason: ReasonOther, Err: err}
	}
}

// classifyResponse classifies a failure at the SDK boundary where the raw response is
// still available.
func classifyResponse(err error, res *atlassian.ResponseScheme) *APIError {
	if err == nil {
		return nil
	}
	if res == nil {
		return Classify(err)
	}

	status := res.Code
	if status == 0 && res.Response != nil {
		status = res.Response.StatusCode
	}
	raw := &Response{Status: status, Body: res.Bytes.String()}

	switch status {
	case 0:
		return Classify(err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return &APIError{Reason: ReasonUnauthorized, Response: raw, Err: err}
	default:
		return &APIError{Reason: ReasonOther, Response: raw, Err: err}
	}
}
