package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tuannvm/jira-cloud/internal/jira"
	log "github.com/tuannvm/jira-cloud/internal/logging"
	"github.com/tuannvm/jira-cloud/internal/notify"
)

// Messages shown to the user by VerifyConnection.
const (
	MsgVerified       = "Connection verified successfully!"
	MsgNoIssues       = "Connection could not be verified, no issues were returned from the API. Please check the console."
	MsgNotInitialized = "Could not verify connection. Jira was not initialized."
	MsgUnauthorized   = "Jira client not authorized. Please verify your configuration."
	MsgNotFound       = "404 Error: Could not reach Jira instance, check your host URI."
	MsgUnknown        = "Could not verify connection. Unknown error, check logs."
)

// ErrUnexpectedResponse is raised when the issue picker answers without any section.
var ErrUnexpectedResponse = errors.New("unexpected issue picker response: no sections")

// Verifier checks that the session can reach Jira with the configured credentials.
type Verifier struct {
	session  *jira.Session
	notifier notify.Notifier
}

// NewVerifier creates a Verifier reporting to notifier.
func NewVerifier(session *jira.Session, notifier notify.Notifier) *Verifier {
	return &Verifier{session: session, notifier: notifier}
}

// VerifyConnection asks Jira for recently viewed issues and reports the outcome with
// exactly one notice. A reachable service that returns no issues is reported but not
// treated as a failure. Failures are returned as *jira.APIError after notifying.
func (v *Verifier) VerifyConnection(ctx context.Context) error {
	client, err := v.session.Client()
	if err != nil {
		return v.fail(err)
	}

	res, err := client.IssuePicker(ctx, "")
	if err != nil {
		return v.fail(err)
	}
	if res == nil || len(res.Sections) == 0 {
		return v.fail(ErrUnexpectedResponse)
	}

	// Only the first section is inspected.
	if first := res.Sections[0]; first == nil || len(first.Issues) == 0 {
		log.Warnw("Jira API returned no issues", "response", res)
		v.notifier.Notify(MsgNoIssues)
		return nil
	}

	v.notifier.Notify(MsgVerified)
	return nil
}

func (v *Verifier) fail(err error) error {
	apiErr := jira.Classify(err)

	fields := []interface{}{"reason", apiErr.Reason.String(), "error", apiErr.Err}
	if apiErr.Response != nil {
		fields = append(fields, "status", apiErr.Response.Status, "body", apiErr.Response.Body)
	}
	log.Errorw("Jira connection verification failed", fields...)

	v.notifier.Notify(FailureMessage(apiErr))
	return apiErr
}

// FailureMessage maps a classified error to the notice shown to the user.
func FailureMessage(err *jira.APIError) string {
	switch {
	case err.Reason == jira.ReasonNotInitialized:
		return MsgNotInitialized
	case err.Reason == jira.ReasonUnauthorized:
		return MsgUnauthorized
	case err.Reason == jira.ReasonOther && err.StatusCode() == http.StatusNotFound:
		return MsgNotFound
	default:
		return MsgUnknown
	}
}
