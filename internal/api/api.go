// Package api is the public surface other integrations use: connection verification and
// the interactive issue, project and issue-type selection.
package api

import (
	"context"

	"github.com/tuannvm/jira-cloud/internal/jira"
	"github.com/tuannvm/jira-cloud/internal/models"
	"github.com/tuannvm/jira-cloud/internal/notify"
	"github.com/tuannvm/jira-cloud/internal/picker"
)

// Choosers bundles the host chooser used by each picker.
type Choosers struct {
	Issue     picker.Chooser[*models.IssueSuggestion]
	Project   picker.Chooser[*models.Project]
	IssueType picker.Chooser[*models.IssueType]
}

// API exposes VerifyConnection, GetIssue, GetProject and GetIssueType.
type API struct {
	session *jira.Session

	verifier        *Verifier
	issuePicker     *picker.IssuePicker
	projectPicker   *picker.ProjectPicker
	issueTypePicker *picker.IssueTypePicker
}

// New wires the verifier and pickers around a shared session.
func New(session *jira.Session, notifier notify.Notifier, choosers Choosers) *API {
	return &API{
		session:         session,
		verifier:        NewVerifier(session, notifier),
		issuePicker:     picker.NewIssuePicker(session, choosers.Issue),
		projectPicker:   picker.NewProjectPicker(session, choosers.Project),
		issueTypePicker: picker.NewIssueTypePicker(session, choosers.IssueType),
	}
}

// VerifyConnection see Verifier.VerifyConnection.
func (a *API) VerifyConnection(ctx context.Context) error {
	return a.verifier.VerifyConnection(ctx)
}

// GetIssue opens the issue chooser and fetches the full issue for the chosen key.
// It returns nil when the user cancelled, and fails with jira.ErrNotInitialized when
// the client has not been configured.
func (a *API) GetIssue(ctx context.Context) (*models.Issue, error) {
	suggestion, err := a.issuePicker.Pick(ctx)
	if err != nil {
		return nil, err
	}
	if suggestion == nil || suggestion.Key == "" {
		return nil, nil
	}

	client, err := a.session.Client()
	if err != nil {
		return nil, err
	}
	return client.GetIssue(ctx, suggestion.Key)
}

// GetProject opens the project chooser and returns the chosen project.
func (a *API) GetProject(ctx context.Context) (*models.Project, error) {
	return a.projectPicker.Pick(ctx)
}

// GetIssueType opens the issue type chooser, scoped to projectID when it is not nil.
func (a *API) GetIssueType(ctx context.Context, projectID *int64) (*models.IssueType, error) {
	return a.issueTypePicker.Pick(ctx, projectID)
}
