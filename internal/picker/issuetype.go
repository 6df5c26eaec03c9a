package picker

import (
	"context"
	"fmt"

	"github.com/tuannvm/jira-cloud/internal/jira"
	"github.com/tuannvm/jira-cloud/internal/models"
)

// IssueTypePicker chooses an issue type. The project filter is an argument of each Pick
// call, so concurrent picks never share filter state.
type IssueTypePicker struct {
	session *jira.Session
	chooser Chooser[*models.IssueType]
}

// NewIssueTypePicker creates an IssueTypePicker.
func NewIssueTypePicker(session *jira.Session, chooser Chooser[*models.IssueType]) *IssueTypePicker {
	return &IssueTypePicker{session: session, chooser: chooser}
}

// Pick returns the chosen issue type, or nil when the user cancelled. A nil projectID
// lists every issue type.
func (p *IssueTypePicker) Pick(ctx context.Context, projectID *int64) (*models.IssueType, error) {
	client, err := p.session.Client()
	if err != nil {
		return nil, err
	}

	prompt := Prompt{Title: "Select an issue type"}
	if projectID != nil {
		prompt.Description = fmt.Sprintf("Issue types of project %d", *projectID)
	}

	choice, err := Pick(ctx, p.chooser, prompt, IssueTypeSource(client, projectID))
	if err != nil || choice == nil {
		return nil, err
	}
	return *choice, nil
}

// IssueTypeSource lists issue types, optionally scoped to projectID.
func IssueTypeSource(client jira.ClientInterface, projectID *int64) Source[*models.IssueType] {
	return func(ctx context.Context, _ string) ([]Candidate[*models.IssueType], error) {
		types, err := client.IssueTypes(ctx, projectID)
		if err != nil {
			return nil, err
		}
		candidates := make([]Candidate[*models.IssueType], 0, len(types))
		for _, t := range types {
			if t == nil {
				continue
			}
			candidates = append(candidates, Candidate[*models.IssueType]{
				Label:  t.Name,
				Detail: t.Description,
				Value:  t,
			})
		}
		return candidates, nil
	}
}
