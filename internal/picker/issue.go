package picker

import (
	"context"

	"github.com/tuannvm/jira-cloud/internal/jira"
	"github.com/tuannvm/jira-cloud/internal/models"
)

// IssuePicker is a search-as-you-type chooser over issues.
type IssuePicker struct {
	session *jira.Session
	chooser Chooser[*models.IssueSuggestion]
}

// NewIssuePicker creates an IssuePicker.
func NewIssuePicker(session *jira.Session, chooser Chooser[*models.IssueSuggestion]) *IssuePicker {
	return &IssuePicker{session: session, chooser: chooser}
}

// Pick returns the chosen suggestion, or nil when the user cancelled. It fails with
// jira.ErrNotInitialized when the session has no client.
func (p *IssuePicker) Pick(ctx context.Context) (*models.IssueSuggestion, error) {
	client, err := p.session.Client()
	if err != nil {
		return nil, err
	}

	prompt := Prompt{
		Title:       "Select an issue",
		Placeholder: "Search by issue key or summary",
		Searchable:  true,
	}
	choice, err := Pick(ctx, p.chooser, prompt, IssueSource(client))
	if err != nil || choice == nil {
		return nil, err
	}
	return *choice, nil
}

// IssueSource turns issue picker sections into candidates, keeping the first
// occurrence of each key.
func IssueSource(client jira.ClientInterface) Source[*models.IssueSuggestion] {
	return func(ctx context.Context, query string) ([]Candidate[*models.IssueSuggestion], error) {
		res, err := client.IssuePicker(ctx, query)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, nil
		}

		seen := make(map[string]bool)
		var candidates []Candidate[*models.IssueSuggestion]
		for _, section := range res.Sections {
			if section == nil {
				continue
			}
			for _, issue := range section.Issues {
				if issue == nil || seen[issue.Key] {
					continue
				}
				seen[issue.Key] = true
				candidates = append(candidates, Candidate[*models.IssueSuggestion]{
					Label:  issue.Key,
					Detail: issue.SummaryText,
					Value:  issue,
				})
			}
		}
		return candidates, nil
	}
}
