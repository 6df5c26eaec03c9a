package picker

import (
	"context"

	"github.com/tuannvm/jira-cloud/internal/jira"
	"github.com/tuannvm/jira-cloud/internal/models"
)

// ProjectPicker chooses among the projects the user can access. The listed project is
// already the full record, so no follow-up fetch is made.
type ProjectPicker struct {
	session *jira.Session
	chooser Chooser[*models.Project]
}

// NewProjectPicker creates a ProjectPicker.
func NewProjectPicker(session *jira.Session, chooser Chooser[*models.Project]) *ProjectPicker {
	return &ProjectPicker{session: session, chooser: chooser}
}

// Pick returns the chosen project, or nil when the user cancelled.
func (p *ProjectPicker) Pick(ctx context.Context) (*models.Project, error) {
	client, err := p.session.Client()
	if err != nil {
		return nil, err
	}

	choice, err := Pick(ctx, p.chooser, Prompt{Title: "Select a project"}, ProjectSource(client))
	if err != nil || choice == nil {
		return nil, err
	}
	return *choice, nil
}

// ProjectSource lists accessible projects as candidates.
func ProjectSource(client jira.ClientInterface) Source[*models.Project] {
	return func(ctx context.Context, _ string) ([]Candidate[*models.Project], error) {
		projects, err := client.Projects(ctx)
		if err != nil {
			return nil, err
		}
		candidates := make([]Candidate[*models.Project], 0, len(projects))
		for _, project := range projects {
			if project == nil {
				continue
			}
			candidates = append(candidates, Candidate[*models.Project]{
				Label:  project.Key,
				Detail: project.Name,
				Value:  project,
			})
		}
		return candidates, nil
	}
}
