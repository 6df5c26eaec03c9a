package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	v3 "github.com/ctreminiom/go-atlassian/v2/jira/v3"
	atlassian "github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"

	"github.com/tuannvm/jira-cloud/internal/config"
	log "github.com/tuannvm/jira-cloud/internal/logging"
	"github.com/tuannvm/jira-cloud/internal/models"
)

const (
	userAgent       = "jiracloud/1.0"
	projectPageSize = 50
)

// Client is a Jira Cloud client backed by go-atlassian. Every failure it returns is an
// *APIError.
type Client struct {
	settings config.Settings
	instance *v3.Client
}

// NewClient creates an authenticated client for settings.Host.
func NewClient(settings config.Settings) (*Client, error) {
	return newClient(settings, http.DefaultClient)
}

func newClient(settings config.Settings, httpClient *http.Client) (*Client, error) {
	instance, err := v3.New(httpClient, settings.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}
	instance.Auth.SetBasicAuth(settings.Username, settings.APIKey)
	instance.Auth.SetUserAgent(userAgent)

	return &Client{settings: settings, instance: instance}, nil
}

// IssuePicker queries the issue picker resource. Without a query Jira returns the
// user's recently viewed issues.
func (c *Client) IssuePicker(ctx context.Context, query string) (*models.IssuePickerResult, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	params.Set("showSubTasks", "true")

	result := new(models.IssuePickerResult)
	if err := c.get(ctx, "rest/api/3/issue/picker?"+params.Encode(), result); err != nil {
		return nil, err
	}
	return result, nil
}

// rawIssue keeps the fields object undecoded so it can feed both the typed view and
// the raw field map.
type rawIssue struct {
	ID             string                 `json:"id"`
	Key            string                 `json:"key"`
	Self           string                 `json:"self"`
	Fields         json.RawMessage        `json:"fields"`
	RenderedFields map[string]interface{} `json:"renderedFields,omitempty"`
}

type namedField struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type userField struct {
	DisplayName string `json:"displayName"`
}

type issueFields struct {
	Summary   string      `json:"summary"`
	Status    *namedField `json:"status"`
	IssueType *namedField `json:"issuetype"`
	Project   *namedField `json:"project"`
	Priority  *namedField `json:"priority"`
	Assignee  *userField  `json:"assignee"`
	Reporter  *userField  `json:"reporter"`
	Labels    []string    `json:"labels"`
	Created   string      `json:"created"`
	Updated   string      `json:"updated"`
}

// GetIssue fetches one issue by key or id.
func (c *Client) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	endpoint := "rest/api/3/issue/" + url.PathEscape(key)
	if c.settings.RenderToMarkdown {
		endpoint += "?" + url.Values{"expand": {"renderedFields"}}.Encode()
	}

	var raw rawIssue
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	issue := &models.Issue{
		ID:             raw.ID,
		Key:            raw.Key,
		Self:           raw.Self,
		RenderedFields: raw.RenderedFields,
	}
	if len(raw.Fields) == 0 {
		return issue, nil
	}

	var fields issueFields
	if err := json.Unmarshal(raw.Fields, &fields); err != nil {
		return nil, Classify(fmt.Errorf("failed to decode fields of %s: %w", key, err))
	}
	if err := json.Unmarshal(raw.Fields, &issue.Fields); err != nil {
		return nil, Classify(fmt.Errorf("failed to decode raw fields of %s: %w", key, err))
	}

	issue.Summary = fields.Summary
	issue.Labels = fields.Labels
	issue.Created = fields.Created
	issue.Updated = fields.Updated
	if fields.Status != nil {
		issue.Status = fields.Status.Name
	}
	if fields.IssueType != nil {
		issue.IssueType = fields.IssueType.Name
	}
	if fields.Project != nil {
		issue.Project = fields.Project.Key
	}
	if fields.Priority != nil {
		issue.Priority = fields.Priority.Name
	}
	if fields.Assignee != nil {
		issue.Assignee = fields.Assignee.DisplayName
	}
	if fields.Reporter != nil {
		issue.Reporter = fields.Reporter.DisplayName
	}
	return issue, nil
}

// Projects lists every project the user can browse, following the paginated search.
func (c *Client) Projects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	options := &atlassian.ProjectSearchOptionsScheme{OrderBy: "name"}

	for startAt := 0; ; {
		page, res, err := c.instance.Project.Search(ctx, options, startAt, projectPageSize)
		if err != nil {
			return nil, classifyResponse(fmt.Errorf("failed to search projects: %w", err), res)
		}
		for _, p := range page.Values {
			projects = append(projects, &models.Project{
				ID:             p.ID,
				Key:            p.Key,
				Name:           p.Name,
				Self:           p.Self,
				ProjectTypeKey: p.ProjectTypeKey,
			})
		}
		if page.IsLast || len(page.Values) == 0 {
			break
		}
		startAt += len(page.Values)
	}

	log.Debugf("Fetched %d projects", len(projects))
	return projects, nil
}

// IssueTypes lists all issue types, or those of one project when projectID is set.
func (c *Client) IssueTypes(ctx context.Context, projectID *int64) ([]*models.IssueType, error) {
	var schemes []*atlassian.IssueTypeScheme

	if projectID == nil {
		types, res, err := c.instance.Issue.Type.Gets(ctx)
		if err != nil {
			return nil, classifyResponse(fmt.Errorf("failed to list issue types: %w", err), res)
		}
		schemes = types
	} else {
		endpoint := "rest/api/3/issuetype/project?" +
			url.Values{"projectId": {strconv.FormatInt(*projectID, 10)}}.Encode()
		if err := c.get(ctx, endpoint, &schemes); err != nil {
			return nil, err
		}
	}

	issueTypes := make([]*models.IssueType, 0, len(schemes))
	for _, t := range schemes {
		if t == nil {
			continue
		}
		issueTypes = append(issueTypes, &models.IssueType{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			IconURL:     t.IconURL,
			Subtask:     t.Subtask,
		})
	}
	return issueTypes, nil
}

// get runs a GET through the SDK transport, which applies auth and maps error statuses.
func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := c.instance.NewRequest(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return Classify(fmt.Errorf("failed to create request: %w", err))
	}

	res, err := c.instance.Call(req, result)
	if err != nil {
		return classifyResponse(fmt.Errorf("GET %s failed: %w", endpoint, err), res)
	}
	return nil
}
