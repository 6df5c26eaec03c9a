package models

// IssuePickerResult is the response of the issue picker endpoint: suggestions grouped
// into sections such as "History Search" and "Current Search".
type IssuePickerResult struct {
	Sections []*IssuePickerSection `json:"sections"`
}

// IssuePickerSection is one group of picker suggestions.
type IssuePickerSection struct {
	Label  string             `json:"label"`
	Sub    string             `json:"sub,omitempty"`
	ID     string             `json:"id"`
	Msg    string             `json:"msg,omitempty"`
	Issues []*IssueSuggestion `json:"issues"`
}

// IssueSuggestion is the summary of an issue returned by the picker.
type IssueSuggestion struct {
	ID          int64  `json:"id,omitempty"`
	Key         string `json:"key"`
	KeyHTML     string `json:"keyHtml,omitempty"`
	Img         string `json:"img,omitempty"`
	Summary     string `json:"summary,omitempty"`
	SummaryText string `json:"summaryText,omitempty"`
}

// Issue is a full issue record fetched by key.
type Issue struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Self      string   `json:"self"`
	Summary   string   `json:"summary"`
	Status    string   `json:"status,omitempty"`
	IssueType string   `json:"issueType,omitempty"`
	Project   string   `json:"project,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Assignee  string   `json:"assignee,omitempty"`
	Reporter  string   `json:"reporter,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Created   string   `json:"created,omitempty"`
	Updated   string   `json:"updated,omitempty"`

	// Fields holds every field of the API response, keyed by field id.
	Fields map[string]interface{} `json:"fields,omitempty"`

	// RenderedFields holds HTML renderings, present when they were requested.
	RenderedFields map[string]interface{} `json:"renderedFields,omitempty"`
}

// Project is a Jira project the user can access.
type Project struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	Self           string `json:"self,omitempty"`
	ProjectTypeKey string `json:"projectTypeKey,omitempty"`
}

// IssueType describes an issue type, optionally scoped to a project.
type IssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
	Subtask     bool   `json:"subtask"`
}
