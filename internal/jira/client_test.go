package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/jira-cloud/internal/config"
)

func testSettings(host string) config.Settings {
	return config.Settings{
		Host:             host,
		Username:         "me@example.com",
		APIKey:           "secret",
		RenderToMarkdown: true,
		IssueYAMLKey:     "issues",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := newClient(testSettings(srv.URL), srv.Client())
	require.NoError(t, err)
	return c
}

func TestClientIssuePicker(t *testing.T) {
	t.Parallel()

	t.Run("decodes sections and sends basic auth", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/api/3/issue/picker", r.URL.Path)
			assert.Equal(t, "ABC", r.URL.Query().Get("query"))
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "me@example.com", user)
			assert.Equal(t, "secret", pass)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sections":[{"label":"History Search","id":"hs","issues":[{"key":"ABC-1","summaryText":"First"}]}]}`)) // nolint:errcheck
		})

		res, err := c.IssuePicker(context.Background(), "ABC")
		require.NoError(t, err)
		require.Len(t, res.Sections, 1)
		require.Len(t, res.Sections[0].Issues, 1)
		assert.Equal(t, "ABC-1", res.Sections[0].Issues[0].Key)
		assert.Equal(t, "First", res.Sections[0].Issues[0].SummaryText)
	})

	t.Run("401 classifies as unauthorized", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errorMessages":["bad token"]}`)) // nolint:errcheck
		})

		_, err := c.IssuePicker(context.Background(), "")
		require.Error(t, err)
		apiErr := Classify(err)
		assert.Equal(t, ReasonUnauthorized, apiErr.Reason)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode())
	})

	t.Run("404 classifies as other with status", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		_, err := c.IssuePicker(context.Background(), "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, ReasonOther, apiErr.Reason)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())
	})
}

func TestClientGetIssue(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/ABC-7", r.URL.Path)
		assert.Equal(t, "renderedFields", r.URL.Query().Get("expand"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "10007",
			"key": "ABC-7",
			"self": "https://example.atlassian.net/rest/api/3/issue/10007",
			"fields": {
				"summary": "Fix login",
				"status": {"name": "In Progress"},
				"issuetype": {"name": "Bug"},
				"project": {"key": "ABC", "name": "Alpha"},
				"priority": {"name": "High"},
				"assignee": {"displayName": "Alice"},
				"labels": ["auth"],
				"customfield_10010": null
			},
			"renderedFields": {"description": "<p>hi</p>"}
		}`)) // nolint:errcheck
	})

	issue, err := c.GetIssue(context.Background(), "ABC-7")
	require.NoError(t, err)
	assert.Equal(t, "10007", issue.ID)
	assert.Equal(t, "ABC-7", issue.Key)
	assert.Equal(t, "Fix login", issue.Summary)
	assert.Equal(t, "In Progress", issue.Status)
	assert.Equal(t, "Bug", issue.IssueType)
	assert.Equal(t, "ABC", issue.Project)
	assert.Equal(t, "High", issue.Priority)
	assert.Equal(t, "Alice", issue.Assignee)
	assert.Empty(t, issue.Reporter)
	assert.Equal(t, []string{"auth"}, issue.Labels)
	assert.Contains(t, issue.Fields, "customfield_10010")
	assert.Equal(t, "<p>hi</p>", issue.RenderedFields["description"])
}

func TestClientProjects(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/project/search", r.URL.Path)
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))

		w.Header().Set("Content-Type", "application/json")
		if startAt == 0 {
			w.Write([]byte(`{"startAt":0,"maxResults":2,"total":3,"isLast":false,"values":[{"id":"1","key":"A","name":"Alpha"},{"id":"2","key":"B","name":"Beta"}]}`)) // nolint:errcheck
			return
		}
		assert.Equal(t, 2, startAt)
		w.Write([]byte(`{"startAt":2,"maxResults":2,"total":3,"isLast":true,"values":[{"id":"3","key":"C","name":"Gamma"}]}`)) // nolint:errcheck
	})

	projects, err := c.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "A", projects[0].Key)
	assert.Equal(t, "Gamma", projects[2].Name)
}

func TestClientIssueTypes(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/api/3/issuetype":
			w.Write([]byte(`[{"id":"1","name":"Bug"},{"id":"2","name":"Story"},{"id":"3","name":"Sub-task","subtask":true}]`)) // nolint:errcheck
		case "/rest/api/3/issuetype/project":
			assert.Equal(t, "10000", r.URL.Query().Get("projectId"))
			w.Write([]byte(`[{"id":"2","name":"Story"}]`)) // nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	})

	all, err := c.IssueTypes(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[2].Subtask)

	projectID := int64(10000)
	scoped, err := c.IssueTypes(context.Background(), &projectID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Story", scoped[0].Name)
}
