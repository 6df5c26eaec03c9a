// Package jiratest provides an in-memory jira.ClientInterface for tests.
package jiratest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tuannvm/jira-cloud/internal/jira"
	"github.com/tuannvm/jira-cloud/internal/models"
)

// Client is a canned ClientInterface that records the calls it receives.
type Client struct {
	PickerResult *models.IssuePickerResult
	PickerErr    error

	Issues   map[string]*models.Issue
	IssueErr error

	ProjectList []*models.Project
	ProjectsErr error

	Types          []*models.IssueType
	TypesByProject map[int64][]*models.IssueType
	TypesErr       error

	mu               sync.Mutex
	pickerQueries    []string
	issueKeys        []string
	issueTypeFilters []*int64
}

var _ jira.ClientInterface = (*Client)(nil)

// NewSession returns a session already holding c.
func NewSession(c jira.ClientInterface) *jira.Session {
	s := jira.NewSession()
	s.Replace(c)
	return s
}

func (c *Client) IssuePicker(_ context.Context, query string) (*models.IssuePickerResult, error) {
	c.mu.Lock()
	c.pickerQueries = append(c.pickerQueries, query)
	c.mu.Unlock()

	if c.PickerErr != nil {
		return nil, c.PickerErr
	}
	return c.PickerResult, nil
}

func (c *Client) GetIssue(_ context.Context, key string) (*models.Issue, error) {
	c.mu.Lock()
	c.issueKeys = append(c.issueKeys, key)
	c.mu.Unlock()

	if c.IssueErr != nil {
		return nil, c.IssueErr
	}
	issue, ok := c.Issues[key]
	if !ok {
		return nil, jira.Classify(fmt.Errorf("issue %s not found", key))
	}
	return issue, nil
}

func (c *Client) Projects(_ context.Context) ([]*models.Project, error) {
	if c.ProjectsErr != nil {
		return nil, c.ProjectsErr
	}
	return c.ProjectList, nil
}

func (c *Client) IssueTypes(_ context.Context, projectID *int64) ([]*models.IssueType, error) {
	c.mu.Lock()
	c.issueTypeFilters = append(c.issueTypeFilters, projectID)
	c.mu.Unlock()

	if c.TypesErr != nil {
		return nil, c.TypesErr
	}
	if projectID != nil {
		return c.TypesByProject[*projectID], nil
	}
	return c.Types, nil
}

// PickerQueries returns the queries passed to IssuePicker.
func (c *Client) PickerQueries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.pickerQueries...)
}

// IssueKeys returns the keys passed to GetIssue.
func (c *Client) IssueKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.issueKeys...)
}

// IssueTypeFilters returns the project filters passed to IssueTypes.
func (c *Client) IssueTypeFilters() []*int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*int64(nil), c.issueTypeFilters...)
}
