package jira

import (
	"context"
	"sync"

	"github.com/tuannvm/jira-cloud/internal/config"
	log "github.com/tuannvm/jira-cloud/internal/logging"
	"github.com/tuannvm/jira-cloud/internal/models"
)

// ClientInterface defines the remote operations the bridge relies on. Failures are
// returned as *APIError.
type ClientInterface interface {
	// IssuePicker returns type-ahead suggestions; an empty query returns recent issues.
	IssuePicker(ctx context.Context, query string) (*models.IssuePickerResult, error)
	GetIssue(ctx context.Context, key string) (*models.Issue, error)
	Projects(ctx context.Context) ([]*models.Project, error)
	// IssueTypes lists issue types, restricted to one project when projectID is set.
	IssueTypes(ctx context.Context, projectID *int64) ([]*models.IssueType, error)
}

var _ ClientInterface = (*Client)(nil)

// Session owns the client for the lifetime of the process. The client is replaced
// wholesale when settings change and is absent until settings are complete.
type Session struct {
	mu     sync.RWMutex
	client ClientInterface
}

// NewSession creates an uninitialized session.
func NewSession() *Session {
	return &Session{}
}

// Client returns the current client or ErrNotInitialized.
func (s *Session) Client() (ClientInterface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, ErrNotInitialized
	}
	return s.client, nil
}

// Configure replaces the client with one built from settings. Incomplete settings reset
// the session to the uninitialized state.
func (s *Session) Configure(settings config.Settings) error {
	if !settings.Complete() {
		log.Warnf("Jira settings incomplete, client left uninitialized")
		s.Replace(nil)
		return nil
	}
	if err := settings.Validate(); err != nil {
		s.Replace(nil)
		return err
	}

	c, err := NewClient(settings)
	if err != nil {
		s.Replace(nil)
		return err
	}
	s.Replace(c)
	log.Infof("Jira client configured for %s as %s", settings.Host, settings.Username)
	return nil
}

// Replace installs c as the current client; nil resets the session.
func (s *Session) Replace(c ClientInterface) {
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
}
