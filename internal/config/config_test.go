package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Jira.RenderToMarkdown)
	assert.Equal(t, DefaultIssueYAMLKey, cfg.Jira.IssueYAMLKey)
	assert.False(t, cfg.Jira.IncludeAll)
	assert.False(t, cfg.Jira.Complete())

	assert.Equal(t, BridgeAgentName, cfg.Agent.Name)
	assert.Equal(t, 8080, cfg.Agent.Port)
	assert.Equal(t, "apikey", cfg.Agent.AuthType)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("JIRA_CLOUD_JIRA_API_KEY", " token ")

	path := writeConfig(t, `
jira:
  host: https://acme.atlassian.net/
  username: dev@acme.io
  render_to_markdown: false
  issue_yaml_key: ""
  include_all: true
agent:
  port: 9090
  auth_type: jwt
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://acme.atlassian.net", cfg.Jira.Host)
	assert.Equal(t, "dev@acme.io", cfg.Jira.Username)
	assert.Equal(t, "token", cfg.Jira.APIKey)
	assert.False(t, cfg.Jira.RenderToMarkdown)
	assert.Equal(t, DefaultIssueYAMLKey, cfg.Jira.IssueYAMLKey, "blank key falls back to the default")
	assert.True(t, cfg.Jira.IncludeAll)
	assert.Equal(t, 9090, cfg.Agent.Port)
	assert.Equal(t, "jwt", cfg.Agent.AuthType)
	assert.NoError(t, cfg.Jira.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("JIRA_CLOUD_JIRA_HOST", "https://override.atlassian.net")
	t.Setenv("JIRA_CLOUD_JIRA_API_KEY", "secret")
	t.Setenv("JIRA_CLOUD_JIRA_ISSUE_YAML_KEY", "tickets")

	path := writeConfig(t, "jira:\n  host: https://file.atlassian.net\n  username: a@b.c\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.atlassian.net", cfg.Jira.Host)
	assert.Equal(t, "tickets", cfg.Jira.IssueYAMLKey)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "jira: [unterminated"))
	assert.Error(t, err)
}

func TestLoadForgetsEarlierFile(t *testing.T) {
	path := writeConfig(t, "jira:\n  host: https://file.atlassian.net\n  issue_yaml_key: tickets\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://file.atlassian.net", cfg.Jira.Host)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Jira.Host)
	assert.Equal(t, DefaultIssueYAMLKey, cfg.Jira.IssueYAMLKey)
}

func TestBindFlag(t *testing.T) {
	t.Cleanup(func() {
		bindingsMu.Lock()
		delete(bindings, "jira.host")
		bindingsMu.Unlock()
	})

	fs := pflag.NewFlagSet("jiracloud", pflag.ContinueOnError)
	fs.String("host", "", "")
	BindFlag("jira.host", fs.Lookup("host"))
	BindFlag("jira.username", fs.Lookup("missing"))

	path := writeConfig(t, "jira:\n  host: https://file.atlassian.net\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.atlassian.net", cfg.Jira.Host, "unset flags do not override the file")

	require.NoError(t, fs.Set("host", "https://flag.atlassian.net/"))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.atlassian.net", cfg.Jira.Host)
}

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings Settings
		wantErr  error
		valid    bool
	}{
		{name: "complete", settings: Settings{Host: "https://acme.atlassian.net", Username: "u", APIKey: "k"}, valid: true},
		{name: "plain http", settings: Settings{Host: "http://localhost:8080", Username: "u", APIKey: "k"}, valid: true},
		{name: "missing host", settings: Settings{Username: "u", APIKey: "k"}, wantErr: ErrIncompleteSettings},
		{name: "missing username", settings: Settings{Host: "https://a.b", APIKey: "k"}, wantErr: ErrIncompleteSettings},
		{name: "missing api key", settings: Settings{Host: "https://a.b", Username: "u"}, wantErr: ErrIncompleteSettings},
		{name: "no scheme", settings: Settings{Host: "acme.atlassian.net", Username: "u", APIKey: "k"}},
		{name: "wrong scheme", settings: Settings{Host: "ftp://acme.atlassian.net", Username: "u", APIKey: "k"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.settings.Validate()
			switch {
			case tc.valid:
				assert.NoError(t, err)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveAccount(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveAccount(path, "https://acme.atlassian.net", "dev@acme.io"))

	require.NoError(t, os.WriteFile(path, []byte(`
jira:
  host: https://old.atlassian.net
  api_key: leaked
  include_all: true
agent:
  port: 9090
`), 0o600))
	require.NoError(t, SaveAccount(path, "https://acme.atlassian.net", "dev@acme.io"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(raw, &doc))

	assert.Equal(t, "https://acme.atlassian.net", doc["jira"]["host"])
	assert.Equal(t, "dev@acme.io", doc["jira"]["username"])
	assert.Equal(t, true, doc["jira"]["include_all"])
	assert.NotContains(t, doc["jira"], "api_key")
	assert.Equal(t, 9090, doc["agent"]["port"])
}
