package frontmatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tuannvm/jira-cloud/internal/config"
	"github.com/tuannvm/jira-cloud/internal/models"
)

var settings = config.Settings{Host: "https://acme.atlassian.net/", IssueYAMLKey: "issues"}

func issue(key, summary string) *models.Issue {
	return &models.Issue{
		Key:       key,
		Summary:   summary,
		Status:    "In Progress",
		IssueType: "Bug",
		Project:   "ACME",
		Fields: map[string]interface{}{
			"summary":     summary,
			"description": nil,
			"labels":      []interface{}{},
			"customfield": "",
			"priority":    map[string]interface{}{"name": "High", "iconUrl": ""},
			"watches":     map[string]interface{}{"self": nil},
		},
	}
}

func decode(t *testing.T, doc []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal(doc, &out))
	return out
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := Marshal(settings, issue("ACME-1", "Crash on start"), nil)
	require.NoError(t, err)

	doc := decode(t, out)
	entries, ok := doc["issues"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "ACME-1", entry["key"])
	assert.Equal(t, "Crash on start", entry["summary"])
	assert.Equal(t, "In Progress", entry["status"])
	assert.Equal(t, "Bug", entry["type"])
	assert.Equal(t, "ACME", entry["project"])
	assert.Equal(t, "https://acme.atlassian.net/browse/ACME-1", entry["url"])
	assert.NotContains(t, entry, "_fields")
}

func TestMarshalIncludeAll(t *testing.T) {
	t.Parallel()

	s := settings
	s.IncludeAll = true
	s.IssueYAMLKey = "jira"

	out, err := Marshal(s, issue("ACME-2", "Slow"))
	require.NoError(t, err)

	doc := decode(t, out)
	require.Contains(t, doc, "jira")
	entry := doc["jira"].([]interface{})[0].(map[string]interface{})

	fields := entry["_fields"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"summary":  "Slow",
		"priority": map[string]interface{}{"name": "High"},
	}, fields)
}

func TestMarshalBlankKeyUsesDefault(t *testing.T) {
	t.Parallel()

	out, err := Marshal(config.Settings{}, issue("A-1", "x"))
	require.NoError(t, err)
	assert.Contains(t, decode(t, out), config.DefaultIssueYAMLKey)
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "---\na: 1\n---\n", string(Wrap([]byte("a: 1\n"))))
	assert.Equal(t, "---\na: 1\n---\n", string(Wrap([]byte("a: 1"))))
}

func TestMergeIntoPlainNote(t *testing.T) {
	t.Parallel()

	out, err := Merge([]byte("# Notes\n"), settings, issue("ACME-1", "One"))
	require.NoError(t, err)

	front, body := split(out)
	assert.Equal(t, "# Notes\n", string(body))
	entries := decode(t, front)["issues"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "ACME-1", entries[0].(map[string]interface{})["key"])
}

func TestMergeKeepsOtherPropertiesAndUpserts(t *testing.T) {
	t.Parallel()

	note := strings.Join([]string{
		"---",
		"title: Sprint review",
		"issues:",
		"  - key: ACME-1",
		"    summary: Old summary",
		"  - key: OTHER-7",
		"---",
		"Body text",
		"",
	}, "\n")

	out, err := Merge([]byte(note), settings, issue("ACME-1", "New summary"), issue("ACME-3", "Third"))
	require.NoError(t, err)

	front, body := split(out)
	assert.Equal(t, "Body text\n", string(body))

	doc := decode(t, front)
	assert.Equal(t, "Sprint review", doc["title"])

	var keys, summaries []string
	for _, e := range doc["issues"].([]interface{}) {
		m := e.(map[string]interface{})
		keys = append(keys, m["key"].(string))
		s, _ := m["summary"].(string)
		summaries = append(summaries, s)
	}
	assert.Equal(t, []string{"ACME-1", "OTHER-7", "ACME-3"}, keys)
	assert.Equal(t, []string{"New summary", "", "Third"}, summaries)
}

func TestMergeNullKey(t *testing.T) {
	t.Parallel()

	out, err := Merge([]byte("---\nissues:\n---\n"), settings, issue("A-1", "x"))
	require.NoError(t, err)

	front, _ := split(out)
	assert.Len(t, decode(t, front)["issues"], 1)
}

func TestMergeConflict(t *testing.T) {
	t.Parallel()

	_, err := Merge([]byte("---\nissues: none\n---\n"), settings, issue("A-1", "x"))
	assert.ErrorIs(t, err, ErrKeyConflict)
}

func TestSplitWithoutClosingFence(t *testing.T) {
	t.Parallel()

	front, body := split([]byte("---\ntitle: x\n"))
	assert.Nil(t, front)
	assert.Equal(t, "---\ntitle: x\n", string(body))
}
