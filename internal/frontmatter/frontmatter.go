// Package frontmatter renders fetched issues as YAML frontmatter for markdown notes.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/jira-cloud/internal/config"
	"github.com/tuannvm/jira-cloud/internal/models"
)

const fence = "---"

// ErrKeyConflict is returned by Merge when the issue key already holds a non-list value.
var ErrKeyConflict = errors.New("frontmatter key holds a value that is not a list")

// Entry is the frontmatter representation of one issue.
type Entry struct {
	Key     string `yaml:"key"`
	Summary string `yaml:"summary,omitempty"`
	Status  string `yaml:"status,omitempty"`
	Type    string `yaml:"type,omitempty"`
	Project string `yaml:"project,omitempty"`
	URL     string `yaml:"url,omitempty"`

	// Fields carries every non-empty raw field when Settings.IncludeAll is set.
	Fields map[string]interface{} `yaml:"_fields,omitempty"`
}

// NewEntry builds the entry for issue.
func NewEntry(settings config.Settings, issue *models.Issue) Entry {
	e := Entry{
		Key:     issue.Key,
		Summary: issue.Summary,
		Status:  issue.Status,
		Type:    issue.IssueType,
		Project: issue.Project,
	}
	if settings.Host != "" && issue.Key != "" {
		e.URL = strings.TrimRight(settings.Host, "/") + "/browse/" + issue.Key
	}
	if settings.IncludeAll {
		if fields, ok := prune(issue.Fields).(map[string]interface{}); ok {
			e.Fields = fields
		}
	}
	return e
}

// Marshal renders issues under the configured key as a YAML document.
func Marshal(settings config.Settings, issues ...*models.Issue) ([]byte, error) {
	entries := make([]Entry, 0, len(issues))
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		entries = append(entries, NewEntry(settings, issue))
	}

	out, err := yaml.Marshal(map[string][]Entry{yamlKey(settings): entries})
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}
	return out, nil
}

// Wrap surrounds a YAML document with frontmatter fences.
func Wrap(doc []byte) []byte {
	out := make([]byte, 0, len(doc)+2*len(fence)+2)
	out = append(out, fence+"\n"...)
	out = append(out, doc...)
	if len(doc) > 0 && doc[len(doc)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, fence+"\n"...)
}

// Merge adds issues to the frontmatter of a markdown note. Entries with the same key are
// replaced in place, new ones are appended, and every other property and the note body are
// kept.
func Merge(note []byte, settings config.Settings, issues ...*models.Issue) ([]byte, error) {
	front, body := split(note)

	var root yaml.Node
	if len(strings.TrimSpace(string(front))) > 0 {
		if err := yaml.Unmarshal(front, &root); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
	}
	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("frontmatter is not a mapping")
	}

	list, err := sequence(root.Content[0], yamlKey(settings))
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		var n yaml.Node
		if err := n.Encode(NewEntry(settings, issue)); err != nil {
			return nil, fmt.Errorf("encoding issue %s: %w", issue.Key, err)
		}
		upsert(list, &n, issue.Key)
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}
	return append(Wrap(out), body...), nil
}

func yamlKey(settings config.Settings) string {
	if k := strings.TrimSpace(settings.IssueYAMLKey); k != "" {
		return k
	}
	return config.DefaultIssueYAMLKey
}

// split separates a leading fenced block from the rest of the note.
func split(note []byte) (front, body []byte) {
	lines := strings.SplitAfter(string(note), "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != fence {
		return nil, note
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == fence {
			return []byte(strings.Join(lines[1:i], "")), []byte(strings.Join(lines[i+1:], ""))
		}
	}
	return nil, note
}

// sequence returns the list stored under key, creating it when absent or null.
func sequence(mapping *yaml.Node, key string) (*yaml.Node, error) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		val := mapping.Content[i+1]
		switch {
		case val.Kind == yaml.SequenceNode:
			return val, nil
		case val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null":
			*val = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			return val, nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrKeyConflict, key)
		}
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		seq,
	)
	return seq, nil
}

func upsert(seq, entry *yaml.Node, key string) {
	for i, item := range seq.Content {
		if item.Kind == yaml.MappingNode && mappingValue(item, "key") == key {
			seq.Content[i] = entry
			return
		}
	}
	seq.Content = append(seq.Content, entry)
}

func mappingValue(mapping *yaml.Node, key string) string {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1].Value
		}
	}
	return ""
}

// prune drops nil, empty string, empty list and empty object values, recursively.
func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return t
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if p := prune(val); p != nil {
				out[k] = p
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, val := range t {
			if p := prune(val); p != nil {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}
