package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tuannvm/jira-cloud/internal/credential"
	log "github.com/tuannvm/jira-cloud/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override, e.g. JIRA_CLOUD_JIRA_HOST.
	EnvPrefix = "JIRA_CLOUD"

	// BridgeAgentName is the agent card name of the A2A bridge.
	BridgeAgentName = "JiraCloudBridgeAgent"

	// DefaultIssueYAMLKey is the frontmatter key issues are written under.
	DefaultIssueYAMLKey = "issues"
)

// ErrIncompleteSettings is returned by Validate when host, username or API key is missing.
var ErrIncompleteSettings = errors.New("jira settings incomplete: host, username and api key are required")

// Settings is the Jira connection and output contract read by the client layer.
type Settings struct {
	// Host is the Atlassian site, of the form https://my-company.atlassian.net
	Host string `mapstructure:"host" yaml:"host"`

	// Username is the Atlassian account, usually an email address.
	Username string `mapstructure:"username" yaml:"username"`

	// APIKey is the Atlassian API token. When empty it is looked up in the keyring.
	APIKey string `mapstructure:"api_key" yaml:"-"`

	// RenderToMarkdown asks Jira for rendered HTML fields so the host can convert them.
	RenderToMarkdown bool `mapstructure:"render_to_markdown" yaml:"render_to_markdown"`

	// IssueYAMLKey is the frontmatter key issues are added under.
	IssueYAMLKey string `mapstructure:"issue_yaml_key" yaml:"issue_yaml_key"`

	// IncludeAll adds a _fields property with every non-empty raw field.
	IncludeAll bool `mapstructure:"include_all" yaml:"include_all"`
}

// AgentConfig holds the A2A bridge server configuration.
type AgentConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	URL     string `mapstructure:"url"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// AuthType is "jwt", "apikey" or empty for an unauthenticated server.
	AuthType  string `mapstructure:"auth_type"`
	JWTSecret string `mapstructure:"jwt_secret"`
	APIKey    string `mapstructure:"api_key"`
}

// Config holds the application configuration
type Config struct {
	Jira  Settings    `mapstructure:"jira"`
	Agent AgentConfig `mapstructure:"agent"`
}

var (
	bindingsMu sync.Mutex
	bindings   = map[string]*pflag.Flag{}
)

// BindFlag makes flag override key on every later Load, once the flag has been set.
func BindFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	bindings[key] = flag
}

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	nv.SetDefault("jira.host", "")
	nv.SetDefault("jira.username", "")
	nv.SetDefault("jira.api_key", "")
	nv.SetDefault("jira.render_to_markdown", true)
	nv.SetDefault("jira.issue_yaml_key", DefaultIssueYAMLKey)
	nv.SetDefault("jira.include_all", false)

	nv.SetDefault("agent.name", BridgeAgentName)
	nv.SetDefault("agent.version", "1.0.0")
	nv.SetDefault("agent.url", "http://localhost:8080")
	nv.SetDefault("agent.host", "localhost")
	nv.SetDefault("agent.port", 8080)
	nv.SetDefault("agent.auth_type", "apikey")
	nv.SetDefault("agent.jwt_secret", "")
	nv.SetDefault("agent.api_key", "")

	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	for key, flag := range bindings {
		_ = nv.BindPFlag(key, flag)
	}
	return nv
}

// DefaultConfigPath returns ~/.config/jiracloud/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "jiracloud", "config.yaml")
}

// Load reads .env files, the optional YAML file at path and JIRA_CLOUD_* environment
// variables. A missing config file is not an error. Every call starts from a fresh
// viper, so nothing read by an earlier call leaks into the next.
func Load(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
			log.Debugf("No config file at %s, using environment and defaults", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Jira.normalize()

	if cfg.Jira.APIKey == "" && cfg.Jira.Host != "" && cfg.Jira.Username != "" {
		key, err := credential.Get(credential.Key(cfg.Jira.Username, cfg.Jira.Host))
		if err != nil {
			log.Debugf("No API key in keyring for %s: %v", cfg.Jira.Username, err)
		} else {
			cfg.Jira.APIKey = key
		}
	}

	return cfg, nil
}

// loadDotEnv tries .env in the working directory and up to two parents.
func loadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			log.Debugf("Loaded configuration from %s file", p)
			return
		}
	}
	log.Debugf("No .env file found. Using environment variables or defaults.")
}

func (s *Settings) normalize() {
	s.Host = strings.TrimRight(strings.TrimSpace(s.Host), "/")
	s.Username = strings.TrimSpace(s.Username)
	s.APIKey = strings.TrimSpace(s.APIKey)
	if strings.TrimSpace(s.IssueYAMLKey) == "" {
		s.IssueYAMLKey = DefaultIssueYAMLKey
	}
}

// Complete reports whether the settings are enough to build a Jira client.
func (s Settings) Complete() bool {
	return s.Host != "" && s.Username != "" && s.APIKey != ""
}

// Validate checks the settings can produce a working client.
func (s Settings) Validate() error {
	if !s.Complete() {
		return ErrIncompleteSettings
	}
	return ValidateHost(s.Host)
}

// ValidateHost checks host is an absolute http(s) URL.
func ValidateHost(host string) error {
	u, err := url.Parse(host)
	if err != nil {
		return fmt.Errorf("invalid jira host %q: %w", host, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid jira host %q: must be an absolute http(s) URL", host)
	}
	return nil
}

// SaveAccount writes host and username into the YAML file at path, keeping every other
// key. The API key is never written; it belongs in the keyring.
func SaveAccount(path, host, username string) error {
	doc := map[string]interface{}{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]interface{}{}
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	jira, _ := doc["jira"].(map[string]interface{})
	if jira == nil {
		jira = map[string]interface{}{}
	}
	jira["host"] = host
	jira["username"] = username
	delete(jira, "api_key")
	doc["jira"] = jira

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
