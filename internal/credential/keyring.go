package credential

import (
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "jiracloud"

// PasswordEnv holds the passphrase of the encrypted file backend. Without it the file
// backend is not offered and only OS keyrings are used.
const PasswordEnv = "JIRA_CLOUD_KEYRING_PASSWORD"

// allowedBackends lists the keyring backends to try, in order.
func allowedBackends(filePassword string) []keyring.BackendType {
	backends := []keyring.BackendType{
		keyring.KeychainBackend,
		keyring.SecretServiceBackend,
		keyring.WinCredBackend,
		keyring.PassBackend,
	}
	if filePassword != "" {
		backends = append(backends, keyring.FileBackend)
	}
	return backends
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	password := os.Getenv(PasswordEnv)
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          allowedBackends(password),
		FileDir:                  "~/.config/jiracloud/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(password),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Key returns the keyring entry name for an account on a Jira site.
func Key(username, host string) string {
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	return "api-key:" + username + "@" + strings.TrimRight(host, "/")
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       "Jira Cloud API key",
		Description: "Atlassian API token used by jiracloud",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
