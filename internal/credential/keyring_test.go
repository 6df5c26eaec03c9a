package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		username, host, want string
	}{
		"https site":     {"dev@acme.io", "https://acme.atlassian.net", "api-key:dev@acme.io@acme.atlassian.net"},
		"trailing slash": {"dev@acme.io", "https://acme.atlassian.net/", "api-key:dev@acme.io@acme.atlassian.net"},
		"http site":      {"me", "http://localhost:8080", "api-key:me@localhost:8080"},
		"bare host":      {"me", "acme.atlassian.net", "api-key:me@acme.atlassian.net"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Key(tc.username, tc.host))
		})
	}
}

func TestAllowedBackends(t *testing.T) {
	t.Parallel()

	assert.NotContains(t, allowedBackends(""), keyring.FileBackend, "no passphrase, no file backend")

	withFile := allowedBackends("s3cret")
	assert.Contains(t, withFile, keyring.FileBackend)
	assert.Equal(t, keyring.FileBackend, withFile[len(withFile)-1], "OS keyrings are preferred")
}
