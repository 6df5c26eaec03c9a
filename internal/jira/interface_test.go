package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/jira-cloud/internal/config"
)

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("uninitialized session reports ErrNotInitialized", func(t *testing.T) {
		t.Parallel()

		c, err := NewSession().Client()
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("complete settings install a client", func(t *testing.T) {
		t.Parallel()

		s := NewSession()
		require.NoError(t, s.Configure(testSettings("https://example.atlassian.net")))

		c, err := s.Client()
		require.NoError(t, err)
		assert.IsType(t, &Client{}, c)
	})

	t.Run("configure replaces rather than mutates", func(t *testing.T) {
		t.Parallel()

		s := NewSession()
		require.NoError(t, s.Configure(testSettings("https://one.atlassian.net")))
		first, _ := s.Client()

		require.NoError(t, s.Configure(testSettings("https://two.atlassian.net")))
		second, _ := s.Client()

		assert.NotSame(t, first, second)
		assert.Equal(t, "https://one.atlassian.net", first.(*Client).settings.Host)
	})

	t.Run("incomplete settings reset the session", func(t *testing.T) {
		t.Parallel()

		s := NewSession()
		require.NoError(t, s.Configure(testSettings("https://example.atlassian.net")))
		require.NoError(t, s.Configure(config.Settings{Host: "https://example.atlassian.net"}))

		_, err := s.Client()
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("invalid host is rejected", func(t *testing.T) {
		t.Parallel()

		s := NewSession()
		err := s.Configure(testSettings("example.atlassian.net"))
		require.Error(t, err)

		_, err = s.Client()
		assert.ErrorIs(t, err, ErrNotInitialized)
	})
}
