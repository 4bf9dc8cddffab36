package catalog_test

import (
	"testing"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/internal/integration/bluesky"
	"github.com/robalyx/embedder/internal/integration/catalog"
	"github.com/robalyx/embedder/internal/integration/fourchan"
	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newConfig() *config.CommonConfig {
	return &config.CommonConfig{
		Fetch: config.Fetch{Timeout: 1000},
		Integrations: map[string]config.Integration{
			"bluesky":  {Enabled: true},
			"fourchan": {Enabled: true, PostFormat: "{url}"},
			"twitter":  {Enabled: true},
			"reddit":   {Enabled: false},
		},
	}
}

func TestRegistryResolvesBuiltInClients(t *testing.T) {
	t.Parallel()

	registry := catalog.NewRegistry(newConfig(), zaptest.NewLogger(t))

	handler, err := registry.Resolve("https://bsky.app/profile/alice.bsky.social/post/3kxyz")
	require.NoError(t, err)
	assert.Equal(t, enum.IntegrationBluesky, handler.Integration)
	assert.IsType(t, &bluesky.Client{}, handler.Fetcher)

	handler, err = registry.Resolve("https://boards.4chan.org/g/thread/100")
	require.NoError(t, err)
	assert.IsType(t, &fourchan.Client{}, handler.Fetcher)
}

func TestRegistryUnavailableIntegrations(t *testing.T) {
	t.Parallel()

	registry := catalog.NewRegistry(newConfig(), zaptest.NewLogger(t))

	tests := []struct {
		name     string
		url      string
		expected error
	}{
		{name: "enabled without client", url: "https://x.com/user/status/1", expected: integration.ErrNoClient},
		{name: "disabled", url: "https://www.reddit.com/r/golang/comments/abc", expected: integration.ErrDisabled},
		{name: "not configured", url: "https://www.tiktok.com/@user/video/1", expected: integration.ErrDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := registry.Resolve(tt.url)
			require.ErrorIs(t, err, integration.ErrHandlerUnavailable)
			require.ErrorIs(t, err, tt.expected)

			var cfgErr *integration.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.False(t, registry.ShouldHandle(tt.url))
		})
	}
}

func TestRegistryPredicates(t *testing.T) {
	t.Parallel()

	registry := catalog.NewRegistry(newConfig(), zaptest.NewLogger(t))

	unsupported := []string{
		"https://bsky.app/profile/alice.bsky.social",
		"https://x.com/user",
		"https://i.redd.it/abc.jpg",
		"https://www.twitch.tv/someone",
		"https://www.youtube.com/watch?v=abc",
		"https://example.com/post/1",
	}

	for _, url := range unsupported {
		_, err := registry.Resolve(url)
		require.ErrorIs(t, err, integration.ErrUnsupportedURL, url)
	}
}

func TestPostFormats(t *testing.T) {
	t.Parallel()

	formats := catalog.PostFormats(newConfig())

	assert.Len(t, formats, len(enum.IntegrationValues()))
	assert.Equal(t, "{url}", formats[enum.IntegrationFourChan])
	assert.Equal(t, integration.PostFormat(enum.IntegrationBluesky), formats[enum.IntegrationBluesky])
	assert.Equal(t, integration.DefaultPostFormat, formats[enum.IntegrationNineGag])
}
