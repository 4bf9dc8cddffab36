// Package catalog assembles the integration registry from configuration.
package catalog

import (
	"strings"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/internal/integration/bluesky"
	"github.com/robalyx/embedder/internal/integration/fourchan"
	"github.com/robalyx/embedder/internal/setup/config"
	"go.uber.org/zap"
)

// redditMediaHosts serve raw media instead of posts.
var redditMediaHosts = []string{"i.redd.it", "v.redd.it", "preview.redd.it", "gallery.redd.it"}

// Definitions returns the definitions of every integration in resolution order.
// Integrations without a built-in client resolve as unavailable.
func Definitions(cfg *config.CommonConfig, logger *zap.Logger) []integration.Definition {
	httpClient := integration.NewClient(&cfg.Fetch, logger)

	return []integration.Definition{
		{
			Integration: enum.IntegrationBluesky,
			Domains:     bluesky.Domains,
			Match:       bluesky.IsPostURL,
			Factory: guarded(cfg, enum.IntegrationBluesky, func(c config.Integration) (integration.Fetcher, error) {
				return bluesky.New(httpClient, c.BaseURL, logger), nil
			}),
		},
		{
			Integration: enum.IntegrationFacebook,
			Domains:     []string{"facebook.com", "fb.watch"},
			Factory:     guarded(cfg, enum.IntegrationFacebook, nil),
		},
		{
			Integration: enum.IntegrationFourChan,
			Domains:     fourchan.Domains,
			Factory: guarded(cfg, enum.IntegrationFourChan, func(c config.Integration) (integration.Fetcher, error) {
				return fourchan.New(httpClient, c.BaseURL, "", logger), nil
			}),
		},
		{
			Integration: enum.IntegrationInstagram,
			Domains:     []string{"instagram.com", "ddinstagram.com"},
			Factory:     guarded(cfg, enum.IntegrationInstagram, nil),
		},
		{
			Integration: enum.IntegrationLinkedIn,
			Domains:     []string{"linkedin.com/posts", "linkedin.com/feed"},
			Factory:     guarded(cfg, enum.IntegrationLinkedIn, nil),
		},
		{
			Integration: enum.IntegrationNineGag,
			Domains:     []string{"9gag.com"},
			Factory:     guarded(cfg, enum.IntegrationNineGag, nil),
		},
		{
			Integration: enum.IntegrationReddit,
			Domains:     []string{"reddit.com", "redd.it"},
			Match:       isRedditPost,
			Factory:     guarded(cfg, enum.IntegrationReddit, nil),
		},
		{
			Integration: enum.IntegrationThreads,
			Domains:     []string{"threads.net"},
			Factory:     guarded(cfg, enum.IntegrationThreads, nil),
		},
		{
			Integration: enum.IntegrationTikTok,
			Domains:     []string{"tiktok.com"},
			Factory:     guarded(cfg, enum.IntegrationTikTok, nil),
		},
		{
			Integration: enum.IntegrationTruthSocial,
			Domains:     []string{"truthsocial.com"},
			Factory:     guarded(cfg, enum.IntegrationTruthSocial, nil),
		},
		{
			Integration: enum.IntegrationTwentyFourUr,
			Domains: []string{
				"24ur.com", "zadovoljna.si", "bibaleze.si", "vizita.si",
				"cekin.si", "moskisvet.com", "dominvrt.si", "okusno.je",
			},
			Factory: guarded(cfg, enum.IntegrationTwentyFourUr, nil),
		},
		{
			Integration: enum.IntegrationTwitch,
			Domains:     []string{"twitch.tv"},
			Match:       containsFunc("/clip/"),
			Factory:     guarded(cfg, enum.IntegrationTwitch, nil),
		},
		{
			Integration: enum.IntegrationTwitter,
			Domains:     []string{"twitter.com", "x.com", "nitter.net"},
			Match:       containsFunc("/status/"),
			Factory:     guarded(cfg, enum.IntegrationTwitter, nil),
		},
		{
			Integration: enum.IntegrationYouTube,
			Domains:     []string{"youtube.com/shorts"},
			Factory:     guarded(cfg, enum.IntegrationYouTube, nil),
		},
	}
}

// NewRegistry creates a registry of every integration.
func NewRegistry(cfg *config.CommonConfig, logger *zap.Logger) *integration.Registry {
	return integration.NewRegistry(logger, Definitions(cfg, logger)...)
}

// guarded wraps a constructor with the enabled check from configuration.
// A nil constructor marks an integration without a built-in client.
func guarded(
	cfg *config.CommonConfig, i enum.Integration, build func(config.Integration) (integration.Fetcher, error),
) func() (integration.Fetcher, error) {
	return func() (integration.Fetcher, error) {
		c, ok := cfg.Integrations[i.String()]
		if !ok || !c.Enabled {
			return nil, &integration.ConfigurationError{Integration: i, Err: integration.ErrDisabled}
		}
		if build == nil {
			return nil, &integration.ConfigurationError{Integration: i, Err: integration.ErrNoClient}
		}
		return build(c)
	}
}

func containsFunc(fragment string) func(string) bool {
	return func(url string) bool {
		return strings.Contains(url, fragment)
	}
}

func isRedditPost(url string) bool {
	for _, host := range redditMediaHosts {
		if strings.Contains(url, host) {
			return false
		}
	}
	return true
}

// PostFormats returns the default post format of every integration,
// preferring formats set in configuration.
func PostFormats(cfg *config.CommonConfig) map[enum.Integration]string {
	formats := make(map[enum.Integration]string, len(enum.IntegrationValues()))
	for _, i := range enum.IntegrationValues() {
		formats[i] = integration.PostFormat(i)
		if c, ok := cfg.Integrations[i.String()]; ok && c.PostFormat != "" {
			formats[i] = c.PostFormat
		}
	}
	return formats
}
