package embed_test

import (
	"testing"
	"time"

	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestRenderPost(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		post   *types.Post
		format string
		want   string
	}{
		{
			name: "all fields",
			post: &types.Post{
				Author:      "alice",
				Description: "hello",
				Views:       ptr(int64(1234567)),
				Likes:       ptr(int64(1500)),
				Dislikes:    ptr(int64(0)),
				PostedAt:    &created,
			},
			format: "{url}|{author}|{created}|{views}|{likes}|{dislikes}|{description}",
			want:   "https://example.com/p|alice|18:30 · Mar 5, 2024|1.23M|1.5K|0|hello",
		},
		{
			name:   "missing fields",
			post:   &types.Post{},
			format: "{author}|{created}|{views}|{likes}|{description}",
			want:   "❌|❌|❌|❌|❌",
		},
		{
			name:   "spoiler description",
			post:   &types.Post{Description: "secret", Spoiler: true},
			format: "{description}",
			want:   "||secret||",
		},
		{
			name:   "unknown placeholders stay",
			post:   &types.Post{Author: "bob"},
			format: "{author} {unknown}",
			want:   "bob {unknown}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := embed.RenderPost(&embed.Result{
				URL:    "https://example.com/p",
				Post:   tt.post,
				Format: tt.format,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderPostBuiltInFormat(t *testing.T) {
	t.Parallel()

	midnight := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	got := embed.RenderPost(&embed.Result{
		URL: "https://www.tiktok.com/@a/video/1",
		Post: &types.Post{
			Author:   "a",
			Views:    ptr(int64(10)),
			Likes:    ptr(int64(2)),
			PostedAt: &midnight,
		},
		Format: integration.PostFormat(enum.IntegrationTikTok),
	})

	assert.Equal(t, "🔗 URL: https://www.tiktok.com/@a/video/1\n"+
		"🧑🏻‍🎨 Author: a\n"+
		"📅 Created: Mar 5, 2024\n"+
		"👀 Views: 10\n"+
		"👍🏻 Likes: 2\n\n", got)
}

func TestRenderComments(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, time.March, 5, 9, 15, 0, 0, time.UTC)
	got := embed.RenderComments([]*integration.Comment{
		{Author: "alice", Text: "first", Likes: ptr(int64(3)), Created: &created},
		{Author: "bob", Text: "hidden", Spoiler: true},
	})

	assert.Equal(t, "🧑🏻‍🎨 Author: alice\n"+
		"📅 Created: 09:15 · Mar 5, 2024\n"+
		"👍🏻 Likes: 3\n"+
		"📕 Comment: first\n\n"+
		"🧑🏻‍🎨 Author: bob\n"+
		"📅 Created: ❌\n"+
		"👍🏻 Likes: ❌\n"+
		"📕 Comment: ||hidden||\n\n", got)

	assert.Empty(t, embed.RenderComments(nil))
}

func TestRenderServerInfo(t *testing.T) {
	t.Parallel()

	server := types.NewServer(enum.ServerVendorDiscord, "guild", enum.ServerTierFree)
	server.Integrations[1].Enabled = false

	assert.Equal(t, "```yml\n"+
		"Tier: Free\n"+
		"Prefix: No prefix\n"+
		"Integrations:\n"+
		"  - Instagram: Enabled\n"+
		"  - Tiktok: Disabled\n"+
		"  - Youtube: Enabled\n"+
		"```\n", embed.RenderServerInfo(server))

	server.Prefix = "!"
	server.Tier = enum.ServerTierPremium
	assert.Contains(t, embed.RenderServerInfo(server), "Tier: Premium\nPrefix: !\n")
}
