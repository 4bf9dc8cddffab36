package discord_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/embedder/internal/database/types"
	discordadapter "github.com/robalyx/embedder/internal/discord"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    discordadapter.Link
		ok      bool
	}{
		{
			name:    "plain",
			content: "look at this https://www.tiktok.com/@a/video/1 lol",
			want:    discordadapter.Link{URL: "https://www.tiktok.com/@a/video/1"},
			ok:      true,
		},
		{
			name:    "first of many",
			content: "https://a.example/1 and https://b.example/2",
			want:    discordadapter.Link{URL: "https://a.example/1"},
			ok:      true,
		},
		{
			name:    "spoiler",
			content: "||https://x.com/a/status/1||",
			want:    discordadapter.Link{URL: "https://x.com/a/status/1", Spoiler: true},
			ok:      true,
		},
		{
			name:    "spoiler with text",
			content: "careful ||https://x.com/a/status/1 nsfw||",
			want:    discordadapter.Link{URL: "https://x.com/a/status/1", Spoiler: true},
			ok:      true,
		},
		{
			name:    "suppressed embed",
			content: "Failed downloading <https://x.com/a/status/1>",
			want:    discordadapter.Link{URL: "https://x.com/a/status/1"},
			ok:      true,
		},
		{
			name:    "no link",
			content: "nothing to see here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := discordadapter.FindLink(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrimContent(t *testing.T) {
	t.Parallel()

	short := "short message"
	assert.Equal(t, short, discordadapter.TrimContent(short, true))

	long := strings.Repeat("é", discordadapter.MessageLimit+10)

	trimmed := discordadapter.TrimContent(long, false)
	assert.Equal(t, discordadapter.MessageLimit, utf8.RuneCountInString(trimmed))
	assert.True(t, strings.HasSuffix(trimmed, "..."))

	trimmed = discordadapter.TrimContent(long, true)
	assert.Equal(t, discordadapter.MessageLimit, utf8.RuneCountInString(trimmed))
	assert.True(t, strings.HasSuffix(trimmed, "||..."))
}

func TestPostMessage(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	result := &embed.Result{
		URL:    "https://example.com/p/1",
		Format: "{url} {description}",
		Post: &types.Post{
			Description: "hello",
			Media:       png,
		},
	}

	message := discordadapter.PostMessage("<@1>", result, false)
	assert.True(t, strings.HasPrefix(message.Content, "Here you go <@1> "))
	assert.Contains(t, message.Content, "\nhttps://example.com/p/1 hello")
	assert.True(t, message.Flags.Has(discord.MessageFlagSuppressEmbeds))
	require.Len(t, message.Files, 1)
	assert.Equal(t, "file.png", message.Files[0].Name)

	message = discordadapter.PostMessage("<@1>", result, true)
	assert.Contains(t, message.Content, "https://example.com/p/1 ||hello||")
	require.Len(t, message.Files, 1)
	assert.Equal(t, "SPOILER_file.png", message.Files[0].Name)

	// The stored post is left untouched
	assert.False(t, result.Post.Spoiler)

	result.Post.Media = nil
	message = discordadapter.PostMessage("<@1>", result, false)
	assert.Empty(t, message.Files)
}

func TestCommentMessages(t *testing.T) {
	t.Parallel()

	comments := make([]*integration.Comment, 0, 12)
	for i := range 12 {
		comments = append(comments, &integration.Comment{Author: fmt.Sprintf("user%d", i), Text: "nice"})
	}

	messages := discordadapter.CommentMessages("<@1>", "https://example.com/p/1", comments, false)
	require.Len(t, messages, 3)
	assert.Contains(t, messages[0].Content, "<https://example.com/p/1>")
	assert.Contains(t, messages[0].Content, "user4")
	assert.NotContains(t, messages[0].Content, "user5")
	assert.Contains(t, messages[2].Content, "user11")

	messages = discordadapter.CommentMessages("<@1>", "https://example.com/p/1", comments[:1], true)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Content, "||nice||")
	assert.False(t, comments[0].Spoiler)

	assert.Empty(t, discordadapter.CommentMessages("<@1>", "https://example.com/p/1", nil, false))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: embed.ErrQuotaExceeded, want: "daily post limit"},
		{err: embed.ErrMemberBanned, want: "not allowed"},
		{err: fmt.Errorf("%w: requested 20", embed.ErrCommentLimit), want: "at most 15 comments"},
		{err: embed.ErrServerInactive, want: "not active"},
		{err: fmt.Errorf("%w: reddit", embed.ErrIntegrationDisabled), want: "not enabled"},
		{err: fmt.Errorf("%w: %w", embed.ErrNotHandled, integration.ErrUnsupportedURL), want: "not supported"},
		{err: &embed.FetchError{Err: integration.ErrPostNotFound}, want: "could not be found"},
		{err: &embed.FetchError{Err: integration.ErrCommentsUnsupported}, want: "does not provide comments"},
		{err: &embed.FetchError{Err: assert.AnError}, want: "could not be downloaded"},
		{err: &embed.RepositoryError{Op: "load server", Err: assert.AnError}, want: "Something went wrong"},
	}

	for _, tt := range tests {
		assert.Contains(t, discordadapter.ErrorMessage(tt.err), tt.want, tt.err.Error())
	}

	failure := discordadapter.FailureContent("<@1>", "https://example.com/p/1", embed.ErrQuotaExceeded)
	assert.True(t, strings.HasPrefix(failure, "<@1>\nFailed downloading <https://example.com/p/1>\n"))

	link, ok := discordadapter.FindLink(failure)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/p/1", link.URL)
}

func TestUnescapeFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "{url}\n{author}", discordadapter.UnescapeFormat(`{url}\n{author}`))
}
