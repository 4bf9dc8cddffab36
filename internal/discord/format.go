package discord

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/gabriel-vasile/mimetype"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/pkg/utils"
)

const (
	// MessageLimit is the maximum length of a Discord message.
	MessageLimit = 2000
	// CommentsPerMessage is the number of comments sent in a single message.
	CommentsPerMessage = 5

	spoilerMark = "||"
	ellipsis    = "..."
)

var emojis = []string{"🎉", "🔥", "🤙", "👌", "😎", "🙌", "🍿", "🚀", "✨", "🥳"}

// Link is a URL found in a chat message.
type Link struct {
	URL     string
	Spoiler bool
}

// FindLink returns the first link in the message content.
// A link wrapped in spoiler marks is returned as a spoiler.
func FindLink(content string) (Link, bool) {
	urls := utils.ExtractURLs(content)
	if len(urls) == 0 {
		return Link{}, false
	}

	raw := urls[0]
	url := strings.TrimRight(raw, ">")
	spoiler := false
	if trimmed, ok := strings.CutSuffix(url, spoilerMark); ok {
		url, spoiler = trimmed, true
	}
	if idx := strings.Index(url, spoilerMark); idx >= 0 {
		url, spoiler = url[:idx], true
	}
	if strings.Contains(content, spoilerMark+raw) {
		spoiler = true
	}

	return Link{URL: url, Spoiler: spoiler}, url != ""
}

// TrimContent shortens content to the message limit.
// Cut spoilers are closed so the rest of the message stays hidden.
func TrimContent(content string, spoiler bool) string {
	if utf8.RuneCountInString(content) <= MessageLimit {
		return content
	}

	suffix := ellipsis
	if spoiler {
		suffix = spoilerMark + ellipsis
	}

	runes := []rune(content)
	return string(runes[:MessageLimit-len(suffix)]) + suffix
}

// PostMessage builds the message presenting a post to the requesting member.
func PostMessage(mention string, result *embed.Result, spoiler bool) discord.MessageCreate {
	post := *result.Post
	post.Spoiler = post.Spoiler || spoiler

	rendered := *result
	rendered.Post = &post

	content := fmt.Sprintf("Here you go %s %s.\n%s", mention, randomEmoji(), embed.RenderPost(&rendered))

	builder := discord.NewMessageCreateBuilder().
		SetContent(TrimContent(content, post.Spoiler)).
		SetFlags(discord.MessageFlagSuppressEmbeds)

	if len(post.Media) > 0 {
		builder.AddFiles(mediaFile(post.Media, post.Spoiler))
	}

	return builder.Build()
}

// CommentMessages builds one message per batch of comments.
func CommentMessages(mention, url string, comments []*integration.Comment, spoiler bool) []discord.MessageCreate {
	messages := make([]discord.MessageCreate, 0, (len(comments)+CommentsPerMessage-1)/CommentsPerMessage)

	for batch := range slices.Chunk(comments, CommentsPerMessage) {
		rendered := batch
		if spoiler {
			rendered = make([]*integration.Comment, len(batch))
			for i, comment := range batch {
				c := *comment
				c.Spoiler = true
				rendered[i] = &c
			}
		}

		hidden := slices.ContainsFunc(rendered, func(c *integration.Comment) bool { return c.Spoiler })

		content := fmt.Sprintf("Here you go %s %s.\n<%s>\n%s", mention, randomEmoji(), url, embed.RenderComments(rendered))
		messages = append(messages, discord.NewMessageCreateBuilder().
			SetContent(TrimContent(content, hidden)).
			SetFlags(discord.MessageFlagSuppressEmbeds).
			Build())
	}

	return messages
}

// FailureContent explains to the member why a request failed.
func FailureContent(mention, url string, err error) string {
	return fmt.Sprintf("%s\nFailed downloading <%s>\n%s", mention, url, ErrorMessage(err))
}

// ErrorMessage converts a request error into a message for the member.
func ErrorMessage(err error) string {
	var fetchErr *embed.FetchError

	switch {
	case errors.Is(err, embed.ErrQuotaExceeded):
		return "This server reached its daily post limit."
	case errors.Is(err, embed.ErrMemberBanned):
		return "You are not allowed to request posts on this server."
	case errors.Is(err, embed.ErrCommentLimit):
		return fmt.Sprintf("You can request at most %d comments.", embed.MaxComments)
	case errors.Is(err, embed.ErrServerInactive):
		return "This server is not active."
	case errors.Is(err, embed.ErrIntegrationDisabled):
		return "This site is not enabled on this server."
	case embed.IsNotHandled(err):
		return "This link is not supported."
	case errors.Is(err, integration.ErrCommentsUnsupported):
		return "This site does not provide comments."
	case errors.Is(err, integration.ErrPostNotFound):
		return "The post could not be found."
	case errors.As(err, &fetchErr):
		return "The post could not be downloaded, try again later."
	default:
		return "Something went wrong, try again later."
	}
}

// mediaFile names the attachment after its detected media type.
func mediaFile(media []byte, spoiler bool) *discord.File {
	name := "file" + mimetype.Detect(media).Extension()
	if spoiler {
		name = "SPOILER_" + name
	}
	return discord.NewFile(name, "", bytes.NewReader(media))
}

func randomEmoji() string {
	return emojis[rand.IntN(len(emojis))] //nolint:gosec // -
}

// UnescapeFormat turns escaped line breaks typed into a command option into real ones.
func UnescapeFormat(format string) string {
	return strings.ReplaceAll(format, `\n`, "\n")
}
