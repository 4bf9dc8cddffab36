package discord

import (
	"context"
	"slices"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/embed"
	"go.uber.org/zap"
)

const (
	deleteEmoji = "❌"
	retryEmoji  = "🔄"

	// reactionWindow is how long reactions on bot messages are honored.
	reactionWindow = 5 * time.Minute

	workingContent = "🔥 Working on it 🥵"
)

// linkRequest is a link posted in a guild channel.
type linkRequest struct {
	guildID   snowflake.ID
	channelID snowflake.ID
	source    snowflake.ID // Message replaced by the response
	user      discord.User
	link      Link
}

// handleGuildMessage answers the first supported link of a guild message.
func (b *Bot) handleGuildMessage(event *events.GuildMessageCreate) {
	if event.Message.Author.Bot {
		return
	}

	link, ok := FindLink(event.Message.Content)
	if !ok {
		return
	}

	b.run("message", func(ctx context.Context) {
		b.handleLink(ctx, event.Client().Rest(), linkRequest{
			guildID:   event.GuildID,
			channelID: event.ChannelID,
			source:    event.MessageID,
			user:      event.Message.Author,
			link:      link,
		})
	})
}

// handleReaction deletes or retries a bot message on request of the mentioned member.
func (b *Bot) handleReaction(event *events.GuildMessageReactionAdd) {
	if event.UserID == event.Client().ID() || event.Emoji.Name == nil {
		return
	}

	emoji := *event.Emoji.Name
	if emoji != deleteEmoji && emoji != retryEmoji {
		return
	}

	b.run("reaction", func(ctx context.Context) {
		client := event.Client().Rest()

		message, err := client.GetMessage(event.ChannelID, event.MessageID)
		if err != nil {
			b.logger.Warn("Failed to load reacted message", zap.Error(err))
			return
		}

		if message.Author.ID != event.Client().ID() ||
			time.Since(message.CreatedAt) > reactionWindow ||
			!slices.ContainsFunc(message.Mentions, func(u discord.User) bool { return u.ID == event.UserID }) {
			return
		}

		switch emoji {
		case deleteEmoji:
			b.logger.Info("Member deleted message",
				zap.Uint64("user_id", uint64(event.UserID)),
				zap.Uint64("message_id", uint64(message.ID)))
			b.deleteMessage(client, message.ChannelID, message.ID)

		case retryEmoji:
			link, ok := FindLink(message.Content)
			if !ok {
				return
			}

			b.logger.Info("Member retried message",
				zap.Uint64("user_id", uint64(event.UserID)),
				zap.String("url", link.URL))
			b.handleLink(ctx, client, linkRequest{
				guildID:   event.GuildID,
				channelID: event.ChannelID,
				source:    message.ID,
				user:      event.Member.User,
				link:      link,
			})
		}
	})
}

// handleLink replaces the source message with the requested post.
func (b *Bot) handleLink(ctx context.Context, client rest.Rest, req linkRequest) {
	if !b.service.ShouldHandle(req.link.URL) {
		b.logger.Debug("Handling for URL not enabled",
			zap.String("url", req.link.URL),
			zap.Uint64("guild_id", uint64(req.guildID)))
		return
	}

	working, err := client.CreateMessage(req.channelID, discord.NewMessageCreateBuilder().
		SetContent(workingContent).
		Build())
	if err != nil {
		b.logger.Error("Failed to send working message", zap.Error(err))
		return
	}
	b.deleteMessage(client, req.channelID, req.source)

	result, err := b.service.GetPost(ctx, embed.Request{
		URL:       req.link.URL,
		Vendor:    enum.ServerVendorDiscord,
		ServerUID: req.guildID.String(),
		AuthorUID: req.user.ID.String(),
	})
	if err != nil {
		b.reportFailure(client, req, working.ID, err)
		return
	}

	sent, err := client.CreateMessage(req.channelID, PostMessage(req.user.Mention(), result, req.link.Spoiler))
	if err != nil {
		b.logger.Error("Failed to send post", zap.String("url", req.link.URL), zap.Error(err))
		b.reportFailure(client, req, working.ID, err)
		return
	}

	if err := client.AddReaction(req.channelID, sent.ID, deleteEmoji); err != nil {
		b.logger.Warn("Failed to add reaction", zap.Error(err))
	}
	b.deleteMessage(client, req.channelID, working.ID)

	b.logger.Info("Member sent message with url",
		zap.Uint64("user_id", uint64(req.user.ID)),
		zap.String("url", req.link.URL),
		zap.Bool("reused", result.Reused))
}

// reportFailure turns the working message into an explanation with delete and retry reactions.
func (b *Bot) reportFailure(client rest.Rest, req linkRequest, messageID snowflake.ID, err error) {
	if embed.IsNotHandled(err) {
		b.deleteMessage(client, req.channelID, messageID)
		return
	}

	if embed.IsNotAllowed(err) {
		b.logger.Info("Request not allowed", zap.String("url", req.link.URL), zap.Error(err))
	} else {
		b.logger.Error("Failed downloading", zap.String("url", req.link.URL), zap.Error(err))
	}

	content := FailureContent(req.user.Mention(), req.link.URL, err)
	if _, err := client.UpdateMessage(req.channelID, messageID, discord.NewMessageUpdateBuilder().
		SetContent(content).
		Build()); err != nil {
		b.logger.Error("Failed to report failure", zap.Error(err))
		return
	}

	for _, emoji := range []string{deleteEmoji, retryEmoji} {
		if err := client.AddReaction(req.channelID, messageID, emoji); err != nil {
			b.logger.Warn("Failed to add reaction", zap.Error(err))
		}
	}
}

func (b *Bot) deleteMessage(client rest.Rest, channelID, messageID snowflake.ID) {
	if err := client.DeleteMessage(channelID, messageID); err != nil {
		b.logger.Warn("Failed to delete message",
			zap.Uint64("message_id", uint64(messageID)),
			zap.Error(err))
	}
}
