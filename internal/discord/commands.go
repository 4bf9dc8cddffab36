package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/embed"
	"go.uber.org/zap"
)

// Command names.
const (
	CommandEmbed       = "embed"
	CommandComments    = "comments"
	CommandInfo        = "info"
	CommandSilence     = "silence"
	CommandPostFormat  = "postfmt"
	CommandClearCache  = "clear_cache"
	CommandProvision   = "provision"
	CommandIntegration = "integration"
)

var (
	errGuildOnly  = errors.New("command used outside of a server")
	errForbidden  = errors.New("missing permission")
	errBadOption  = errors.New("invalid option")
	errSelfBanned = errors.New("cannot silence yourself")
)

// access is the permission level a command requires.
type access int

const (
	accessMember access = iota
	accessServerAdmin
	accessBotAdmin
)

// commandRequest is an invoked slash command.
type commandRequest struct {
	guildID snowflake.ID
	user    discord.User
	data    discord.SlashCommandInteractionData
}

func (r commandRequest) embedRequest(url string) embed.Request {
	return embed.Request{
		URL:       url,
		Vendor:    enum.ServerVendorDiscord,
		ServerUID: r.guildID.String(),
		AuthorUID: r.user.ID.String(),
	}
}

type command struct {
	create    discord.SlashCommandCreate
	access    access
	ephemeral bool
	handle    func(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error)
}

// commandSet defines every slash command of the bot.
func (b *Bot) commandSet() map[string]*command {
	minComments := 1

	integrationChoices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(enum.IntegrationValues()))
	for _, i := range enum.IntegrationValues() {
		integrationChoices = append(integrationChoices, discord.ApplicationCommandOptionChoiceString{
			Name:  i.String(),
			Value: i.String(),
		})
	}

	tierChoices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(enum.ServerTierValues()))
	for _, t := range enum.ServerTierValues() {
		tierChoices = append(tierChoices, discord.ApplicationCommandOptionChoiceString{
			Name:  t.String(),
			Value: t.String(),
		})
	}

	urlOption := discord.ApplicationCommandOptionString{Name: "url", Description: "Link to the post", Required: true}
	spoilerOption := discord.ApplicationCommandOptionBool{Name: "spoiler", Description: "Hide the content behind a spoiler"}

	commands := []*command{
		{
			create: discord.SlashCommandCreate{
				Name:        CommandEmbed,
				Description: "Embeds media directly into discord",
				Options:     []discord.ApplicationCommandOption{urlOption, spoilerOption},
			},
			handle: b.embedCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandComments,
				Description: "Fetches comments for a post",
				Options: []discord.ApplicationCommandOption{
					urlOption,
					discord.ApplicationCommandOptionInt{
						Name:        "n",
						Description: fmt.Sprintf("Number of comments, at most %d", embed.MaxComments),
						MinValue:    &minComments,
					},
					spoilerOption,
				},
			},
			handle: b.commentsCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandInfo,
				Description: "Prints configuration for this server",
			},
			handle: b.infoCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandSilence,
				Description: "(Un)Ban a member from requesting posts",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{Name: "member", Description: "Member to silence", Required: true},
					discord.ApplicationCommandOptionBool{Name: "unban", Description: "Lift the ban instead"},
				},
			},
			access:    accessServerAdmin,
			ephemeral: true,
			handle:    b.silenceCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandPostFormat,
				Description: "Shows or changes the post format of a site",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name: "integration", Description: "Site", Required: true, Choices: integrationChoices,
					},
					discord.ApplicationCommandOptionString{Name: "format", Description: "New post format"},
					discord.ApplicationCommandOptionBool{Name: "reset", Description: "Restore the default format"},
				},
			},
			access:    accessServerAdmin,
			ephemeral: true,
			handle:    b.postFormatCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandClearCache,
				Description: "Clears post cache for server",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name: "integration", Description: "Only clear posts of this site", Choices: integrationChoices,
					},
				},
			},
			access:    accessServerAdmin,
			ephemeral: true,
			handle:    b.clearCacheCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandIntegration,
				Description: "Enables or disables a site on this server",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name: "integration", Description: "Site", Required: true, Choices: integrationChoices,
					},
					discord.ApplicationCommandOptionBool{Name: "enabled", Description: "Enable the site", Required: true},
				},
			},
			access:    accessServerAdmin,
			ephemeral: true,
			handle:    b.integrationCommand,
		},
		{
			create: discord.SlashCommandCreate{
				Name:        CommandProvision,
				Description: "Provisions a server",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name: "tier", Description: "Subscription tier", Required: true, Choices: tierChoices,
					},
					discord.ApplicationCommandOptionString{
						Name: "integration", Description: "Only enable this site", Choices: integrationChoices,
					},
					discord.ApplicationCommandOptionInt{Name: "days", Description: "Days until the tier expires"},
				},
			},
			access:    accessBotAdmin,
			ephemeral: true,
			handle:    b.provisionCommand,
		},
	}

	set := make(map[string]*command, len(commands))
	for _, cmd := range commands {
		set[cmd.create.Name] = cmd
	}
	return set
}

// commandCreates returns the command definitions in a stable order.
func (b *Bot) commandCreates() []discord.ApplicationCommandCreate {
	names := []string{
		CommandEmbed, CommandComments, CommandInfo, CommandSilence,
		CommandPostFormat, CommandClearCache, CommandIntegration, CommandProvision,
	}

	creates := make([]discord.ApplicationCommandCreate, 0, len(names))
	for _, name := range names {
		creates = append(creates, b.commands[name].create)
	}
	return creates
}

// handleApplicationCommandInteraction defers the response and runs the command on the handler pool.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()

	cmd, ok := b.commands[data.CommandName()]
	if !ok {
		b.logger.Warn("Unknown command", zap.String("command", data.CommandName()))
		return
	}

	if err := event.DeferCreateMessage(cmd.ephemeral); err != nil {
		b.logger.Error("Failed to defer create message", zap.Error(err))
		return
	}

	b.run(data.CommandName(), func(ctx context.Context) {
		messages, err := b.executeCommand(ctx, event, cmd, data)
		if err != nil {
			if !embed.IsNotAllowed(err) && !errors.Is(err, errForbidden) && !errors.Is(err, errGuildOnly) {
				b.logger.Error("Command failed",
					zap.String("command", data.CommandName()),
					zap.Uint64("user_id", uint64(event.User().ID)),
					zap.Error(err))
			}
			messages = []discord.MessageCreate{errorReply(err)}
		}

		for _, message := range messages {
			message.Flags = message.Flags.Add(ephemeralFlag(cmd.ephemeral))
			if _, err := event.Client().Rest().CreateFollowupMessage(event.ApplicationID(), event.Token(), message); err != nil {
				b.logger.Error("Failed to send command response",
					zap.String("command", data.CommandName()),
					zap.Error(err))
				return
			}
		}
	})
}

// executeCommand checks access and runs the command.
func (b *Bot) executeCommand(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, cmd *command, data discord.SlashCommandInteractionData,
) ([]discord.MessageCreate, error) {
	guildID := event.GuildID()
	if guildID == nil {
		return nil, errGuildOnly
	}

	switch cmd.access {
	case accessServerAdmin:
		member := event.Member()
		if member == nil || !member.Permissions.Has(discord.PermissionAdministrator) {
			return nil, errForbidden
		}
	case accessBotAdmin:
		if !b.isBotAdmin(event.User().ID) {
			return nil, errForbidden
		}
	case accessMember:
	}

	return cmd.handle(ctx, commandRequest{
		guildID: *guildID,
		user:    event.User(),
		data:    data,
	})
}

func (b *Bot) embedCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	url := req.data.String("url")

	result, err := b.service.GetPost(ctx, req.embedRequest(url))
	if err != nil {
		return nil, err
	}

	return []discord.MessageCreate{PostMessage(req.user.Mention(), result, req.data.Bool("spoiler"))}, nil
}

func (b *Bot) commentsCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	url := req.data.String("url")

	n, ok := req.data.OptInt("n")
	if !ok {
		n = embed.DefaultComments
	}

	comments, err := b.service.GetComments(ctx, req.embedRequest(url), n)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return reply("No comments found."), nil
	}

	return CommentMessages(req.user.Mention(), url, comments, req.data.Bool("spoiler")), nil
}

func (b *Bot) infoCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	server, err := b.service.GetServerInfo(ctx, enum.ServerVendorDiscord, req.guildID.String())
	if err != nil {
		return nil, err
	}

	return reply(req.user.Mention() + "\n" + embed.RenderServerInfo(server)), nil
}

func (b *Bot) silenceCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	member := req.data.User("member")
	unban := req.data.Bool("unban")

	if member.ID == req.user.ID {
		return nil, errSelfBanned
	}

	if err := b.service.SetMemberBanned(ctx, enum.ServerVendorDiscord, req.guildID.String(), member.ID.String(), !unban); err != nil {
		return nil, err
	}

	action := "banned"
	if unban {
		action = "unbanned"
	}

	b.logger.Info("Admin changed member ban",
		zap.Uint64("admin_id", uint64(req.user.ID)),
		zap.Uint64("member_id", uint64(member.ID)),
		zap.Bool("banned", !unban))

	return reply(fmt.Sprintf("User %s %s.", member.Username, action)), nil
}

func (b *Bot) postFormatCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	i, err := integrationOption(req.data, "integration")
	if err != nil {
		return nil, err
	}

	serverUID := req.guildID.String()
	format, hasFormat := req.data.OptString("format")

	switch {
	case req.data.Bool("reset"):
		err = b.service.SetPostFormat(ctx, enum.ServerVendorDiscord, serverUID, i, "")
	case hasFormat:
		err = b.service.SetPostFormat(ctx, enum.ServerVendorDiscord, serverUID, i, UnescapeFormat(format))
	}
	if err != nil {
		return nil, err
	}

	current, err := b.service.GetPostFormat(ctx, enum.ServerVendorDiscord, serverUID, i)
	if err != nil {
		return nil, err
	}

	return reply("```\n" + current + "```"), nil
}

func (b *Bot) clearCacheCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	var filter *enum.Integration
	if _, ok := req.data.OptString("integration"); ok {
		i, err := integrationOption(req.data, "integration")
		if err != nil {
			return nil, err
		}
		filter = &i
	}

	deleted, err := b.service.ClearCachedPosts(ctx, enum.ServerVendorDiscord, req.guildID.String(), filter)
	if err != nil {
		return nil, err
	}

	scope := "all"
	if filter != nil {
		scope = filter.String()
	}
	b.logger.Info("Admin cleared post cache",
		zap.Int("deleted", deleted),
		zap.String("integration", scope),
		zap.Uint64("admin_id", uint64(req.user.ID)))

	return reply(fmt.Sprintf("Deleted %d posts from cache.", deleted)), nil
}

func (b *Bot) integrationCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	i, err := integrationOption(req.data, "integration")
	if err != nil {
		return nil, err
	}
	enabled := req.data.Bool("enabled")

	if err := b.service.SetIntegrationEnabled(ctx, enum.ServerVendorDiscord, req.guildID.String(), i, enabled); err != nil {
		return nil, err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return reply(fmt.Sprintf("%s is now %s.", i, state)), nil
}

func (b *Bot) provisionCommand(ctx context.Context, req commandRequest) ([]discord.MessageCreate, error) {
	tier, err := enum.ServerTierString(req.data.String("tier"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadOption, err)
	}

	var integrations []enum.Integration
	if _, ok := req.data.OptString("integration"); ok {
		i, err := integrationOption(req.data, "integration")
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, i)
	}

	var validUntil *time.Time
	if days, ok := req.data.OptInt("days"); ok && days > 0 {
		until := time.Now().AddDate(0, 0, days)
		validUntil = &until
	}

	if _, err := b.service.ProvisionServer(
		ctx, enum.ServerVendorDiscord, req.guildID.String(), tier, validUntil, integrations...,
	); err != nil {
		return nil, err
	}

	b.logger.Info("Admin provisioned server",
		zap.String("tier", tier.String()),
		zap.Int("integrations", len(integrations)),
		zap.Uint64("admin_id", uint64(req.user.ID)),
		zap.Uint64("guild_id", uint64(req.guildID)))

	return reply("Provisioned server"), nil
}

// textMessage builds a plain text response.
func textMessage(content string) discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetContent(TrimContent(content, false)).
		SetFlags(discord.MessageFlagSuppressEmbeds).
		Build()
}

func reply(content string) []discord.MessageCreate {
	return []discord.MessageCreate{textMessage(content)}
}

func errorReply(err error) discord.MessageCreate {
	switch {
	case errors.Is(err, errGuildOnly):
		return textMessage("This command can only be used in a server.")
	case errors.Is(err, errForbidden):
		return textMessage("You are not allowed to use this command.")
	case errors.Is(err, errSelfBanned):
		return textMessage("Can't ban yourself..")
	case errors.Is(err, errBadOption):
		return textMessage("Invalid option.")
	default:
		return textMessage(ErrorMessage(err))
	}
}

func ephemeralFlag(ephemeral bool) discord.MessageFlags {
	if ephemeral {
		return discord.MessageFlagEphemeral
	}
	return discord.MessageFlagsNone
}

func integrationOption(data discord.SlashCommandInteractionData, name string) (enum.Integration, error) {
	i, err := enum.IntegrationString(data.String(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errBadOption, err)
	}
	return i, nil
}
