// Package discord connects the embed service to Discord guilds.
package discord

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// DefaultMaxConcurrent limits concurrently handled events when none is configured.
const DefaultMaxConcurrent = 10

// Bot listens for links and slash commands and answers them through the embed service.
type Bot struct {
	client   bot.Client
	service  *embed.Service
	pool     *pool.Pool
	commands map[string]*command
	adminIDs []uint64
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates the bot and its Discord client.
func New(cfg *config.Discord, service *embed.Service, timeout time.Duration, logger *zap.Logger) (*Bot, error) {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	b := &Bot{
		service:  service,
		pool:     pool.New().WithMaxGoroutines(maxConcurrent),
		adminIDs: cfg.AdminIDs,
		timeout:  timeout,
		logger:   logger.Named("discord"),
	}
	b.commands = b.commandSet()

	client, err := disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMessageReactions,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildMessageCreate:            b.handleGuildMessage,
			OnGuildMessageReactionAdd:       b.handleReaction,
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client
	return b, nil
}

// Start registers global commands with Discord and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands", zap.Int("count", len(b.commands)))

	if _, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), b.commandCreates()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")
	return b.client.OpenGateway(ctx)
}

// Close shuts down the gateway and waits for running handlers.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
	b.pool.Wait()
}

// run executes fn on the handler pool with a request timeout and panic recovery.
func (b *Bot) run(name string, fn func(ctx context.Context)) {
	b.pool.Go(func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in event handler", zap.String("handler", name), zap.Any("panic", r))
			}
			b.logger.Debug("Event handled", zap.String("handler", name), zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		fn(ctx)
	})
}

// isBotAdmin checks the configured bot administrators.
func (b *Bot) isBotAdmin(userID snowflake.ID) bool {
	return slices.Contains(b.adminIDs, uint64(userID))
}
