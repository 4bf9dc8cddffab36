package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robalyx/embedder/internal/discord"
	"github.com/robalyx/embedder/internal/setup"
	"github.com/robalyx/embedder/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "bot",
		Usage: "Start the embedder Discord bot",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runBot(ctx)
		},
	}

	return app.Run(context.Background(), os.Args)
}

func runBot(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx, telemetry.ServiceBot, BotLogDir)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	timeout := telemetry.ServiceBot.GetRequestTimeout(app.Config)

	discordBot, err := discord.New(&app.Config.Bot.Discord, app.Service, timeout, app.Logger)
	if err != nil {
		return err
	}

	// Start the bot and connect to Discord
	if err := discordBot.Start(ctx); err != nil {
		return err
	}

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")
	<-ctx.Done()

	// Use a fresh context since the signal context is already done
	discordBot.Close(context.Background())

	return nil
}
