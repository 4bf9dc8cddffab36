package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/setup"
	"github.com/robalyx/embedder/internal/setup/telemetry"
	"github.com/robalyx/embedder/pkg/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// CLILogDir is where the admin commands write their logs.
const CLILogDir = "logs/cli_logs"

var ErrFormatRequired = errors.New("either --format or --reset is required")

type appAction func(ctx context.Context, c *cli.Command, app *setup.App) error

// withApp initializes the full application for the duration of an admin command.
func withApp(action appAction) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		app, err := setup.InitializeApp(ctx, telemetry.ServiceCLI, CLILogDir)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer app.Cleanup()

		return action(ctx, c, app)
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "vendor",
			Usage: "Chat platform of the server (" + strings.Join(enum.ServerVendorStrings(), ", ") + ")",
			Value: enum.ServerVendorDiscord.String(),
		},
		&cli.StringFlag{
			Name:     "server",
			Usage:    "Platform ID of the server",
			Required: true,
		},
	}
}

func integrationFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "integration",
		Usage:    "Integration name (" + strings.Join(enum.IntegrationStrings(), ", ") + ")",
		Required: required,
	}
}

func parseVendor(c *cli.Command) (enum.ServerVendor, error) {
	vendor, err := enum.ServerVendorString(c.String("vendor"))
	if err != nil {
		return 0, fmt.Errorf("invalid vendor: %w", err)
	}
	return vendor, nil
}

func parseIntegration(value string) (enum.Integration, error) {
	i, err := enum.IntegrationString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integration: %w", err)
	}
	return i, nil
}

func adminCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Manage servers",
			Commands: []*cli.Command{
				{
					Name:  "provision",
					Usage: "Set the tier of a server and enable integrations",
					Flags: append(serverFlags(),
						&cli.StringFlag{
							Name:  "tier",
							Usage: "Subscription tier (" + strings.Join(enum.ServerTierStrings(), ", ") + ")",
							Value: enum.ServerTierFree.String(),
						},
						&cli.IntFlag{
							Name:  "days",
							Usage: "Days until the tier expires, 0 for no expiry",
						},
						&cli.StringSliceFlag{
							Name:  "integration",
							Usage: "Integrations to enable, all when omitted",
						},
					),
					Action: withApp(provisionServer),
				},
				{
					Name:   "info",
					Usage:  "Show the settings of a server",
					Flags:  serverFlags(),
					Action: withApp(showServer),
				},
				{
					Name:  "format",
					Usage: "Override or reset the post format of an integration",
					Flags: append(serverFlags(),
						integrationFlag(true),
						&cli.StringFlag{Name: "format", Usage: "New post format"},
						&cli.BoolFlag{Name: "reset", Usage: "Restore the default post format"},
					),
					Action: withApp(setPostFormat),
				},
				{
					Name:  "integration",
					Usage: "Enable or disable an integration",
					Flags: append(serverFlags(),
						integrationFlag(true),
						&cli.BoolFlag{Name: "disable", Usage: "Disable instead of enable"},
					),
					Action: withApp(setIntegration),
				},
				{
					Name:  "status",
					Usage: "Change the lifecycle status of a server",
					Flags: append(serverFlags(),
						&cli.StringFlag{
							Name:     "status",
							Usage:    "New status (" + strings.Join(enum.ServerStatusStrings(), ", ") + ")",
							Required: true,
						},
					),
					Action: withApp(setServerStatus),
				},
			},
		},
		{
			Name:  "member",
			Usage: "Manage members",
			Commands: []*cli.Command{
				{
					Name:   "ban",
					Usage:  "Ban a member from using the embedder",
					Flags:  append(serverFlags(), &cli.StringFlag{Name: "member", Required: true}),
					Action: withApp(banMember(true)),
				},
				{
					Name:   "unban",
					Usage:  "Lift the ban of a member",
					Flags:  append(serverFlags(), &cli.StringFlag{Name: "member", Required: true}),
					Action: withApp(banMember(false)),
				},
			},
		},
		{
			Name:  "posts",
			Usage: "Manage stored posts",
			Commands: []*cli.Command{
				{
					Name:   "clear",
					Usage:  "Delete the posts requested on a server",
					Flags:  append(serverFlags(), integrationFlag(false)),
					Action: withApp(clearPosts),
				},
				{
					Name:  "purge",
					Usage: "Delete posts older than the given age",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "older-than",
							Usage: "Age of the posts to delete (e.g. 12h, 30d, 2w)",
							Value: "30d",
						},
						&cli.IntFlag{
							Name:  "batch-size",
							Usage: "Posts deleted per query",
							Value: 500,
						},
					},
					Action: withApp(purgePosts),
				},
			},
		},
	}
}

func provisionServer(ctx context.Context, c *cli.Command, app *setup.App) error {
	vendor, err := parseVendor(c)
	if err != nil {
		return err
	}

	tier, err := enum.ServerTierString(c.String("tier"))
	if err != nil {
		return fmt.Errorf("invalid tier: %w", err)
	}

	var validUntil *time.Time
	if days := c.Int("days"); days > 0 {
		until := time.Now().AddDate(0, 0, int(days))
		validUntil = &until
	}

	var integrations []enum.Integration
	for _, name := range c.StringSlice("integration") {
		i, err := parseIntegration(name)
		if err != nil {
			return err
		}
		integrations = append(integrations, i)
	}

	server, err := app.Service.ProvisionServer(ctx, vendor, c.String("server"), tier, validUntil, integrations...)
	if err != nil {
		return err
	}

	fmt.Print(embed.RenderServerInfo(server))
	return nil
}

func showServer(ctx context.Context, c *cli.Command, app *setup.App) error {
	vendor, err := parseVendor(c)
	if err != nil {
		return err
	}

	server, err := app.Service.GetServerInfo(ctx, vendor, c.String("server"))
	if err != nil {
		return err
	}

	fmt.Print(embed.RenderServerInfo(server))
	return nil
}

func setPostFormat(ctx context.Context, c *cli.Command, app *setup.App) error {
	vendor, err := parseVendor(c)
	if err != nil {
		return err
	}

	i, err := parseIntegration(c.String("integration"))
	if err != nil {
		return err
	}

	format := c.String("format")
	if format == "" && !c.Bool("reset") {
		return ErrFormatRequired
	}
	if c.Bool("reset") {
		format = ""
	}

	if err := app.Service.SetPostFormat(ctx, vendor, c.String("server"), i, format); err != nil {
		return err
	}

	current, err := app.Service.GetPostFormat(ctx, vendor, c.String("server"), i)
	if err != nil {
		return err
	}

	app.Logger.Info("Updated post format",
		zap.String("integration", i.String()),
		zap.String("format", current))
	return nil
}

func setIntegration(ctx context.Context, c *cli.Command, app *setup.App) error {
	vendor, err := parseVendor(c)
	if err != nil {
		return err
	}

	i, err := parseIntegration(c.String("integration"))
	if err != nil {
		return err
	}

	enabled := !c.Bool("disable")
	if err := app.Service.SetIntegrationEnabled(ctx, vendor, c.String("server"), i, enabled); err != nil {
		return err
	}

	app.Logger.Info("Updated integration",
		zap.String("integration", i.String()),
		zap.Bool("enabled", enabled))
	return nil
}

func setServerStatus(ctx context.Context, c *cli.Command, app *setup.App) error {
	vendor, err := parseVendor(c)
	if err != nil {
		return err
	}

	status, err := enum.ServerStatusString(c.String("status"))
	if err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}

	if err := app.Service.SetServerStatus(ctx, vendor, c.String("server"), status); err != nil {
		return err
	}

	app.Logger.Info("Updated server status", zap.String("status", status.String()))
	return nil
}

func banMember(banned bool) appAction {
	return func(ctx context.Context, c *cli.Command, app *setup.App) error {
		vendor, err := parseVendor(c)
		if err != nil {
			return err
		}

		if err := app.Service.SetMemberBanned(ctx, vendor, c.String("server"), c.String("member"), banned); err != nil {
			return err
		}

		app.Logger.Info("Updated member ban",
			zap.String("member", c.String("member")),
			zap.Bool("banned", banned))
		return nil
	}
}

func clearPosts(ctx context.Context, c *cli.Command, app *setup.App) error {
	vendor, err := parseVendor(c)
	if err != nil {
		return err
	}

	var only *enum.Integration
	if name := c.String("integration"); name != "" {
		i, err := parseIntegration(name)
		if err != nil {
			return err
		}
		only = &i
	}

	deleted, err := app.Service.ClearCachedPosts(ctx, vendor, c.String("server"), only)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d posts\n", deleted)
	return nil
}

func purgePosts(ctx context.Context, c *cli.Command, app *setup.App) error {
	age, err := utils.ParseAge(c.String("older-than"))
	if err != nil {
		return err
	}

	batchSize := int(c.Int("batch-size"))
	if batchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", batchSize)
	}

	cutoff := time.Now().Add(-age)
	total := 0
	for {
		deleted, err := app.Service.PurgePosts(ctx, cutoff, batchSize)
		if err != nil {
			return err
		}
		total += deleted
		if deleted < batchSize {
			break
		}
	}

	fmt.Printf("Purged %d posts older than %s\n", total, c.String("older-than"))
	return nil
}
