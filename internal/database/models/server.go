package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/embedder/internal/database/dbretry"
	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ServerModel handles database operations for servers and their integrations.
type ServerModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewServer creates a new server model instance.
func NewServer(db *bun.DB, logger *zap.Logger) *ServerModel {
	return &ServerModel{
		db:     db,
		logger: logger.Named("db_server"),
	}
}

// GetServer retrieves a server with its integrations by vendor key.
// Returns nil when the server does not exist.
func (m *ServerModel) GetServer(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string,
) (*types.Server, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Server, error) {
		var server types.Server

		err := m.db.NewSelect().
			Model(&server).
			Relation("Integrations", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Order("integration ASC")
			}).
			Where("vendor = ?", vendor).
			Where("vendor_uid = ?", vendorUID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil //nolint:nilnil // -
			}

			return nil, fmt.Errorf("failed to get server: %w", err)
		}

		return &server, nil
	})
}

// CreateServer inserts a server together with its integrations.
// Returns types.ErrServerExists if the vendor key is already taken.
func (m *ServerModel) CreateServer(ctx context.Context, server *types.Server) error {
	now := time.Now()
	server.CreatedAt = now
	server.UpdatedAt = now

	err := dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(server).Exec(ctx); err != nil {
			return err
		}

		if len(server.Integrations) == 0 {
			return nil
		}

		for _, setting := range server.Integrations {
			setting.ServerID = server.ID
		}

		_, err := tx.NewInsert().Model(&server.Integrations).Exec(ctx)

		return err
	})
	if err != nil {
		if dbretry.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", types.ErrServerExists, server.CacheKey())
		}

		return fmt.Errorf("failed to create server: %w", err)
	}

	m.logger.Debug("Created server",
		zap.Int64("id", server.ID),
		zap.String("vendor", server.Vendor.String()),
		zap.String("vendor_uid", server.VendorUID),
		zap.String("tier", server.Tier.String()))

	return nil
}

// EnableIntegrations enables the given integrations, creating missing settings.
func (m *ServerModel) EnableIntegrations(
	ctx context.Context, serverID int64, integrations []enum.Integration,
) error {
	if len(integrations) == 0 {
		return nil
	}

	settings := make([]*types.ServerIntegration, 0, len(integrations))
	for _, integration := range integrations {
		settings = append(settings, &types.ServerIntegration{
			ServerID:    serverID,
			Integration: integration,
			Enabled:     true,
		})
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(&settings).
			On("CONFLICT (server_id, integration) DO UPDATE").
			Set("enabled = EXCLUDED.enabled").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to enable integrations: %w", err)
	}

	m.logger.Debug("Enabled integrations",
		zap.Int64("server_id", serverID),
		zap.Int("count", len(settings)))

	return nil
}

// SetIntegrationEnabled toggles a single integration for a server.
func (m *ServerModel) SetIntegrationEnabled(
	ctx context.Context, serverID int64, integration enum.Integration, enabled bool,
) error {
	setting := &types.ServerIntegration{
		ServerID:    serverID,
		Integration: integration,
		Enabled:     enabled,
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(setting).
			On("CONFLICT (server_id, integration) DO UPDATE").
			Set("enabled = EXCLUDED.enabled").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set integration state: %w", err)
	}

	m.logger.Debug("Updated integration state",
		zap.Int64("server_id", serverID),
		zap.String("integration", integration.String()),
		zap.Bool("enabled", enabled))

	return nil
}

// SetPostFormat stores the post format override of an integration.
// An empty format clears the override. A missing setting is created disabled.
func (m *ServerModel) SetPostFormat(
	ctx context.Context, serverID int64, integration enum.Integration, format string,
) error {
	setting := &types.ServerIntegration{
		ServerID:    serverID,
		Integration: integration,
		PostFormat:  format,
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(setting).
			On("CONFLICT (server_id, integration) DO UPDATE").
			Set("post_format = EXCLUDED.post_format").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set post format: %w", err)
	}

	m.logger.Debug("Updated post format",
		zap.Int64("server_id", serverID),
		zap.String("integration", integration.String()),
		zap.Bool("cleared", format == ""))

	return nil
}

// UpdateTier changes the tier of a server and its expiry.
// A nil validUntil makes the tier permanent.
func (m *ServerModel) UpdateTier(
	ctx context.Context, serverID int64, tier enum.ServerTier, validUntil *time.Time,
) error {
	err := m.update(ctx, serverID, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("tier = ?", tier).Set("tier_valid_until = ?", validUntil)
	})
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}

	m.logger.Debug("Updated server tier",
		zap.Int64("server_id", serverID),
		zap.String("tier", tier.String()),
		zap.Timep("valid_until", validUntil))

	return nil
}

// UpdateStatus changes the lifecycle status of a server.
func (m *ServerModel) UpdateStatus(ctx context.Context, serverID int64, status enum.ServerStatus) error {
	err := m.update(ctx, serverID, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("status = ?", status)
	})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	m.logger.Debug("Updated server status",
		zap.Int64("server_id", serverID),
		zap.String("status", status.String()))

	return nil
}

// update runs an update against a single server row and bumps updated_at.
func (m *ServerModel) update(
	ctx context.Context, serverID int64, apply func(*bun.UpdateQuery) *bun.UpdateQuery,
) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		query := m.db.NewUpdate().
			Model((*types.Server)(nil)).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", serverID)

		result, err := apply(query).Exec(ctx)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if affected == 0 {
			return types.ErrServerNotFound
		}

		return nil
	})
}
