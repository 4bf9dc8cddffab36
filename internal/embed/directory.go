package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/embedder/internal/cache"
	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"go.uber.org/zap"
)

// ServerDirectory loads and mutates servers through a read cache.
type ServerDirectory struct {
	repo   ServerRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewServerDirectory creates a server directory.
func NewServerDirectory(repo ServerRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *ServerDirectory {
	return &ServerDirectory{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger.Named("server_directory"),
	}
}

func serverKey(vendor enum.ServerVendor, vendorUID string) string {
	return "server:" + types.ServerCacheKey(vendor, vendorUID)
}

// Get returns the server or nil if it has never been seen.
func (d *ServerDirectory) Get(ctx context.Context, vendor enum.ServerVendor, vendorUID string) (*types.Server, error) {
	key := serverKey(vendor, vendorUID)

	var cached types.Server
	found, err := d.cache.Get(ctx, key, &cached)
	if err != nil {
		d.logger.Warn("Failed to read cached server", zap.String("key", key), zap.Error(err))
	} else if found {
		return &cached, nil
	}

	server, err := d.repo.GetServer(ctx, vendor, vendorUID)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, nil //nolint:nilnil // -
	}

	if err := d.cache.Set(ctx, key, server, d.ttl); err != nil {
		d.logger.Warn("Failed to cache server", zap.String("key", key), zap.Error(err))
	}

	return server, nil
}

// Create stores a new server with the default integrations enabled.
// Returns types.ErrServerExists if the server is already known.
func (d *ServerDirectory) Create(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, tier enum.ServerTier,
) (*types.Server, error) {
	server := types.NewServer(vendor, vendorUID, tier)

	if err := d.repo.CreateServer(ctx, server); err != nil {
		return nil, err
	}
	d.invalidate(ctx, vendor, vendorUID)

	d.logger.Info("Created server",
		zap.String("vendor", vendor.String()),
		zap.String("vendor_uid", vendorUID),
		zap.String("tier", tier.String()))

	return server, nil
}

// GetOrCreate returns the server, creating it with the given tier on first contact.
func (d *ServerDirectory) GetOrCreate(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, tier enum.ServerTier,
) (server *types.Server, created bool, err error) {
	server, err = d.Get(ctx, vendor, vendorUID)
	if err != nil {
		return nil, false, err
	}
	if server != nil {
		return server, false, nil
	}

	server, err = d.Create(ctx, vendor, vendorUID, tier)
	if errors.Is(err, types.ErrServerExists) {
		// Lost the creation race, load the winner
		server, err = d.Get(ctx, vendor, vendorUID)
		if err == nil && server == nil {
			err = fmt.Errorf("%w: %s", types.ErrServerNotFound, types.ServerCacheKey(vendor, vendorUID))
		}
		return server, false, err
	}
	if err != nil {
		return nil, false, err
	}

	return server, true, nil
}

// EnableIntegrations enables the given integrations.
func (d *ServerDirectory) EnableIntegrations(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, integrations []enum.Integration,
) error {
	return d.mutate(ctx, vendor, vendorUID, func(serverID int64) error {
		return d.repo.EnableIntegrations(ctx, serverID, integrations)
	})
}

// SetIntegrationEnabled toggles one integration.
func (d *ServerDirectory) SetIntegrationEnabled(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, integration enum.Integration, enabled bool,
) error {
	return d.mutate(ctx, vendor, vendorUID, func(serverID int64) error {
		return d.repo.SetIntegrationEnabled(ctx, serverID, integration, enabled)
	})
}

// SetPostFormat overrides the post format of an integration. An empty format restores the default.
func (d *ServerDirectory) SetPostFormat(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, integration enum.Integration, format string,
) error {
	return d.mutate(ctx, vendor, vendorUID, func(serverID int64) error {
		return d.repo.SetPostFormat(ctx, serverID, integration, format)
	})
}

// SetTier changes the tier of a server. A nil validUntil makes it permanent.
func (d *ServerDirectory) SetTier(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, tier enum.ServerTier, validUntil *time.Time,
) error {
	return d.mutate(ctx, vendor, vendorUID, func(serverID int64) error {
		return d.repo.UpdateTier(ctx, serverID, tier, validUntil)
	})
}

// SetStatus changes the lifecycle status of a server.
func (d *ServerDirectory) SetStatus(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, status enum.ServerStatus,
) error {
	return d.mutate(ctx, vendor, vendorUID, func(serverID int64) error {
		return d.repo.UpdateStatus(ctx, serverID, status)
	})
}

// mutate resolves the server id, applies the change and drops the cached server.
func (d *ServerDirectory) mutate(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, apply func(serverID int64) error,
) error {
	server, err := d.Get(ctx, vendor, vendorUID)
	if err != nil {
		return err
	}
	if server == nil {
		return fmt.Errorf("%w: %s", types.ErrServerNotFound, types.ServerCacheKey(vendor, vendorUID))
	}

	err = apply(server.ID)
	d.invalidate(ctx, vendor, vendorUID)

	return err
}

func (d *ServerDirectory) invalidate(ctx context.Context, vendor enum.ServerVendor, vendorUID string) {
	key := serverKey(vendor, vendorUID)
	if err := d.cache.Delete(ctx, key); err != nil {
		d.logger.Error("Failed to invalidate cached server", zap.String("key", key), zap.Error(err))
	}
}
