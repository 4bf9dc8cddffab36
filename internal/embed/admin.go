package embed

import (
	"context"
	"time"

	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"go.uber.org/zap"
)

// ProvisionServer creates the server if needed, sets its tier and enables the
// given integrations, or every known integration when none are given.
// Calling it again with the same arguments changes nothing.
func (s *Service) ProvisionServer(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string,
	tier enum.ServerTier, validUntil *time.Time, integrations ...enum.Integration,
) (*types.Server, error) {
	if _, _, err := s.servers.GetOrCreate(ctx, vendor, vendorUID, tier); err != nil {
		return nil, repositoryError("load server", err)
	}

	if err := s.servers.SetTier(ctx, vendor, vendorUID, tier, validUntil); err != nil {
		return nil, repositoryError("set tier", err)
	}

	if len(integrations) == 0 {
		integrations = enum.IntegrationValues()
	}
	if err := s.servers.EnableIntegrations(ctx, vendor, vendorUID, integrations); err != nil {
		return nil, repositoryError("enable integrations", err)
	}

	server, err := s.servers.Get(ctx, vendor, vendorUID)
	if err != nil {
		return nil, repositoryError("load server", err)
	}

	s.logger.Info("Provisioned server",
		zap.String("vendor", vendor.String()),
		zap.String("vendor_uid", vendorUID),
		zap.String("tier", tier.String()),
		zap.Timep("valid_until", validUntil),
		zap.Int("integrations", len(integrations)))

	return server, nil
}

// SetMemberBanned bans or unbans a member, creating the server on first contact.
func (s *Service) SetMemberBanned(
	ctx context.Context, vendor enum.ServerVendor, serverUID, memberUID string, banned bool,
) error {
	if _, _, err := s.servers.GetOrCreate(ctx, vendor, serverUID, enum.ServerTierFree); err != nil {
		return repositoryError("load server", err)
	}

	if err := s.bans.SetBanned(ctx, vendor, serverUID, memberUID, banned); err != nil {
		return repositoryError("set ban", err)
	}

	return nil
}

// IsMemberBanned checks the ban state of a member.
func (s *Service) IsMemberBanned(
	ctx context.Context, vendor enum.ServerVendor, serverUID, memberUID string,
) (bool, error) {
	banned, err := s.bans.IsBanned(ctx, vendor, serverUID, memberUID)
	if err != nil {
		return false, repositoryError("check ban", err)
	}
	return banned, nil
}

// GetPostFormat returns the post format a server uses for an integration.
func (s *Service) GetPostFormat(
	ctx context.Context, vendor enum.ServerVendor, serverUID string, i enum.Integration,
) (string, error) {
	server, err := s.servers.Get(ctx, vendor, serverUID)
	if err != nil {
		return "", repositoryError("load server", err)
	}
	if server == nil {
		server = types.NewServer(vendor, serverUID, enum.ServerTierFree)
	}

	return s.postFormat(server, i), nil
}

// SetPostFormat overrides the post format of an integration. An empty format restores the default.
func (s *Service) SetPostFormat(
	ctx context.Context, vendor enum.ServerVendor, serverUID string, i enum.Integration, format string,
) error {
	if _, _, err := s.servers.GetOrCreate(ctx, vendor, serverUID, enum.ServerTierFree); err != nil {
		return repositoryError("load server", err)
	}

	if err := s.servers.SetPostFormat(ctx, vendor, serverUID, i, format); err != nil {
		return repositoryError("set post format", err)
	}

	return nil
}

// SetIntegrationEnabled enables or disables an integration on a server.
func (s *Service) SetIntegrationEnabled(
	ctx context.Context, vendor enum.ServerVendor, serverUID string, i enum.Integration, enabled bool,
) error {
	if _, _, err := s.servers.GetOrCreate(ctx, vendor, serverUID, enum.ServerTierFree); err != nil {
		return repositoryError("load server", err)
	}

	if err := s.servers.SetIntegrationEnabled(ctx, vendor, serverUID, i, enabled); err != nil {
		return repositoryError("set integration", err)
	}

	return nil
}

// SetServerStatus activates, deactivates or blocks a server.
func (s *Service) SetServerStatus(
	ctx context.Context, vendor enum.ServerVendor, serverUID string, status enum.ServerStatus,
) error {
	if err := s.servers.SetStatus(ctx, vendor, serverUID, status); err != nil {
		return repositoryError("set status", err)
	}
	return nil
}

// GetServerInfo returns the server, creating it on first contact.
func (s *Service) GetServerInfo(ctx context.Context, vendor enum.ServerVendor, serverUID string) (*types.Server, error) {
	server, _, err := s.servers.GetOrCreate(ctx, vendor, serverUID, enum.ServerTierFree)
	if err != nil {
		return nil, repositoryError("load server", err)
	}
	return server, nil
}

// ClearCachedPosts deletes the posts requested on a server, optionally only of
// one integration. Request records stay with their post reference cleared.
func (s *Service) ClearCachedPosts(
	ctx context.Context, vendor enum.ServerVendor, serverUID string, i *enum.Integration,
) (int, error) {
	server, err := s.servers.Get(ctx, vendor, serverUID)
	if err != nil {
		return 0, repositoryError("load server", err)
	}
	if server == nil {
		return 0, nil
	}

	deleted, err := s.postRepo.DeleteServerPosts(ctx, server.ID, i)
	if err != nil {
		return 0, repositoryError("clear posts", err)
	}

	s.logger.Info("Cleared cached posts",
		zap.String("vendor", vendor.String()),
		zap.String("vendor_uid", serverUID),
		zap.Int("deleted", deleted))

	return deleted, nil
}

// PurgePosts deletes up to limit stored posts created before the cutoff.
func (s *Service) PurgePosts(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	deleted, err := s.postRepo.DeletePostsBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, repositoryError("purge posts", err)
	}
	return deleted, nil
}
