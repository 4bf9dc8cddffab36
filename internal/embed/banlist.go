package embed

import (
	"context"

	"github.com/robalyx/embedder/internal/cache"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"go.uber.org/zap"
)

// BanList tracks members banned from requesting posts on a server.
type BanList struct {
	repo   MemberRepository
	cache  cache.Cache
	logger *zap.Logger
}

// NewBanList creates a ban list. Ban states are cached without expiry.
func NewBanList(repo MemberRepository, c cache.Cache, logger *zap.Logger) *BanList {
	return &BanList{
		repo:   repo,
		cache:  c,
		logger: logger.Named("ban_list"),
	}
}

func banKey(vendor enum.ServerVendor, serverUID, memberUID string) string {
	return "banned:" + vendor.String() + ":" + serverUID + ":" + memberUID
}

// IsBanned checks whether the member is banned on the server.
func (b *BanList) IsBanned(ctx context.Context, vendor enum.ServerVendor, serverUID, memberUID string) (bool, error) {
	key := banKey(vendor, serverUID, memberUID)

	var banned bool
	found, err := b.cache.Get(ctx, key, &banned)
	if err != nil {
		b.logger.Warn("Failed to read cached ban", zap.String("key", key), zap.Error(err))
	} else if found {
		return banned, nil
	}

	banned, err = b.repo.IsMemberBanned(ctx, vendor, serverUID, memberUID)
	if err != nil {
		return false, err
	}

	if err := b.cache.Set(ctx, key, banned, 0); err != nil {
		b.logger.Warn("Failed to cache ban", zap.String("key", key), zap.Error(err))
	}

	return banned, nil
}

// SetBanned stores the ban state and writes it through to the cache.
func (b *BanList) SetBanned(ctx context.Context, vendor enum.ServerVendor, serverUID, memberUID string, banned bool) error {
	if err := b.repo.SetMemberBanned(ctx, vendor, serverUID, memberUID, banned); err != nil {
		return err
	}

	key := banKey(vendor, serverUID, memberUID)
	if err := b.cache.Set(ctx, key, banned, 0); err != nil {
		// A stale entry would outlive the write, so drop it instead
		b.logger.Error("Failed to cache ban, dropping entry", zap.String("key", key), zap.Error(err))
		_ = b.cache.Delete(ctx, key)
	}

	b.logger.Info("Updated member ban",
		zap.String("vendor", vendor.String()),
		zap.String("server_uid", serverUID),
		zap.String("member_uid", memberUID),
		zap.Bool("banned", banned))

	return nil
}
