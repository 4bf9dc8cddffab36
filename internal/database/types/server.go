package types

import (
	"time"

	"github.com/robalyx/embedder/internal/database/types/enum"
)

// Daily post limits for each server tier.
const (
	FreeTierLimit     = 3
	StandardTierLimit = 10
	PremiumTierLimit  = 25
)

// Server represents a chat platform community the bot serves.
type Server struct {
	ID             int64                `bun:",pk,autoincrement"                  json:"id"`
	Vendor         enum.ServerVendor    `bun:",notnull"                           json:"vendor"`         // Chat platform of the server
	VendorUID      string               `bun:",notnull"                           json:"vendorUid"`      // Server ID on the chat platform
	Tier           enum.ServerTier      `bun:",notnull"                           json:"tier"`           // Subscription level
	TierValidUntil *time.Time           `bun:",nullzero"                          json:"tierValidUntil"` // When the tier expires (null for never)
	Status         enum.ServerStatus    `bun:",notnull"                           json:"status"`         // Lifecycle status
	Prefix         string               `bun:",nullzero,type:varchar(1)"          json:"prefix"`         // Optional command prefix
	CreatedAt      time.Time            `bun:",notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time            `bun:",notnull,default:current_timestamp" json:"updatedAt"`
	Integrations   []*ServerIntegration `bun:"rel:has-many,join:id=server_id"     json:"integrations"`
}

// ServerIntegration holds the per-server settings of a single integration.
type ServerIntegration struct {
	ID          int64            `bun:",pk,autoincrement" json:"id"`
	ServerID    int64            `bun:",notnull" json:"serverId"`
	Integration enum.Integration `bun:"type:varchar(32),notnull" json:"integration"`
	Enabled     bool             `bun:",notnull" json:"enabled"`
	PostFormat  string           `bun:",nullzero" json:"postFormat"` // Override of the default post format
}

// NewServer returns a free, active server with the default integrations enabled.
func NewServer(vendor enum.ServerVendor, vendorUID string, tier enum.ServerTier) *Server {
	integrations := make([]*ServerIntegration, 0, len(enum.DefaultIntegrations))
	for _, integration := range enum.DefaultIntegrations {
		integrations = append(integrations, &ServerIntegration{
			Integration: integration,
			Enabled:     true,
		})
	}

	return &Server{
		Vendor:       vendor,
		VendorUID:    vendorUID,
		Tier:         tier,
		Status:       enum.ServerStatusActive,
		Integrations: integrations,
	}
}

// Integration returns the settings for the given integration or nil if the
// server has never configured it.
func (s *Server) Integration(integration enum.Integration) *ServerIntegration {
	for _, setting := range s.Integrations {
		if setting.Integration == integration {
			return setting
		}
	}
	return nil
}

// IsTierExpired checks if the tier has a validity date that already passed.
func (s *Server) IsTierExpired(now time.Time) bool {
	return s.TierValidUntil != nil && s.TierValidUntil.Before(now)
}

// DailyLimit returns the number of posts the server may request in a rolling
// 24 hour window. The boolean is false when the server has no limit.
func (s *Server) DailyLimit(now time.Time) (int, bool) {
	if s.IsTierExpired(now) {
		return FreeTierLimit, true
	}

	switch s.Tier {
	case enum.ServerTierFree:
		return FreeTierLimit, true
	case enum.ServerTierStandard:
		return StandardTierLimit, true
	case enum.ServerTierPremium:
		return PremiumTierLimit, true
	case enum.ServerTierUltra:
		return 0, false
	default:
		return 0, true
	}
}

// CanPost decides whether the server may request another post of the given
// integration after having requested count posts in the last 24 hours.
func (s *Server) CanPost(count int, integration enum.Integration, now time.Time) bool {
	if s.Status != enum.ServerStatusActive {
		return false
	}

	setting := s.Integration(integration)
	if setting == nil || !setting.Enabled {
		return false
	}

	limit, limited := s.DailyLimit(now)
	if !limited {
		return true
	}

	return count < limit
}

// CacheKey returns the key under which the server is cached.
func (s *Server) CacheKey() string {
	return ServerCacheKey(s.Vendor, s.VendorUID)
}

// ServerCacheKey builds the cache key for a server natural key.
func ServerCacheKey(vendor enum.ServerVendor, vendorUID string) string {
	return vendor.String() + ":" + vendorUID
}
