package embed

import (
	"context"
	"time"

	"github.com/robalyx/embedder/internal/database"
	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
)

// ServerRepository persists servers and their integration settings.
type ServerRepository interface {
	GetServer(ctx context.Context, vendor enum.ServerVendor, vendorUID string) (*types.Server, error)
	CreateServer(ctx context.Context, server *types.Server) error
	EnableIntegrations(ctx context.Context, serverID int64, integrations []enum.Integration) error
	SetIntegrationEnabled(ctx context.Context, serverID int64, integration enum.Integration, enabled bool) error
	SetPostFormat(ctx context.Context, serverID int64, integration enum.Integration, format string) error
	UpdateTier(ctx context.Context, serverID int64, tier enum.ServerTier, validUntil *time.Time) error
	UpdateStatus(ctx context.Context, serverID int64, status enum.ServerStatus) error
}

// PostRepository persists posts and post requests.
type PostRepository interface {
	FindPost(ctx context.Context, integration enum.Integration, uid string, index *int) (*types.Post, error)
	SavePost(ctx context.Context, post *types.Post, record *types.ServerPost) (int64, error)
	RecordPost(ctx context.Context, record *types.ServerPost) error
	CountServerPosts(ctx context.Context, serverID int64, since time.Time) (int, error)
	DeleteServerPosts(ctx context.Context, serverID int64, integration *enum.Integration) (int, error)
	DeletePostsBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// MemberRepository persists member bans.
type MemberRepository interface {
	IsMemberBanned(ctx context.Context, vendor enum.ServerVendor, vendorUID string, memberUID string) (bool, error)
	SetMemberBanned(ctx context.Context, vendor enum.ServerVendor, vendorUID string, memberUID string, banned bool) error
}

// Datastore groups the repositories used by the embed service.
type Datastore struct {
	Servers ServerRepository
	Posts   PostRepository
	Members MemberRepository
}

// NewDatastore adapts the database repository.
func NewDatastore(repo *database.Repository) Datastore {
	return Datastore{
		Servers: repo.Server(),
		Posts:   repo.Post(),
		Members: repo.Member(),
	}
}
