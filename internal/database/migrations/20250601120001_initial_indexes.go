package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_servers_vendor_uid
			ON servers (vendor, vendor_uid);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_server_integrations_server_integration
			ON server_integrations (server_id, integration);

			-- A missing index takes part in the uniqueness through COALESCE
			CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_natural_key
			ON posts (integration, integration_uid, COALESCE(integration_index, -1));

			CREATE INDEX IF NOT EXISTS idx_posts_created_at
			ON posts (created_at);

			CREATE INDEX IF NOT EXISTS idx_server_posts_server_created
			ON server_posts (server_id, created_at DESC);

			CREATE INDEX IF NOT EXISTS idx_server_posts_post_id
			ON server_posts (post_id);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_server_members_server_uid
			ON server_members (server_id, vendor_uid);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_servers_vendor_uid;
			DROP INDEX IF EXISTS idx_server_integrations_server_integration;
			DROP INDEX IF EXISTS idx_posts_natural_key;
			DROP INDEX IF EXISTS idx_posts_created_at;
			DROP INDEX IF EXISTS idx_server_posts_server_created;
			DROP INDEX IF EXISTS idx_server_posts_post_id;
			DROP INDEX IF EXISTS idx_server_members_server_uid;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
