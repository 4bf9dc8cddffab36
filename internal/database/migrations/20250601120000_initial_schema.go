package migrations

import (
	"context"
	"fmt"

	"github.com/robalyx/embedder/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*types.Server)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create servers table: %w", err)
		}

		_, err = db.NewCreateTable().
			Model((*types.ServerIntegration)(nil)).
			IfNotExists().
			ForeignKey(`("server_id") REFERENCES "servers" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server_integrations table: %w", err)
		}

		_, err = db.NewCreateTable().
			Model((*types.Post)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create posts table: %w", err)
		}

		// Request records keep their row when the post or the server goes away
		_, err = db.NewCreateTable().
			Model((*types.ServerPost)(nil)).
			IfNotExists().
			ForeignKey(`("post_id") REFERENCES "posts" ("id") ON DELETE SET NULL`).
			ForeignKey(`("server_id") REFERENCES "servers" ("id") ON DELETE SET NULL`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server_posts table: %w", err)
		}

		_, err = db.NewCreateTable().
			Model((*types.ServerMember)(nil)).
			IfNotExists().
			ForeignKey(`("server_id") REFERENCES "servers" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server_members table: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.ServerMember)(nil),
			(*types.ServerPost)(nil),
			(*types.Post)(nil),
			(*types.ServerIntegration)(nil),
			(*types.Server)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
